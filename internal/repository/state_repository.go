package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/compozy/gitrelease/internal/domain"
	"github.com/gofrs/flock"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	// StateSchemaVersion defines the current schema version for state files
	StateSchemaVersion = "1.0.0"
	// StateFilePermissions defines the permissions for state files
	StateFilePermissions = 0600
	// StateDirPermissions defines the permissions for state directory
	StateDirPermissions = 0700
	// DefaultStateDir keeps session files inside .git so release commits never stage them.
	DefaultStateDir = ".git/release-state"
	// LockTimeout defines the maximum time to wait for a lock
	LockTimeout = 30 * time.Second
	// LockRetryInterval defines the interval between lock retry attempts
	LockRetryInterval = 100 * time.Millisecond
)

var (
	// ErrStateNotFound is returned when no state file exists for a session.
	ErrStateNotFound = errors.New("release state not found")
	// ErrStateCorrupted is returned when the stored checksum does not match.
	ErrStateCorrupted = errors.New("release state checksum mismatch")
)

// StateRepository defines the interface for managing rollback state
type StateRepository interface {
	Save(ctx context.Context, state *domain.RollbackState) error
	Load(ctx context.Context, sessionID string) (*domain.RollbackState, error)
	LoadLatest(ctx context.Context) (*domain.RollbackState, error)
	Delete(ctx context.Context, sessionID string) error
	Exists(ctx context.Context, sessionID string) (bool, error)
}

// StateMetadata contains metadata about the state file
type StateMetadata struct {
	SchemaVersion string    `json:"schema_version"`
	Checksum      string    `json:"checksum"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StateWrapper wraps the state with metadata
type StateWrapper struct {
	Metadata StateMetadata         `json:"metadata"`
	State    *domain.RollbackState `json:"state"`
}

// JSONStateRepository stores one JSON file per release session. Lock files
// are taken with flock on the real filesystem, so fs must be OS backed.
type JSONStateRepository struct {
	fs       afero.Fs
	stateDir string
	log      *zap.Logger
	mu       sync.RWMutex
}

// NewJSONStateRepository creates a new JSON-based state repository
func NewJSONStateRepository(fs afero.Fs, stateDir string, log *zap.Logger) StateRepository {
	if stateDir == "" {
		stateDir = DefaultStateDir
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &JSONStateRepository{
		fs:       fs,
		stateDir: stateDir,
		log:      log,
	}
}

// Save persists the rollback state to a JSON file with proper locking
func (r *JSONStateRepository) Save(ctx context.Context, state *domain.RollbackState) error {
	if err := r.fs.MkdirAll(r.stateDir, StateDirPermissions); err != nil {
		return fmt.Errorf("failed to ensure state directory: %w", err)
	}
	unlock, err := r.lock(ctx, state.SessionID, false)
	if err != nil {
		return err
	}
	defer unlock()

	stateData, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state for checksum: %w", err)
	}
	wrapper := StateWrapper{
		Metadata: StateMetadata{
			SchemaVersion: StateSchemaVersion,
			Checksum:      checksum(stateData),
			CreatedAt:     state.StartedAt,
			UpdatedAt:     time.Now(),
		},
		State: state,
	}
	data, err := json.MarshalIndent(wrapper, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state wrapper: %w", err)
	}
	filename := r.stateFilename(state.SessionID)
	if err := r.writeAtomic(filename, data); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writeAtomic(r.latestLink(), []byte(filename))
}

// Load retrieves a specific rollback state by session ID with validation
func (r *JSONStateRepository) Load(ctx context.Context, sessionID string) (*domain.RollbackState, error) {
	filename := r.stateFilename(sessionID)
	if exists, err := afero.Exists(r.fs, filename); err != nil {
		return nil, fmt.Errorf("failed to check state file: %w", err)
	} else if !exists {
		return nil, fmt.Errorf("%w: session %s", ErrStateNotFound, sessionID)
	}
	unlock, err := r.lock(ctx, sessionID, true)
	if err != nil {
		return nil, err
	}
	defer unlock()

	data, err := afero.ReadFile(r.fs, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	var wrapper StateWrapper
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state wrapper: %w", err)
	}
	if wrapper.Metadata.SchemaVersion != StateSchemaVersion {
		return nil, fmt.Errorf("incompatible schema version: expected %s, got %s",
			StateSchemaVersion, wrapper.Metadata.SchemaVersion)
	}
	if wrapper.State == nil {
		return nil, fmt.Errorf("%w: empty state", ErrStateCorrupted)
	}
	stateData, err := json.Marshal(wrapper.State)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state for checksum validation: %w", err)
	}
	if wrapper.Metadata.Checksum != checksum(stateData) {
		return nil, ErrStateCorrupted
	}
	return wrapper.State, nil
}

// LoadLatest retrieves the most recently saved rollback state
func (r *JSONStateRepository) LoadLatest(ctx context.Context) (*domain.RollbackState, error) {
	r.mu.RLock()
	data, err := afero.ReadFile(r.fs, r.latestLink())
	r.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no latest session", ErrStateNotFound)
		}
		return nil, fmt.Errorf("failed to read latest link: %w", err)
	}
	sessionID := extractSessionID(string(data))
	if sessionID == "" {
		return nil, fmt.Errorf("invalid latest link target: %s", data)
	}
	return r.Load(ctx, sessionID)
}

// Delete removes a rollback state
func (r *JSONStateRepository) Delete(ctx context.Context, sessionID string) error {
	unlock, err := r.lock(ctx, sessionID, false)
	if err != nil {
		return err
	}
	defer unlock()
	if err := r.fs.Remove(r.stateFilename(sessionID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete state file: %w", err)
	}
	if err := r.fs.Remove(r.lockFilename(sessionID)); err != nil && !os.IsNotExist(err) {
		r.log.Warn("Failed to remove lock file", zap.String("session", sessionID), zap.Error(err))
	}
	return nil
}

// Exists checks if a rollback state exists
func (r *JSONStateRepository) Exists(_ context.Context, sessionID string) (bool, error) {
	exists, err := afero.Exists(r.fs, r.stateFilename(sessionID))
	if err != nil {
		return false, fmt.Errorf("failed to check state file: %w", err)
	}
	return exists, nil
}

// lock takes the per-session file lock, shared for readers.
func (r *JSONStateRepository) lock(ctx context.Context, sessionID string, shared bool) (func(), error) {
	lock := flock.New(r.lockFilename(sessionID))
	lockCtx, cancel := context.WithTimeout(ctx, LockTimeout)
	defer cancel()
	var (
		locked bool
		err    error
	)
	if shared {
		locked, err = lock.TryRLockContext(lockCtx, LockRetryInterval)
	} else {
		locked, err = lock.TryLockContext(lockCtx, LockRetryInterval)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("could not acquire lock within timeout")
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			r.log.Warn("Failed to unlock state file", zap.String("session", sessionID), zap.Error(err))
		}
	}, nil
}

// writeAtomic writes through a temp file and renames it into place.
func (r *JSONStateRepository) writeAtomic(filename string, data []byte) error {
	tmp := filename + ".tmp"
	if err := afero.WriteFile(r.fs, tmp, data, StateFilePermissions); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := r.fs.Rename(tmp, filename); err != nil {
		if removeErr := r.fs.Remove(tmp); removeErr != nil {
			r.log.Warn("Failed to remove temp file", zap.String("file", tmp), zap.Error(removeErr))
		}
		return fmt.Errorf("failed to rename %s: %w", tmp, err)
	}
	return nil
}

func (r *JSONStateRepository) stateFilename(sessionID string) string {
	return filepath.Join(r.stateDir, fmt.Sprintf("state-%s.json", sessionID))
}

func (r *JSONStateRepository) lockFilename(sessionID string) string {
	return filepath.Join(r.stateDir, fmt.Sprintf(".state-%s.lock", sessionID))
}

func (r *JSONStateRepository) latestLink() string {
	return filepath.Join(r.stateDir, "latest.txt")
}

func checksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// extractSessionID extracts session ID from state filename
func extractSessionID(filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	if !strings.HasPrefix(base, "state-") || !strings.HasSuffix(base, ".json") {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(base, "state-"), ".json")
}
