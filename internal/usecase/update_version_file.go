package usecase

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/compozy/gitrelease/internal/domain"
	"github.com/compozy/gitrelease/internal/repository"
	"github.com/magiconair/properties"
	"github.com/spf13/afero"
)

const (
	// VersionKey is the property holding the project version.
	VersionKey = "version"

	defaultVersionFileMode os.FileMode = 0644
)

// UpdateVersionFileUseCase writes the release version into a Java properties file.
type UpdateVersionFileUseCase struct {
	FS   repository.FileSystemRepository
	Path string
}

// Execute sets the version key, keeping the other keys and their comments.
// The file is created when missing.
func (uc *UpdateVersionFileUseCase) Execute(_ context.Context, version *domain.Version) error {
	props := properties.NewProperties()
	mode := defaultVersionFileMode
	info, err := uc.FS.Stat(uc.Path)
	switch {
	case err == nil:
		mode = info.Mode().Perm()
		data, err := afero.ReadFile(uc.FS, uc.Path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", uc.Path, err)
		}
		loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
		props, err = loader.LoadBytes(data)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", uc.Path, err)
		}
	case !os.IsNotExist(err):
		return fmt.Errorf("failed to stat %s: %w", uc.Path, err)
	}
	props.DisableExpansion = true
	if _, _, err := props.Set(VersionKey, version.Plain()); err != nil {
		return fmt.Errorf("failed to set %s: %w", VersionKey, err)
	}
	var buf bytes.Buffer
	if _, err := props.WriteComment(&buf, "# ", properties.UTF8); err != nil {
		return fmt.Errorf("failed to encode %s: %w", uc.Path, err)
	}
	if err := afero.WriteFile(uc.FS, uc.Path, buf.Bytes(), mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", uc.Path, err)
	}
	return nil
}

// ReadVersion returns the version currently stored in the file, or "" when unset.
func (uc *UpdateVersionFileUseCase) ReadVersion(_ context.Context) (string, error) {
	data, err := afero.ReadFile(uc.FS, uc.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read %s: %w", uc.Path, err)
	}
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	props, err := loader.LoadBytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", uc.Path, err)
	}
	return props.GetString(VersionKey, ""), nil
}
