package orchestrator

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Budgets of the release workflow. Each can be overridden through the
// GIT_RELEASE_* variable named next to it; under `go test` the short
// defaults apply.
var (
	// ReleaseWorkflowTimeout bounds a whole release run, prompts included
	ReleaseWorkflowTimeout = envOrDefault("GIT_RELEASE_WORKFLOW_TIMEOUT", time.ParseDuration,
		60*time.Minute, 10*time.Second)
	// RollbackTimeout bounds the compensations of one failed run
	RollbackTimeout = envOrDefault("GIT_RELEASE_ROLLBACK_TIMEOUT", time.ParseDuration,
		10*time.Minute, 5*time.Second)
	// DefaultRetryCount is how often push and publish are retried
	DefaultRetryCount = envOrDefault("GIT_RELEASE_RETRY_COUNT", parseCount, uint64(3), uint64(1))
	// DefaultRetryDelay is the initial delay for exponential backoff
	DefaultRetryDelay = envOrDefault("GIT_RELEASE_RETRY_DELAY", time.ParseDuration,
		time.Second, 10*time.Millisecond)
)

// isTestEnvironment detects a compiled test binary
func isTestEnvironment() bool {
	for _, arg := range os.Args {
		if strings.HasSuffix(arg, ".test") || strings.Contains(arg, "-test.") {
			return true
		}
	}
	return false
}

func envOrDefault[T any](envVar string, parse func(string) (T, error), prodDefault, testDefault T) T {
	if env := os.Getenv(envVar); env != "" {
		if v, err := parse(env); err == nil {
			return v
		}
	}
	if isTestEnvironment() {
		return testDefault
	}
	return prodDefault
}

func parseCount(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}
