package interactor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPipeInteractor(t *testing.T) (*TerminalInteractor, *os.File, *os.File) {
	t.Helper()
	in, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() {
		in.Close()
		w.Close()
	})
	dir := t.TempDir()
	out, err := os.Create(filepath.Join(dir, "stdout"))
	require.NoError(t, err)
	errOut, err := os.Create(filepath.Join(dir, "stderr"))
	require.NoError(t, err)
	t.Cleanup(func() {
		out.Close()
		errOut.Close()
	})
	return NewTerminalInteractorWithStdio(in, out, errOut, nil), out, errOut
}

func TestTerminalInteractor_NonInteractive(t *testing.T) {
	t.Run("Should refuse to prompt without a terminal", func(t *testing.T) {
		ti, _, _ := newPipeInteractor(t)
		_, err := ti.PromptQuestion("version?", "1.0.0")
		assert.ErrorIs(t, err, ErrNonInteractive)
		_, err = ti.PromptPassword("password?")
		assert.ErrorIs(t, err, ErrNonInteractive)
	})
	t.Run("Should refuse to prompt when disabled by env", func(t *testing.T) {
		t.Setenv(NoInteractiveEnv, "1")
		ti, _, _ := newPipeInteractor(t)
		_, err := ti.PromptQuestion("version?", "")
		assert.ErrorIs(t, err, ErrNonInteractive)
	})
}

func TestTerminalInteractor_Messages(t *testing.T) {
	t.Run("Should write info to stdout and errors to stderr", func(t *testing.T) {
		ti, out, errOut := newPipeInteractor(t)
		ti.Info("Release branch release/1.3 created")
		ti.Error("push rejected")

		stdout, err := os.ReadFile(out.Name())
		require.NoError(t, err)
		stderr, err := os.ReadFile(errOut.Name())
		require.NoError(t, err)
		assert.Contains(t, string(stdout), "Release branch release/1.3 created")
		assert.NotContains(t, string(stdout), "push rejected")
		assert.Contains(t, string(stderr), "push rejected")
	})
}

func TestTerminalInteractor_WrapPromptError(t *testing.T) {
	t.Run("Should report Ctrl+C as a canceled prompt", func(t *testing.T) {
		ti, _, _ := newPipeInteractor(t)
		err := ti.wrapPromptError(terminal.InterruptErr)
		assert.ErrorIs(t, err, ErrPromptCanceled)
		assert.NotErrorIs(t, err, terminal.InterruptErr)
	})
	t.Run("Should wrap other prompt failures", func(t *testing.T) {
		ti, _, _ := newPipeInteractor(t)
		cause := errors.New("read failed")
		err := ti.wrapPromptError(cause)
		assert.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, ErrPromptCanceled)
		assert.ErrorContains(t, err, "prompt failed")
	})
}
