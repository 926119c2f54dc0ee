// Package interactor decouples release workflows from the surface that
// asks the user questions and shows them status messages.
package interactor

import "errors"

var (
	// ErrNonInteractive is returned when a prompt is needed but no terminal is attached.
	ErrNonInteractive = errors.New("interactive prompt required but not running in a terminal")
	// ErrPromptCanceled is returned when the user interrupts a prompt.
	ErrPromptCanceled = errors.New("prompt canceled by user")
	// ErrNoSeededAnswer is returned by the journaled interactor when its answer queue is empty.
	ErrNoSeededAnswer = errors.New("no seeded answer left for prompt")
)

// UserInteractor asks questions and reports progress to whoever runs a release.
type UserInteractor interface {
	// PromptQuestion returns the answer to prompt, or defaultValue when the
	// user enters nothing. An empty defaultValue means there is no default.
	PromptQuestion(prompt, defaultValue string) (string, error)
	// PromptPassword reads a secret without echoing it. Callers should zero
	// the returned buffer once done with it.
	PromptPassword(prompt string) ([]byte, error)
	Info(msg string)
	Error(msg string)
}
