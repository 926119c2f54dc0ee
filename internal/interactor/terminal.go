package interactor

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
)

// NoInteractiveEnv disables prompting when set, e.g. in CI.
const NoInteractiveEnv = "GIT_RELEASE_NO_INTERACTIVE"

// TerminalInteractor prompts on a real terminal using survey.
type TerminalInteractor struct {
	in     terminal.FileReader
	out    terminal.FileWriter
	errOut io.Writer
	log    *zap.Logger

	infoStyle  lipgloss.Style
	errorStyle lipgloss.Style
}

// NewTerminalInteractor wires the interactor to the process stdio.
func NewTerminalInteractor(log *zap.Logger) *TerminalInteractor {
	return NewTerminalInteractorWithStdio(os.Stdin, os.Stdout, os.Stderr, log)
}

// NewTerminalInteractorWithStdio wires the interactor to the given streams.
// Prompting requires in to be a terminal.
func NewTerminalInteractorWithStdio(
	in terminal.FileReader,
	out terminal.FileWriter,
	errOut io.Writer,
	log *zap.Logger,
) *TerminalInteractor {
	if log == nil {
		log = zap.NewNop()
	}
	outRenderer := lipgloss.NewRenderer(out)
	errRenderer := lipgloss.NewRenderer(errOut)
	return &TerminalInteractor{
		in:         in,
		out:        out,
		errOut:     errOut,
		log:        log,
		infoStyle:  outRenderer.NewStyle().Foreground(lipgloss.Color("39")),
		errorStyle: errRenderer.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
}

// PromptQuestion asks for a line of input. Without a default an empty answer is rejected.
func (t *TerminalInteractor) PromptQuestion(prompt, defaultValue string) (string, error) {
	if err := t.checkInteractive(); err != nil {
		return "", err
	}
	t.log.Debug("promptQuestion", zap.String("prompt", prompt))
	opts := []survey.AskOpt{survey.WithStdio(t.in, t.out, t.errOut)}
	if defaultValue == "" {
		opts = append(opts, survey.WithValidator(survey.Required))
	}
	var answer string
	q := &survey.Input{Message: prompt, Default: defaultValue}
	if err := survey.AskOne(q, &answer, opts...); err != nil {
		return "", t.wrapPromptError(err)
	}
	return answer, nil
}

// PromptPassword asks for a secret without echoing it.
func (t *TerminalInteractor) PromptPassword(prompt string) ([]byte, error) {
	if err := t.checkInteractive(); err != nil {
		return nil, err
	}
	t.log.Debug("promptPassword", zap.String("prompt", prompt))
	var answer string
	q := &survey.Password{Message: prompt}
	err := survey.AskOne(q, &answer,
		survey.WithStdio(t.in, t.out, t.errOut),
		survey.WithValidator(survey.Required),
	)
	if err != nil {
		return nil, t.wrapPromptError(err)
	}
	return []byte(answer), nil
}

// Info writes a status line to stdout.
func (t *TerminalInteractor) Info(msg string) {
	fmt.Fprintln(t.out, t.infoStyle.Render(msg))
}

// Error writes a failure line to stderr.
func (t *TerminalInteractor) Error(msg string) {
	fmt.Fprintln(t.errOut, t.errorStyle.Render(msg))
}

// checkInteractive refuses to prompt outside a terminal so CI runs fail fast.
func (t *TerminalInteractor) checkInteractive() error {
	if os.Getenv(NoInteractiveEnv) != "" {
		return ErrNonInteractive
	}
	fd := t.in.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return ErrNonInteractive
	}
	return nil
}

// wrapPromptError maps Ctrl+C to ErrPromptCanceled.
func (t *TerminalInteractor) wrapPromptError(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrPromptCanceled
	}
	return fmt.Errorf("prompt failed: %w", err)
}
