package usecase

import (
	"context"
	"fmt"

	"github.com/compozy/gitrelease/internal/domain"
	"github.com/compozy/gitrelease/internal/interactor"
)

const (
	LoginPrompt    = "Please specify git login"
	PasswordPrompt = "Please specify git password"
)

// ResolveCredentialsUseCase takes the push credentials from configuration,
// asking the user for whatever is missing.
type ResolveCredentialsUseCase struct {
	Interactor interactor.UserInteractor
	Login      string
	Password   string
}

func (uc *ResolveCredentialsUseCase) Execute(_ context.Context) (*domain.Credentials, error) {
	creds := &domain.Credentials{Username: uc.Login}
	if creds.Username == "" {
		login, err := uc.Interactor.PromptQuestion(LoginPrompt, "")
		if err != nil {
			return nil, fmt.Errorf("failed to read git login: %w", err)
		}
		creds.Username = login
	}
	if uc.Password != "" {
		creds.Password = []byte(uc.Password)
		return creds, nil
	}
	password, err := uc.Interactor.PromptPassword(PasswordPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to read git password: %w", err)
	}
	creds.Password = password
	return creds, nil
}
