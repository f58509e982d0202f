package usecases

import (
	"errors"

	"github.com/sand/bot-marketplace/backend/internal/usecases/repository"
)

var (
	ErrInvalidAddress    = errors.New("invalid address")
	ErrUnsupportedChain  = errors.New("unsupported chain")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidMnemonic   = errors.New("invalid mnemonic")
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrDecryptionFailure = errors.New("wallet decryption failed")
	ErrUnsupportedMethod = errors.New("unsupported payment method")
	ErrInvalidInput      = errors.New("invalid input")

	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrNotFound is returned when a user, bot or other document does not exist.
	ErrNotFound = repository.ErrDocumentNotFound
	// ErrPersistenceUnavailable is returned when the underlying store fails.
	ErrPersistenceUnavailable = repository.ErrPersistenceUnavailable
	// ErrUsernameTaken is returned when another user already holds the username.
	ErrUsernameTaken = repository.ErrUsernameTaken
)
