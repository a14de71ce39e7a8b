package auth

import (
	"context"

	"github.com/hearthledger/hearthledger/internal/models"
)

// Authenticator defines the interface for authentication
// implementations. The abstraction keeps the service layer independent
// of the credential mechanism (password today, passkeys or OAuth
// later).
type Authenticator interface {
	// Register creates a new user account with the given email and
	// credential, returning the created user.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the credentials and returns the user on
	// success.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks whether the credential meets the
	// implementation's requirements before any storage is touched.
	ValidateCredential(credential string) error
}
