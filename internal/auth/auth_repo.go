package auth

import (
	"context"

	"github.com/DhavalSuthar-24/padel/internal/user"
)

// AuthRepository is the part of the user directory that registration and
// login need. user.GormUserRepository satisfies it.
type AuthRepository interface {
	Create(ctx context.Context, u *user.User) error
	FindByUsername(ctx context.Context, username string) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
}

var _ AuthRepository = (*user.GormUserRepository)(nil)
