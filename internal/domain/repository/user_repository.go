package repository

import (
	"context"

	"account-service/internal/domain/entity"
)

// UserRepository is the capability contract for account storage. Every method
// executes against the transaction published in ctx by the transaction
// middleware; without one it falls back to a direct pool connection
// (background jobs).
//
// Finds return (nil, nil) when no account matches. All storage-layer failures
// surface as a uniform infrastructure error, never raw driver errors.
type UserRepository interface {
	IsEmailExist(ctx context.Context, email string) (bool, error)
	// FindByEmail projects id, email, password and salt: the authentication
	// path needs the credential fields.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// FindByID projects id, email, name and salt; the password hash is never
	// part of this projection.
	FindByID(ctx context.Context, id string) (*entity.User, error)
	// Create persists a new account and assigns the generated id on the
	// aggregate.
	Create(ctx context.Context, u *entity.User) (*entity.User, error)
	// CreateMany upserts accounts by email; calling it twice with the same
	// set of emails leaves exactly one record per email.
	CreateMany(ctx context.Context, users []*entity.User) error
	Update(ctx context.Context, u *entity.User) (*entity.User, error)
	Delete(ctx context.Context, id string) error
}
