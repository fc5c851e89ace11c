package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"account-service/internal/domain/entity"
	"account-service/internal/domain/repository"
	"account-service/pkg/apperr"
)

// UserRepository is the Postgres binding of the user repository contract.
// Statements run against the transaction published in the request context
// when one exists; otherwise directly against the pool.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) db(ctx context.Context) Querier {
	if tx, ok := TxFrom(ctx); ok {
		return tx
	}
	return r.pool
}

func infraErr(err error) error {
	return apperr.Infrastructure("user storage failure", err)
}

func (r *UserRepository) IsEmailExist(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db(ctx).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)
	`, email).Scan(&exists)
	if err != nil {
		return false, infraErr(err)
	}
	return exists, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var (
		id, mail, password, salt string
	)
	err := r.db(ctx).QueryRow(ctx, `
		SELECT id, email, password, salt
		FROM users
		WHERE email = $1
	`, email).Scan(&id, &mail, &password, &salt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, infraErr(err)
	}
	return entity.New(entity.Params{ID: id, Email: mail, Password: password, Salt: salt}), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var (
		uid, mail, salt string
		name            *string
	)
	err := r.db(ctx).QueryRow(ctx, `
		SELECT id, email, name, salt
		FROM users
		WHERE id = $1
	`, id).Scan(&uid, &mail, &name, &salt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, infraErr(err)
	}
	p := entity.Params{ID: uid, Email: mail, Salt: salt}
	if name != nil {
		p.Name = *name
	}
	return entity.New(p), nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) (*entity.User, error) {
	var id string
	err := r.db(ctx).QueryRow(ctx, `
		INSERT INTO users (email, name, password, salt)
		VALUES ($1, NULLIF($2, ''), $3, $4)
		RETURNING id
	`, u.Email(), u.Name(), u.Password(), u.Salt()).Scan(&id)
	if err != nil {
		return nil, infraErr(err)
	}
	if err := u.SetID(id); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) CreateMany(ctx context.Context, users []*entity.User) error {
	if len(users) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, u := range users {
		batch.Queue(`
			INSERT INTO users (email, name, password, salt)
			VALUES ($1, NULLIF($2, ''), $3, $4)
			ON CONFLICT (email) DO UPDATE
			SET name = EXCLUDED.name, password = EXCLUDED.password, salt = EXCLUDED.salt, updated_at = now()
		`, u.Email(), u.Name(), u.Password(), u.Salt())
	}
	br := r.db(ctx).SendBatch(ctx, batch)
	defer func() { _ = br.Close() }()
	for range users {
		if _, err := br.Exec(); err != nil {
			return infraErr(err)
		}
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) (*entity.User, error) {
	// FindByID hydrates aggregates without the password hash; an empty hash
	// here means "keep the stored one", not "erase it".
	tag, err := r.db(ctx).Exec(ctx, `
		UPDATE users
		SET email = $1, name = NULLIF($2, ''),
		    password = COALESCE(NULLIF($3, ''), password),
		    salt = COALESCE(NULLIF($4, ''), salt),
		    updated_at = now()
		WHERE id = $5
	`, u.Email(), u.Name(), u.Password(), u.Salt(), u.ID())
	if err != nil {
		return nil, infraErr(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, infraErr(errors.New("no rows updated"))
	}
	return u, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db(ctx).Exec(ctx, `
		DELETE FROM users
		WHERE id = $1
	`, id)
	if err != nil {
		return infraErr(err)
	}
	if tag.RowsAffected() == 0 {
		return infraErr(errors.New("no rows deleted"))
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
