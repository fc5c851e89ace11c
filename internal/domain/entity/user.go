package entity

import "account-service/pkg/apperr"

// User is the aggregate root for one account. Fields are private and mutated
// through setters; cross-field validation is the application layer's job, the
// aggregate only enforces that an id is assigned at most once.
//
// The password field always holds the salted hash, never the bare password.
type User struct {
	id       string
	email    string
	name     string
	password string
	salt     string
}

// Params carries partial fields for constructing an aggregate, used both for
// signup and for hydration from storage rows and test fixtures.
type Params struct {
	ID       string
	Email    string
	Name     string
	Password string
	Salt     string
}

// New builds an aggregate from partial params. Hydration may set the id
// directly here; the SetID guard applies to already-constructed aggregates.
func New(p Params) *User {
	return &User{
		id:       p.ID,
		email:    p.Email,
		name:     p.Name,
		password: p.Password,
		salt:     p.Salt,
	}
}

func (u *User) ID() string { return u.id }

// SetID assigns the persisted identifier. Re-assignment fails: the id is
// immutable once set.
func (u *User) SetID(value string) error {
	if u.id != "" {
		return apperr.Domain(apperr.CodeBadRequest, apperr.DetailUserAggregateAlreadyHasID, "User already has an id")
	}
	u.id = value
	return nil
}

func (u *User) Email() string         { return u.email }
func (u *User) SetEmail(value string) { u.email = value }

func (u *User) Name() string         { return u.name }
func (u *User) SetName(value string) { u.name = value }

func (u *User) Password() string         { return u.password }
func (u *User) SetPassword(value string) { u.password = value }

func (u *User) Salt() string         { return u.salt }
func (u *User) SetSalt(value string) { u.salt = value }
