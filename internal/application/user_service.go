package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"account-service/internal/domain/entity"
	"account-service/internal/domain/repository"
	"account-service/pkg/apperr"
	"account-service/pkg/helpers"
	"account-service/pkg/validation"
)

// Identity is the caller asserted by a verified bearer token.
type Identity struct {
	ID    string
	Email string
}

// Service orchestrates the account commands and queries. Each operation is a
// fixed ordered sequence of checks; the first failing check terminates the
// operation with that specific error. Anything unrecognized leaving this
// layer is swallowed and replaced by a generic internal failure.
type Service struct {
	Repo   repository.UserRepository
	JWT    *helpers.JWTManager
	Logger *logrus.Logger
}

func NewService(repo repository.UserRepository, jwt *helpers.JWTManager, logger *logrus.Logger) *Service {
	return &Service{Repo: repo, JWT: jwt, Logger: logger}
}

// convert lets recognized structured errors through unchanged and replaces
// everything else with an opaque internal failure after logging the original.
func (s *Service) convert(err error) error {
	if err == nil || apperr.Recognized(err) {
		return err
	}
	if s.Logger != nil {
		helpers.LogError(s.Logger, "unexpected failure in user service", err, nil)
	}
	return apperr.Internal()
}

type SignupInput struct {
	Email    string
	Password string
	Name     string
}

func (s *Service) Signup(ctx context.Context, in SignupInput) error {
	return s.convert(s.signup(ctx, in))
}

func (s *Service) signup(ctx context.Context, in SignupInput) error {
	if in.Email == "" {
		return apperr.Command(apperr.CodeBadRequest, apperr.DetailEmailCanNotBeEmpty, "Email can not be empty")
	}

	exists, err := s.Repo.IsEmailExist(ctx, in.Email)
	if err != nil {
		return err
	}
	if exists {
		return apperr.Command(apperr.CodeBadRequest, apperr.DetailEmailAlreadyExist, "Email already exists")
	}

	if in.Password == "" {
		return apperr.Command(apperr.CodeBadRequest, apperr.DetailPasswordCanNotBeEmpty, "Password can not be empty")
	}
	if !validation.ValidEmail(in.Email) {
		return apperr.Command(apperr.CodeBadRequest, apperr.DetailInvalidUserEmail, "Invalid email, email must be in format xxx@yyyy.zzz")
	}
	if !validation.ValidPassword(in.Password) {
		return apperr.Command(apperr.CodeBadRequest, apperr.DetailInvalidUserPassword, "Invalid password, it must have at least 8 characters, at least one character and one number")
	}

	salt, err := helpers.GenerateSalt()
	if err != nil {
		return err
	}
	hashed := helpers.HashPassword(in.Password, salt)

	u := entity.New(entity.Params{})
	u.SetEmail(in.Email)
	u.SetPassword(hashed)
	u.SetName(in.Name)
	u.SetSalt(salt)

	_, err = s.Repo.Create(ctx, u)
	return err
}

type SigninInput struct {
	Email    string
	Password string
}

// Signin returns a signed bearer token. It never returns the account or its
// credential fields.
func (s *Service) Signin(ctx context.Context, in SigninInput) (string, error) {
	token, err := s.signin(ctx, in)
	return token, s.convert(err)
}

func (s *Service) signin(ctx context.Context, in SigninInput) (string, error) {
	if in.Email == "" {
		return "", apperr.Command(apperr.CodeBadRequest, apperr.DetailEmailCanNotBeEmpty, "Email can not be empty")
	}
	if in.Password == "" {
		return "", apperr.Command(apperr.CodeBadRequest, apperr.DetailPasswordCanNotBeEmpty, "Password can not be empty")
	}

	u, err := s.Repo.FindByEmail(ctx, in.Email)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", apperr.Command(apperr.CodeNotFound, apperr.DetailUserNotFound, "User not found")
	}

	if !helpers.VerifyPassword(in.Password, u.Salt(), u.Password()) {
		return "", apperr.Command(apperr.CodeBadRequest, apperr.DetailPasswordIsWrong, "Password is wrong")
	}

	return s.JWT.Generate(u.ID(), u.Email())
}

// UserResult is the public projection of one account; credential fields are
// never part of this shape.
type UserResult struct {
	ID    string
	Email string
	Name  string
}

// GetUser resolves the target account for an authenticated caller. The
// caller's asserted id must match the account owning the asserted email,
// which defends against tokens whose claims no longer match storage.
func (s *Service) GetUser(ctx context.Context, caller Identity, targetID string) (*UserResult, error) {
	res, err := s.getUser(ctx, caller, targetID)
	return res, s.convertQuery(err)
}

func (s *Service) getUser(ctx context.Context, caller Identity, targetID string) (*UserResult, error) {
	current, err := s.Repo.FindByEmail(ctx, caller.Email)
	if err != nil {
		return nil, err
	}
	if current == nil || current.ID() != caller.ID {
		return nil, apperr.Query(apperr.CodeBadRequest, apperr.DetailUnauthorized, "Unauthorized")
	}

	if targetID == "" {
		return nil, apperr.Query(apperr.CodeBadRequest, apperr.DetailUserIDCanNotBeEmpty, "User id can not be empty")
	}

	target, err := s.Repo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, apperr.Query(apperr.CodeNotFound, apperr.DetailUserNotFound, "User not found")
	}

	return &UserResult{ID: target.ID(), Email: target.Email(), Name: target.Name()}, nil
}

// convertQuery mirrors convert but reports the opaque failure as a query
// error.
func (s *Service) convertQuery(err error) error {
	if err == nil || apperr.Recognized(err) {
		return err
	}
	if s.Logger != nil {
		helpers.LogError(s.Logger, "unexpected failure in user service", err, nil)
	}
	e := apperr.Internal()
	e.Kind = apperr.KindQuery
	return e
}

type UpdateUserInput struct {
	ID       string
	Email    string
	Name     string
	Password string
}

func (s *Service) UpdateUser(ctx context.Context, caller Identity, in UpdateUserInput) error {
	return s.convert(s.updateUser(ctx, caller, in))
}

func (s *Service) updateUser(ctx context.Context, caller Identity, in UpdateUserInput) error {
	if in.ID == "" {
		return apperr.Command(apperr.CodeBadRequest, apperr.DetailUpdateUserIDCanNotBeEmpty, "Update user id can not be empty")
	}
	if in.Email == "" && in.Password == "" && in.Name == "" {
		return apperr.Command(apperr.CodeBadRequest, apperr.DetailCanNotUpdateUserWithoutData, "Can not update user without data")
	}
	if in.ID != caller.ID {
		return apperr.Command(apperr.CodeBadRequest, apperr.DetailUnauthorized, "Unauthorized to update user")
	}

	target, err := s.Repo.FindByID(ctx, in.ID)
	if err != nil {
		return err
	}
	if target == nil {
		return apperr.Command(apperr.CodeNotFound, apperr.DetailUserNotFound, "User not found")
	}

	current, err := s.Repo.FindByEmail(ctx, caller.Email)
	if err != nil {
		return err
	}
	if current == nil || current.ID() != caller.ID {
		return apperr.Command(apperr.CodeBadRequest, apperr.DetailUnauthorized, "Unauthorized")
	}

	return s.applyUpdate(ctx, target, in)
}

func (s *Service) applyUpdate(ctx context.Context, target *entity.User, in UpdateUserInput) error {
	if in.Email != "" {
		if !validation.ValidEmail(in.Email) {
			return apperr.Command(apperr.CodeBadRequest, apperr.DetailInvalidUserEmail, "Invalid email, email must be in format xxx@yyyy.zzz")
		}

		// Deliberately does not exclude the account's own current email; an
		// update that re-submits the unchanged email fails the duplicate
		// check. Kept as-is, see DESIGN.md.
		exists, err := s.Repo.IsEmailExist(ctx, in.Email)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Command(apperr.CodeBadRequest, apperr.DetailEmailExisted, "Email existed")
		}

		target.SetEmail(in.Email)
	}

	if in.Name != "" {
		target.SetName(in.Name)
	}

	if in.Password != "" {
		if !validation.ValidPassword(in.Password) {
			return apperr.Command(apperr.CodeBadRequest, apperr.DetailInvalidUserPassword, "Invalid password, it must have at least 8 characters, at least one character and one number")
		}
		if target.Salt() == "" {
			return apperr.Command(apperr.CodeBadRequest, apperr.DetailCanNotUpdatePwdWithoutSalt, "Can not update password")
		}
		target.SetPassword(helpers.HashPassword(in.Password, target.Salt()))
	}

	_, err := s.Repo.Update(ctx, target)
	return err
}

func (s *Service) DeleteUser(ctx context.Context, caller Identity, targetID string) error {
	return s.convert(s.deleteUser(ctx, caller, targetID))
}

func (s *Service) deleteUser(ctx context.Context, caller Identity, targetID string) error {
	if targetID != caller.ID {
		return apperr.Command(apperr.CodeBadRequest, apperr.DetailUnauthorized, "Unauthorized to delete user")
	}

	target, err := s.Repo.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return apperr.Command(apperr.CodeNotFound, apperr.DetailUserNotFound, "User not found")
	}

	current, err := s.Repo.FindByEmail(ctx, caller.Email)
	if err != nil {
		return err
	}
	if current == nil || current.ID() != caller.ID {
		return apperr.Command(apperr.CodeBadRequest, apperr.DetailUnauthorized, "Unauthorized")
	}

	return s.Repo.Delete(ctx, target.ID())
}

const fixturePassword = "testpassword99"

// CreateFixtureUsers builds n accounts with random emails and persists them
// through the upsert path. Used by the batch seed job.
func (s *Service) CreateFixtureUsers(ctx context.Context, n int, namePrefix string) ([]string, error) {
	emails, err := s.createFixtureUsers(ctx, n, namePrefix)
	return emails, s.convert(err)
}

func (s *Service) createFixtureUsers(ctx context.Context, n int, namePrefix string) ([]string, error) {
	users := make([]*entity.User, 0, n)
	emails := make([]string, 0, n)

	for i := 0; i < n; i++ {
		email := fmt.Sprintf("%s-test@mail.com", uuid.NewString())

		salt, err := helpers.GenerateSalt()
		if err != nil {
			return nil, err
		}

		users = append(users, entity.New(entity.Params{
			Email:    email,
			Name:     namePrefix + email,
			Password: helpers.HashPassword(fixturePassword, salt),
			Salt:     salt,
		}))
		emails = append(emails, email)
	}

	if err := s.Repo.CreateMany(ctx, users); err != nil {
		return nil, err
	}
	return emails, nil
}
