package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userapp "account-service/internal/application"
	"account-service/internal/domain/entity"
	handlers "account-service/internal/interface/http"
	"account-service/internal/interface/middleware"
	"account-service/internal/router"
	"account-service/internal/router/modules"
	"account-service/pkg/helpers"
)

// memRepo is an in-memory user store good enough to drive the HTTP surface.
type memRepo struct {
	users map[string]*entity.User // by id, fully populated
	seq   int
}

func newMemRepo() *memRepo { return &memRepo{users: map[string]*entity.User{}} }

func (m *memRepo) byEmail(email string) *entity.User {
	for _, u := range m.users {
		if u.Email() == email {
			return u
		}
	}
	return nil
}

func (m *memRepo) IsEmailExist(ctx context.Context, email string) (bool, error) {
	return m.byEmail(email) != nil, nil
}

func (m *memRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	u := m.byEmail(email)
	if u == nil {
		return nil, nil
	}
	return entity.New(entity.Params{ID: u.ID(), Email: u.Email(), Password: u.Password(), Salt: u.Salt()}), nil
}

func (m *memRepo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return entity.New(entity.Params{ID: u.ID(), Email: u.Email(), Name: u.Name(), Salt: u.Salt()}), nil
}

func (m *memRepo) Create(ctx context.Context, u *entity.User) (*entity.User, error) {
	m.seq++
	id := fmt.Sprintf("id-%d", m.seq)
	if err := u.SetID(id); err != nil {
		return nil, err
	}
	m.users[id] = entity.New(entity.Params{ID: id, Email: u.Email(), Name: u.Name(), Password: u.Password(), Salt: u.Salt()})
	return u, nil
}

func (m *memRepo) CreateMany(ctx context.Context, users []*entity.User) error {
	for _, u := range users {
		if existing := m.byEmail(u.Email()); existing != nil {
			m.users[existing.ID()] = entity.New(entity.Params{ID: existing.ID(), Email: u.Email(), Name: u.Name(), Password: u.Password(), Salt: u.Salt()})
			continue
		}
		m.seq++
		id := fmt.Sprintf("id-%d", m.seq)
		m.users[id] = entity.New(entity.Params{ID: id, Email: u.Email(), Name: u.Name(), Password: u.Password(), Salt: u.Salt()})
	}
	return nil
}

func (m *memRepo) Update(ctx context.Context, u *entity.User) (*entity.User, error) {
	stored := m.users[u.ID()]
	password, salt := stored.Password(), stored.Salt()
	if u.Password() != "" {
		password = u.Password()
	}
	m.users[u.ID()] = entity.New(entity.Params{ID: u.ID(), Email: u.Email(), Name: u.Name(), Password: password, Salt: salt})
	return u, nil
}

func (m *memRepo) Delete(ctx context.Context, id string) error {
	delete(m.users, id)
	return nil
}

// passTx hands out inert transactions so routes run their full middleware
// chain without a database.
type passTx struct {
	rollbacks, commits int
	commitErr          error
}

func (p *passTx) Commit(ctx context.Context) error {
	if p.commitErr != nil {
		return p.commitErr
	}
	p.commits++
	return nil
}
func (p *passTx) Rollback(ctx context.Context) error {
	p.rollbacks++
	if p.commits > 0 || p.rollbacks > 1 {
		return pgx.ErrTxClosed
	}
	return nil
}
func (p *passTx) Begin(ctx context.Context) (pgx.Tx, error) { return p, nil }
func (p *passTx) Conn() *pgx.Conn                           { return nil }
func (p *passTx) LargeObjects() pgx.LargeObjects            { return pgx.LargeObjects{} }
func (p *passTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (p *passTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (p *passTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (p *passTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (p *passTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (p *passTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }

type passBeginner struct {
	last      *passTx
	commitErr error
}

func (b *passBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	b.last = &passTx{commitErr: b.commitErr}
	return b.last, nil
}

type testEnv struct {
	engine *gin.Engine
	repo   *memRepo
	jwt    *helpers.JWTManager
	db     *passBeginner
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newMemRepo()
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	logger := helpers.NewLogger("test", "test")
	svc := userapp.NewService(repo, jwt, logger)
	handler := handlers.NewUserHandler(svc, logger, nil)

	db := &passBeginner{}
	engine := gin.New()
	engine.Use(gin.Recovery())
	reg := router.NewRegistry(engine)
	reg.Add(modules.New(handler, jwt, middleware.Transaction(db, logger)))
	reg.RegisterAll()

	return &testEnv{engine: engine, repo: repo, jwt: jwt, db: db}
}

func (e *testEnv) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func (e *testEnv) signup(t *testing.T, email, password, name string) {
	t.Helper()
	w := e.do(http.MethodPost, "/api/v1/users/signup",
		fmt.Sprintf(`{"email":%q,"password":%q,"name":%q}`, email, password, name), "")
	require.Equal(t, http.StatusCreated, w.Code, "signup failed: %s", w.Body.String())
}

func (e *testEnv) signin(t *testing.T, email, password string) string {
	t.Helper()
	w := e.do(http.MethodPost, "/api/v1/users/signin",
		fmt.Sprintf(`{"email":%q,"password":%q}`, email, password), "")
	require.Equal(t, http.StatusOK, w.Code, "signin failed: %s", w.Body.String())
	body := decode(t, w)
	token, _ := body["data"].(map[string]any)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestSignupEndpoint(t *testing.T) {
	env := newEnv(t)

	env.signup(t, "new@mail.com", "abc12345", "newbie")

	u := env.repo.byEmail("new@mail.com")
	require.NotNil(t, u)
	assert.NotEmpty(t, u.Salt())
	assert.NotEqual(t, "abc12345", u.Password())
	assert.Equal(t, 1, env.db.last.commits, "successful signup commits the transaction")
}

func TestSignupDuplicateEmailRollsBack(t *testing.T) {
	env := newEnv(t)
	env.signup(t, "taken@mail.com", "abc12345", "")

	w := env.do(http.MethodPost, "/api/v1/users/signup", `{"email":"taken@mail.com","password":"abc12345"}`, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "EMAIL_ALREADY_EXIST", body["error"].(map[string]any)["code"])
	assert.Zero(t, env.db.last.commits)
	assert.Positive(t, env.db.last.rollbacks, "failed request must roll back")
}

func TestSignupInvalidEmailShape(t *testing.T) {
	env := newEnv(t)

	w := env.do(http.MethodPost, "/api/v1/users/signup", `{"email":"bad","password":"abc12345"}`, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "INVALID_USER_EMAIL", body["error"].(map[string]any)["code"])
}

func TestSigninEndpointIssuesVerifiableToken(t *testing.T) {
	env := newEnv(t)
	env.signup(t, "u1@mail.com", "abc12345", "u-1")

	token := env.signin(t, "u1@mail.com", "abc12345")

	claims, err := env.jwt.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1@mail.com", claims.Email)
}

func TestSigninWrongPassword(t *testing.T) {
	env := newEnv(t)
	env.signup(t, "u1@mail.com", "abc12345", "u-1")

	w := env.do(http.MethodPost, "/api/v1/users/signin", `{"email":"u1@mail.com","password":"wrong999"}`, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "PASSWORD_IS_WRONG", body["error"].(map[string]any)["code"])
}

func TestGetUserEndpoint(t *testing.T) {
	env := newEnv(t)
	env.signup(t, "u1@mail.com", "abc12345", "u-1")
	token := env.signin(t, "u1@mail.com", "abc12345")
	id := env.repo.byEmail("u1@mail.com").ID()

	w := env.do(http.MethodGet, "/api/v1/users/"+id, "", token)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, id, data["id"])
	assert.Equal(t, "u1@mail.com", data["email"])
	assert.Equal(t, "u-1", data["name"])
	_, hasPassword := data["password"]
	_, hasSalt := data["salt"]
	assert.False(t, hasPassword, "credential fields never leave the API")
	assert.False(t, hasSalt)
}

func TestGetUserRequiresBearer(t *testing.T) {
	env := newEnv(t)
	env.signup(t, "u1@mail.com", "abc12345", "u-1")
	id := env.repo.byEmail("u1@mail.com").ID()

	w := env.do(http.MethodGet, "/api/v1/users/"+id, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateForeignUserIsUnauthorized(t *testing.T) {
	env := newEnv(t)
	env.signup(t, "u1@mail.com", "abc12345", "u-1")
	env.signup(t, "u2@mail.com", "abc12345", "u-2")
	token := env.signin(t, "u1@mail.com", "abc12345")
	otherID := env.repo.byEmail("u2@mail.com").ID()

	w := env.do(http.MethodPut, "/api/v1/users/"+otherID, `{"name":"hijacked"}`, token)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "UNAUTHORIZED", body["error"].(map[string]any)["code"])
	assert.Equal(t, "u-2", env.repo.byEmail("u2@mail.com").Name())
}

func TestDeleteEndpoint(t *testing.T) {
	env := newEnv(t)
	env.signup(t, "u1@mail.com", "abc12345", "u-1")
	token := env.signin(t, "u1@mail.com", "abc12345")
	id := env.repo.byEmail("u1@mail.com").ID()

	w := env.do(http.MethodDelete, "/api/v1/users/"+id, "", token)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Nil(t, env.repo.byEmail("u1@mail.com"))
}

func TestSignupCommitFailureIsServerError(t *testing.T) {
	env := newEnv(t)
	env.db.commitErr = errors.New("serialization conflict")

	w := env.do(http.MethodPost, "/api/v1/users/signup", `{"email":"new@mail.com","password":"abc12345"}`, "")

	// the 201 the handler wrote must not survive the failed commit
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "signup successful")
	assert.Positive(t, env.db.last.rollbacks)
}

func TestSignupRejectsMalformedJSON(t *testing.T) {
	env := newEnv(t)

	w := env.do(http.MethodPost, "/api/v1/users/signup", `{"email":`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
