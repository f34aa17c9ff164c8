package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/spec-kit/user-management/internal/api/http"
	"github.com/spec-kit/user-management/internal/api/http/handlers"
	"github.com/spec-kit/user-management/internal/api/validation"
	"github.com/spec-kit/user-management/internal/auth"
	"github.com/spec-kit/user-management/internal/config"
	"github.com/spec-kit/user-management/internal/domain"
	"github.com/spec-kit/user-management/internal/observability"
	"github.com/spec-kit/user-management/internal/persistence"
	"github.com/spec-kit/user-management/internal/service"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Save(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *mockUserRepo) ListByStatus(ctx context.Context, status domain.UserStatus) ([]domain.User, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockUserRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func newTestApp(t *testing.T, repo *mockUserRepo, authCfg config.AuthConfig) *fiber.App {
	t.Helper()

	logger := zaptest.NewLogger(t)
	metrics := observability.NewMetrics()
	cfg := config.Config{Auth: authCfg}
	if cfg.Auth.BcryptCost == 0 {
		cfg.Auth.BcryptCost = bcrypt.MinCost
	}

	userService := service.NewUserService(cfg, service.UserDependencies{
		UserRepo: repo,
		Logger:   logger,
	})
	validate := validation.New()
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(&persistence.Postgres{}, nil, metrics),
		Users:          handlers.NewUsersHandler(userService, validate),
		Views:          handlers.NewViewsHandler(userService, validate),
		Auth:           handlers.NewAuthHandler(tokenManager, cfg.Auth),
		AuthMiddleware: auth.NewMiddleware(tokenManager, cfg.Auth.Enabled),
	})
	return app
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func jsonRequest(method, target string, payload any) *http.Request {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(payload)
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestListUsers_Envelope(t *testing.T) {
	repo := new(mockUserRepo)
	repo.On("List", mock.Anything).Return([]domain.User{
		{ID: 2, Username: "b", Status: domain.UserStatusActive, Role: domain.UserRoleUser},
		{ID: 1, Username: "a", Status: domain.UserStatusActive, Role: domain.UserRoleUser},
	}, nil)
	repo.On("Count", mock.Anything).Return(int64(2), nil)
	app := newTestApp(t, repo, config.AuthConfig{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/users", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.EqualValues(t, 2, body["count"])
	assert.EqualValues(t, 2, body["total_count"])
	users := body["users"].([]any)
	first := users[0].(map[string]any)
	assert.Equal(t, "b", first["username"])
	_, hasPassword := first["password"]
	assert.False(t, hasPassword)
}

func TestListUsers_InvalidStatusFailsFast(t *testing.T) {
	repo := new(mockUserRepo)
	app := newTestApp(t, repo, config.AuthConfig{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/users?status=BOGUS", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_FAILED", errBody["code"])
	// The service (and thus the repository) must never be reached.
	repo.AssertNotCalled(t, "ListByStatus", mock.Anything, mock.Anything)
}

func TestCreateUser_Created(t *testing.T) {
	repo := new(mockUserRepo)
	repo.On("ExistsByUsername", mock.Anything, "alice").Return(false, nil)
	repo.On("ExistsByEmail", mock.Anything, "alice@x.com").Return(false, nil)
	repo.On("Save", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.User).ID = 1
	}).Return(nil)
	app := newTestApp(t, repo, config.AuthConfig{})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/users", map[string]any{
		"username":   "alice",
		"email":      "alice@x.com",
		"password":   "secret1",
		"first_name": "Alice",
		"last_name":  "Smith",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "User created successfully", body["message"])
	user := body["user"].(map[string]any)
	assert.EqualValues(t, 1, user["id"])
	repo.AssertExpectations(t)
}

func TestCreateUser_ValidationRejectedAtBoundary(t *testing.T) {
	repo := new(mockUserRepo)
	app := newTestApp(t, repo, config.AuthConfig{})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/users", map[string]any{
		"username":   "ab",
		"email":      "not-an-email",
		"password":   "secret1",
		"first_name": "A",
		"last_name":  "B",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	repo.AssertNotCalled(t, "ExistsByUsername", mock.Anything, mock.Anything)
}

func TestCreateUser_ConflictShape(t *testing.T) {
	repo := new(mockUserRepo)
	repo.On("ExistsByUsername", mock.Anything, "alice").Return(true, nil)
	app := newTestApp(t, repo, config.AuthConfig{})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/users", map[string]any{
		"username":   "alice",
		"email":      "bob@x.com",
		"password":   "secret1",
		"first_name": "Bob",
		"last_name":  "Smith",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	body := decodeBody(t, resp)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "DUPLICATE_USERNAME", errBody["code"])
}

func TestGetUser_NotFoundShape(t *testing.T) {
	repo := new(mockUserRepo)
	repo.On("GetByID", mock.Anything, int64(99)).Return(nil, pgx.ErrNoRows)
	app := newTestApp(t, repo, config.AuthConfig{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/users/99", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body := decodeBody(t, resp)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "NOT_FOUND", errBody["code"])
}

func TestDeleteUser_InvalidID(t *testing.T) {
	repo := new(mockUserRepo)
	app := newTestApp(t, repo, config.AuthConfig{})

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/users/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCheckUsername(t *testing.T) {
	repo := new(mockUserRepo)
	repo.On("ExistsByUsername", mock.Anything, "alice").Return(true, nil)
	app := newTestApp(t, repo, config.AuthConfig{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/users/check-username?username=alice", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["available"])
}

func TestUserCount(t *testing.T) {
	repo := new(mockUserRepo)
	repo.On("Count", mock.Anything).Return(int64(7), nil)
	app := newTestApp(t, repo, config.AuthConfig{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/users/count", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.EqualValues(t, 7, body["count"])
}

func TestMutatingRoutesRequireTokenWhenAuthEnabled(t *testing.T) {
	repo := new(mockUserRepo)
	authCfg := config.AuthConfig{
		Enabled:               true,
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 5,
		AdminUsername:         "admin",
		AdminPassword:         "hunter22",
		BcryptCost:            bcrypt.MinCost,
	}
	app := newTestApp(t, repo, authCfg)

	// No token: rejected before the service runs.
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/users", map[string]any{
		"username": "alice",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Reads stay open.
	repo.On("Count", mock.Anything).Return(int64(0), nil)
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/users/count", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Exchange credentials for a token, then the mutation goes through.
	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/auth/token", map[string]any{
		"username": "admin",
		"password": "hunter22",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := decodeBody(t, resp)["token"].(string)

	repo.On("ExistsByUsername", mock.Anything, "alice").Return(false, nil)
	repo.On("ExistsByEmail", mock.Anything, "alice@x.com").Return(false, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	req := jsonRequest(http.MethodPost, "/api/users", map[string]any{
		"username":   "alice",
		"email":      "alice@x.com",
		"password":   "secret1",
		"first_name": "Alice",
		"last_name":  "Smith",
	})
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestTokenEndpoint_BadCredentials(t *testing.T) {
	repo := new(mockUserRepo)
	authCfg := config.AuthConfig{
		Enabled:               true,
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 5,
		AdminUsername:         "admin",
		AdminPassword:         "hunter22",
	}
	app := newTestApp(t, repo, authCfg)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/token", map[string]any{
		"username": "admin",
		"password": "wrong",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealthLive(t *testing.T) {
	repo := new(mockUserRepo)
	app := newTestApp(t, repo, config.AuthConfig{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
