package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/kanban-api/internal/api"
	"github.com/phrazzld/kanban-api/internal/api/middleware"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/mocks"
	"github.com/phrazzld/kanban-api/internal/service"
	"github.com/phrazzld/kanban-api/internal/service/auth"
	"github.com/stretchr/testify/require"
)

const testPassword = "password123"

// memRevocations is an in-process revocation list.
type memRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (m *memRevocations) Revoke(_ context.Context, jti string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[jti] = until
	return nil
}

func (m *memRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[jti]
	return ok, nil
}

type apiFixture struct {
	mem    *mocks.Memory
	router http.Handler
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mem := mocks.NewMemory()
	jwtService := auth.RequireTestJWTService(t)
	revocations := &memRevocations{revoked: map[string]time.Time{}}

	users, err := service.NewUserService(mem.Users(), mem, auth.NewBcryptHasher(4), jwtService, logger)
	require.NoError(t, err)
	boards, err := service.NewBoardService(mem.Boards(), mem.Tasks(), mem, logger)
	require.NoError(t, err)
	tasks, err := service.NewTaskService(mem.Tasks(), mem.Boards(), mem.Users(), mem, logger)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(logger))
	api.RegisterRoutes(r, api.Dependencies{
		Users:       users,
		Boards:      boards,
		Tasks:       tasks,
		Auth:        middleware.NewAuthMiddleware(jwtService, mem.Users(), revocations, logger),
		Revocations: revocations,
	})

	return &apiFixture{mem: mem, router: r}
}

// do sends a request with an optional JSON body and bearer token.
func (f *apiFixture) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]any](t, rec)["error"].(string)
}

// signup registers username and returns its id and a token.
func (f *apiFixture) signup(t *testing.T, username string) (api.UserResponse, string) {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/auth/register", api.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: testPassword,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := decode[api.UserResponse](t, rec)
	return user, f.login(t, username)
}

func (f *apiFixture) login(t *testing.T, identifier string) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/auth/login", api.LoginRequest{
		Username: identifier,
		Password: testPassword,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[api.TokenResponse](t, rec).AccessToken
}

// signupAdmin registers username and promotes it directly in the store.
func (f *apiFixture) signupAdmin(t *testing.T, username string) (api.UserResponse, string) {
	t.Helper()
	user, token := f.signup(t, username)
	stored, err := f.mem.Users().GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	role := domain.RoleAdmin
	require.NoError(t, f.mem.Users().Update(context.Background(), stored, domain.UserPatch{Role: &role}))
	return user, token
}

func (f *apiFixture) createBoard(t *testing.T, token, name string, public bool) api.BoardResponse {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/boards", api.CreateBoardRequest{Name: name, IsPublic: public}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[api.BoardResponse](t, rec)
}

func (f *apiFixture) createTask(t *testing.T, token string, req api.CreateTaskRequest) api.TaskResponse {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/tasks", req, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[api.TaskResponse](t, rec)
}
