package api_test

import (
	"net/http"
	"testing"

	"github.com/phrazzld/kanban-api/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMe(t *testing.T) {
	f := newAPIFixture(t)
	alice, token := f.signup(t, "alice")

	rec := f.do(t, http.MethodGet, "/users/me", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, alice.ID, decode[api.UserResponse](t, rec).ID)

	name := "Alice L."
	rec = f.do(t, http.MethodPut, "/users/me", api.UpdateUserRequest{FullName: &name}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, name, decode[api.UserResponse](t, rec).FullName)

	t.Run("role change needs admin", func(t *testing.T) {
		role := "admin"
		rec := f.do(t, http.MethodPut, "/users/me", api.UpdateUserRequest{Role: &role}, token)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("anonymous", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/users/me", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	})
}

func TestUserAccessControl(t *testing.T) {
	f := newAPIFixture(t)
	alice, aliceToken := f.signup(t, "alice")
	bob, bobToken := f.signup(t, "bob")
	_, adminToken := f.signupAdmin(t, "root")

	t.Run("list is admin only", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, "/users", nil, aliceToken).Code)

		rec := f.do(t, http.MethodGet, "/users?limit=2", nil, adminToken)
		require.Equal(t, http.StatusOK, rec.Code)
		users := decode[[]api.UserResponse](t, rec)
		require.Len(t, users, 2)
		assert.Equal(t, "alice", users[0].Username)
		assert.Equal(t, "bob", users[1].Username)
	})

	t.Run("bad paging", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/users?limit=0", nil, adminToken).Code)
		assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/users?skip=-1", nil, adminToken).Code)
		assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/users?limit=1001", nil, adminToken).Code)
	})

	t.Run("read self or as admin", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/users/"+alice.ID.String(), nil, aliceToken).Code)
		assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, "/users/"+bob.ID.String(), nil, aliceToken).Code)
		assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/users/"+bob.ID.String(), nil, adminToken).Code)
	})

	t.Run("update others is forbidden", func(t *testing.T) {
		name := "Mallory"
		rec := f.do(t, http.MethodPut, "/users/"+bob.ID.String(), api.UpdateUserRequest{FullName: &name}, aliceToken)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/users/not-a-uuid", nil, adminToken)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("deactivate and reactivate", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden,
			f.do(t, http.MethodDelete, "/users/"+bob.ID.String(), nil, aliceToken).Code)

		rec := f.do(t, http.MethodDelete, "/users/"+bob.ID.String(), nil, adminToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.False(t, decode[api.UserResponse](t, rec).IsActive)

		rec = f.do(t, http.MethodGet, "/users/me", nil, bobToken)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = f.do(t, http.MethodPost, "/auth/login", api.LoginRequest{Username: "bob", Password: testPassword}, "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Account is disabled", errorMessage(t, rec))

		rec = f.do(t, http.MethodPatch, "/users/"+bob.ID.String()+"/activate", nil, adminToken)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/users/me", nil, bobToken).Code)
	})
}

func TestChangePassword(t *testing.T) {
	f := newAPIFixture(t)
	alice, token := f.signup(t, "alice")
	path := "/users/" + alice.ID.String() + "/password"

	rec := f.do(t, http.MethodPatch, path, api.ChangePasswordRequest{
		CurrentPassword: "wrong-password",
		NewPassword:     "new-password-1",
	}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPatch, path, api.ChangePasswordRequest{
		CurrentPassword: testPassword,
		NewPassword:     "new-password-1",
	}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/auth/login", api.LoginRequest{Username: "alice", Password: "new-password-1"}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
