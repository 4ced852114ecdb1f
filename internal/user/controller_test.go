package user

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sobgamecoin/internal/auth"
	"sobgamecoin/internal/config"
	"sobgamecoin/internal/storage"
)

func newTestRouter() http.Handler {
	logger := zap.NewNop()
	m := NewModule(storage.NewMemoryStore(), config.AuthConfig{BootstrapSuperAdminEmail: bootstrapEmail, BcryptCost: 4}, logger)

	r := chi.NewRouter()
	r.Use(auth.Middleware(m.Service, logger))
	r.Post("/api/users/register", m.Controller.HandleRegister)
	r.Post("/api/users/login", m.Controller.HandleLogin)
	r.Patch("/api/me", m.Controller.HandleUpdateProfile)
	r.Post("/api/me/password", m.Controller.HandleChangePassword)
	r.Get("/api/admin/users", m.Controller.HandleList)
	r.Patch("/api/admin/users/{userId}/role", m.Controller.HandleChangeRole)
	r.Delete("/api/admin/users/{userId}", m.Controller.HandleDelete)
	return r
}

func call(h http.Handler, method, path, body, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != "" {
		req.Header.Set(auth.HeaderUserID, userID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func registerVia(t *testing.T, h http.Handler, name, email string) UserDTO {
	t.Helper()
	rec := call(h, http.MethodPost, "/api/users/register", `{"name":"`+name+`","email":"`+email+`","password":"secret1"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.User
}

func TestController_UserAdministration(t *testing.T) {
	h := newTestRouter()
	root := registerVia(t, h, "Owner", bootstrapEmail)
	rahim := registerVia(t, h, "Rahim", "rahim@example.com")
	assert.Equal(t, "super_admin", root.Role)
	assert.Equal(t, "user", rahim.Role)

	rec := call(h, http.MethodPost, "/api/users/login", `{"email":"rahim@example.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "passwordHash")

	rec = call(h, http.MethodGet, "/api/admin/users", "", rahim.ID)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(h, http.MethodGet, "/api/admin/users?role=user", "", root.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	var list UserListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, 1, list.Stats.ActiveUsers)

	rec = call(h, http.MethodPatch, "/api/admin/users/"+rahim.ID+"/role", `{"role":"admin"}`, root.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"admin"`)

	rec = call(h, http.MethodDelete, "/api/admin/users/"+root.ID, "", root.ID)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(h, http.MethodDelete, "/api/admin/users/"+rahim.ID, "", root.ID)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// A deleted user's id no longer authenticates.
	rec = call(h, http.MethodGet, "/api/admin/users", "", rahim.ID)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestController_LoginFailure(t *testing.T) {
	h := newTestRouter()
	registerVia(t, h, "Rahim", "rahim@example.com")

	rec := call(h, http.MethodPost, "/api/users/login", `{"email":"rahim@example.com","password":"nope"}`, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid email or password")
}

func TestController_DuplicateRegistration(t *testing.T) {
	h := newTestRouter()
	registerVia(t, h, "Rahim", "rahim@example.com")

	rec := call(h, http.MethodPost, "/api/users/register", `{"name":"R","email":"rahim@example.com","password":"secret1"}`, "")

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestController_ProfileAndPassword(t *testing.T) {
	h := newTestRouter()
	rahim := registerVia(t, h, "Rahim", "rahim@example.com")
	registerVia(t, h, "Karim", "karim@example.com")

	rec := call(h, http.MethodPatch, "/api/me", `{"name":"Rahim Uddin","email":"rahim@example.com"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(h, http.MethodPatch, "/api/me", `{"name":"Rahim Uddin","email":"karim@example.com"}`, rahim.ID)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = call(h, http.MethodPatch, "/api/me", `{"name":"Rahim Uddin","email":"rahim.uddin@example.com"}`, rahim.ID)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Rahim Uddin", resp.User.Name)
	assert.Equal(t, "rahim.uddin@example.com", resp.User.Email)

	rec = call(h, http.MethodPost, "/api/me/password", `{"currentPassword":"wrong1","newPassword":"secret2"}`, rahim.ID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(h, http.MethodPost, "/api/me/password", `{"currentPassword":"secret1","newPassword":"`+strings.Repeat("x", 73)+`"}`, rahim.ID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(h, http.MethodPost, "/api/me/password", `{"currentPassword":"secret1","newPassword":"secret2"}`, rahim.ID)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = call(h, http.MethodPost, "/api/users/login", `{"email":"rahim.uddin@example.com","password":"secret2"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = call(h, http.MethodPost, "/api/users/login", `{"email":"rahim@example.com","password":"secret2"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestController_RegisterRejectsOverlongPassword(t *testing.T) {
	h := newTestRouter()

	rec := call(h, http.MethodPost, "/api/users/register",
		`{"name":"Rahim","email":"rahim@example.com","password":"`+strings.Repeat("p", 73)+`"}`, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "password must be at most 72 bytes")
}
