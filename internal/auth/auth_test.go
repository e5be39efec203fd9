package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"smartstore-backend/internal/branchctx"
	"smartstore-backend/internal/config"
	"smartstore-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testConfig = &config.Config{
	JWTSecret:  strings.Repeat("s", 32),
	SessionTTL: time.Hour,
}

type testEnv struct {
	app      *fiber.App
	sessions *branchctx.Manager
	switches []string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{sessions: branchctx.NewManager(branchctx.NewMemoryStore(), zap.NewNop())}
	env.sessions.OnSwitch(func(_ context.Context, sessionID, _, to string) {
		env.switches = append(env.switches, sessionID+"->"+to)
	})

	lookup := func(_ context.Context, id string) (bool, error) {
		return id != "missing", nil
	}

	env.app = fiber.New()
	protected := env.app.Group("/api", JWTMiddleware(testConfig), BranchScope(env.sessions))
	protected.Post("/auth/active-branch", SwitchBranchHandler(env.sessions, lookup))
	protected.Post("/auth/logout", LogoutHandler(env.sessions))
	protected.Get("/branch", func(c *fiber.Ctx) error {
		branchID, err := ActiveBranch(c)
		if err != nil {
			return err
		}
		return c.SendString(branchID)
	})
	protected.Get("/admin/ping", RequireGlobalAdmin(), func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})
	protected.Get("/pos/ping", RequireRole(branchctx.RolePOSStaff, branchctx.RoleCashier), func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})
	return env
}

// login stores the authorization for a new session and returns its token.
func (e *testEnv) login(t *testing.T, sessionID string, user branchctx.UserContext, authz branchctx.AuthorizationContext) string {
	t.Helper()
	_, err := e.sessions.ApplyAuthorization(context.Background(), sessionID, user, authz)
	require.NoError(t, err)

	token, err := GenerateToken(testConfig.JWTSecret, &models.User{ID: 7, Email: "u@example.com", Role: user.Role}, sessionID, time.Hour)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

func TestParseToken(t *testing.T) {
	token, err := GenerateToken(testConfig.JWTSecret, &models.User{ID: 3, Role: branchctx.RoleCashier}, "sid-1", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(testConfig.JWTSecret, token)
	require.NoError(t, err)
	assert.Equal(t, uint(3), claims.UserID)
	assert.Equal(t, "sid-1", claims.SessionID)

	_, err = ParseToken(strings.Repeat("x", 32), token)
	assert.Error(t, err)

	expired, err := GenerateToken(testConfig.JWTSecret, &models.User{ID: 3}, "sid-1", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(testConfig.JWTSecret, expired)
	assert.Error(t, err)

	noSession, err := GenerateToken(testConfig.JWTSecret, &models.User{ID: 3}, "", time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(testConfig.JWTSecret, noSession)
	assert.Error(t, err)
}

func TestJWTMiddleware_Rejects(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(t, http.MethodGet, "/api/branch", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.do(t, http.MethodGet, "/api/branch", "not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	// valid token but the session was never stored
	token, err := GenerateToken(testConfig.JWTSecret, &models.User{ID: 1}, "ghost", time.Hour)
	require.NoError(t, err)
	status, body := env.do(t, http.MethodGet, "/api/branch", token, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, "Session expired")
}

func TestSwitchBranch_GlobalAdmin(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "admin-1",
		branchctx.UserContext{Role: branchctx.RoleGlobalAdmin},
		branchctx.AuthorizationContext{IsGlobalAdmin: true, AllowedBranchIDs: []string{"B1"}})

	status, body := env.do(t, http.MethodGet, "/api/branch", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "B1", body)

	status, body = env.do(t, http.MethodPost, "/api/auth/active-branch", token, `{"branch_id":"B5"}`)
	require.Equal(t, http.StatusOK, status)

	var res SwitchBranchResponse
	require.NoError(t, json.Unmarshal([]byte(body), &res))
	require.NotNil(t, res.ActiveBranchID)
	assert.Equal(t, "B5", *res.ActiveBranchID)
	assert.True(t, res.Switched)
	assert.True(t, res.ReloadRequired)
	assert.Equal(t, []string{"admin-1->B5"}, env.switches)

	status, body = env.do(t, http.MethodGet, "/api/branch", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "B5", body)

	status, _ = env.do(t, http.MethodPost, "/api/auth/active-branch", token, `{"branch_id":"missing"}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.do(t, http.MethodPost, "/api/auth/active-branch", token, `{"branch_id":"  "}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSwitchBranch_StaffIgnored(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "staff-1",
		branchctx.UserContext{Role: branchctx.RoleWarehouseStaff},
		branchctx.AuthorizationContext{AllowedBranchIDs: []string{"B1", "B2"}, ActiveBranchID: "B2"})

	status, body := env.do(t, http.MethodPost, "/api/auth/active-branch", token, `{"branch_id":"B1"}`)
	require.Equal(t, http.StatusOK, status)

	var res SwitchBranchResponse
	require.NoError(t, json.Unmarshal([]byte(body), &res))
	require.NotNil(t, res.ActiveBranchID)
	assert.Equal(t, "B2", *res.ActiveBranchID)
	assert.False(t, res.Switched)
	assert.False(t, res.ReloadRequired)
	assert.Empty(t, env.switches)

	status, body = env.do(t, http.MethodGet, "/api/branch", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "B2", body)
}

func TestActiveBranch_StaffWithoutAssignment(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "cashier-1",
		branchctx.UserContext{Role: branchctx.RoleCashier},
		branchctx.AuthorizationContext{})

	status, body := env.do(t, http.MethodGet, "/api/branch", token, "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body, "No branch is assigned")
}

func TestActiveBranch_AdminMustSelect(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "admin-2",
		branchctx.UserContext{Role: branchctx.RoleGlobalAdmin},
		branchctx.AuthorizationContext{IsGlobalAdmin: true})

	status, _ := env.do(t, http.MethodGet, "/api/branch", token, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRequireGlobalAdmin(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "admin-3",
		branchctx.UserContext{Role: branchctx.RoleGlobalAdmin},
		branchctx.AuthorizationContext{IsGlobalAdmin: true})
	staff := env.login(t, "staff-3",
		branchctx.UserContext{Role: branchctx.RoleBranchAdmin},
		branchctx.AuthorizationContext{AllowedBranchIDs: []string{"B1"}})

	status, _ := env.do(t, http.MethodGet, "/api/admin/ping", admin, "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = env.do(t, http.MethodGet, "/api/admin/ping", staff, "")
	assert.Equal(t, http.StatusForbidden, status)
}

func TestRequireRole(t *testing.T) {
	env := newTestEnv(t)
	cashier := env.login(t, "cashier-2",
		branchctx.UserContext{Role: branchctx.RoleCashier},
		branchctx.AuthorizationContext{AllowedBranchIDs: []string{"B1"}})
	manager := env.login(t, "manager-1",
		branchctx.UserContext{Role: branchctx.RoleProductManager},
		branchctx.AuthorizationContext{AllowedBranchIDs: []string{"B1"}})

	status, _ := env.do(t, http.MethodGet, "/api/pos/ping", cashier, "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = env.do(t, http.MethodGet, "/api/pos/ping", manager, "")
	assert.Equal(t, http.StatusForbidden, status)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "staff-4",
		branchctx.UserContext{Role: branchctx.RolePOSStaff},
		branchctx.AuthorizationContext{AllowedBranchIDs: []string{"B9"}})

	status, _ := env.do(t, http.MethodPost, "/api/auth/logout", token, "")
	assert.Equal(t, http.StatusNoContent, status)
	assert.Equal(t, []string{"staff-4->"}, env.switches)

	status, _ = env.do(t, http.MethodGet, "/api/branch", token, "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestNewSessionResponse_FlagsMissingAssignment(t *testing.T) {
	user := &models.User{ID: 1, Role: branchctx.RoleWarehouseStaff}
	userCtx, authz := user.BranchContext()

	res := newSessionResponse(user, userCtx, authz, "")
	assert.True(t, res.BranchAssignmentMissing)
	assert.Nil(t, res.ActiveBranchID)

	res = newSessionResponse(user, userCtx, authz, "B1")
	assert.False(t, res.BranchAssignmentMissing)
	require.NotNil(t, res.ActiveBranchID)
	assert.Equal(t, "B1", *res.ActiveBranchID)
}
