package auth

import (
	"errors"
	"strings"

	"smartstore-backend/internal/branchctx"
	"smartstore-backend/internal/config"

	"github.com/gofiber/fiber/v2"
)

const (
	CtxUserIDKey      = "user_id"
	CtxUserRoleKey    = "user_role"
	CtxSessionIDKey   = "session_id"
	CtxBranchIDKey    = "branch_id"
	CtxBranchStateKey = "branch_state"
)

func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing Authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header must be 'Bearer <token>'")
		}

		claims, err := ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxUserRoleKey, claims.Role)
		c.Locals(CtxSessionIDKey, claims.SessionID)

		return c.Next()
	}
}

// BranchScope loads the session's branch context and exposes the resolved
// branch to downstream handlers. Must run after JWTMiddleware.
func BranchScope(sessions *branchctx.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, _ := c.Locals(CtxSessionIDKey).(string)
		if sessionID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing session")
		}

		state, err := sessions.State(c.UserContext(), sessionID)
		if errors.Is(err, branchctx.ErrSessionNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "Session expired, please log in again")
		}
		if err != nil {
			return err
		}

		c.Locals(CtxBranchStateKey, state)
		c.Locals(CtxBranchIDKey, branchctx.ResolveActiveBranchID(branchctx.ResolveInput{
			User:                  state.User,
			Authz:                 state.Authz,
			CurrentActiveBranchID: state.ActiveBranchID,
		}))
		return c.Next()
	}
}

// RequireGlobalAdmin must run after BranchScope.
func RequireGlobalAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		state, ok := c.Locals(CtxBranchStateKey).(*branchctx.State)
		if !ok || !branchctx.IsGlobalAdmin(state.User, state.Authz) {
			return fiber.NewError(fiber.StatusForbidden, "You are not allowed to perform this action")
		}
		return c.Next()
	}
}

func RequireRole(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(CtxUserRoleKey).(string)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Role information unavailable")
		}

		for _, r := range allowedRoles {
			if strings.EqualFold(r, role) {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "You are not allowed to perform this action")
	}
}

// ActiveBranch returns the branch resolved by BranchScope. Branch-scoped
// staff without any assignable branch get a configuration error, other
// callers are asked to pick a branch first.
func ActiveBranch(c *fiber.Ctx) (string, error) {
	if branchID, _ := c.Locals(CtxBranchIDKey).(string); branchID != "" {
		return branchID, nil
	}

	state, ok := c.Locals(CtxBranchStateKey).(*branchctx.State)
	if ok && branchctx.IsBranchScopedStaff(state.User, state.Authz) {
		return "", fiber.NewError(fiber.StatusConflict, "No branch is assigned to this account, contact an administrator")
	}
	return "", fiber.NewError(fiber.StatusBadRequest, "Select an active branch first")
}

// SessionID returns the session id set by JWTMiddleware.
func SessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(CtxSessionIDKey).(string)
	return id
}
