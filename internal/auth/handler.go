package auth

import (
	"context"
	"errors"
	"strings"

	"smartstore-backend/internal/branchctx"
	"smartstore-backend/internal/config"
	"smartstore-backend/internal/database"
	"smartstore-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type RegisterGlobalAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SwitchBranchRequest struct {
	BranchID string `json:"branch_id"`
}

type UserResponse struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	StoreLocation string `json:"store_location,omitempty"`
}

type SessionResponse struct {
	Token          string                         `json:"token,omitempty"`
	User           UserResponse                   `json:"user"`
	Authorization  branchctx.AuthorizationContext `json:"authorization"`
	ActiveBranchID *string                        `json:"active_branch_id"`
	// set for branch-scoped staff that have no assignable branch
	BranchAssignmentMissing bool `json:"branch_assignment_missing,omitempty"`
}

type SwitchBranchResponse struct {
	ActiveBranchID *string `json:"active_branch_id"`
	Switched       bool    `json:"switched"`
	// clients drop every branch-scoped cache when set
	ReloadRequired bool `json:"reload_required"`
}

// BranchLookup reports whether a branch id exists.
type BranchLookup func(ctx context.Context, branchID string) (bool, error)

// DBBranchLookup checks the branches table.
func DBBranchLookup(ctx context.Context, branchID string) (bool, error) {
	var count int64
	err := database.DB.WithContext(ctx).Model(&models.Branch{}).Where("id = ?", branchID).Count(&count).Error
	return count > 0, err
}

func RegisterGlobalAdminHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterGlobalAdminRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		body.Name = strings.TrimSpace(body.Name)
		if body.Email == "" || body.Password == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name, email and password are required")
		}

		// only the first global admin can self-register
		var count int64
		database.DB.Model(&models.User{}).
			Where("role = ?", branchctx.RoleGlobalAdmin).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusForbidden, "A global admin already exists")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         branchctx.RoleGlobalAdmin,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create user")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		})
	}
}

func LoginHandler(cfg *config.Config, sessions *branchctx.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		var user models.User
		if err := database.DB.Preload("Branches").Where("email = ?", body.Email).First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
		}

		sessionID := uuid.NewString()
		userCtx, authz := user.BranchContext()
		active, err := sessions.ApplyAuthorization(c.UserContext(), sessionID, userCtx, authz)
		if err != nil {
			return err
		}

		token, err := GenerateToken(cfg.JWTSecret, &user, sessionID, cfg.SessionTTL)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create token")
		}

		res := newSessionResponse(&user, userCtx, authz, active)
		res.Token = token
		return c.JSON(res)
	}
}

// MeHandler reloads the user and re-applies its authorization to the session.
func MeHandler(sessions *branchctx.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals(CtxUserIDKey).(uint)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "User information unavailable")
		}

		var user models.User
		if err := database.DB.Preload("Branches").First(&user, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "User not found")
		}

		userCtx, authz := user.BranchContext()
		active, err := sessions.ApplyAuthorization(c.UserContext(), SessionID(c), userCtx, authz)
		if err != nil {
			return err
		}

		return c.JSON(newSessionResponse(&user, userCtx, authz, active))
	}
}

// SwitchBranchHandler changes the active branch of a global admin session.
// Requests from anyone else are answered with the unchanged branch.
func SwitchBranchHandler(sessions *branchctx.Manager, lookup BranchLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SwitchBranchRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		branchID := branchctx.NormalizeBranchID(body.BranchID)
		if branchID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "branch_id is required")
		}

		state, ok := c.Locals(CtxBranchStateKey).(*branchctx.State)
		if ok && branchctx.IsGlobalAdmin(state.User, state.Authz) {
			exists, err := lookup(c.UserContext(), branchID)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not check branch")
			}
			if !exists {
				return fiber.NewError(fiber.StatusNotFound, "Branch not found")
			}
		}

		active, switched, err := sessions.SetActiveBranch(c.UserContext(), SessionID(c), branchID)
		if errors.Is(err, branchctx.ErrSessionNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "Session expired, please log in again")
		}
		if err != nil {
			return err
		}

		return c.JSON(SwitchBranchResponse{
			ActiveBranchID: optional(active),
			Switched:       switched,
			ReloadRequired: switched,
		})
	}
}

func LogoutHandler(sessions *branchctx.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := sessions.End(c.UserContext(), SessionID(c)); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func newSessionResponse(user *models.User, userCtx branchctx.UserContext, authz branchctx.AuthorizationContext, active string) SessionResponse {
	return SessionResponse{
		User: UserResponse{
			ID:            user.ID,
			Name:          user.Name,
			Email:         user.Email,
			Role:          user.Role,
			StoreLocation: userCtx.StoreLocation,
		},
		Authorization:           authz,
		ActiveBranchID:          optional(active),
		BranchAssignmentMissing: active == "" && branchctx.IsBranchScopedStaff(userCtx, authz),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
