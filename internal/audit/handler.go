package audit

import (
	"strconv"

	"smartstore-backend/internal/auth"
	"smartstore-backend/internal/branchctx"
	"smartstore-backend/internal/database"
	"smartstore-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type AuditLogResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   string             `json:"created_at"`
	BranchID    *string            `json:"branch_id"`
	UserID      uint               `json:"user_id"`
	UserName    string             `json:"user_name"`
	EntityType  string             `json:"entity_type"`
	EntityID    string             `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
}

// GET /api/audit-logs?entity_type=product&entity_id=1&branch_id=...
// Non-admins only see branches they are allowed to access.
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		state, ok := c.Locals(auth.CtxBranchStateKey).(*branchctx.State)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Branch context unavailable")
		}

		dbq := database.DB.Model(&models.AuditLog{})

		if branchctx.IsGlobalAdmin(state.User, state.Authz) {
			if bid := c.Query("branch_id"); bid != "" {
				dbq = dbq.Where("branch_id = ?", bid)
			}
		} else if bid := c.Query("branch_id"); bid != "" {
			if !branchctx.CanAccessBranch(state.User, state.Authz, bid) {
				return fiber.NewError(fiber.StatusForbidden, "You cannot view logs of this branch")
			}
			dbq = dbq.Where("branch_id = ?", bid)
		} else {
			branchID, err := auth.ActiveBranch(c)
			if err != nil {
				return err
			}
			dbq = dbq.Where("branch_id = ?", branchID)
		}

		if uidStr := c.Query("user_id"); uidStr != "" {
			if uid, err := strconv.ParseUint(uidStr, 10, 32); err == nil && uid > 0 {
				dbq = dbq.Where("user_id = ?", uid)
			}
		}
		if entityType := c.Query("entity_type"); entityType != "" {
			dbq = dbq.Where("entity_type = ?", entityType)
		}
		if entityID := c.Query("entity_id"); entityID != "" {
			dbq = dbq.Where("entity_id = ?", entityID)
		}

		var logs []models.AuditLog
		if err := dbq.Order("created_at DESC").Limit(500).Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list audit logs")
		}

		res := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			res = append(res, AuditLogResponse{
				ID:          l.ID,
				CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
				BranchID:    l.BranchID,
				UserID:      l.UserID,
				UserName:    l.UserName,
				EntityType:  l.EntityType,
				EntityID:    l.EntityID,
				Action:      l.Action,
				Description: l.Description,
			})
		}
		return c.JSON(res)
	}
}
