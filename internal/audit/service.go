package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"smartstore-backend/internal/database"
	"smartstore-backend/internal/models"

	"go.uber.org/zap"
)

type LogOptions struct {
	BranchID    string
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    string
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// NewLog builds the audit row for opts without persisting it.
func NewLog(opts LogOptions) models.AuditLog {
	// jsonb columns need the JSON literal null rather than an empty string
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	entry := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}
	if opts.BranchID != "" {
		branchID := opts.BranchID
		entry.BranchID = &branchID
	}
	return entry
}

func WriteLog(opts LogOptions) error {
	entry := NewLog(opts)
	if err := database.DB.Create(&entry).Error; err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// BranchSwitchListener records every change of a session's active branch.
// It matches branchctx.SwitchListener.
func BranchSwitchListener(log *zap.Logger) func(ctx context.Context, sessionID, from, to string) {
	return func(_ context.Context, sessionID, from, to string) {
		err := WriteLog(LogOptions{
			BranchID:    to,
			EntityType:  "session",
			EntityID:    sessionID,
			Action:      models.AuditActionSwitch,
			Description: fmt.Sprintf("active branch %q -> %q", from, to),
			Before:      map[string]string{"active_branch_id": from},
			After:       map[string]string{"active_branch_id": to},
		})
		if err != nil {
			log.Warn("branch switch audit failed", zap.String("session", sessionID), zap.Error(err))
		}
	}
}
