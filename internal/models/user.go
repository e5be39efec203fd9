package models

import (
	"time"

	"smartstore-backend/internal/branchctx"
)

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:100;not null"`
	Email        string `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:30;not null;index"`

	// legacy single-branch assignment, newer records use Branches
	StoreLocation *string `gorm:"size:64"`

	// server-chosen active branch, must be one of Branches
	ActiveBranchID           *string `gorm:"size:64"`
	RequiresBranchAssignment bool    `gorm:"not null;default:false"`

	Branches  []Branch `gorm:"many2many:user_branches"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BranchContext builds the resolver inputs from the stored user.
func (u *User) BranchContext() (branchctx.UserContext, branchctx.AuthorizationContext) {
	user := branchctx.UserContext{Role: u.Role}
	if u.StoreLocation != nil {
		user.StoreLocation = *u.StoreLocation
	}

	allowed := make([]string, 0, len(u.Branches))
	for _, b := range u.Branches {
		allowed = append(allowed, b.ID)
	}

	authz := branchctx.AuthorizationContext{
		AllowedBranchIDs:         branchctx.NormalizeBranchIDs(allowed),
		RequiresBranchAssignment: u.RequiresBranchAssignment,
	}
	if u.ActiveBranchID != nil {
		authz.ActiveBranchID = *u.ActiveBranchID
	}
	authz.IsGlobalAdmin = branchctx.IsGlobalAdmin(user, authz)
	return user, authz
}
