package models

import (
	"testing"

	"smartstore-backend/internal/branchctx"

	"github.com/stretchr/testify/assert"
)

func TestUser_BranchContext(t *testing.T) {
	legacy := "HN-01"
	active := "b-2"

	u := User{
		Role:           branchctx.RoleWarehouseStaff,
		StoreLocation:  &legacy,
		ActiveBranchID: &active,
		Branches:       []Branch{{ID: "b-1"}, {ID: "b-2"}, {ID: "b-1"}},
	}

	user, authz := u.BranchContext()
	assert.Equal(t, "HN-01", user.StoreLocation)
	assert.Equal(t, []string{"b-1", "b-2"}, authz.AllowedBranchIDs)
	assert.Equal(t, "b-2", authz.ActiveBranchID)
	assert.False(t, authz.IsGlobalAdmin)
}

func TestUser_BranchContext_GlobalAdmin(t *testing.T) {
	u := User{Role: branchctx.RoleGlobalAdmin}

	user, authz := u.BranchContext()
	assert.Equal(t, branchctx.RoleGlobalAdmin, user.Role)
	assert.True(t, authz.IsGlobalAdmin)
	assert.Empty(t, authz.AllowedBranchIDs)
}
