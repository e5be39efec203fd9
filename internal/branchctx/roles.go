package branchctx

import "strings"

const (
	RoleGlobalAdmin      = "GLOBAL_ADMIN"
	RoleAdmin            = "ADMIN"
	RoleBranchAdmin      = "BRANCH_ADMIN"
	RoleWarehouseManager = "WAREHOUSE_MANAGER"
	RoleWarehouseStaff   = "WAREHOUSE_STAFF"
	RoleProductManager   = "PRODUCT_MANAGER"
	RoleOrderManager     = "ORDER_MANAGER"
	RolePOSStaff         = "POS_STAFF"
	RoleCashier          = "CASHIER"
	RoleCustomer         = "CUSTOMER"
)

// branchScopedRoles can only operate inside their assigned branches.
var branchScopedRoles = map[string]bool{
	RoleAdmin:            true,
	RoleBranchAdmin:      true,
	RoleWarehouseManager: true,
	RoleWarehouseStaff:   true,
	RoleProductManager:   true,
	RoleOrderManager:     true,
	RolePOSStaff:         true,
	RoleCashier:          true,
}

// UserContext is the part of the user record relevant to branch scoping.
type UserContext struct {
	Role          string `json:"role"`
	StoreLocation string `json:"storeLocation,omitempty"` // legacy single-branch assignment
}

// AuthorizationContext is the server-issued authorization payload.
type AuthorizationContext struct {
	IsGlobalAdmin            bool     `json:"isGlobalAdmin"`
	AllowedBranchIDs         []string `json:"allowedBranchIds"`
	ActiveBranchID           string   `json:"activeBranchId,omitempty"`
	RequiresBranchAssignment bool     `json:"requiresBranchAssignment,omitempty"`
}

// IsValidRole reports whether role is one of the known role names.
func IsValidRole(role string) bool {
	role = normalizeRole(role)
	return role == RoleGlobalAdmin || role == RoleCustomer || branchScopedRoles[role]
}

// IsGlobalAdmin reports whether the caller is exempt from branch restriction.
func IsGlobalAdmin(user UserContext, authz AuthorizationContext) bool {
	return authz.IsGlobalAdmin || normalizeRole(user.Role) == RoleGlobalAdmin
}

// IsBranchScopedStaff reports whether the caller is locked to server-assigned branches.
func IsBranchScopedStaff(user UserContext, authz AuthorizationContext) bool {
	if IsGlobalAdmin(user, authz) {
		return false
	}
	if authz.RequiresBranchAssignment {
		return true
	}
	return branchScopedRoles[normalizeRole(user.Role)]
}

func normalizeRole(role string) string {
	return strings.ToUpper(strings.TrimSpace(role))
}
