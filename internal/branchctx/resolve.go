package branchctx

import "strings"

// ResolveInput bundles everything the resolver looks at.
type ResolveInput struct {
	User                  UserContext
	Authz                 AuthorizationContext
	CurrentActiveBranchID string // client/session side selection, may be stale
}

// NormalizeBranchID trims surrounding whitespace from a branch identifier.
func NormalizeBranchID(id string) string {
	return strings.TrimSpace(id)
}

// NormalizeBranchIDs trims ids, drops empty ones and duplicates, keeping order.
func NormalizeBranchIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = NormalizeBranchID(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// DeriveFixedBranchID picks the branch dictated by the authorization data:
// the active branch when allowed, else the first allowed branch, else the
// legacy store location. Returns "" when nothing applies.
func DeriveFixedBranchID(user UserContext, authz AuthorizationContext) string {
	allowed := NormalizeBranchIDs(authz.AllowedBranchIDs)

	if active := NormalizeBranchID(authz.ActiveBranchID); active != "" {
		if len(allowed) == 0 || contains(allowed, active) {
			return active
		}
	}
	if len(allowed) > 0 {
		return allowed[0]
	}
	return NormalizeBranchID(user.StoreLocation)
}

// ResolveActiveBranchID returns the branch that scopes subsequent requests,
// or "" when no branch scope applies.
//
// Branch-scoped staff always get the server-derived branch, whatever the
// current selection says. Everyone else keeps the current selection and falls
// back to the derived branch.
func ResolveActiveBranchID(in ResolveInput) string {
	if IsBranchScopedStaff(in.User, in.Authz) {
		return DeriveFixedBranchID(in.User, in.Authz)
	}
	if current := NormalizeBranchID(in.CurrentActiveBranchID); current != "" {
		return current
	}
	return DeriveFixedBranchID(in.User, in.Authz)
}

// CanAccessBranch reports whether the caller may read or write data of branchID.
func CanAccessBranch(user UserContext, authz AuthorizationContext, branchID string) bool {
	branchID = NormalizeBranchID(branchID)
	if branchID == "" {
		return false
	}
	if IsGlobalAdmin(user, authz) {
		return true
	}
	allowed := NormalizeBranchIDs(authz.AllowedBranchIDs)
	if len(allowed) > 0 {
		return contains(allowed, branchID)
	}
	return branchID == DeriveFixedBranchID(user, authz)
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
