package auth

import "github.com/malik-javed/ez-secure-files/internal/model"

// RequireVerified gates operations that need a verified account: listing
// files and requesting a download URL, regardless of role.
func RequireVerified(acc *model.Account) error {
	if acc == nil || !acc.Verified {
		return &model.ForbiddenError{Reason: model.ReasonUnverified}
	}
	return nil
}

// RequireRole gates role-restricted operations; upload requires RoleOps.
// Callers compose it with RequireVerified, the checks are independent.
func RequireRole(acc *model.Account, role model.Role) error {
	if acc == nil || acc.Role != role {
		return &model.ForbiddenError{Reason: model.ReasonWrongRole}
	}
	return nil
}
