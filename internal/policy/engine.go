package policy

import "errors"

// ErrInsufficientPrivilege is the only failure Authorize produces. A subject
// with an unresolvable role is denied, not treated as an internal error, so
// callers can always distinguish "forbidden" from "broken".
var ErrInsufficientPrivilege = errors.New("insufficient privilege")

// Requirement declares what an operation demands. Roles is an allow-list;
// Permissions must all be held. When both are set, both must pass. A zero
// Requirement allows any authenticated subject.
type Requirement struct {
	Roles       []string
	Permissions []string
}

// Authorize decides whether a subject with the given role and permission set
// may perform an operation. Pure and side-effect-free: role/permission
// resolution happens upstream in the request pipeline.
//
// The admin override lives here and only here. Call sites must never
// re-implement their own "role is admin" comparison.
func Authorize(role string, perms []string, req Requirement) error {
	if IsAdmin(role) {
		return nil
	}

	if len(req.Roles) > 0 {
		allowed := false
		for _, r := range req.Roles {
			if r == role {
				allowed = true
				break
			}
		}
		if !allowed {
			return ErrInsufficientPrivilege
		}
	}

	if len(req.Permissions) > 0 {
		held := make(map[string]struct{}, len(perms))
		for _, p := range perms {
			held[p] = struct{}{}
		}
		for _, p := range req.Permissions {
			if _, ok := held[p]; !ok {
				return ErrInsufficientPrivilege
			}
		}
	}

	return nil
}
