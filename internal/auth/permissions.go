package auth

import "strings"

// Authorize reports whether the claims grant access to a request path.
// SUPERADMIN is granted everything. A non-wildcard permission must match the
// path exactly; a wildcard permission matches any path under its prefix, with
// a trailing "/*" or "*" on the stored path stripped before comparison.
func Authorize(claims *Claims, path string) bool {
	if claims == nil {
		return false
	}
	if claims.Role == RoleSuperAdmin {
		return true
	}

	for _, perm := range claims.Permissions {
		if perm.Wildcard {
			prefix := strings.TrimSuffix(perm.Path, "*")
			prefix = strings.TrimSuffix(prefix, "/")
			if path == prefix || strings.HasPrefix(path, prefix+"/") {
				return true
			}
			continue
		}
		if perm.Path == path {
			return true
		}
	}
	return false
}
