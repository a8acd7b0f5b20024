package auth

import "stadtwache/models"

// Authorize reports whether the user holds one of the allowed roles.
// Checks are exact-match: there is no role hierarchy, an allow-list names
// every acceptable role explicitly. Every role decision in the system goes
// through this predicate.
func Authorize(user *models.User, allowed ...models.UserRole) bool {
	if user == nil {
		return false
	}
	for _, role := range allowed {
		if user.Role == role {
			return true
		}
	}
	return false
}

// IsAdmin is shorthand for the administrative check used by admin-only
// endpoints.
func IsAdmin(user *models.User) bool {
	return Authorize(user, models.RoleAdmin)
}
