// Package access implements dashboard roles, tokens and request guards.
package access

// Roles of dashboard accounts.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// Permission is a single capability checked by admin routes.
type Permission string

const (
	ContentWrite Permission = "content:write"
	MediaWrite   Permission = "media:write"
	MediaDelete  Permission = "media:delete"
	UsersManage  Permission = "users:manage"
)

var rolePermissions = map[string][]Permission{
	RoleAdmin:  {ContentWrite, MediaWrite, MediaDelete, UsersManage},
	RoleEditor: {ContentWrite, MediaWrite},
}

// ValidRole reports whether role is known.
func ValidRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}

// Can reports whether role grants perm. Unknown roles grant nothing.
func Can(role string, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// Permissions lists what role grants, for the login response.
func Permissions(role string) []Permission {
	return append([]Permission(nil), rolePermissions[role]...)
}
