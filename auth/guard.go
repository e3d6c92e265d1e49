package auth

import (
	"walkintovoid/apperror"
	"walkintovoid/database"
)

var (
	Staff      = []database.Role{database.RoleAdmin, database.RoleModerator}
	AdminsOnly = []database.Role{database.RoleAdmin}
	AnyUser    = []database.Role{database.RoleAdmin, database.RoleModerator, database.RoleUser}
)

// Authorize allows u when its role is in allowed. If ownerID is set, a
// moderator must also be the owner; admins may act on anything.
func Authorize(u *database.User, allowed []database.Role, ownerID string) error {
	if u == nil {
		return apperror.ErrForbidden
	}
	permitted := false
	for _, role := range allowed {
		if u.Role == role {
			permitted = true
			break
		}
	}
	if !permitted {
		return apperror.ErrForbidden
	}
	if ownerID != "" && u.Role == database.RoleModerator && u.ID != ownerID {
		return apperror.ErrForbidden
	}
	return nil
}
