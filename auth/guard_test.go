package auth

import (
	"testing"

	"walkintovoid/apperror"
	"walkintovoid/database"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	admin := &database.User{UUIDKey: database.UUIDKey{ID: "admin"}, Role: database.RoleAdmin}
	mod := &database.User{UUIDKey: database.UUIDKey{ID: "mod"}, Role: database.RoleModerator}
	reader := &database.User{UUIDKey: database.UUIDKey{ID: "reader"}, Role: database.RoleUser}

	tests := []struct {
		name    string
		user    *database.User
		allowed []database.Role
		owner   string
		ok      bool
	}{
		{"anonymous", nil, Staff, "", false},
		{"reader on staff route", reader, Staff, "", false},
		{"reader on any-user route", reader, AnyUser, "", true},
		{"moderator without owner", mod, Staff, "", true},
		{"moderator own post", mod, Staff, "mod", true},
		{"moderator other post", mod, Staff, "someone-else", false},
		{"admin other post", admin, Staff, "someone-else", true},
		{"moderator on admin route", mod, AdminsOnly, "", false},
		{"admin on admin route", admin, AdminsOnly, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.user, tt.allowed, tt.owner)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperror.Is(err, apperror.KindForbidden))
		})
	}
}
