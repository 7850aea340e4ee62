// Package access derives capabilities from a resolved identity.
package access

import "github.com/jhoicas/sweetshop/internal/domain/entity"

// IsAdmin reports whether the identity may mutate inventory beyond purchasing.
// An absent identity is never admin. Pure function: no caching, no side
// effects.
func IsAdmin(u *entity.User) bool {
	return u != nil && u.IsAdmin
}
