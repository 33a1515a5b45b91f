package category

import "github.com/rickmoura/gastoshub/internal/domain/user"

// Category is an expense grouping owned by a user. No business logic lives
// here yet; the accounts service only carries the record shape.
type Category struct {
	ID      string `json:"categoriaId"`
	Name    string `json:"nome"`
	Color   int64  `json:"color"`
	UserID  string `json:"idUsuario"`
	Deleted bool   `json:"-"`
	user.Audit
}
