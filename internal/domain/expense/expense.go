package expense

import "github.com/rickmoura/gastoshub/internal/domain/user"

// Expense is a single spend entry. Stub record only: the accounts service
// does not implement expense flows.
type Expense struct {
	ID          string  `json:"idGasto"`
	Description string  `json:"descricao"`
	Amount      float64 `json:"valor"`
	CategoryID  string  `json:"categoriaId"`
	UserID      string  `json:"idUsuario"`
	Deleted     bool    `json:"-"`
	user.Audit
}
