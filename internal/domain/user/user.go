package user

import "time"

// Audit carries the write-tracking fields shared by every persisted record.
// The store fills these on create/update with the acting identity.
type Audit struct {
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
	UpdatedBy string    `json:"updatedBy,omitempty"`
}

type User struct {
	ID           string `json:"idUsuario"`
	Name         string `json:"nome"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // never expose hash in JSON
	Deleted      bool   `json:"-"`
	Audit
}

// View is the outward shape of a user: no hash, no audit internals.
type View struct {
	ID    string `json:"idUsuario"`
	Name  string `json:"nome"`
	Email string `json:"email"`
}

func (u User) ToView() View {
	return View{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}
