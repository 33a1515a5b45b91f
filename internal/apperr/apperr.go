package apperr

import (
	"errors"
	"net/http"
)

// Error is the single domain error type: a localizable message key plus the
// HTTP status it maps to. Handlers render it through one central helper.
type Error struct {
	Key    string
	Status int
}

func (e *Error) Error() string {
	return e.Key
}

func New(key string, status int) *Error {
	return &Error{Key: key, Status: status}
}

// Well-known failures, keyed the same way as the message catalog.
var (
	ErrInvalidLogin    = New("error.login.invalido", http.StatusBadRequest)
	ErrEmailRegistered = New("error.email.cadastrado", http.StatusBadRequest)
	ErrUserNotFound    = New("usuario.nao.encontrado", http.StatusNotFound)
	ErrEmailNotFound   = New("email.nao.encontrado", http.StatusNotFound)
	ErrInvalidToken    = New("token.invalido", http.StatusForbidden)
	ErrMalformedToken  = New("token.malformado", http.StatusForbidden)
)

// From extracts the *Error out of err, or wraps err as an internal failure
// so the boundary always has a status and key to render.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return New("error.interno", http.StatusInternalServerError)
}
