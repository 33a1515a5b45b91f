// Package render is the single place HTTP error bodies are produced, for
// handlers and middlewares alike. Every failure comes out in the same shape:
//
//	{status, error, message, path}
package render

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rickmoura/gastoshub/internal/apperr"
	"github.com/rickmoura/gastoshub/internal/i18n"
)

type ErrorView struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message any    `json:"message"`
	Path    string `json:"path"`
}

type Renderer struct {
	msgs *i18n.Bundle
}

func New(msgs *i18n.Bundle) *Renderer {
	return &Renderer{msgs: msgs}
}

// Error maps any error to the uniform body. Domain errors carry their own
// status and message key; everything else renders as a 500.
func (r *Renderer) Error(ctx *gin.Context, err error) {
	ae := apperr.From(err)

	ctx.JSON(ae.Status, ErrorView{
		Status:  ae.Status,
		Error:   http.StatusText(ae.Status),
		Message: r.msgs.Message(ae.Key),
		Path:    ctx.Request.URL.Path,
	})
}

// AbortError renders like Error and stops the handler chain. The auth gate
// uses it so a rejected request never reaches a handler.
func (r *Renderer) AbortError(ctx *gin.Context, err error) {
	ae := apperr.From(err)

	ctx.AbortWithStatusJSON(ae.Status, ErrorView{
		Status:  ae.Status,
		Error:   http.StatusText(ae.Status),
		Message: r.msgs.Message(ae.Key),
		Path:    ctx.Request.URL.Path,
	})
}

// Fields renders a 400 whose message is a field -> message map, one entry
// per invalid input field.
func (r *Renderer) Fields(ctx *gin.Context, fields map[string]string) {
	ctx.JSON(http.StatusBadRequest, ErrorView{
		Status:  http.StatusBadRequest,
		Error:   http.StatusText(http.StatusBadRequest),
		Message: fields,
		Path:    ctx.Request.URL.Path,
	})
}

// Message resolves a catalog key, for handlers that need the localized text
// outside an error body.
func (r *Renderer) Message(key string) string {
	return r.msgs.Message(key)
}
