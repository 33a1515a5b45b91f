package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rickmoura/gastoshub/internal/http/render"
)

// BindJSON binds and validates the request body. On failure it renders the
// uniform 400 with one localized message per invalid field and reports false.
func BindJSON(ctx *gin.Context, r *render.Renderer, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)

	if err == nil {
		return true
	}

	var validatorErrs validator.ValidationErrors

	if errors.As(err, &validatorErrs) {
		fields := make(map[string]string, len(validatorErrs))

		for _, fe := range validatorErrs {
			field := strings.ToLower(fe.Field())
			fields[field] = r.Message(messageKeyFor(field, fe.Tag()))
		}

		r.Fields(ctx, fields)
		return false
	}

	// bad json syntax or a type mismatch
	r.Fields(ctx, map[string]string{"body": "invalid request body"})
	return false
}

// messageKeyFor maps a failed field/rule pair onto the message catalog.
func messageKeyFor(field, rule string) string {
	switch {
	case field == "senha" && rule == "min":
		return "error.senha.curta"
	case field == "email" && rule == "email":
		return "error.email.invalido"
	case rule == "required":
		return field + ".obrigatorio"
	}
	return "error." + field + ".invalido"
}
