package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rickmoura/gastoshub/internal/domain/user"
	"github.com/rickmoura/gastoshub/internal/http/render"
	"github.com/rickmoura/gastoshub/internal/observability"
	"github.com/rickmoura/gastoshub/internal/service"
)

// AccountService is the slice of the account service the handlers consume.
type AccountService interface {
	Login(ctx context.Context, login, senha string) (service.LoginResult, error)
	Save(ctx context.Context, in service.SaveInput) (user.User, error)
	Update(ctx context.Context, in service.SaveInput) (user.User, error)
	FindByID(ctx context.Context, id string) (user.User, error)
	DeleteByID(ctx context.Context, id string) error
}

type UsersHandler struct {
	accounts AccountService
	render   *render.Renderer
	prom     *observability.Prom
}

func NewUsersHandler(accounts AccountService, r *render.Renderer, prom *observability.Prom) *UsersHandler {
	return &UsersHandler{accounts: accounts, render: r, prom: prom}
}

type LoginRequest struct {
	Login string `json:"login" binding:"required"`
	Senha string `json:"senha" binding:"required"`
}

type SaveUserRequest struct {
	ID    string `json:"idUsuario"`
	Nome  string `json:"nome" binding:"required"`
	Senha string `json:"senha" binding:"required,min=8"`
	Email string `json:"email" binding:"required,email"`
}

func (h *UsersHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, h.render, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	result, err := h.accounts.Login(cctx, req.Login, req.Senha)

	if err != nil {
		h.countLogin("invalid")
		h.render.Error(ctx, err)
		return
	}

	h.countLogin("ok")

	ctx.JSON(http.StatusOK, result)
}

func (h *UsersHandler) Save(ctx *gin.Context) {
	var req SaveUserRequest

	if !BindJSON(ctx, h.render, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	created, err := h.accounts.Save(cctx, service.SaveInput{
		ID:       req.ID,
		Name:     req.Nome,
		Email:    req.Email,
		Password: req.Senha,
	})

	if err != nil {
		h.render.Error(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, created.ToView())
}

func (h *UsersHandler) Update(ctx *gin.Context) {
	var req SaveUserRequest

	if !BindJSON(ctx, h.render, &req) {
		return
	}

	if req.ID == "" {
		h.render.Fields(ctx, map[string]string{"idUsuario": h.render.Message("usuario.nao.encontrado")})
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	updated, err := h.accounts.Update(cctx, service.SaveInput{
		ID:       req.ID,
		Name:     req.Nome,
		Email:    req.Email,
		Password: req.Senha,
	})

	if err != nil {
		h.render.Error(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, updated.ToView())
}

func (h *UsersHandler) FindByID(ctx *gin.Context) {
	id := ctx.Param("idUsuario")

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.accounts.FindByID(cctx, id)

	if err != nil {
		h.render.Error(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, u.ToView())
}

func (h *UsersHandler) DeleteByID(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	err := h.accounts.DeleteByID(cctx, id)

	if err != nil {
		h.render.Error(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *UsersHandler) countLogin(result string) {
	if h.prom != nil {
		h.prom.LoginsTotal.WithLabelValues(result).Inc()
	}
}
