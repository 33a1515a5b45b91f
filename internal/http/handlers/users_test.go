package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rickmoura/gastoshub/internal/apperr"
	"github.com/rickmoura/gastoshub/internal/domain/user"
	"github.com/rickmoura/gastoshub/internal/http/handlers"
	"github.com/rickmoura/gastoshub/internal/http/render"
	"github.com/rickmoura/gastoshub/internal/i18n"
	"github.com/rickmoura/gastoshub/internal/service"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake implementation of the handlers.AccountService interface

type fakeAccounts struct {
	loginFn  func(ctx context.Context, login, senha string) (service.LoginResult, error)
	saveFn   func(ctx context.Context, in service.SaveInput) (user.User, error)
	updateFn func(ctx context.Context, in service.SaveInput) (user.User, error)
	findFn   func(ctx context.Context, id string) (user.User, error)
	deleteFn func(ctx context.Context, id string) error
}

func (f *fakeAccounts) Login(ctx context.Context, login, senha string) (service.LoginResult, error) {
	if f.loginFn != nil {
		return f.loginFn(ctx, login, senha)
	}
	return service.LoginResult{}, nil
}

func (f *fakeAccounts) Save(ctx context.Context, in service.SaveInput) (user.User, error) {
	if f.saveFn != nil {
		return f.saveFn(ctx, in)
	}
	return user.User{}, nil
}

func (f *fakeAccounts) Update(ctx context.Context, in service.SaveInput) (user.User, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, in)
	}
	return user.User{}, nil
}

func (f *fakeAccounts) FindByID(ctx context.Context, id string) (user.User, error) {
	if f.findFn != nil {
		return f.findFn(ctx, id)
	}
	return user.User{}, nil
}

func (f *fakeAccounts) DeleteByID(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func newTestHandler(accounts handlers.AccountService) *handlers.UsersHandler {
	return handlers.NewUsersHandler(accounts, render.New(i18n.New(i18n.LocalePTBR)), nil)
}

// small helper which returns a gin engine mounting one handler per test

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		loginFn    func(ctx context.Context, login, senha string) (service.LoginResult, error)
		wantStatus int
		wantToken  string
	}{
		{
			name: "success",
			body: `{"login":"maria@example.com","senha":"senha-forte-123"}`,
			loginFn: func(ctx context.Context, login, senha string) (service.LoginResult, error) {
				return service.LoginResult{Token: "jwt-token", UserID: "u-1", Name: "Maria"}, nil
			},
			wantStatus: http.StatusOK,
			wantToken:  "jwt-token",
		},
		{
			name: "invalid credentials",
			body: `{"login":"maria@example.com","senha":"senha-errada"}`,
			loginFn: func(ctx context.Context, login, senha string) (service.LoginResult, error) {
				return service.LoginResult{}, apperr.ErrInvalidLogin
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing fields",
			body:       `{"login":"maria@example.com"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "broken json",
			body:       `{"login":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(&fakeAccounts{loginFn: tt.loginFn})

			r := setupRouter(http.MethodPost, "/usuario/login", h.Login)

			w := doJSON(r, http.MethodPost, "/usuario/login", tt.body)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}

			if tt.wantToken != "" {
				var resp service.LoginResult

				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshal: %v", err)
				}

				if resp.Token != tt.wantToken {
					t.Errorf("token = %q, want %q", resp.Token, tt.wantToken)
				}
			}
		})
	}
}

func TestLoginErrorBodyShape(t *testing.T) {
	h := newTestHandler(&fakeAccounts{
		loginFn: func(ctx context.Context, login, senha string) (service.LoginResult, error) {
			return service.LoginResult{}, apperr.ErrInvalidLogin
		},
	})

	r := setupRouter(http.MethodPost, "/usuario/login", h.Login)

	w := doJSON(r, http.MethodPost, "/usuario/login", `{"login":"x@example.com","senha":"12345678"}`)

	var body render.ErrorView

	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if body.Status != http.StatusBadRequest {
		t.Errorf("body.status = %d", body.Status)
	}

	if body.Error != http.StatusText(http.StatusBadRequest) {
		t.Errorf("body.error = %q", body.Error)
	}

	if body.Path != "/usuario/login" {
		t.Errorf("body.path = %q", body.Path)
	}

	if body.Message == "" || body.Message == nil {
		t.Error("body.message empty")
	}
}

func TestSaveHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		saveFn     func(ctx context.Context, in service.SaveInput) (user.User, error)
		wantStatus int
		wantField  string
	}{
		{
			name: "created",
			body: `{"nome":"Maria","senha":"senha-forte-123","email":"maria@example.com"}`,
			saveFn: func(ctx context.Context, in service.SaveInput) (user.User, error) {
				return user.User{ID: "u-1", Name: in.Name, Email: in.Email, PasswordHash: "hash"}, nil
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "short password",
			body:       `{"nome":"Maria","senha":"curta","email":"maria@example.com"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "senha",
		},
		{
			name:       "bad email",
			body:       `{"nome":"Maria","senha":"senha-forte-123","email":"nao-e-email"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "email",
		},
		{
			name:       "missing name",
			body:       `{"senha":"senha-forte-123","email":"maria@example.com"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "nome",
		},
		{
			name: "duplicate email",
			body: `{"nome":"Maria","senha":"senha-forte-123","email":"maria@example.com"}`,
			saveFn: func(ctx context.Context, in service.SaveInput) (user.User, error) {
				return user.User{}, apperr.ErrEmailRegistered
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(&fakeAccounts{saveFn: tt.saveFn})

			r := setupRouter(http.MethodPost, "/usuario/save", h.Save)

			w := doJSON(r, http.MethodPost, "/usuario/save", tt.body)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}

			if tt.wantField != "" {
				var body struct {
					Message map[string]string `json:"message"`
				}

				if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
					t.Fatalf("unmarshal: %v", err)
				}

				if _, ok := body.Message[tt.wantField]; !ok {
					t.Errorf("field %q missing from validation map: %v", tt.wantField, body.Message)
				}
			}
		})
	}
}

func TestSaveNeverEchoesPassword(t *testing.T) {
	h := newTestHandler(&fakeAccounts{
		saveFn: func(ctx context.Context, in service.SaveInput) (user.User, error) {
			return user.User{ID: "u-1", Name: in.Name, Email: in.Email, PasswordHash: "super-secret-hash"}, nil
		},
	})

	r := setupRouter(http.MethodPost, "/usuario/save", h.Save)

	w := doJSON(r, http.MethodPost, "/usuario/save", `{"nome":"Maria","senha":"senha-forte-123","email":"maria@example.com"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}

	if bytes.Contains(w.Body.Bytes(), []byte("senha-forte-123")) || bytes.Contains(w.Body.Bytes(), []byte("super-secret-hash")) {
		t.Errorf("response leaks credentials: %s", w.Body.String())
	}
}

func TestFindByIDHandler(t *testing.T) {
	h := newTestHandler(&fakeAccounts{
		findFn: func(ctx context.Context, id string) (user.User, error) {
			if id == "u-1" {
				return user.User{ID: "u-1", Name: "Maria", Email: "maria@example.com"}, nil
			}
			return user.User{}, apperr.ErrUserNotFound
		},
	})

	r := setupRouter(http.MethodGet, "/usuario/:idUsuario", h.FindByID)

	w := doJSON(r, http.MethodGet, "/usuario/u-1", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var view user.View

	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if view.ID != "u-1" || view.Email != "maria@example.com" {
		t.Errorf("view = %+v", view)
	}

	w = doJSON(r, http.MethodGet, "/usuario/u-404", "")

	if w.Code != http.StatusNotFound {
		t.Errorf("status for unknown id = %d, want 404", w.Code)
	}
}

func TestUpdateHandler(t *testing.T) {
	h := newTestHandler(&fakeAccounts{
		updateFn: func(ctx context.Context, in service.SaveInput) (user.User, error) {
			if in.ID != "u-1" {
				return user.User{}, apperr.ErrUserNotFound
			}
			return user.User{ID: in.ID, Name: in.Name, Email: in.Email}, nil
		},
	})

	r := setupRouter(http.MethodPut, "/usuario/update", h.Update)

	w := doJSON(r, http.MethodPut, "/usuario/update", `{"idUsuario":"u-1","nome":"Maria","senha":"senha-forte-123","email":"maria@example.com"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}

	// missing id is rejected before the service runs
	w = doJSON(r, http.MethodPut, "/usuario/update", `{"nome":"Maria","senha":"senha-forte-123","email":"maria@example.com"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status without id = %d, want 400", w.Code)
	}

	w = doJSON(r, http.MethodPut, "/usuario/update", `{"idUsuario":"u-404","nome":"Maria","senha":"senha-forte-123","email":"maria@example.com"}`)

	if w.Code != http.StatusNotFound {
		t.Errorf("status for unknown id = %d, want 404", w.Code)
	}
}

func TestDeleteHandler(t *testing.T) {
	h := newTestHandler(&fakeAccounts{
		deleteFn: func(ctx context.Context, id string) error {
			if id == "u-1" {
				return nil
			}
			return apperr.ErrUserNotFound
		},
	})

	r := setupRouter(http.MethodDelete, "/usuario/delete/:id", h.DeleteByID)

	w := doJSON(r, http.MethodDelete, "/usuario/delete/u-1", "")

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}

	w = doJSON(r, http.MethodDelete, "/usuario/delete/u-404", "")

	if w.Code != http.StatusNotFound {
		t.Errorf("status for unknown id = %d, want 404", w.Code)
	}
}
