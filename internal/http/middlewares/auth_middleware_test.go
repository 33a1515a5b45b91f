package middlewares_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rickmoura/gastoshub/internal/actorctx"
	"github.com/rickmoura/gastoshub/internal/apperr"
	"github.com/rickmoura/gastoshub/internal/auth"
	"github.com/rickmoura/gastoshub/internal/domain/user"
	"github.com/rickmoura/gastoshub/internal/http/middlewares"
	"github.com/rickmoura/gastoshub/internal/http/render"
	"github.com/rickmoura/gastoshub/internal/i18n"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUserFinder struct {
	users map[string]user.User
}

func (f *fakeUserFinder) FindByEmail(ctx context.Context, email string) (user.User, error) {
	u, ok := f.users[email]

	if !ok {
		return user.User{}, apperr.ErrEmailNotFound
	}
	return u, nil
}

func newTestGate(t *testing.T, ttl time.Duration) (*middlewares.AuthMiddleware, *auth.Manager) {
	t.Helper()

	secret := base64.StdEncoding.EncodeToString([]byte("gate-test-secret"))

	jwtManager, err := auth.NewManager(secret, ttl)

	if err != nil {
		t.Fatalf("auth.NewManager: %v", err)
	}

	finder := &fakeUserFinder{users: map[string]user.User{
		"maria@example.com": {ID: "u-1", Name: "Maria", Email: "maria@example.com"},
	}}

	renderer := render.New(i18n.New(i18n.LocalePTBR))

	return middlewares.NewAuthMiddleware(jwtManager, finder, renderer, nil), jwtManager
}

type gateProbe struct {
	called       bool
	identity     middlewares.Identity
	hasIdentity  bool
	actor        string
	hasActor     bool
	gateRanTwice bool
}

func mountProbe(gate *middlewares.AuthMiddleware, protected bool) (*gin.Engine, *gateProbe) {
	probe := &gateProbe{}

	r := gin.New()
	r.Use(gate.Authenticate())

	handler := func(c *gin.Context) {
		if probe.called {
			probe.gateRanTwice = true
		}

		probe.called = true
		probe.identity, probe.hasIdentity = middlewares.IdentityFromContext(c)
		probe.actor, probe.hasActor = actorctx.ActorFrom(c.Request.Context())
		c.Status(http.StatusOK)
	}

	if protected {
		r.GET("/probe", gate.RequireAuth(), handler)
	} else {
		r.GET("/probe", handler)
	}

	return r, probe
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)

	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGateNoHeaderPassesThroughUnauthenticated(t *testing.T) {
	gate, _ := newTestGate(t, time.Minute)

	r, probe := mountProbe(gate, false)

	w := doGet(r, "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	if !probe.called {
		t.Fatal("handler not reached")
	}

	if probe.hasIdentity {
		t.Error("identity bound without a token")
	}
}

func TestGateNoHeaderRejectedByRequireAuth(t *testing.T) {
	gate, _ := newTestGate(t, time.Minute)

	r, probe := mountProbe(gate, true)

	w := doGet(r, "")

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}

	if probe.called {
		t.Error("protected handler ran for an unauthenticated request")
	}
}

func TestGateGarbageTokenRejected(t *testing.T) {
	gate, _ := newTestGate(t, time.Minute)

	r, probe := mountProbe(gate, false)

	w := doGet(r, "Bearer not-a-real-token")

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}

	if probe.called {
		t.Error("handler ran despite an invalid token")
	}

	var body render.ErrorView

	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body not parseable: %v", err)
	}

	if body.Status != http.StatusForbidden || body.Error == "" || body.Path != "/probe" {
		t.Errorf("error body shape wrong: %+v", body)
	}
}

func TestGateExpiredTokenRejected(t *testing.T) {
	gate, expiredManager := newTestGate(t, -time.Minute)

	token, err := expiredManager.Issue("maria@example.com", nil)

	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	r, probe := mountProbe(gate, false)

	w := doGet(r, "Bearer "+token)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}

	if probe.called {
		t.Error("handler ran despite an expired token")
	}
}

func TestGateValidTokenBindsIdentity(t *testing.T) {
	gate, jwtManager := newTestGate(t, time.Minute)

	token, err := jwtManager.Issue("maria@example.com", nil)

	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	r, probe := mountProbe(gate, true)

	w := doGet(r, "Bearer "+token)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", w.Code, w.Body.String())
	}

	if !probe.hasIdentity {
		t.Fatal("identity not bound")
	}

	if probe.identity.UserID != "u-1" || probe.identity.Email != "maria@example.com" {
		t.Errorf("identity = %+v", probe.identity)
	}

	if len(probe.identity.Authorities) != 0 {
		t.Errorf("authority set should be empty, got %v", probe.identity.Authorities)
	}

	if !probe.hasActor || probe.actor != "maria@example.com" {
		t.Errorf("actor = %q (%v), want the authenticated email", probe.actor, probe.hasActor)
	}

	if probe.gateRanTwice {
		t.Error("handler invoked more than once for one request")
	}
}

func TestGateUnknownSubjectRejected(t *testing.T) {
	gate, jwtManager := newTestGate(t, time.Minute)

	token, err := jwtManager.Issue("desconhecido@example.com", nil)

	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	r, probe := mountProbe(gate, false)

	w := doGet(r, "Bearer "+token)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}

	if probe.called {
		t.Error("handler ran for a token whose subject no longer exists")
	}
}
