package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"marketbay_backend/internal/auth"

	"github.com/gin-gonic/gin"
)

const guardSecret = "internal-secret"

func guardedEngine(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/internal/ping", RequireInternal(secret, nil), func(c *gin.Context) {
		caller, ok := auth.CallerFrom(c)
		if !ok || caller.Kind != auth.CallerInternalService {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})
	return engine
}

func TestRequireInternalAcceptsMatchingToken(t *testing.T) {
	engine := guardedEngine(guardSecret)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/internal/ping", nil)
	req.Header.Set(auth.HeaderInternalToken, guardSecret)
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with internal caller set, got %d", rec.Code)
	}
}

func TestRequireInternalRejectsMissingToken(t *testing.T) {
	engine := guardedEngine(guardSecret)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/internal/ping", nil)
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireInternalRejectsWrongToken(t *testing.T) {
	engine := guardedEngine(guardSecret)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/internal/ping", nil)
	req.Header.Set(auth.HeaderInternalToken, "wrong")
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireInternalRejectsWhenSecretUnconfigured(t *testing.T) {
	engine := guardedEngine("")

	// Even an empty presented token must not match an empty secret.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/internal/ping", nil)
	req.Header.Set(auth.HeaderInternalToken, "")
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestInternalCallerNeverSatisfiesRoleChecks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/users",
		RequireInternal(guardSecret, nil),
		auth.RequireRole(auth.RoleAdmin),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set(auth.HeaderInternalToken, guardSecret)
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("internal principal must not pass end-user role checks, got %d", rec.Code)
	}
}
