package gateway

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"marketbay_backend/internal/auth"
	"marketbay_backend/internal/auth/token"

	"github.com/gin-gonic/gin"
)

const filterSecret = "filter-secret"

// echoEngine runs the auth filter in front of a handler that reports the
// headers the downstream service would receive.
func echoEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(AuthFilter(filterSecret, nil))
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"email":         c.Request.Header.Get(auth.HeaderUserEmail),
			"role":          c.Request.Header.Get(auth.HeaderUserRole),
			"authorization": c.Request.Header.Get("Authorization"),
		})
	})
	return engine
}

func TestAuthFilterRejectsMissingToken(t *testing.T) {
	engine := echoEngine()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "missing token") {
		t.Fatalf("expected missing-token body, got %s", rec.Body.String())
	}
}

func TestAuthFilterRejectsMalformedAuthorizationHeader(t *testing.T) {
	engine := echoEngine()

	for _, header := range []string{"Basic abc", "Bearer", "Bearer   ", "token-without-scheme"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.Header.Set("Authorization", header)
		engine.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestAuthFilterRejectsInvalidToken(t *testing.T) {
	engine := echoEngine()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid token") {
		t.Fatalf("expected invalid-token body, got %s", rec.Body.String())
	}
}

func TestAuthFilterRejectsExpiredToken(t *testing.T) {
	engine := echoEngine()

	signed, err := token.Issue("seller@example.com", auth.RoleSeller, filterSecret, -time.Minute)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthFilterInjectsVerifiedIdentity(t *testing.T) {
	engine := echoEngine()

	signed, err := token.Issue("seller@example.com", auth.RoleSeller, filterSecret, time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"email":"seller@example.com"`) {
		t.Fatalf("expected injected email, got %s", body)
	}
	if !strings.Contains(body, `"role":"SELLER"`) {
		t.Fatalf("expected injected role, got %s", body)
	}
	if !strings.Contains(body, `"authorization":""`) {
		t.Fatalf("expected Authorization to be stripped, got %s", body)
	}
}

func TestAuthFilterOverwritesSpoofedIdentityHeaders(t *testing.T) {
	engine := echoEngine()

	signed, err := token.Issue("client@example.com", auth.RoleClient, filterSecret, time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	req.Header.Set(auth.HeaderUserEmail, "admin@example.com")
	req.Header.Set(auth.HeaderUserRole, "ADMIN")
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"email":"client@example.com"`) {
		t.Fatalf("expected spoofed email to be overwritten, got %s", body)
	}
	if !strings.Contains(body, `"role":"CLIENT"`) {
		t.Fatalf("expected spoofed role to be overwritten, got %s", body)
	}
}

func TestAuthFilterForwardsPublicPathsUntouched(t *testing.T) {
	engine := echoEngine()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected public path to pass, got %d", rec.Code)
	}
}

func TestIsPublicPath(t *testing.T) {
	cases := []struct {
		path   string
		public bool
	}{
		{"/", true},
		{"/api/auth/login", true},
		{"/api/auth/register", true},
		{"/api/products", false},
		{"/api/auth", false},
		{"/api/users/me", false},
	}
	for _, tc := range cases {
		if got := IsPublicPath(tc.path); got != tc.public {
			t.Fatalf("IsPublicPath(%q) = %v, want %v", tc.path, got, tc.public)
		}
	}
}
