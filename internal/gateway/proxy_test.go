package gateway

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

// closeNotifyRecorder adds http.CloseNotifier to httptest.ResponseRecorder,
// which net/http/httputil.ReverseProxy requires via gin's response writer.
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func newCloseNotifyRecorder() *closeNotifyRecorder {
	return &closeNotifyRecorder{httptest.NewRecorder(), make(chan bool, 1)}
}

func (c *closeNotifyRecorder) CloseNotify() <-chan bool { return c.closed }

func backendStub(name string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(name + ":" + r.URL.Path))
	}))
}

func proxyEngine(t *testing.T, userURL, productURL, mediaURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	proxy, err := NewProxy(userURL, productURL, mediaURL)
	if err != nil {
		t.Fatalf("proxy setup failed: %v", err)
	}
	engine := gin.New()
	engine.NoRoute(proxy.Handler())
	return engine
}

func TestProxyRoutesByPrefix(t *testing.T) {
	userBackend := backendStub("user")
	defer userBackend.Close()
	productBackend := backendStub("product")
	defer productBackend.Close()
	mediaBackend := backendStub("media")
	defer mediaBackend.Close()

	engine := proxyEngine(t, userBackend.URL, productBackend.URL, mediaBackend.URL)

	cases := []struct {
		path    string
		backend string
	}{
		{"/api/auth/login", "user"},
		{"/api/users/me", "user"},
		{"/api/admin/users", "user"},
		{"/api/products", "product"},
		{"/api/products/p1", "product"},
		{"/api/media/product/p1", "media"},
	}
	for _, tc := range cases {
		rec := newCloseNotifyRecorder()
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		engine.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tc.path, rec.Code)
		}
		want := tc.backend + ":" + tc.path
		if got := rec.Body.String(); got != want {
			t.Fatalf("%s: expected %q, got %q", tc.path, want, got)
		}
	}
}

func TestProxyUnknownPrefix(t *testing.T) {
	userBackend := backendStub("user")
	defer userBackend.Close()

	engine := proxyEngine(t, userBackend.URL, userBackend.URL, userBackend.URL)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "no such route") {
		t.Fatalf("expected no-such-route body, got %s", rec.Body.String())
	}
}
