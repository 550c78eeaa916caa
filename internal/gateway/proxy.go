package gateway

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// backendRoute maps a path prefix to a downstream service.
type backendRoute struct {
	prefix string
	proxy  *httputil.ReverseProxy
}

// Proxy dispatches requests to downstream services by path prefix.
// Authentication has already happened in the middleware chain: by the time
// a request reaches the proxy its identity headers are gateway-controlled.
type Proxy struct {
	routes []backendRoute
}

// NewProxy builds the prefix table. The user service also owns the auth
// and admin surfaces.
func NewProxy(userURL, productURL, mediaURL string) (*Proxy, error) {
	user, err := newReverseProxy(userURL)
	if err != nil {
		return nil, err
	}
	product, err := newReverseProxy(productURL)
	if err != nil {
		return nil, err
	}
	media, err := newReverseProxy(mediaURL)
	if err != nil {
		return nil, err
	}

	return &Proxy{
		routes: []backendRoute{
			{prefix: "/api/auth/", proxy: user},
			{prefix: "/api/users", proxy: user},
			{prefix: "/api/admin/", proxy: user},
			{prefix: "/api/products", proxy: product},
			{prefix: "/api/media", proxy: media},
		},
	}, nil
}

// Handler returns the gin handler that forwards to the matching backend.
func (p *Proxy) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, rt := range p.routes {
			if strings.HasPrefix(path, rt.prefix) {
				rt.proxy.ServeHTTP(c.Writer, c.Request)
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "no such route"})
	}
}

func newReverseProxy(rawURL string) (*httputil.ReverseProxy, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	return &httputil.ReverseProxy{
		Director: func(req *http.Request) {
			req.URL.Scheme = target.Scheme
			req.URL.Host = target.Host
			req.Host = target.Host
		},
	}, nil
}
