package auth

import (
	"github.com/gin-gonic/gin"
)

// Headers that carry identity and service trust between services.
// X-USER-EMAIL and X-USER-ROLE are set exclusively by the gateway after
// token verification. X-INTERNAL-TOKEN is the shared secret for
// service-to-service calls that carry no end-user identity.
const (
	HeaderUserEmail     = "X-USER-EMAIL"
	HeaderUserRole      = "X-USER-ROLE"
	HeaderInternalToken = "X-INTERNAL-TOKEN"
)

// CallerKind distinguishes the two trust channels a request can arrive on.
type CallerKind int

const (
	// CallerEndUser is a request whose identity headers were injected by
	// the gateway after JWT verification.
	CallerEndUser CallerKind = iota
	// CallerInternalService is a peer service that presented the shared
	// internal token. It carries no end-user identity and must never
	// satisfy CLIENT/SELLER/ADMIN role checks.
	CallerInternalService
)

// Caller is the tagged union every authorization rule pattern-matches over.
// Email and Role are only meaningful for CallerEndUser.
type Caller struct {
	Kind  CallerKind
	Email string
	Role  Role
}

// EndUser builds a caller from verified identity headers.
func EndUser(email string, role Role) Caller {
	return Caller{Kind: CallerEndUser, Email: email, Role: role}
}

// InternalService builds the synthetic principal for a peer service that
// authenticated with the internal token.
func InternalService() Caller {
	return Caller{Kind: CallerInternalService}
}

// HasRole reports whether the caller is an end user with the given role.
// An internal-service caller never has an end-user role.
func (c Caller) HasRole(role Role) bool {
	return c.Kind == CallerEndUser && c.Role == role
}

const contextCallerKey = "caller"

// SetCaller stores the caller on the gin context.
func SetCaller(c *gin.Context, caller Caller) {
	c.Set(contextCallerKey, caller)
}

// CallerFrom extracts the caller from the gin context.
func CallerFrom(c *gin.Context) (Caller, bool) {
	v, ok := c.Get(contextCallerKey)
	if !ok {
		return Caller{}, false
	}
	caller, ok := v.(Caller)
	return caller, ok
}
