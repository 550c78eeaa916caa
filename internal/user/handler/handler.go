package handler

import (
	"net/http"

	"marketbay_backend/internal/auth"
	"marketbay_backend/internal/user/service"
	"marketbay_backend/internal/user/transport"
	"marketbay_backend/platform/httpkit"
	"marketbay_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for accounts.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new user handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Register creates an account.
// POST /api/auth/register (multipart)
func (h *Handler) Register(c *gin.Context) {
	var req transport.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	var avatar *service.AvatarUpload
	if fh, err := c.FormFile("avatar"); err == nil && fh != nil {
		f, err := fh.Open()
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "unreadable avatar upload", nil)
			return
		}
		defer f.Close()
		avatar = &service.AvatarUpload{
			Reader:      f,
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
		}
	}

	result, err := h.svc.Register(c.Request.Context(), req, avatar)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// Login verifies credentials and returns a bearer token.
// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req transport.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Login(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetMe returns the caller's own profile.
// GET /api/users/me
func (h *Handler) GetMe(c *gin.Context) {
	caller, ok := auth.CallerFrom(c)
	if !ok {
		httpkit.Error(c, http.StatusForbidden, "forbidden", nil)
		return
	}

	result, err := h.svc.GetMe(c.Request.Context(), caller)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetByID returns a profile by id.
// GET /api/users/:id
func (h *Handler) GetByID(c *gin.Context) {
	caller, ok := auth.CallerFrom(c)
	if !ok {
		httpkit.Error(c, http.StatusForbidden, "forbidden", nil)
		return
	}

	result, err := h.svc.Get(c.Request.Context(), caller, c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Update patches a profile.
// PUT /api/users/:id
func (h *Handler) Update(c *gin.Context) {
	caller, ok := auth.CallerFrom(c)
	if !ok {
		httpkit.Error(c, http.StatusForbidden, "forbidden", nil)
		return
	}

	var req transport.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Update(c.Request.Context(), caller, c.Param("id"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListUsers returns every account.
// GET /api/admin/users
func (h *Handler) ListUsers(c *gin.Context) {
	result, err := h.svc.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DeleteUser removes an account and triggers the cascade event.
// DELETE /api/admin/users/:id
func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

// GetInternalByEmail resolves an email to an account id for peer services.
// GET /api/users/internal/by-email/:email
func (h *Handler) GetInternalByEmail(c *gin.Context) {
	result, err := h.svc.GetInternalByEmail(c.Request.Context(), c.Param("email"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
