package handler

import (
	"net/http"

	"marketbay_backend/internal/auth"
	"marketbay_backend/internal/product/client"
	"marketbay_backend/internal/product/service"
	"marketbay_backend/internal/product/transport"
	"marketbay_backend/platform/httpkit"
	"marketbay_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for the product catalog.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new product handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Create inserts a product with up to three images.
// POST /api/products (multipart)
func (h *Handler) Create(c *gin.Context) {
	caller, ok := auth.CallerFrom(c)
	if !ok {
		httpkit.Error(c, http.StatusForbidden, "forbidden", nil)
		return
	}

	var req transport.CreateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	var images []client.ImageUpload
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, fh := range form.File["images"] {
			f, err := fh.Open()
			if err != nil {
				httpkit.Error(c, http.StatusBadRequest, "unreadable image upload", nil)
				return
			}
			defer f.Close()
			images = append(images, client.ImageUpload{
				Reader:      f,
				FileName:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
			})
		}
	}

	result, err := h.svc.Create(c.Request.Context(), caller, req, images)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// List returns the whole catalog.
// GET /api/products
func (h *Handler) List(c *gin.Context) {
	result, err := h.svc.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListMine returns the caller's own products.
// GET /api/products/mine
func (h *Handler) ListMine(c *gin.Context) {
	caller, ok := auth.CallerFrom(c)
	if !ok {
		httpkit.Error(c, http.StatusForbidden, "forbidden", nil)
		return
	}

	result, err := h.svc.ListMine(c.Request.Context(), caller)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Get returns one product.
// GET /api/products/:id
func (h *Handler) Get(c *gin.Context) {
	result, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Update patches a product.
// PUT /api/products/:id
func (h *Handler) Update(c *gin.Context) {
	caller, ok := auth.CallerFrom(c)
	if !ok {
		httpkit.Error(c, http.StatusForbidden, "forbidden", nil)
		return
	}

	var req transport.UpdateProductRequest
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

// Delete removes a product and its media.
// DELETE /api/products/:id
func (h *Handler) Delete(c *gin.Context) {
	caller, ok := auth.CallerFrom(c)
	if !ok {
		httpkit.Error(c, http.StatusForbidden, "forbidden", nil)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), caller, c.Param("id")); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

// ValidateOwnership answers ownership questions for peer services. The
// identity under inspection travels in the forwarded identity headers.
// GET /api/products/internal/validate/:productId
func (h *Handler) ValidateOwnership(c *gin.Context) {
	email := c.GetHeader(auth.HeaderUserEmail)
	role, _ := auth.ParseRole(c.GetHeader(auth.HeaderUserRole))

	allowed, err := h.svc.ValidateOwnership(c.Request.Context(), email, role, c.Param("productId"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"owner": allowed})
}
