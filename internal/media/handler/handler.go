package handler

import (
	"io"
	"mime/multipart"
	"net/http"

	"marketbay_backend/internal/auth"
	"marketbay_backend/internal/media/service"
	"marketbay_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for product images.
type Handler struct {
	svc *service.Service
}

// New creates a new media handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Upload attaches an image to a product.
// POST /api/media/:productId (multipart, field "file")
func (h *Handler) Upload(c *gin.Context) {
	caller, ok := auth.CallerFrom(c)
	if !ok {
		httpkit.Error(c, http.StatusForbidden, "forbidden", nil)
		return
	}

	image, cleanup, ok := h.formImage(c)
	if !ok {
		return
	}
	defer cleanup()

	result, err := h.svc.Upload(c.Request.Context(), caller, c.Param("productId"), image)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// ListByProduct returns a product's image records.
// GET /api/media/product/:productId
func (h *Handler) ListByProduct(c *gin.Context) {
	result, err := h.svc.ListByProduct(c.Request.Context(), c.Param("productId"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Download streams an image's bytes.
// GET /api/media/:mediaId/file
func (h *Handler) Download(c *gin.Context) {
	reader, contentType, err := h.svc.Open(c.Request.Context(), c.Param("mediaId"))
	if httpkit.HandleError(c, err) {
		return
	}
	defer reader.Close()

	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		// The response is already committed; nothing to send back.
		return
	}
}

// Replace swaps an image's file.
// PUT /api/media/:mediaId (multipart, field "file")
func (h *Handler) Replace(c *gin.Context) {
	caller, ok := auth.CallerFrom(c)
	if !ok {
		httpkit.Error(c, http.StatusForbidden, "forbidden", nil)
		return
	}

	image, cleanup, ok := h.formImage(c)
	if !ok {
		return
	}
	defer cleanup()

	result, err := h.svc.Replace(c.Request.Context(), caller, c.Param("mediaId"), image)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Delete removes one image.
// DELETE /api/media/:mediaId
func (h *Handler) Delete(c *gin.Context) {
	caller, ok := auth.CallerFrom(c)
	if !ok {
		httpkit.Error(c, http.StatusForbidden, "forbidden", nil)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), caller, c.Param("mediaId")); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

// InternalUpload attaches an image on behalf of a peer service.
// POST /api/media/internal/:productId (multipart, field "file")
func (h *Handler) InternalUpload(c *gin.Context) {
	image, cleanup, ok := h.formImage(c)
	if !ok {
		return
	}
	defer cleanup()

	result, err := h.svc.InternalUpload(c.Request.Context(), c.Param("productId"), image)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// InternalListByProduct returns a product's image records to a peer service.
// GET /api/media/internal/product/:productId
func (h *Handler) InternalListByProduct(c *gin.Context) {
	result, err := h.svc.ListByProduct(c.Request.Context(), c.Param("productId"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// InternalDeleteByProduct removes every image of a product.
// DELETE /api/media/internal/product/:productId
func (h *Handler) InternalDeleteByProduct(c *gin.Context) {
	if err := h.svc.DeleteByProduct(c.Request.Context(), c.Param("productId")); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

// formImage reads the "file" form field. On failure it writes the error
// response and reports false.
func (h *Handler) formImage(c *gin.Context) (service.ImageUpload, func(), bool) {
	fh, err := c.FormFile("file")
	if err != nil || fh == nil {
		httpkit.Error(c, http.StatusBadRequest, "an image file is required", nil)
		return service.ImageUpload{}, nil, false
	}

	f, err := fh.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "unreadable image upload", nil)
		return service.ImageUpload{}, nil, false
	}

	return service.ImageUpload{
		Reader:      f,
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	}, func() { closeQuietly(f) }, true
}

func closeQuietly(f multipart.File) {
	_ = f.Close()
}
