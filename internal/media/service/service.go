package service

import (
	"context"
	"errors"
	"io"
	"time"

	"marketbay_backend/internal/auth"
	"marketbay_backend/internal/config"
	"marketbay_backend/internal/media/client"
	"marketbay_backend/internal/media/repository"
	"marketbay_backend/internal/media/transport"
	"marketbay_backend/platform/apperr"
	"marketbay_backend/platform/logger"
	"marketbay_backend/platform/storage"

	"github.com/google/uuid"
)

const (
	maxImageBytes       = 2 << 20
	maxImagesPerProduct = 5
)

// OwnershipChecker asks the product service whether an identity may
// modify a product's media.
type OwnershipChecker interface {
	ValidateOwnership(ctx context.Context, email string, role auth.Role, productID string) (bool, error)
}

// ImageUpload carries one uploaded image file.
type ImageUpload struct {
	Reader      io.Reader
	FileName    string
	ContentType string
	Size        int64
}

// Service implements product image management.
type Service struct {
	repo     repository.Repository
	store    storage.ObjectStore
	products OwnershipChecker
	cfg      *config.Config
	log      *logger.Logger
}

// New creates the media service.
func New(repo repository.Repository, store storage.ObjectStore, products OwnershipChecker, cfg *config.Config, log *logger.Logger) *Service {
	return &Service{repo: repo, store: store, products: products, cfg: cfg, log: log}
}

// Upload attaches an image to a product on behalf of an end user.
func (s *Service) Upload(ctx context.Context, caller auth.Caller, productID string, image ImageUpload) (transport.MediaResponse, error) {
	if err := s.authorize(ctx, caller, productID); err != nil {
		return transport.MediaResponse{}, err
	}
	return s.attach(ctx, productID, image)
}

// InternalUpload attaches an image on behalf of a peer service. The
// ownership check is skipped; file limits still apply.
func (s *Service) InternalUpload(ctx context.Context, productID string, image ImageUpload) (transport.MediaResponse, error) {
	return s.attach(ctx, productID, image)
}

// ListByProduct returns a product's image records. Reads are public.
func (s *Service) ListByProduct(ctx context.Context, productID string) ([]transport.MediaResponse, error) {
	items, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]transport.MediaResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toDTO(item))
	}
	return out, nil
}

// Open streams a stored image's bytes.
func (s *Service) Open(ctx context.Context, mediaID string) (io.ReadCloser, string, error) {
	media, err := s.repo.GetByID(ctx, mediaID)
	if err != nil {
		return nil, "", err
	}
	reader, err := s.store.Get(ctx, s.cfg.MediaBucket, media.ObjectKey)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.KindInternal, "failed to read image", err)
	}
	return reader, media.ContentType, nil
}

// Replace swaps an image's file for a new one.
func (s *Service) Replace(ctx context.Context, caller auth.Caller, mediaID string, image ImageUpload) (transport.MediaResponse, error) {
	media, err := s.repo.GetByID(ctx, mediaID)
	if err != nil {
		return transport.MediaResponse{}, err
	}
	if err := s.authorize(ctx, caller, media.ProductID); err != nil {
		return transport.MediaResponse{}, err
	}
	if err := validateImage(image); err != nil {
		return transport.MediaResponse{}, err
	}

	key, err := s.store.Put(ctx, s.cfg.MediaBucket, media.ProductID, image.FileName, image.ContentType, image.Reader, image.Size)
	if err != nil {
		return transport.MediaResponse{}, apperr.Wrap(apperr.KindInternal, "failed to store image", err)
	}

	oldKey := media.ObjectKey
	media.ObjectKey = key
	media.ContentType = image.ContentType
	if err := s.repo.Update(ctx, media); err != nil {
		return transport.MediaResponse{}, err
	}

	if err := s.store.Remove(ctx, s.cfg.MediaBucket, oldKey); err != nil {
		s.log.Error("orphaned object after replace", "key", oldKey, "error", err)
	}
	return toDTO(media), nil
}

// Delete removes one image.
func (s *Service) Delete(ctx context.Context, caller auth.Caller, mediaID string) error {
	media, err := s.repo.GetByID(ctx, mediaID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, caller, media.ProductID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, mediaID); err != nil {
		return err
	}
	if err := s.store.Remove(ctx, s.cfg.MediaBucket, media.ObjectKey); err != nil {
		s.log.Error("orphaned object after delete", "key", media.ObjectKey, "error", err)
	}
	return nil
}

// DeleteByProduct removes every image of a product. Called by the
// product service when a product disappears; deleting an imageless
// product is a no-op.
func (s *Service) DeleteByProduct(ctx context.Context, productID string) error {
	items, err := s.repo.DeleteByProduct(ctx, productID)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := s.store.Remove(ctx, s.cfg.MediaBucket, item.ObjectKey); err != nil {
			s.log.Error("orphaned object after product cleanup", "key", item.ObjectKey, "error", err)
		}
	}
	return nil
}

// authorize applies the ownership rule for media mutations. Sellers are
// checked against the product service; a check that cannot complete
// counts as a denial.
func (s *Service) authorize(ctx context.Context, caller auth.Caller, productID string) error {
	switch caller.Kind {
	case auth.CallerInternalService:
		return nil
	case auth.CallerEndUser:
		switch caller.Role {
		case auth.RoleAdmin:
			return nil
		case auth.RoleSeller:
			owner, err := s.products.ValidateOwnership(ctx, caller.Email, caller.Role, productID)
			if errors.Is(err, client.ErrProductNotFound) {
				return apperr.NotFound("product not found")
			}
			if err != nil {
				s.log.Error("ownership check failed", "productId", productID, "email", caller.Email, "error", err)
				return apperr.Forbidden("could not verify product ownership")
			}
			if !owner {
				return apperr.Forbidden("not the owner of this product")
			}
			return nil
		default:
			return apperr.Forbidden("sellers and admins only")
		}
	default:
		return apperr.Forbidden("unknown caller")
	}
}

func (s *Service) attach(ctx context.Context, productID string, image ImageUpload) (transport.MediaResponse, error) {
	if err := validateImage(image); err != nil {
		return transport.MediaResponse{}, err
	}

	count, err := s.repo.CountByProduct(ctx, productID)
	if err != nil {
		return transport.MediaResponse{}, err
	}
	if count >= maxImagesPerProduct {
		return transport.MediaResponse{}, apperr.Validation("a product may carry at most 5 images")
	}

	key, err := s.store.Put(ctx, s.cfg.MediaBucket, productID, image.FileName, image.ContentType, image.Reader, image.Size)
	if err != nil {
		return transport.MediaResponse{}, apperr.Wrap(apperr.KindInternal, "failed to store image", err)
	}

	media := repository.Media{
		ID:          uuid.New().String(),
		ProductID:   productID,
		ObjectKey:   key,
		ContentType: image.ContentType,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, media); err != nil {
		if removeErr := s.store.Remove(ctx, s.cfg.MediaBucket, key); removeErr != nil {
			s.log.Error("orphaned object after failed insert", "key", key, "error", removeErr)
		}
		return transport.MediaResponse{}, err
	}
	return toDTO(media), nil
}

func validateImage(image ImageUpload) error {
	if image.Reader == nil {
		return apperr.Validation("an image file is required")
	}
	if image.Size > maxImageBytes {
		return apperr.Validation("image must be 2 MB or smaller")
	}
	switch image.ContentType {
	case "image/jpeg", "image/png", "image/webp":
		return nil
	default:
		return apperr.Validation("image must be a JPEG, PNG or WEBP image")
	}
}

func toDTO(media repository.Media) transport.MediaResponse {
	return transport.MediaResponse{
		ID:        media.ID,
		ProductID: media.ProductID,
		ObjectKey: media.ObjectKey,
		CreatedAt: media.CreatedAt,
	}
}
