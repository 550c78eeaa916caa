package service

import (
	"context"
	"time"

	"marketbay_backend/internal/auth"
	"marketbay_backend/internal/config"
	"marketbay_backend/internal/product/client"
	"marketbay_backend/internal/product/repository"
	"marketbay_backend/internal/product/transport"
	"marketbay_backend/platform/apperr"
	"marketbay_backend/platform/logger"

	"github.com/google/uuid"
)

const maxInitialImages = 3

// UserDirectory resolves propagated identities to account records.
type UserDirectory interface {
	GetByEmail(ctx context.Context, email string) (client.InternalUser, error)
}

// MediaGallery is the slice of the media service the catalog depends on.
type MediaGallery interface {
	Upload(ctx context.Context, productID string, image client.ImageUpload) (client.MediaItem, error)
	ListByProduct(ctx context.Context, productID string) ([]client.MediaItem, error)
	DeleteByProduct(ctx context.Context, productID string) error
}

// Service implements the product catalog and its ownership rules.
type Service struct {
	repo  repository.Repository
	users UserDirectory
	media MediaGallery
	cfg   *config.Config
	log   *logger.Logger
}

// New creates the product service.
func New(repo repository.Repository, users UserDirectory, media MediaGallery, cfg *config.Config, log *logger.Logger) *Service {
	return &Service{repo: repo, users: users, media: media, cfg: cfg, log: log}
}

// Create inserts a product and attaches its initial images. Sellers own
// what they create; admins must name the owner explicitly.
func (s *Service) Create(ctx context.Context, caller auth.Caller, req transport.CreateProductRequest, images []client.ImageUpload) (transport.ProductResponse, error) {
	if len(images) > maxInitialImages {
		return transport.ProductResponse{}, apperr.Validation("a product may carry at most 3 images at creation")
	}

	var ownerID, ownerName string
	switch {
	case caller.Kind == auth.CallerInternalService:
		if req.OwnerID == "" {
			return transport.ProductResponse{}, apperr.Validation("ownerId is required")
		}
		ownerID = req.OwnerID
	case caller.Kind == auth.CallerEndUser && caller.Role == auth.RoleSeller:
		account, err := s.users.GetByEmail(ctx, caller.Email)
		if err != nil {
			s.log.Error("owner resolution failed", "email", caller.Email, "error", err)
			return transport.ProductResponse{}, apperr.Forbidden("could not verify product ownership")
		}
		ownerID = account.ID
		ownerName = account.Name
	case caller.Kind == auth.CallerEndUser && caller.Role == auth.RoleAdmin:
		if req.OwnerID == "" {
			return transport.ProductResponse{}, apperr.Validation("ownerId is required")
		}
		ownerID = req.OwnerID
	default:
		return transport.ProductResponse{}, apperr.Forbidden("sellers and admins only")
	}

	now := time.Now().UTC()
	product := repository.Product{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Quantity:    req.Quantity,
		OwnerID:     ownerID,
		OwnerName:   ownerName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return transport.ProductResponse{}, err
	}

	refs := make([]transport.MediaRef, 0, len(images))
	for _, image := range images {
		item, err := s.media.Upload(ctx, product.ID, image)
		if err != nil {
			s.log.Error("initial image upload failed", "productId", product.ID, "file", image.FileName, "error", err)
			continue
		}
		refs = append(refs, transport.MediaRef{ID: item.ID, ObjectKey: item.ObjectKey})
	}

	return toDTO(product, refs), nil
}

// Get returns a product with its image references. Reads are public.
func (s *Service) Get(ctx context.Context, id string) (transport.ProductResponse, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ProductResponse{}, err
	}
	return toDTO(product, s.imageRefs(ctx, product.ID)), nil
}

// List returns the whole catalog.
func (s *Service) List(ctx context.Context) ([]transport.ProductResponse, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.toDTOs(ctx, products), nil
}

// ListMine returns the caller's own products.
func (s *Service) ListMine(ctx context.Context, caller auth.Caller) ([]transport.ProductResponse, error) {
	if caller.Kind != auth.CallerEndUser || (caller.Role != auth.RoleSeller && caller.Role != auth.RoleAdmin) {
		return nil, apperr.Forbidden("sellers and admins only")
	}

	account, err := s.users.GetByEmail(ctx, caller.Email)
	if err != nil {
		s.log.Error("owner resolution failed", "email", caller.Email, "error", err)
		return nil, apperr.Forbidden("could not verify product ownership")
	}

	products, err := s.repo.ListByOwner(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	return s.toDTOs(ctx, products), nil
}

// Update patches a product within the caller's ownership scope.
func (s *Service) Update(ctx context.Context, caller auth.Caller, id string, req transport.UpdateProductRequest) (transport.ProductResponse, error) {
	scope, err := s.ownerScope(ctx, caller)
	if err != nil {
		return transport.ProductResponse{}, err
	}

	fields := repository.UpdateFields{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Quantity:    req.Quantity,
	}
	product, err := s.repo.Update(ctx, id, fields, scope)
	if err != nil {
		return transport.ProductResponse{}, err
	}
	return toDTO(product, s.imageRefs(ctx, product.ID)), nil
}

// Delete removes a product within the caller's ownership scope, then
// asks the media service to drop the product's images. A failed image
// cleanup is logged and retried by nobody; the product stays gone.
func (s *Service) Delete(ctx context.Context, caller auth.Caller, id string) error {
	scope, err := s.ownerScope(ctx, caller)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, scope); err != nil {
		return err
	}
	if err := s.media.DeleteByProduct(ctx, id); err != nil {
		s.log.Error("media cleanup failed", "productId", id, "error", err)
	}
	return nil
}

// ValidateOwnership answers whether the forwarded identity may modify a
// product. The media service calls this for its own authorization
// checks. Any failure to resolve the identity reads as a denial.
func (s *Service) ValidateOwnership(ctx context.Context, email string, role auth.Role, productID string) (bool, error) {
	product, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return false, err
	}

	switch role {
	case auth.RoleAdmin:
		return true, nil
	case auth.RoleSeller:
		if email == "" {
			return false, nil
		}
		account, err := s.users.GetByEmail(ctx, email)
		if err != nil {
			s.log.Error("owner resolution failed", "email", email, "error", err)
			return false, nil
		}
		return account.ID == product.OwnerID, nil
	default:
		return false, nil
	}
}

// RemoveByOwner drops every product of a deleted account together with
// the attached media. Repeated deliveries find nothing left to remove.
func (s *Service) RemoveByOwner(ctx context.Context, ownerID string) error {
	ids, err := s.repo.DeleteByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.media.DeleteByProduct(ctx, id); err != nil {
			s.log.Error("media cleanup failed", "productId", id, "error", err)
		}
	}
	if len(ids) > 0 {
		s.log.Info("removed products of deleted account", "ownerId", ownerID, "count", len(ids))
	}
	return nil
}

// ownerScope maps the caller to the owner filter applied to mutations.
// An empty scope means unrestricted; anything else narrows the mutation
// to documents owned by that account. Failing to resolve a seller's
// account denies the request.
func (s *Service) ownerScope(ctx context.Context, caller auth.Caller) (string, error) {
	switch caller.Kind {
	case auth.CallerInternalService:
		return "", nil
	case auth.CallerEndUser:
		switch caller.Role {
		case auth.RoleAdmin:
			return "", nil
		case auth.RoleSeller:
			account, err := s.users.GetByEmail(ctx, caller.Email)
			if err != nil {
				s.log.Error("owner resolution failed", "email", caller.Email, "error", err)
				return "", apperr.Forbidden("could not verify product ownership")
			}
			return account.ID, nil
		default:
			return "", apperr.Forbidden("sellers and admins only")
		}
	default:
		return "", apperr.Forbidden("unknown caller")
	}
}

func (s *Service) imageRefs(ctx context.Context, productID string) []transport.MediaRef {
	items, err := s.media.ListByProduct(ctx, productID)
	if err != nil {
		s.log.Error("media listing failed", "productId", productID, "error", err)
		return []transport.MediaRef{}
	}
	refs := make([]transport.MediaRef, 0, len(items))
	for _, item := range items {
		refs = append(refs, transport.MediaRef{ID: item.ID, ObjectKey: item.ObjectKey})
	}
	return refs
}

func (s *Service) toDTOs(ctx context.Context, products []repository.Product) []transport.ProductResponse {
	out := make([]transport.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toDTO(p, s.imageRefs(ctx, p.ID)))
	}
	return out
}

func toDTO(p repository.Product, images []transport.MediaRef) transport.ProductResponse {
	if images == nil {
		images = []transport.MediaRef{}
	}
	return transport.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		Quantity:    p.Quantity,
		SellerName:  p.OwnerName,
		Images:      images,
		CreatedAt:   p.CreatedAt,
	}
}
