package service

import (
	"context"
	"io"
	"time"

	"marketbay_backend/internal/auth"
	"marketbay_backend/internal/auth/token"
	"marketbay_backend/internal/config"
	"marketbay_backend/internal/user/password"
	"marketbay_backend/internal/user/repository"
	"marketbay_backend/internal/user/transport"
	"marketbay_backend/platform/apperr"
	"marketbay_backend/platform/logger"
	"marketbay_backend/platform/storage"

	"github.com/google/uuid"
)

const (
	maxAvatarBytes = 2 << 20
	avatarFolder   = "avatars"
)

// EventPublisher abstracts the lifecycle event producer.
type EventPublisher interface {
	PublishUserDeleted(ctx context.Context, userID string) error
}

// AvatarUpload carries an optional avatar image for registration.
type AvatarUpload struct {
	Reader      io.Reader
	FileName    string
	ContentType string
	Size        int64
}

// Service implements account management and token issuance.
type Service struct {
	repo   repository.Repository
	store  storage.ObjectStore
	events EventPublisher
	cfg    *config.Config
	log    *logger.Logger
}

// New creates the user service.
func New(repo repository.Repository, store storage.ObjectStore, events EventPublisher, cfg *config.Config, log *logger.Logger) *Service {
	return &Service{repo: repo, store: store, events: events, cfg: cfg, log: log}
}

// Register creates an account. Only sellers may attach an avatar.
func (s *Service) Register(ctx context.Context, req transport.RegisterRequest, avatar *AvatarUpload) (transport.UserResponse, error) {
	role, err := auth.ParseRole(req.Role)
	if err != nil {
		return transport.UserResponse{}, apperr.Validation("invalid role")
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return transport.UserResponse{}, apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}

	user := repository.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if avatar != nil {
		if role != auth.RoleSeller {
			return transport.UserResponse{}, apperr.Validation("only sellers may upload an avatar")
		}
		key, err := s.storeAvatar(ctx, avatar)
		if err != nil {
			return transport.UserResponse{}, err
		}
		user.AvatarKey = key
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return transport.UserResponse{}, err
	}

	s.log.AuthEvent("register", user.Email, true, "")
	return toDTO(user), nil
}

// Login verifies credentials and issues a bearer token carrying the
// account's email and role.
func (s *Service) Login(ctx context.Context, req transport.LoginRequest) (transport.LoginResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		s.log.AuthEvent("login", req.Email, false, "unknown email")
		return transport.LoginResponse{}, apperr.Unauthorized("invalid credentials")
	}

	if err := password.Compare(user.PasswordHash, req.Password); err != nil {
		s.log.AuthEvent("login", req.Email, false, "bad password")
		return transport.LoginResponse{}, apperr.Unauthorized("invalid credentials")
	}

	signed, err := token.Issue(user.Email, user.Role, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return transport.LoginResponse{}, apperr.Wrap(apperr.KindInternal, "failed to issue token", err)
	}

	s.log.AuthEvent("login", user.Email, true, "")
	return transport.LoginResponse{Token: signed}, nil
}

// Get returns a profile. Callers may read themselves; admins may read anyone.
func (s *Service) Get(ctx context.Context, caller auth.Caller, id string) (transport.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.UserResponse{}, err
	}
	if err := s.authorizeProfileAccess(caller, user); err != nil {
		return transport.UserResponse{}, err
	}
	return toDTO(user), nil
}

// GetMe resolves the caller's own profile from the propagated identity.
func (s *Service) GetMe(ctx context.Context, caller auth.Caller) (transport.UserResponse, error) {
	if caller.Kind != auth.CallerEndUser {
		return transport.UserResponse{}, apperr.Forbidden("end-user identity required")
	}
	user, err := s.repo.GetByEmail(ctx, caller.Email)
	if err != nil {
		return transport.UserResponse{}, err
	}
	return toDTO(user), nil
}

// Update patches a profile under the same access rule as Get.
func (s *Service) Update(ctx context.Context, caller auth.Caller, id string, req transport.UpdateUserRequest) (transport.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.UserResponse{}, err
	}
	if err := s.authorizeProfileAccess(caller, user); err != nil {
		return transport.UserResponse{}, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		hash, err := password.Hash(*req.Password)
		if err != nil {
			return transport.UserResponse{}, apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return transport.UserResponse{}, err
	}
	return toDTO(user), nil
}

// List returns all accounts. Admin-only; the route enforces the role.
func (s *Service) List(ctx context.Context) ([]transport.UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transport.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toDTO(u))
	}
	return out, nil
}

// Delete removes an account and publishes the user-deleted lifecycle
// event. Publication is best effort: a broken event pipe does not undo
// the deletion, it only loses the cascade until redelivery.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.events != nil {
		if err := s.events.PublishUserDeleted(ctx, id); err != nil {
			s.log.Error("failed to publish user-deleted event", "userId", id, "error", err)
		}
	}
	return nil
}

// GetInternalByEmail serves the email-to-id lookup for peer services.
func (s *Service) GetInternalByEmail(ctx context.Context, email string) (transport.InternalUserResponse, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return transport.InternalUserResponse{}, err
	}
	return transport.InternalUserResponse{
		ID:   user.ID,
		Name: user.Name,
		Role: user.Role.String(),
	}, nil
}

// EnsureRootAdmin creates the configured admin account if it is missing.
func (s *Service) EnsureRootAdmin(ctx context.Context) error {
	if s.cfg.AdminEmail == "" || s.cfg.AdminPassword == "" {
		return nil
	}

	_, err := s.repo.GetByEmail(ctx, s.cfg.AdminEmail)
	if err == nil {
		return nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return err
	}

	hash, err := password.Hash(s.cfg.AdminPassword)
	if err != nil {
		return err
	}
	admin := repository.User{
		ID:           uuid.New().String(),
		Name:         s.cfg.AdminName,
		Email:        s.cfg.AdminEmail,
		Role:         auth.RoleAdmin,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return err
	}
	s.log.Info("root admin created", "email", admin.Email)
	return nil
}

// authorizeProfileAccess allows the profile's owner and admins.
// Internal-service callers have no business on profile routes.
func (s *Service) authorizeProfileAccess(caller auth.Caller, user repository.User) error {
	switch caller.Kind {
	case auth.CallerEndUser:
		if caller.Role == auth.RoleAdmin || caller.Email == user.Email {
			return nil
		}
		return apperr.Forbidden("not allowed to access this profile")
	case auth.CallerInternalService:
		return apperr.Forbidden("internal callers may not access profiles")
	default:
		return apperr.Forbidden("unknown caller")
	}
}

func (s *Service) storeAvatar(ctx context.Context, avatar *AvatarUpload) (string, error) {
	if avatar.Size > maxAvatarBytes {
		return "", apperr.Validation("avatar must be 2 MB or smaller")
	}
	switch avatar.ContentType {
	case "image/jpeg", "image/png", "image/webp":
	default:
		return "", apperr.Validation("avatar must be a JPEG, PNG or WEBP image")
	}

	key, err := s.store.Put(ctx, s.cfg.AvatarBucket, avatarFolder, avatar.FileName, avatar.ContentType, avatar.Reader, avatar.Size)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "failed to store avatar", err)
	}
	return key, nil
}

func toDTO(user repository.User) transport.UserResponse {
	return transport.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role.String(),
		AvatarKey: user.AvatarKey,
		CreatedAt: user.CreatedAt,
	}
}
