package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"marketbay_backend/internal/auth"
	"marketbay_backend/internal/config"
	"marketbay_backend/internal/media/client"
	"marketbay_backend/internal/media/repository"
	"marketbay_backend/platform/apperr"
	"marketbay_backend/platform/logger"
)

type fakeRepo struct {
	items map[string]repository.Media
}

func newFakeRepo(items ...repository.Media) *fakeRepo {
	r := &fakeRepo{items: make(map[string]repository.Media)}
	for _, item := range items {
		r.items[item.ID] = item
	}
	return r
}

func (r *fakeRepo) EnsureIndexes(context.Context) error { return nil }

func (r *fakeRepo) Create(_ context.Context, m repository.Media) error {
	r.items[m.ID] = m
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (repository.Media, error) {
	m, ok := r.items[id]
	if !ok {
		return repository.Media{}, apperr.NotFound("media not found")
	}
	return m, nil
}

func (r *fakeRepo) ListByProduct(_ context.Context, productID string) ([]repository.Media, error) {
	var out []repository.Media
	for _, m := range r.items {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeRepo) CountByProduct(_ context.Context, productID string) (int64, error) {
	var count int64
	for _, m := range r.items {
		if m.ProductID == productID {
			count++
		}
	}
	return count, nil
}

func (r *fakeRepo) Update(_ context.Context, m repository.Media) error {
	if _, ok := r.items[m.ID]; !ok {
		return apperr.NotFound("media not found")
	}
	r.items[m.ID] = m
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return apperr.NotFound("media not found")
	}
	delete(r.items, id)
	return nil
}

func (r *fakeRepo) DeleteByProduct(_ context.Context, productID string) ([]repository.Media, error) {
	var removed []repository.Media
	for id, m := range r.items {
		if m.ProductID == productID {
			removed = append(removed, m)
			delete(r.items, id)
		}
	}
	return removed, nil
}

// fakeStore records puts and removals without real object storage.
type fakeStore struct {
	puts    int
	removed []string
}

func (s *fakeStore) EnsureBucket(context.Context, string) error { return nil }

func (s *fakeStore) Put(_ context.Context, _, folder, fileName, _ string, _ io.Reader, _ int64) (string, error) {
	s.puts++
	return folder + "/" + fileName, nil
}

func (s *fakeStore) Get(context.Context, string, string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader([]byte("bytes"))), nil
}

func (s *fakeStore) Remove(_ context.Context, _, key string) error {
	s.removed = append(s.removed, key)
	return nil
}

// fakeChecker scripts the product service's ownership answer.
type fakeChecker struct {
	owner bool
	err   error
	calls int
}

func (c *fakeChecker) ValidateOwnership(context.Context, string, auth.Role, string) (bool, error) {
	c.calls++
	return c.owner, c.err
}

func newTestService(repo repository.Repository, store *fakeStore, checker *fakeChecker) *Service {
	cfg := &config.Config{MediaBucket: "product-media"}
	return New(repo, store, checker, cfg, logger.New("test"))
}

func pngUpload(name string) ImageUpload {
	return ImageUpload{
		Reader:      bytes.NewReader([]byte("png")),
		FileName:    name,
		ContentType: "image/png",
		Size:        3,
	}
}

func storedMedia(id, productID string) repository.Media {
	return repository.Media{
		ID:          id,
		ProductID:   productID,
		ObjectKey:   productID + "/" + id + ".png",
		ContentType: "image/png",
		CreatedAt:   time.Now().UTC(),
	}
}

func TestUploadOwningSeller(t *testing.T) {
	store := &fakeStore{}
	checker := &fakeChecker{owner: true}
	svc := newTestService(newFakeRepo(), store, checker)

	result, err := svc.Upload(context.Background(), auth.EndUser("seller@example.com", auth.RoleSeller), "p1", pngUpload("a.png"))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if result.ProductID != "p1" {
		t.Fatalf("expected productId p1, got %q", result.ProductID)
	}
	if store.puts != 1 {
		t.Fatalf("expected 1 stored object, got %d", store.puts)
	}
	if checker.calls != 1 {
		t.Fatalf("expected 1 ownership check, got %d", checker.calls)
	}
}

func TestUploadForeignSellerDenied(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(newFakeRepo(), store, &fakeChecker{owner: false})

	_, err := svc.Upload(context.Background(), auth.EndUser("seller@example.com", auth.RoleSeller), "p1", pngUpload("a.png"))
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if store.puts != 0 {
		t.Fatal("nothing may be stored on denial")
	}
}

func TestUploadDeniedWhenCheckUnreachable(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeStore{}, &fakeChecker{err: errors.New("timeout")})

	_, err := svc.Upload(context.Background(), auth.EndUser("seller@example.com", auth.RoleSeller), "p1", pngUpload("a.png"))
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("an unreachable check must read as denial, got %v", err)
	}
}

func TestUploadMissingProduct(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeStore{}, &fakeChecker{err: client.ErrProductNotFound})

	_, err := svc.Upload(context.Background(), auth.EndUser("seller@example.com", auth.RoleSeller), "gone", pngUpload("a.png"))
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestUploadAdminSkipsRemoteCheck(t *testing.T) {
	checker := &fakeChecker{}
	svc := newTestService(newFakeRepo(), &fakeStore{}, checker)

	if _, err := svc.Upload(context.Background(), auth.EndUser("admin@example.com", auth.RoleAdmin), "p1", pngUpload("a.png")); err != nil {
		t.Fatalf("admin upload failed: %v", err)
	}
	if checker.calls != 0 {
		t.Fatalf("admin must not trigger remote checks, got %d", checker.calls)
	}
}

func TestUploadClientDenied(t *testing.T) {
	checker := &fakeChecker{owner: true}
	svc := newTestService(newFakeRepo(), &fakeStore{}, checker)

	_, err := svc.Upload(context.Background(), auth.EndUser("client@example.com", auth.RoleClient), "p1", pngUpload("a.png"))
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for CLIENT, got %v", err)
	}
	if checker.calls != 0 {
		t.Fatal("clients are denied before any remote check")
	}
}

func TestUploadEnforcesPerProductCap(t *testing.T) {
	repo := newFakeRepo(
		storedMedia("m1", "p1"),
		storedMedia("m2", "p1"),
		storedMedia("m3", "p1"),
		storedMedia("m4", "p1"),
		storedMedia("m5", "p1"),
	)
	svc := newTestService(repo, &fakeStore{}, &fakeChecker{owner: true})

	_, err := svc.Upload(context.Background(), auth.EndUser("seller@example.com", auth.RoleSeller), "p1", pngUpload("f.png"))
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error at image 6, got %v", err)
	}
}

func TestUploadRejectsOversizeAndWrongType(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeStore{}, &fakeChecker{owner: true})
	caller := auth.EndUser("seller@example.com", auth.RoleSeller)

	big := pngUpload("big.png")
	big.Size = 2<<20 + 1
	if _, err := svc.Upload(context.Background(), caller, "p1", big); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for oversize file, got %v", err)
	}

	gif := pngUpload("anim.gif")
	gif.ContentType = "image/gif"
	if _, err := svc.Upload(context.Background(), caller, "p1", gif); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for GIF, got %v", err)
	}
}

func TestInternalUploadSkipsOwnership(t *testing.T) {
	checker := &fakeChecker{}
	svc := newTestService(newFakeRepo(), &fakeStore{}, checker)

	if _, err := svc.InternalUpload(context.Background(), "p1", pngUpload("a.png")); err != nil {
		t.Fatalf("internal upload failed: %v", err)
	}
	if checker.calls != 0 {
		t.Fatalf("internal uploads must not trigger remote checks, got %d", checker.calls)
	}

	// File limits still bind internal callers.
	big := pngUpload("big.png")
	big.Size = 3 << 20
	if _, err := svc.InternalUpload(context.Background(), "p1", big); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteRemovesRecordAndObject(t *testing.T) {
	repo := newFakeRepo(storedMedia("m1", "p1"))
	store := &fakeStore{}
	svc := newTestService(repo, store, &fakeChecker{owner: true})

	if err := svc.Delete(context.Background(), auth.EndUser("seller@example.com", auth.RoleSeller), "m1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), "m1"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("record should be gone, got %v", err)
	}
	if len(store.removed) != 1 {
		t.Fatalf("expected 1 removed object, got %d", len(store.removed))
	}
}

func TestReplaceSwapsObject(t *testing.T) {
	repo := newFakeRepo(storedMedia("m1", "p1"))
	store := &fakeStore{}
	svc := newTestService(repo, store, &fakeChecker{owner: true})

	result, err := svc.Replace(context.Background(), auth.EndUser("seller@example.com", auth.RoleSeller), "m1", pngUpload("new.png"))
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if result.ObjectKey != "p1/new.png" {
		t.Fatalf("expected new object key, got %q", result.ObjectKey)
	}
	if len(store.removed) != 1 {
		t.Fatalf("old object should be removed, got %d removals", len(store.removed))
	}
}

func TestDeleteByProductIsIdempotent(t *testing.T) {
	repo := newFakeRepo(storedMedia("m1", "p1"), storedMedia("m2", "p1"), storedMedia("m3", "p2"))
	store := &fakeStore{}
	svc := newTestService(repo, store, &fakeChecker{})

	if err := svc.DeleteByProduct(context.Background(), "p1"); err != nil {
		t.Fatalf("cascade failed: %v", err)
	}
	if len(store.removed) != 2 {
		t.Fatalf("expected 2 removed objects, got %d", len(store.removed))
	}

	if err := svc.DeleteByProduct(context.Background(), "p1"); err != nil {
		t.Fatalf("redelivery must be a no-op: %v", err)
	}
	if len(store.removed) != 2 {
		t.Fatalf("redelivery must not remove objects again, got %d", len(store.removed))
	}

	if _, err := repo.GetByID(context.Background(), "m3"); err != nil {
		t.Fatalf("other product's media must survive: %v", err)
	}
}
