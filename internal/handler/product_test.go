package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/radityasp/umkm-katalog/internal/middleware"
	"github.com/radityasp/umkm-katalog/internal/model"
	"github.com/radityasp/umkm-katalog/internal/queue"
	"github.com/radityasp/umkm-katalog/internal/repository"
	"github.com/radityasp/umkm-katalog/internal/storage"
	"github.com/radityasp/umkm-katalog/internal/utils"
)

const productTestSecret = "product-test-secret"

// ----- stubs -----

type stubStore struct {
	products  []model.Product
	nextID    int
	createErr error
}

func (s *stubStore) List(_ context.Context) ([]model.Product, error) {
	out := make([]model.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

func (s *stubStore) Create(_ context.Context, p *model.Product) error {
	if s.createErr != nil {
		return s.createErr
	}
	p.ID = strconv.Itoa(s.nextID)
	s.nextID++
	s.products = append(s.products, *p)
	return nil
}

func (s *stubStore) DeleteByID(_ context.Context, id string) (*model.Product, error) {
	for i, p := range s.products {
		if p.ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return &p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

type stubStorage struct {
	stored    []string
	deleted   []string
	deleteErr error
}

func (s *stubStorage) Store(_ context.Context, r io.Reader, size int64, mimeType, _ string) (string, error) {
	switch mimeType {
	case "image/jpeg", "image/png", "image/gif":
	default:
		return "", storage.ErrUnsupportedMediaType
	}
	if size > s.MaxBytes() {
		return "", storage.ErrPayloadTooLarge
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	url := fmt.Sprintf("/uploads/test-%d.png", len(s.stored))
	s.stored = append(s.stored, url)
	return url, nil
}

func (s *stubStorage) Delete(_ context.Context, imageURL string) error {
	s.deleted = append(s.deleted, imageURL)
	return s.deleteErr
}

func (s *stubStorage) MaxBytes() int64 { return 5 * 1024 * 1024 }

// ----- harness -----

type productFixture struct {
	e       *echo.Echo
	store   *stubStore
	storage *stubStorage
	orphans []queue.OrphanedImageEvent
}

func newProductFixture(t *testing.T) *productFixture {
	t.Helper()
	f := &productFixture{store: &stubStore{}, storage: &stubStorage{}}

	h := NewProductHandler(f.store, f.storage, nil, 0)
	h.PublishOrphan = func(_ context.Context, ev queue.OrphanedImageEvent) error {
		f.orphans = append(f.orphans, ev)
		return nil
	}

	e := echo.New()
	api := e.Group("/api")
	api.GET("/products", h.List)
	admin := e.Group("/api")
	admin.Use(middleware.JWTAuth(productTestSecret))
	admin.Use(middleware.RequireRole("admin"))
	admin.POST("/products", h.Create)
	admin.DELETE("/products/:id", h.Delete)
	f.e = e
	return f
}

func adminToken(t *testing.T) string {
	t.Helper()
	tok, err := utils.NewAccessToken(productTestSecret, "admin", 60)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok.Token
}

// multipartBody builds a create request body with the given text fields
// and n image file parts.
func multipartBody(t *testing.T, fields map[string]string, images int, mimeType string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	for i := 0; i < images; i++ {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="photo-%d.png"`, i))
		hdr.Set("Content-Type", mimeType)
		part, err := w.CreatePart(hdr)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write([]byte("image-bytes")); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func (f *productFixture) createRequest(t *testing.T, token string, fields map[string]string, images int, mimeType string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, fields, images, mimeType)
	req := httptest.NewRequest(http.MethodPost, "/api/products", body)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

var validFields = map[string]string{
	"name":        "Kopi Susu",
	"description": "Kopi susu gula aren",
	"contact":     "0812xxxx",
}

// ----- tests -----

func TestListProducts_Public(t *testing.T) {
	f := newProductFixture(t)
	f.store.products = []model.Product{{ID: "0", Name: "a", Images: []string{"/uploads/a.jpg"}}}

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"name":"a"`)) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestCreateProduct_RequiresToken(t *testing.T) {
	f := newProductFixture(t)

	rec := f.createRequest(t, "", validFields, 1, "image/png")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without token, got %d", rec.Code)
	}
	if len(f.store.products) != 0 || len(f.storage.stored) != 0 {
		t.Fatal("nothing may be persisted or uploaded without a valid token")
	}
}

func TestCreateProduct_InvalidTokenUploadsNothing(t *testing.T) {
	f := newProductFixture(t)

	rec := f.createRequest(t, "bad.token.here", validFields, 2, "image/png")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with invalid token, got %d", rec.Code)
	}
	if len(f.storage.stored) != 0 {
		t.Fatal("auth must fail before any upload is attempted")
	}
}

func TestCreateProduct_Success(t *testing.T) {
	f := newProductFixture(t)

	rec := f.createRequest(t, adminToken(t), validFields, 2, "image/png")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if len(f.store.products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(f.store.products))
	}
	p := f.store.products[0]
	if p.Name != "Kopi Susu" || p.Contact != "0812xxxx" {
		t.Fatalf("unexpected product: %+v", p)
	}
	if len(p.Images) != 2 {
		t.Fatalf("expected image count to match upload count (2), got %d", len(p.Images))
	}
}

func TestCreateProduct_TooManyImages(t *testing.T) {
	f := newProductFixture(t)

	rec := f.createRequest(t, adminToken(t), validFields, 6, "image/png")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for 6 images, got %d", rec.Code)
	}
	if len(f.store.products) != 0 {
		t.Fatal("product count must be unchanged")
	}
	if len(f.storage.stored) != 0 {
		t.Fatal("the file-count check must run before any upload")
	}
}

func TestCreateProduct_NoImages(t *testing.T) {
	f := newProductFixture(t)

	rec := f.createRequest(t, adminToken(t), validFields, 0, "image/png")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for 0 images, got %d", rec.Code)
	}
	if len(f.store.products) != 0 {
		t.Fatal("product count must be unchanged")
	}
}

func TestCreateProduct_UnsupportedMediaType(t *testing.T) {
	f := newProductFixture(t)

	rec := f.createRequest(t, adminToken(t), validFields, 1, "application/pdf")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for pdf upload, got %d", rec.Code)
	}
	if len(f.store.products) != 0 {
		t.Fatal("product count must be unchanged")
	}
}

func TestCreateProduct_MissingFieldsLeavesOrphans(t *testing.T) {
	f := newProductFixture(t)

	fields := map[string]string{"name": "", "description": "d", "contact": "c"}
	rec := f.createRequest(t, adminToken(t), fields, 2, "image/png")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing name, got %d", rec.Code)
	}
	if len(f.store.products) != 0 {
		t.Fatal("product count must be unchanged")
	}
	// Uploads ran before field validation; the stored files are orphans
	// and each one is reported.
	if len(f.orphans) != 2 {
		t.Fatalf("expected 2 orphan diagnostics, got %d", len(f.orphans))
	}
}

func TestCreateProduct_PersistenceFailureReportsOrphans(t *testing.T) {
	f := newProductFixture(t)
	f.store.createErr = repository.ErrPersistence

	rec := f.createRequest(t, adminToken(t), validFields, 1, "image/png")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if len(f.orphans) != 1 {
		t.Fatalf("expected 1 orphan diagnostic, got %d", len(f.orphans))
	}
}

func TestDeleteProduct_CascadesToImages(t *testing.T) {
	f := newProductFixture(t)
	f.store.products = []model.Product{
		{ID: "7", Name: "a", Images: []string{"/uploads/a1.jpg", "/uploads/a2.jpg"}},
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/products/7", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if len(f.store.products) != 0 {
		t.Fatal("product must be removed from the store")
	}
	if len(f.storage.deleted) != 2 {
		t.Fatalf("expected deletion attempted for both images, got %v", f.storage.deleted)
	}
}

func TestDeleteProduct_NotFound(t *testing.T) {
	f := newProductFixture(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/products/99", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"success":false`)) {
		t.Fatalf("expected failure envelope, got %s", rec.Body.String())
	}
}

func TestDeleteProduct_ImageCleanupFailureStillSucceeds(t *testing.T) {
	f := newProductFixture(t)
	f.store.products = []model.Product{{ID: "1", Name: "a", Images: []string{"/uploads/a.jpg"}}}
	f.storage.deleteErr = errors.New("object store down")

	req := httptest.NewRequest(http.MethodDelete, "/api/products/1", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("cleanup failure must not fail the request, got %d", rec.Code)
	}
	if len(f.storage.deleted) != 1 {
		t.Fatal("deletion must still be attempted")
	}
	if len(f.orphans) != 1 {
		t.Fatalf("expected 1 orphan diagnostic, got %d", len(f.orphans))
	}
}
