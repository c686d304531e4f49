package handler

import (
    "context"       // context with cancellation for store and storage calls
    "encoding/json" // serializing the product list for the cache
    "errors"        // sentinel error matching
    "log"           // best-effort failure logging
    "net/http"      // HTTP status codes
    "strings"       // field trimming
    "time"          // timeouts and event timestamps

    "github.com/labstack/echo/v4"   // Echo framework for HTTP routing
    "github.com/redis/go-redis/v9"  // product list cache

    "github.com/radityasp/umkm-katalog/internal/model"
    "github.com/radityasp/umkm-katalog/internal/queue"
    "github.com/radityasp/umkm-katalog/internal/repository"
    queue_publisher "github.com/radityasp/umkm-katalog/internal/service"
    "github.com/radityasp/umkm-katalog/internal/storage"
)

// maxImagesPerProduct caps how many files one create request may carry.
const maxImagesPerProduct = 5

// listCacheKey is the single Redis key the serialized product list lives
// under between writes.
const listCacheKey = "catalog:products"

// ProductHandler bundles dependencies for the catalog endpoints: the
// product store, the image storage backend, the optional Redis client for
// list caching, and the orphan-diagnostic publisher.
type ProductHandler struct {
    Store    repository.ProductStore
    Storage  storage.ImageStorage
    RDB      *redis.Client // nil disables caching
    CacheTTL time.Duration

    // PublishOrphan reports an image object left behind by a partial
    // failure. Fire-and-forget: errors are the publisher's problem.
    // Overridable in tests.
    PublishOrphan func(ctx context.Context, ev queue.OrphanedImageEvent) error
}

func NewProductHandler(store repository.ProductStore, st storage.ImageStorage, rdb *redis.Client, cacheTTL time.Duration) *ProductHandler {
    return &ProductHandler{
        Store:         store,
        Storage:       st,
        RDB:           rdb,
        CacheTTL:      cacheTTL,
        PublishOrphan: queue_publisher.PublishImageOrphaned,
    }
}

// List returns every product as a JSON array. No authorization. The
// serialized response is cached in Redis between writes; when the cache
// is unavailable every request hits the store.
func (h *ProductHandler) List(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if h.cacheEnabled() {
        if blob, err := h.RDB.Get(ctx, listCacheKey).Bytes(); err == nil {
            c.Response().Header().Set("X-Cache", "HIT")
            return c.JSONBlob(http.StatusOK, blob)
        }
        c.Response().Header().Set("X-Cache", "MISS")
    }

    products, err := h.Store.List(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to load products"})
    }
    blob, err := json.Marshal(products)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to encode products"})
    }
    if h.cacheEnabled() {
        _ = h.RDB.SetEx(ctx, listCacheKey, blob, h.CacheTTL).Err()
    }
    return c.JSONBlob(http.StatusOK, blob)
}

// Create adds a product from a multipart form. The middleware chain has
// already authenticated the caller, so the order here is: file-count
// check, upload every file (fail fast on the first bad one), text field
// validation, then the durable store write. Files stored before a later
// step fails are left behind as orphans; they are logged and reported to
// the diagnostics queue, never rolled back.
func (h *ProductHandler) Create(c echo.Context) error {
    form, err := c.MultipartForm()
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid multipart form"})
    }
    files := form.File["images"]
    if len(files) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "at least one image is required"})
    }
    if len(files) > maxImagesPerProduct {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "a product can have at most 5 images"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
    defer cancel()

    var urls []string
    for _, fh := range files {
        src, err := fh.Open()
        if err != nil {
            h.reportOrphans(ctx, "", urls, "upload aborted: "+err.Error())
            return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "unreadable upload: " + fh.Filename})
        }
        url, err := h.Storage.Store(ctx, src, fh.Size, fh.Header.Get("Content-Type"), fh.Filename)
        src.Close()
        if err != nil {
            h.reportOrphans(ctx, "", urls, "upload aborted: "+err.Error())
            switch {
            case errors.Is(err, storage.ErrUnsupportedMediaType):
                return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "only jpeg, png and gif images are allowed"})
            case errors.Is(err, storage.ErrPayloadTooLarge):
                return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "image too large"})
            default:
                return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to store image"})
            }
        }
        urls = append(urls, url)
    }

    name := strings.TrimSpace(c.FormValue("name"))
    description := strings.TrimSpace(c.FormValue("description"))
    contact := strings.TrimSpace(c.FormValue("contact"))
    if name == "" || description == "" || contact == "" {
        h.reportOrphans(ctx, "", urls, "create rejected: missing fields")
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "all fields are required"})
    }

    p := model.Product{
        Name:        name,
        Description: description,
        Contact:     contact,
        Images:      urls,
    }
    if err := h.Store.Create(ctx, &p); err != nil {
        h.reportOrphans(ctx, "", urls, "create failed: "+err.Error())
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to save product"})
    }

    h.invalidateCache(ctx)
    return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "product added"})
}

// Delete removes a product and then attempts to delete each of its stored
// images independently. Image cleanup is best effort: a failed object
// removal is logged and reported as an orphan diagnostic, and the request
// still succeeds because the record itself is already gone.
func (h *ProductHandler) Delete(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    removed, err := h.Store.DeleteByID(ctx, c.Param("id"))
    if err != nil {
        if errors.Is(err, repository.ErrProductNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "product not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to delete product"})
    }

    for _, url := range removed.ImageURLs() {
        if err := h.Storage.Delete(ctx, url); err != nil {
            log.Printf("storage: cascade delete of %s failed: %v", url, err)
            h.reportOrphans(ctx, removed.ID, []string{url}, err.Error())
        }
    }

    h.invalidateCache(ctx)
    return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "product deleted"})
}

// cacheEnabled reports whether list caching is active.
func (h *ProductHandler) cacheEnabled() bool {
    return h.RDB != nil && h.CacheTTL > 0
}

// invalidateCache drops the cached list after a write. Failure only means
// a stale list until the TTL runs out.
func (h *ProductHandler) invalidateCache(ctx context.Context) {
    if h.cacheEnabled() {
        _ = h.RDB.Del(ctx, listCacheKey).Err()
    }
}

// reportOrphans logs and publishes a diagnostic for every stored image
// URL that no product record references. Publish failures are ignored;
// the queue is an operator convenience, not part of the request outcome.
func (h *ProductHandler) reportOrphans(ctx context.Context, productID string, urls []string, reason string) {
    now := time.Now().UTC().Format(time.RFC3339)
    for _, url := range urls {
        log.Printf("storage: orphaned image %s (%s)", url, reason)
        if h.PublishOrphan != nil {
            _ = h.PublishOrphan(ctx, queue.OrphanedImageEvent{
                ProductID:  productID,
                ImageURL:   url,
                Reason:     reason,
                OccurredAt: now,
            })
        }
    }
}
