package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // import the Echo web framework to handle routing

    "github.com/radityasp/umkm-katalog/internal/handler"    // import the handlers that implement business logic
    "github.com/radityasp/umkm-katalog/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not belong to the catalog API on
// the provided Echo instance.  Currently it exposes only a health check,
// used by load balancers or monitoring systems to verify that the service
// is up and running.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterAPI registers the catalog endpoints.  Listing products and
// logging in are public; creating and deleting products require a valid
// admin session token, enforced by the JWTAuth and RequireRole middleware
// in sequence so handlers never see an unauthenticated request.
func RegisterAPI(e *echo.Echo, a *handler.AuthHandler, p *handler.ProductHandler, jwtSecret string) {
    // Public routes: login exchanges the access code for a token, and the
    // product list is readable by anyone.
    api := e.Group("/api")
    api.POST("/login", a.Login)
    api.GET("/products", p.List)

    // Admin routes: both middlewares run before the handler.  JWTAuth
    // rejects missing/malformed/invalid tokens, RequireRole rejects any
    // valid token that does not carry the admin role.
    admin := e.Group("/api")
    admin.Use(middleware.JWTAuth(jwtSecret))
    admin.Use(middleware.RequireRole("admin"))
    admin.POST("/products", p.Create)
    admin.DELETE("/products/:id", p.Delete)
}

// RegisterUploads serves the local upload directory under /uploads so the
// image URLs produced by the disk storage backend resolve.  Only wired
// when the local storage driver is active; the object-store backend
// serves its own URLs.
func RegisterUploads(e *echo.Echo, uploadDir string) {
    e.Static("/uploads", uploadDir)
}
