package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/radityasp/umkm-katalog/internal/utils" // token verification
)

// JWTAuth returns an Echo middleware that validates a Bearer session token
// and injects the token's role claim into the request context.  The
// provided secret must match the one used when issuing tokens.  The three
// failure modes are kept distinct because clients rely on them: a request
// with no Authorization header at all gets 403, a header that is not a
// parseable "Bearer <token>" gets 403, and a token that fails signature or
// expiry checks gets 401.  On success handlers can read the role via
// `c.Get("role")`.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if auth == "" {
                return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "token not provided"})
            }
            // The scheme must be exactly "Bearer" followed by a non-empty
            // token.  Anything else is a malformed header, not a bad token.
            scheme, raw, found := strings.Cut(auth, " ")
            if !found || scheme != "Bearer" || strings.TrimSpace(raw) == "" {
                return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "malformed token"})
            }
            role, err := utils.VerifyAccessToken(secret, strings.TrimSpace(raw))
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "invalid token"})
            }
            // Store the role claim in the context for downstream
            // middleware and handlers.
            c.Set("role", role)
            return next(c)
        }
    }
}
