package handler

import (
    "crypto/subtle" // constant-time comparison of the submitted code
    "net/http"      // HTTP status codes and primitives

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/radityasp/umkm-katalog/internal/config" // app configuration
    "github.com/radityasp/umkm-katalog/internal/utils"  // helper functions (token issuing)
)

// AuthHandler bundles dependencies for the login endpoint.  There is no
// user table: admin access is a single shared code configured at startup,
// exchanged for a signed session token.
type AuthHandler struct {
    Cfg config.Config
}

func NewAuthHandler(cfg config.Config) *AuthHandler {
    return &AuthHandler{Cfg: cfg}
}

// ----- DTOs -----

type loginReq struct {
    Code string `json:"code"`
}

// Login: exchange the shared access code for a 1-hour admin token.  The
// code is compared verbatim against the configured value; there is no
// per-user credential and no lockout.  An incorrect code always yields
// 401 with no token.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
    }
    if subtle.ConstantTimeCompare([]byte(req.Code), []byte(h.Cfg.AccessCode)) != 1 {
        return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "wrong access code"})
    }

    token, err := utils.NewAccessToken(h.Cfg.JWTSecret, "admin", h.Cfg.TokenTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "issue token failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "token": token.Token})
}
