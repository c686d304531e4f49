package utils // package utils provides helper functions for session token creation and verification

import (
    "errors" // sentinel error definition
    "time"   // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrTokenInvalid is returned by VerifyAccessToken for any token that does
// not pass verification: bad signature, unexpected algorithm, expired, or
// missing the role claim.  Callers do not need to distinguish further; a
// session token is either usable or it is not.
var ErrTokenInvalid = errors.New("invalid token")

// AccessToken represents a signed JWT session token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  The token is stateless: validity is decided
// purely by signature and expiry at verification time, so it cannot be
// revoked before it expires.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT carrying a role claim.  It
// takes the signing secret, the role to embed (this service only ever
// issues "admin"), and a TTL in minutes.  The JWT includes the role, the
// expiration (exp) and the issued-at time (iat).
func NewAccessToken(secret, role string, ttlMin int) (AccessToken, error) {
    exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "role": role,
        "exp":  exp.Unix(),
        "iat":  time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// VerifyAccessToken parses and validates a serialized session token and
// returns the embedded role.  Tokens signed with a different algorithm,
// signed with a different secret, expired, or lacking a string role claim
// all yield ErrTokenInvalid.
func VerifyAccessToken(secret, raw string) (string, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Reject tokens signed with anything but HMAC before checking the
        // signature itself.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrTokenInvalid
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return "", ErrTokenInvalid
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return "", ErrTokenInvalid
    }
    role, ok := claims["role"].(string)
    if !ok || role == "" {
        return "", ErrTokenInvalid
    }
    return role, nil
}
