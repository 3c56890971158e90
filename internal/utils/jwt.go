package utils // package utils provides helper functions for token signing and password hashing

import (
    "errors" // sentinel errors for token parsing
    "time"   // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and verifying signed tokens
)

// RoleAdmin is the only role the reservation service issues.  Admin tokens
// unlock the approval queue, the full record listing and the exports.
const RoleAdmin = "ADMIN"

// ErrInvalidToken is returned by ParseAccessToken for any token that is
// malformed, expired or signed with a different key or algorithm.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  Access tokens are short-lived and sent in the
// Authorization header when calling admin endpoints.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// Claims is the decoded payload of a verified access token.
type Claims struct {
    Subject string
    Role    string
}

// NewAccessToken builds and signs an HS256 JWT.  It takes the signing
// secret, the subject (the admin's login name), the role, and a TTL in
// minutes.  The JWT carries the standard claims sub, exp and iat plus the
// custom role claim.
func NewAccessToken(secret, subject, role string, ttlMin int) (AccessToken, error) {
    now := time.Now().UTC()
    // Calculate the expiration time by adding the TTL to the current UTC time.
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":  subject,
        "role": role,
        "exp":  exp.Unix(),
        "iat":  now.Unix(),
    }
    // Sign with HS256; a failure yields a zero AccessToken.
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies raw against secret and returns its claims.
// Only HMAC signatures are accepted and the exp claim is enforced by the
// jwt library.
func ParseAccessToken(secret, raw string) (Claims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Reject any algorithm other than HMAC to prevent key confusion.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return Claims{}, ErrInvalidToken
    }
    mc, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return Claims{}, ErrInvalidToken
    }
    sub, _ := mc["sub"].(string)
    role, _ := mc["role"].(string)
    return Claims{Subject: sub, Role: role}, nil
}
