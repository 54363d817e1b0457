package utils

import (
    "crypto/rand"
    "crypto/sha256"
    "encoding/hex"
    "errors"
    "strconv"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

// Issuer is stamped into every access token and required when parsing.
const Issuer = "theater-reservation"

// AccessToken is a signed dashboard JWT. Its expiry is also the expiry of
// the admin session built from it.
type AccessToken struct {
    Token string
    Exp   time.Time
}

// RefreshToken carries the raw value handed to the client. Only its SHA-256
// hash is stored.
type RefreshToken struct {
    Raw string
    Exp time.Time
}

// NewAccessToken signs an HS256 token with sub, role, iss, iat and exp.
func NewAccessToken(secret string, userID uint64, role string, ttlMin int) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
        "sub":  strconv.FormatUint(userID, 10),
        "role": role,
        "iss":  Issuer,
        "iat":  now.Unix(),
        "exp":  exp.Unix(),
    }).SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken returns 48 random bytes, hex encoded, valid for ttlDays.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
    buf := make([]byte, 48)
    if _, err := rand.Read(buf); err != nil {
        return RefreshToken{}, err
    }
    return RefreshToken{
        Raw: hex.EncodeToString(buf),
        Exp: time.Now().UTC().AddDate(0, 0, ttlDays),
    }, nil
}

// HashRefreshRaw is the value stored in refresh_tokens.token_hash.
func HashRefreshRaw(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}

// AccessClaims is the identity carried by a verified access token.
type AccessClaims struct {
    UserID    uint64
    Role      string
    ExpiresAt time.Time
}

// ErrBadClaims is returned for a validly signed token without the expected claims.
var ErrBadClaims = errors.New("token claims incomplete")

// ParseAccessToken verifies an HS256 token signed with secret and extracts
// the subject, role and expiry. Expired tokens and tokens from another
// issuer are rejected by the parser.
func ParseAccessToken(secret, raw string) (AccessClaims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        return []byte(secret), nil
    },
        jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
        jwt.WithExpirationRequired(),
        jwt.WithIssuer(Issuer),
    )
    if err != nil {
        return AccessClaims{}, err
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return AccessClaims{}, ErrBadClaims
    }
    var out AccessClaims
    switch sub := claims["sub"].(type) {
    case string:
        id, err := strconv.ParseUint(sub, 10, 64)
        if err != nil {
            return AccessClaims{}, ErrBadClaims
        }
        out.UserID = id
    case float64:
        out.UserID = uint64(sub)
    default:
        return AccessClaims{}, ErrBadClaims
    }
    out.Role, _ = claims["role"].(string)
    exp, err := claims.GetExpirationTime()
    if err != nil || exp == nil {
        return AccessClaims{}, ErrBadClaims
    }
    out.ExpiresAt = exp.Time
    if out.UserID == 0 || out.Role == "" {
        return AccessClaims{}, ErrBadClaims
    }
    return out, nil
}
