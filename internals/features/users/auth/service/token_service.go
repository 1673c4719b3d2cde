package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const tokenTypeAccess = "access"

// AccessClaims is the parsed payload of an access token.
type AccessClaims struct {
	UserID    uuid.UUID
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type TokenIssuer struct {
	Secret []byte
	TTL    time.Duration
	Skew   time.Duration
	Now    func() time.Time
}

func NewTokenIssuer(secret string, ttl, skew time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{Secret: []byte(secret), TTL: ttl, Skew: skew, Now: time.Now}
}

func (t *TokenIssuer) Issue(userID uuid.UUID, email string) (string, time.Time, error) {
	if len(t.Secret) == 0 {
		return "", time.Time{}, errors.New("missing JWT secret")
	}
	now := t.Now().UTC()
	exp := now.Add(t.TTL)
	claims := jwt.MapClaims{
		"id":    userID.String(),
		"sub":   userID.String(),
		"email": email,
		"typ":   tokenTypeAccess,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.Secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign access token")
	}
	return signed, time.Unix(exp.Unix(), 0).UTC(), nil
}

// Parse verifies signature and type, then checks exp with the configured skew.
func (t *TokenIssuer) Parse(raw string) (AccessClaims, error) {
	if len(t.Secret) == 0 {
		return AccessClaims{}, errors.New("missing JWT secret")
	}
	claims := jwt.MapClaims{}
	parser := jwt.Parser{SkipClaimsValidation: true, ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	if _, err := parser.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return t.Secret, nil
	}); err != nil {
		return AccessClaims{}, errors.Wrap(err, "parse token")
	}

	if typ, _ := claims["typ"].(string); typ != "" && typ != tokenTypeAccess {
		return AccessClaims{}, fmt.Errorf("unexpected token type %q", typ)
	}

	exp, err := unixClaim(claims, "exp")
	if err != nil {
		return AccessClaims{}, err
	}
	if t.Now().UTC().After(exp.Add(t.Skew)) {
		return AccessClaims{}, fmt.Errorf("token expired at %v", exp)
	}

	idRaw, _ := claims["id"].(string)
	if idRaw == "" {
		idRaw, _ = claims["sub"].(string)
	}
	uid, err := uuid.Parse(strings.TrimSpace(idRaw))
	if err != nil {
		return AccessClaims{}, errors.New("invalid or missing user id")
	}
	email, _ := claims["email"].(string)
	iat, _ := unixClaim(claims, "iat")

	return AccessClaims{UserID: uid, Email: email, IssuedAt: iat, ExpiresAt: exp}, nil
}

func unixClaim(claims jwt.MapClaims, key string) (time.Time, error) {
	switch v := claims[key].(type) {
	case float64:
		return time.Unix(int64(v), 0).UTC(), nil
	case int64:
		return time.Unix(v, 0).UTC(), nil
	case nil:
		return time.Time{}, fmt.Errorf("token has no %s", key)
	default:
		return time.Time{}, fmt.Errorf("invalid %s type", key)
	}
}
