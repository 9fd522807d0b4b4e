// Package auth issues and verifies the bearer tokens the API uses, hashes
// passwords, and provides the middleware that guards protected routes.
//
// TOKEN MODEL:
// Login returns two HS256-signed JWTs for the same subject (the user's email)
// and account id ("uid"):
//
//	access  - short-lived, sent as "Authorization: Bearer <token>" on every
//	          protected request
//	refresh - long-lived, only accepted by POST /token/refresh, which trades it
//	          for a fresh pair
//
// The "typ" claim says which one a token is. RequireAuth rejects refresh
// tokens and the refresh endpoint rejects access tokens, so a leaked access
// token can never be used to mint new ones.
//
// Tokens are stateless: verifying one needs only the secret, never the
// database. The handlers still resolve the subject to a live user on every
// request and require the row's id to match "uid", so the tokens of a deleted
// account stay dead even if someone signs up again with the same email.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

// TokenType is the value of the "typ" claim.
type TokenType string

const (
	TypeAccess  TokenType = "access"
	TypeRefresh TokenType = "refresh"
)

var (
	ErrTokenExpired   = errors.New("auth: token expired")
	ErrInvalidToken   = errors.New("auth: invalid token")
	ErrWrongTokenType = errors.New("auth: wrong token type")
)

// TokenConfig holds everything needed to sign and verify tokens.
type TokenConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenService handles JWT creation and validation.
type TokenService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService creates a TokenService from cfg. The secret must be at least
// 16 characters; generate one with `openssl rand -hex 32`.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.Secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if cfg.Issuer == "" {
		return nil, errors.New("auth: issuer must not be empty")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("auth: token lifetimes must be positive")
	}
	return &TokenService{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

// Identity is who a token was issued to.
type Identity struct {
	UserID int64
	Email  string
}

// claims is the JWT payload: the registered claims plus our token type and
// the account id. Subject carries the user's email; ID (jti) is a fresh xid
// per token.
type claims struct {
	jwt.RegisteredClaims
	Type   TokenType `json:"typ"`
	UserID int64     `json:"uid"`
}

// Pair is what a successful login or refresh hands back to the client.
type Pair struct {
	AccessToken  string
	RefreshToken string
	// ExpiresIn is the access token's lifetime.
	ExpiresIn time.Duration
}

// AccessTTL reports how long issued access tokens live.
func (s *TokenService) AccessTTL() time.Duration {
	return s.accessTTL
}

// IssuePair signs a new access token and refresh token for id.
func (s *TokenService) IssuePair(id Identity) (Pair, error) {
	access, err := s.issue(id, TypeAccess, s.accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := s.issue(id, TypeRefresh, s.refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh, ExpiresIn: s.accessTTL}, nil
}

func (s *TokenService) issue(id Identity, typ TokenType, ttl time.Duration) (string, error) {
	if id.Email == "" {
		return "", errors.New("auth: cannot issue a token without a subject")
	}
	if id.UserID <= 0 {
		return "", errors.New("auth: cannot issue a token without a user id")
	}

	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        xid.New().String(),
			Subject:   id.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    s.issuer,
		},
		Type:   typ,
		UserID: id.UserID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing %s token: %w", typ, err)
	}
	return signed, nil
}

// Validate verifies tokenStr and returns the identity it was issued to. The token must be
// signed with our secret using HS256, carry our issuer, be unexpired, and be
// of type want.
//
// Passing jwt.WithValidMethods matters: without it a token whose header says
// "alg": "none" could be accepted unsigned.
func (s *TokenService) Validate(tokenStr string, want TokenType) (Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	if c.Type != want {
		return Identity{}, fmt.Errorf("%w: got %q, want %q", ErrWrongTokenType, c.Type, want)
	}
	if c.Subject == "" {
		return Identity{}, fmt.Errorf("%w: token has no subject", ErrInvalidToken)
	}
	if c.UserID <= 0 {
		return Identity{}, fmt.Errorf("%w: token has no user id", ErrInvalidToken)
	}
	return Identity{UserID: c.UserID, Email: c.Subject}, nil
}
