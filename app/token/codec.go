// Package token issues and verifies the signed, self-contained tokens used for
// email verification, password reset and session cookies. Nothing is stored
// server-side; a token is valid as long as its signature checks out under the
// key derived for its purpose and it is younger than the caller's max age.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	PurposeEmailVerification = "email-verification"
	PurposePasswordReset     = "password-reset"
	PurposeSession           = "session"

	keyNamespace = "mood-journal/"
)

var (
	ErrInvalid = errors.New("invalid token")
	ErrExpired = errors.New("token expired")
)

type Claims struct {
	Purpose string `json:"pur"`
	UserID  string `json:"uid,omitempty"`
	// IssuedNanos is the sub-second part of IssuedAt, which is encoded in
	// whole seconds.
	IssuedNanos int `json:"iat_ns,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) issuedAt() time.Time {
	return c.IssuedAt.Time.Add(time.Duration(c.IssuedNanos))
}

type Codec struct {
	secret []byte
	now    func() time.Time
}

type Option func(*Codec)

// WithClock replaces time.Now; used by tests to move time forward.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

func NewCodec(secret string, opts ...Option) *Codec {
	c := &Codec{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Issue signs subject for purpose. The issue time travels inside the token.
func (c *Codec) Issue(purpose, subject string) (string, error) {
	now := c.now()
	claims := &Claims{
		Purpose:     purpose,
		IssuedNanos: now.Nanosecond(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(now),
			ID:       uuid.NewString(),
		},
	}
	return c.sign(purpose, claims)
}

// Verify returns the subject of a token issued for purpose, provided it is not
// older than maxAge.
func (c *Codec) Verify(tokenString, purpose string, maxAge time.Duration) (string, error) {
	claims, err := c.parse(tokenString, purpose)
	if err != nil {
		return "", err
	}
	if claims.IssuedAt == nil || claims.IssuedNanos < 0 || claims.IssuedNanos >= int(time.Second) {
		return "", ErrInvalid
	}
	if c.now().Sub(claims.issuedAt()) > maxAge {
		return "", ErrExpired
	}
	return claims.Subject, nil
}

// IssueSession signs a session cookie value carrying the session and user ids.
func (c *Codec) IssueSession(sessionID, userID string, expiresAt time.Time) (string, error) {
	claims := &Claims{
		Purpose: PurposeSession,
		UserID:  userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(c.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return c.sign(PurposeSession, claims)
}

func (c *Codec) VerifySession(tokenString string) (sessionID, userID string, err error) {
	claims, err := c.parse(tokenString, PurposeSession)
	if err != nil {
		return "", "", err
	}
	if claims.ExpiresAt == nil || claims.Subject == "" || claims.UserID == "" {
		return "", "", ErrInvalid
	}
	return claims.Subject, claims.UserID, nil
}

func (c *Codec) sign(purpose string, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.key(purpose))
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", purpose, err)
	}
	return signed, nil
}

func (c *Codec) parse(tokenString, purpose string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.key(purpose), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !token.Valid || claims.Purpose != purpose {
		return nil, ErrInvalid
	}
	return claims, nil
}

// key derives a per-purpose signing key so a token minted for one purpose
// never verifies under another.
func (c *Codec) key(purpose string) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(keyNamespace + purpose))
	return mac.Sum(nil)
}
