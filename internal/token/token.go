package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer = "sijac"

	audienceSession      = "sijac-session"
	audienceConfirmation = "sijac-confirmation"
)

var (
	ErrExpired = errors.New("token expired")
	ErrInvalid = errors.New("invalid token")
)

// Codec signs and verifies HS256 tokens for staff sessions and for
// appointment confirmation links. Each kind carries its own audience so one
// can never be accepted as the other.
type Codec struct {
	secret []byte
	now    func() time.Time
}

type Option func(*Codec)

func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

func NewCodec(secret string, opts ...Option) *Codec {
	c := &Codec{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ===============================
// Session
// ===============================

type Session struct {
	UserID    string
	Role      string
	Email     string
	ExpiresAt time.Time
}

type sessionClaims struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (c *Codec) MintSession(userID, role, email string, ttl time.Duration) (string, time.Time, error) {
	now := c.now()
	exp := now.Add(ttl)

	claims := sessionClaims{
		Role:  role,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			Audience:  jwt.ClaimStrings{audienceSession},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := c.sign(claims)
	return signed, exp, err
}

func (c *Codec) ParseSession(raw string) (Session, error) {
	var claims sessionClaims
	if err := c.parse(raw, &claims, audienceSession); err != nil {
		return Session{}, err
	}
	if claims.Subject == "" {
		return Session{}, ErrInvalid
	}

	return Session{
		UserID:    claims.Subject,
		Role:      claims.Role,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// ===============================
// Appointment confirmation
// ===============================

type Confirmation struct {
	AppointmentID string
	UserID        string
	ExpiresAt     time.Time
}

type confirmationClaims struct {
	StaffID string `json:"staff_id"`
	jwt.RegisteredClaims
}

// MintConfirmation returns a single-use link token. The jti makes two
// reservations of the same slot produce different tokens.
func (c *Codec) MintConfirmation(appointmentID, userID string, ttl time.Duration) (string, time.Time, error) {
	now := c.now()
	exp := now.Add(ttl)

	claims := confirmationClaims{
		StaffID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   appointmentID,
			Audience:  jwt.ClaimStrings{audienceConfirmation},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := c.sign(claims)
	return signed, exp, err
}

func (c *Codec) ParseConfirmation(raw string) (Confirmation, error) {
	var claims confirmationClaims
	if err := c.parse(raw, &claims, audienceConfirmation); err != nil {
		return Confirmation{}, err
	}
	if claims.Subject == "" || claims.StaffID == "" {
		return Confirmation{}, ErrInvalid
	}

	return Confirmation{
		AppointmentID: claims.Subject,
		UserID:        claims.StaffID,
		ExpiresAt:     claims.ExpiresAt.Time,
	}, nil
}

// --------------------------------------------------
// helpers
// --------------------------------------------------

func (c *Codec) sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

func (c *Codec) parse(raw string, claims jwt.Claims, audience string) error {
	_, err := jwt.ParseWithClaims(
		raw,
		claims,
		func(t *jwt.Token) (any, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return ErrInvalid
	}
}
