package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "blog-service"

// ErrInvalidToken - токен не прошел проверку подписи, срока или формата.
var ErrInvalidToken = errors.New("invalid session token")

// Token - разобранный токен сессии.
type Token struct {
	Value  string
	ID     string
	UserID uint
	// Stamp привязывает токен к конкретной записи пользователя, а не только к ID.
	Stamp     string
	ExpiresAt time.Time
}

// TokenCodec выпускает и проверяет токены сессий.
type TokenCodec interface {
	Mint(userID uint, stamp string) (Token, error)
	Parse(value string) (Token, error)
}

type sessionClaims struct {
	Stamp string `json:"stp"`
	jwt.RegisteredClaims
}

// JWTCodec - TokenCodec на основе JWT с подписью HS256.
type JWTCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTCodec(secret []byte, ttl time.Duration) *JWTCodec {
	return &JWTCodec{secret: secret, ttl: ttl, now: time.Now}
}

func (c *JWTCodec) Mint(userID uint, stamp string) (Token, error) {
	now := c.now()
	claims := sessionClaims{
		Stamp: stamp,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return Token{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return Token{
		Value:     value,
		ID:        claims.ID,
		UserID:    userID,
		Stamp:     stamp,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (c *JWTCodec) Parse(value string) (Token, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(value, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 || claims.ID == "" || claims.Stamp == "" {
		return Token{}, fmt.Errorf("%w: bad claims", ErrInvalidToken)
	}
	return Token{
		Value:     value,
		ID:        claims.ID,
		UserID:    uint(userID),
		Stamp:     claims.Stamp,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
