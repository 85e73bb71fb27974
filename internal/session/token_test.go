package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestJWTCodec_RoundTrip(t *testing.T) {
	codec := NewJWTCodec(testSecret, time.Hour)

	tok, err := codec.Mint(42, "stamp")
	require.NoError(t, err)
	assert.NotEmpty(t, tok.ID)

	parsed, err := codec.Parse(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, uint(42), parsed.UserID)
	assert.Equal(t, "stamp", parsed.Stamp)
	assert.Equal(t, tok.ID, parsed.ID)
	assert.WithinDuration(t, tok.ExpiresAt, parsed.ExpiresAt, time.Second)
}

func TestJWTCodec_UniqueIDs(t *testing.T) {
	codec := NewJWTCodec(testSecret, time.Hour)
	a, err := codec.Mint(1, "stamp")
	require.NoError(t, err)
	b, err := codec.Mint(1, "stamp")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.Value, b.Value)
}

func TestJWTCodec_Rejects(t *testing.T) {
	codec := NewJWTCodec(testSecret, time.Hour)
	tok, err := codec.Mint(1, "stamp")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewJWTCodec([]byte("other"), time.Hour).Parse(tok.Value)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewJWTCodec(testSecret, time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Parse(tok.Value)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := codec.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other algorithm", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "1",
			ID:        "x",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		value, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSecret)
		require.NoError(t, err)
		_, err = codec.Parse(value)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("no expiry", func(t *testing.T) {
		claims := jwt.RegisteredClaims{Issuer: issuer, Subject: "1", ID: "x"}
		value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
		require.NoError(t, err)
		_, err = codec.Parse(value)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("no stamp", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "1",
			ID:        "x",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
		require.NoError(t, err)
		_, err = codec.Parse(value)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("bad subject", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "admin",
			ID:        "x",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
		require.NoError(t, err)
		_, err = codec.Parse(value)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
