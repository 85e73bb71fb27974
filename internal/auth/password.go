package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/UkralStul/blog-service/internal/domain"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultIterations совпадает со значением werkzeug для pbkdf2:sha256.
	DefaultIterations = 600000

	method     = "pbkdf2"
	hashName   = "sha256"
	saltLength = 16
	keyLength  = sha256.Size
	saltChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// Hasher хеширует и проверяет пароли.
//
// Формат хеша: "pbkdf2:sha256:<iterations>$<salt>$<hex>", совместимый с
// werkzeug.security. Verify принимает и короткие формы "pbkdf2:sha256" и
// "pbkdf2" с итерациями по умолчанию. Параметры хранятся вместе с хешем, поэтому смена
// Iterations не ломает проверку старых паролей.
type Hasher struct {
	Iterations int
}

// NewHasher создает Hasher; iterations <= 0 означает DefaultIterations.
func NewHasher(iterations int) *Hasher {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return &Hasher{Iterations: iterations}
}

// Hash возвращает соленый хеш пароля.
func (h *Hasher) Hash(password string) (string, error) {
	salt, err := genSalt(saltLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	sum := derive(password, salt, h.Iterations)
	return fmt.Sprintf("%s:%s:%d$%s$%s", method, hashName, h.Iterations, salt, hex.EncodeToString(sum)), nil
}

// Verify сравнивает пароль с хешем. Несовпадение - это false без ошибки;
// ошибка возвращается только для поврежденного хеша.
func (h *Hasher) Verify(password, credential string) (bool, error) {
	iterations, salt, want, err := parse(credential)
	if err != nil {
		return false, err
	}
	got := derive(password, salt, iterations)
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func derive(password, salt string, iterations int) []byte {
	return pbkdf2.Key([]byte(password), []byte(salt), iterations, keyLength, sha256.New)
}

func parse(credential string) (iterations int, salt string, sum []byte, err error) {
	corrupt := func(reason string) error {
		return fmt.Errorf("%w: %s", domain.ErrCorruptCredential, reason)
	}

	parts := strings.Split(credential, "$")
	if len(parts) != 3 {
		return 0, "", nil, corrupt("expected method$salt$hash")
	}
	// Как в werkzeug: без числа итераций берется значение по умолчанию,
	// без имени хеша - sha256
	params := strings.Split(parts[0], ":")
	if params[0] != method || len(params) > 3 || (len(params) > 1 && params[1] != hashName) {
		return 0, "", nil, corrupt("unsupported method " + parts[0])
	}
	iterations = DefaultIterations
	if len(params) == 3 {
		iterations, err = strconv.Atoi(params[2])
		if err != nil || iterations <= 0 {
			return 0, "", nil, corrupt("bad iteration count")
		}
	}
	if parts[1] == "" {
		return 0, "", nil, corrupt("empty salt")
	}
	sum, err = hex.DecodeString(parts[2])
	if err != nil || len(sum) != keyLength {
		return 0, "", nil, corrupt("bad hash encoding")
	}
	return iterations, parts[1], sum, nil
}

func genSalt(n int) (string, error) {
	var b strings.Builder
	b.Grow(n)
	max := big.NewInt(int64(len(saltChars)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(saltChars[idx.Int64()])
	}
	return b.String(), nil
}
