package session

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/UkralStul/blog-service/internal/domain"
)

// Directory - источник пользователей для менеджера сессий.
type Directory interface {
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	FindByID(ctx context.Context, id uint) (*domain.User, error)
}

// Session - результат успешного входа.
type Session struct {
	Token     string       `json:"token"`
	User      *domain.User `json:"user"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// Manager управляет переходами Anonymous -> Authenticated -> Anonymous.
type Manager struct {
	dir     Directory
	codec   TokenCodec
	revoked *revocationList
	now     func() time.Time
}

func NewManager(dir Directory, codec TokenCodec) *Manager {
	return &Manager{
		dir:     dir,
		codec:   codec,
		revoked: newRevocationList(),
		now:     time.Now,
	}
}

// Login проверяет учетные данные и открывает сессию.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := m.dir.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			log.Printf("login rejected for %q: %v", email, err)
		}
		return nil, err
	}
	return m.Start(user)
}

// Start открывает сессию для уже проверенного пользователя.
func (m *Manager) Start(user *domain.User) (*Session, error) {
	token, err := m.codec.Mint(user.ID, userStamp(user))
	if err != nil {
		return nil, err
	}
	return &Session{Token: token.Value, User: user, ExpiresAt: token.ExpiresAt}, nil
}

// Logout отзывает токен. Для анонима и мусорного токена ничего не делает.
func (m *Manager) Logout(token string) {
	if token == "" {
		return
	}
	parsed, err := m.codec.Parse(token)
	if err != nil {
		return
	}
	m.revoked.revoke(parsed.ID, parsed.ExpiresAt, m.now())
}

// Resolve определяет текущего вызывающего по токену. Только чтение.
//
// Пустой, поддельный, истекший или отозванный токен дает Anonymous.
// Действительный токен несуществующего пользователя - фатальная ошибка.
func (m *Manager) Resolve(ctx context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Anonymous, nil
	}
	parsed, err := m.codec.Parse(token)
	if err != nil {
		return domain.Anonymous, nil
	}
	if m.revoked.isRevoked(parsed.ID) {
		return domain.Anonymous, nil
	}

	user, err := m.dir.FindByID(ctx, parsed.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Anonymous, fmt.Errorf("user %d: %w", parsed.UserID, domain.ErrInconsistentSession)
		}
		return domain.Anonymous, err
	}
	// ID мог достаться другому пользователю после сброса хранилища
	if subtle.ConstantTimeCompare([]byte(parsed.Stamp), []byte(userStamp(user))) != 1 {
		log.Printf("session %s: token was issued for a previous holder of user id %d", parsed.ID, parsed.UserID)
		return domain.Anonymous, nil
	}
	return domain.AuthenticatedAs(user), nil
}

// userStamp - отпечаток записи пользователя. Хеш пароля соленый, поэтому
// повторная регистрация с тем же email дает другой отпечаток.
func userStamp(u *domain.User) string {
	sum := sha256.Sum256([]byte(u.Email + "\x00" + u.PasswordHash))
	return hex.EncodeToString(sum[:8])
}
