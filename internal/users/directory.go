package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/UkralStul/blog-service/internal/domain"
	"github.com/UkralStul/blog-service/internal/validation"
)

// Registration - поля формы регистрации.
type Registration struct {
	Email    string `json:"email" validate:"required,email,max=250"`
	Name     string `json:"name" validate:"notblank,max=250"`
	Password string `json:"password" validate:"required,min=8"`
}

// Store - часть хранилища, нужная справочнику пользователей.
type Store interface {
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, id uint) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Hasher хеширует и проверяет пароли.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, credential string) (bool, error)
}

// Directory - справочник пользователей: регистрация и поиск.
type Directory struct {
	store  Store
	hasher Hasher
}

func NewDirectory(store Store, hasher Hasher) *Directory {
	return &Directory{store: store, hasher: hasher}
}

// Register создает пользователя. Email сравнивается точно, с учетом регистра;
// обрезаются только пробелы по краям.
func (d *Directory) Register(ctx context.Context, email, name, password string) (*domain.User, error) {
	form := Registration{
		Email:    strings.TrimSpace(email),
		Name:     strings.TrimSpace(name),
		Password: password,
	}
	if err := validation.Struct(form); err != nil {
		return nil, err
	}
	email, name = form.Email, form.Name

	// Предварительная проверка. Гонку закрывает уникальный индекс хранилища.
	if _, err := d.store.GetUserByEmail(ctx, email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := d.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return d.store.CreateUser(ctx, &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	})
}

// Authenticate проверяет пару email/пароль.
// Возвращает ErrUnknownEmail или ErrWrongPassword, обе - ErrInvalidCredentials.
func (d *Directory) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := d.store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnknownEmail
		}
		return nil, err
	}

	ok, err := d.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", user.ID, err)
	}
	if !ok {
		return nil, domain.ErrWrongPassword
	}
	return user, nil
}

func (d *Directory) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return d.store.GetUserByEmail(ctx, strings.TrimSpace(email))
}

func (d *Directory) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return d.store.GetUserByID(ctx, id)
}
