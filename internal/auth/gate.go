package auth

import "github.com/UkralStul/blog-service/internal/domain"

// RequireAdmin пропускает только администратора.
// Вызывается первым шагом в каждой привилегированной операции,
// до загрузки каких-либо данных.
func RequireAdmin(who domain.Identity) (*domain.User, error) {
	if !who.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return who.User, nil
}

// RequireUser пропускает любого авторизованного пользователя.
func RequireUser(who domain.Identity) (*domain.User, error) {
	if !who.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	return who.User, nil
}
