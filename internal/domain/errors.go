package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("a post with that title already exists")
	ErrDuplicateEmail  = errors.New("you've already signed up with that email, log in instead")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("you need to login or register to comment")

	// ErrInvalidCredentials - общая категория ошибок входа.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnknownEmail       = fmt.Errorf("%w: that email does not exist, please try again", ErrInvalidCredentials)
	ErrWrongPassword      = fmt.Errorf("%w: password incorrect, please try again", ErrInvalidCredentials)

	// Фатальные ошибки: запрос прерывается с 500.
	ErrCorruptCredential   = errors.New("stored credential is malformed")
	ErrInconsistentSession = errors.New("session refers to a user that does not exist")
)

// ValidationError описывает некорректное значение поля формы.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsFatal сообщает, что ошибка не относится к предсказуемым доменным состояниям.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var verr *ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrDuplicateEmail),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrInvalidCredentials):
		return false
	}
	return true
}
