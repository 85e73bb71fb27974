// Package validation проверяет входные данные по тегам `validate`.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/UkralStul/blog-service/internal/domain"

	"github.com/go-playground/validator/v10"
)

// MaxFieldLength - длина колонок varchar в схеме.
const MaxFieldLength = 250

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// В ошибках используем имена полей из JSON
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	// notblank: строка из одних пробелов считается пустой
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Struct проверяет структуру и возвращает *domain.ValidationError для
// первого неверного поля.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("failed to validate %T: %w", s, err)
	}
	fe := fieldErrs[0]
	return &domain.ValidationError{Field: fe.Field(), Message: message(fe)}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "email":
		return "is not a valid email address"
	case "http_url", "url":
		return "must be an absolute http(s) URL"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	}
	return "is invalid"
}
