package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/UkralStul/blog-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type form struct {
	Email string `json:"email" validate:"required,email,max=250"`
	Note  string `json:"note" validate:"notblank"`
	Link  string `json:"link,omitempty" validate:"required,http_url"`
}

func TestStruct(t *testing.T) {
	valid := form{Email: "a@x.com", Note: "hi", Link: "https://example.com/a.png"}
	require.NoError(t, Struct(valid))

	cases := []struct {
		name    string
		mutate  func(*form)
		field   string
		message string
	}{
		{"missing email", func(f *form) { f.Email = "" }, "email", "is required"},
		{"bad email", func(f *form) { f.Email = "nope" }, "email", "is not a valid email address"},
		{"long email", func(f *form) { f.Email = strings.Repeat("a", 250) + "@x.com" }, "email", ""},
		{"blank note", func(f *form) { f.Note = "   " }, "note", "is required"},
		{"relative link", func(f *form) { f.Link = "cover.jpg" }, "link", "must be an absolute http(s) URL"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := valid
			c.mutate(&in)

			var verr *domain.ValidationError
			require.True(t, errors.As(Struct(in), &verr))
			assert.Equal(t, c.field, verr.Field)
			if c.message != "" {
				assert.Equal(t, c.message, verr.Message)
			}
		})
	}
}

func TestStruct_MaxLength(t *testing.T) {
	type named struct {
		Name string `json:"name" validate:"required,max=250"`
	}
	require.NoError(t, Struct(named{Name: strings.Repeat("a", MaxFieldLength)}))

	var verr *domain.ValidationError
	require.True(t, errors.As(Struct(named{Name: strings.Repeat("a", MaxFieldLength+1)}), &verr))
	assert.Equal(t, "name", verr.Field)
	assert.Equal(t, "must be at most 250 characters", verr.Message)
}
