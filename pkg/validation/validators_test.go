package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/validation"
)

func TestCustomTags(t *testing.T) {
	v := validation.New()

	tests := []struct {
		value string
		tag   string
		ok    bool
	}{
		{"Montréal", "not_blank", true},
		{" \t", "not_blank", false},
		{"", "locale", true},
		{"fr", "locale", true},
		{"en", "locale", true},
		{"de", "locale", false},
		{"Stage très formateur, équipe accueillante", "no_emoji", true},
		{"Stage génial 🎉", "no_emoji", false},
		{"Merci ☺", "no_emoji", false},
	}
	for _, tt := range tests {
		err := v.Var(tt.value, tt.tag)
		if tt.ok {
			assert.NoError(t, err, "%s %q", tt.tag, tt.value)
		} else {
			assert.Error(t, err, "%s %q", tt.tag, tt.value)
		}
	}
}

func TestLocaleMessage(t *testing.T) {
	v := validation.New()
	err := v.Struct(struct {
		Locale string `validate:"locale"`
	}{"es"})
	assert.Equal(t, "Langue : langue non supportée (fr ou en)", validation.Message(err))
}
