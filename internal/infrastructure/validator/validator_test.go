package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePasswordStrength(t *testing.T) {
	v := NewValidator()
	cases := map[string]bool{
		"short1!":       false,
		"nouppercase1!": false,
		"NOLOWERCASE1!": false,
		"NoNumbers!!":   false,
		"NoSpecial123":  false,
		"Popcorn123!":   true,
	}
	for pw, ok := range cases {
		err := v.ValidatePasswordStrength(pw)
		if ok {
			assert.NoError(t, err, pw)
		} else {
			assert.Error(t, err, pw)
		}
	}
}

func TestValidateStruct_CustomTags(t *testing.T) {
	type signup struct {
		Username string `validate:"handle"`
		Text     string `validate:"notblank"`
	}
	v := NewValidator()
	assert.NoError(t, v.ValidateStruct(signup{Username: "film_buff", Text: "hi"}))
	assert.Error(t, v.ValidateStruct(signup{Username: "Film Buff", Text: "hi"}))
	assert.Error(t, v.ValidateStruct(signup{Username: "film_buff", Text: "   "}))
	assert.Error(t, v.ValidateEmail("not-an-email"))
}
