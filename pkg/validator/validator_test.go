package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBase64Payload(t *testing.T) {
	assert.True(t, IsBase64Payload(""))
	assert.True(t, IsBase64Payload("aGVsbG8="))
	assert.True(t, IsBase64Payload("aGVsbG8gd29ybGQh"))
	assert.True(t, IsBase64Payload("AB+/CD=="))

	// data: URI prefixes and whitespace are not accepted
	assert.False(t, IsBase64Payload("data:image/png;base64,aGVsbG8="))
	assert.False(t, IsBase64Payload("aGVs bG8="))
	assert.False(t, IsBase64Payload("aGVsbG8==="))
	assert.False(t, IsBase64Payload("aGVs=bG8"))
	assert.False(t, IsBase64Payload("héllo"))
}

func TestValidateStruct(t *testing.T) {
	type payload struct {
		Email string `validate:"required,email"`
		Name  string `validate:"required,max=50"`
	}

	errs := ValidateStruct(payload{Email: "staff@example.com", Name: "Tanaka"})
	assert.Empty(t, errs)

	errs = ValidateStruct(payload{Email: "not-an-email", Name: "Tanaka"})
	assert.Len(t, errs, 1)
	assert.Equal(t, "email", errs[0].Tag)

	errs = ValidateStruct(payload{})
	assert.Len(t, errs, 2)
	for _, e := range errs {
		assert.Equal(t, "required", e.Tag)
	}
}
