package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-authflow"
)

func TestLoginRequestValidate(t *testing.T) {
	valid := auth.LoginRequest{
		Identifier: "peperone@example.com",
		Password:   "sup3r-secret",
	}
	require.NoError(t, valid.Validate())

	missing := auth.LoginRequest{}
	err := missing.Validate()
	require.Error(t, err)

	fields := auth.FormatValidationErrorToMap(err)
	assert.Contains(t, fields, "identifier")
	assert.Contains(t, fields, "password")

	notEmail := auth.LoginRequest{
		Identifier: "not-an-email",
		Password:   "sup3r-secret",
	}
	err = notEmail.Validate()
	require.Error(t, err)
	assert.Contains(t, auth.FormatValidationErrorToMap(err), "identifier")
}

func TestSignupRequestValidate(t *testing.T) {
	valid := auth.SignupRequest{
		Email:    "peperone@example.com",
		FullName: "Pepe Rone",
		Password: "sup3r-secret",
	}
	require.NoError(t, valid.Validate())

	shortPassword := auth.SignupRequest{
		Email:    "peperone@example.com",
		FullName: "Pepe Rone",
		Password: "short",
	}
	err := shortPassword.Validate()
	require.Error(t, err)
	assert.Contains(t, auth.FormatValidationErrorToMap(err), "password")

	missingName := auth.SignupRequest{
		Email:    "peperone@example.com",
		Password: "sup3r-secret",
	}
	err = missingName.Validate()
	require.Error(t, err)
	assert.Contains(t, auth.FormatValidationErrorToMap(err), "full_name")
}

func TestSignupRequestValidate_PasswordLengthBoundary(t *testing.T) {
	sixChars := auth.SignupRequest{
		Email:    "a@x.com",
		FullName: "A",
		Password: "secr3t",
	}
	require.NoError(t, sixChars.Validate())

	sevenChars := auth.SignupRequest{
		Email:    "a@x.com",
		FullName: "A",
		Password: "secret1",
	}
	require.NoError(t, sevenChars.Validate())

	fiveChars := auth.SignupRequest{
		Email:    "a@x.com",
		FullName: "A",
		Password: "12345",
	}
	err := fiveChars.Validate()
	require.Error(t, err)
	assert.Contains(t, auth.FormatValidationErrorToMap(err), "password")
}

func TestFormatValidationErrorToMap(t *testing.T) {
	assert.Empty(t, auth.FormatValidationErrorToMap(nil))

	fields := auth.FormatValidationErrorToMap(assert.AnError)
	require.Contains(t, fields, "error")
	assert.Equal(t, assert.AnError.Error(), fields["error"])
}
