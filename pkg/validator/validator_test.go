package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	Username string `json:"username" validate:"required,min=3,max=15"`
	Email    string `json:"email" validate:"required,email"`
	Age      int    `json:"age" validate:"gte=18"`
}

type passwordPayload struct {
	Password        string `json:"password" validate:"required,min=3,max=60"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

func TestValidateStructSuccess(t *testing.T) {
	payload := testPayload{
		Username: "alice",
		Email:    "alice@example.com",
		Age:      20,
	}

	require.NoError(t, ValidateStruct(payload))
}

func TestValidateStructFailures(t *testing.T) {
	payload := testPayload{
		Username: "",
		Email:    "invalid",
		Age:      10,
	}

	err := ValidateStruct(payload)
	require.Error(t, err)

	vErrs, ok := err.(ValidationErrors)
	require.True(t, ok, "expected ValidationErrors, got %T", err)
	require.Len(t, vErrs, 3)

	fields := make(map[string]string, len(vErrs))
	for _, v := range vErrs {
		fields[v.Field] = v.Tag
	}
	require.Equal(t, "required", fields["username"])
	require.Equal(t, "email", fields["email"])
	require.Equal(t, "gte", fields["age"])
}

func TestValidationMessages(t *testing.T) {
	err := ValidateStruct(testPayload{Username: "al", Email: "alice@example.com", Age: 20})
	require.Error(t, err)
	require.Equal(t, `"username" length must be at least 3 characters long`, err.(ValidationErrors).First())

	err = ValidateStruct(testPayload{Username: "abcdefghijklmnop", Email: "alice@example.com", Age: 20})
	require.Error(t, err)
	require.Equal(t, `"username" length must be less than or equal to 15 characters long`, err.(ValidationErrors).First())

	err = ValidateStruct(passwordPayload{Password: "secret", ConfirmPassword: "other"})
	require.Error(t, err)
	require.Equal(t, `"confirmPassword" must match "password"`, err.(ValidationErrors).First())

	err = ValidateStruct(testPayload{Username: "alice", Email: "", Age: 20})
	require.Error(t, err)
	require.Equal(t, `"email" is required`, err.(ValidationErrors).First())
}

func TestRegisterValidation(t *testing.T) {
	err := RegisterValidation("notes", func(fl validator.FieldLevel) bool {
		return fl.Field().String() == "notes"
	})
	require.NoError(t, err)

	type custom struct {
		Value string `validate:"notes"`
	}

	require.NoError(t, ValidateStruct(custom{Value: "notes"}))
	require.Error(t, ValidateStruct(custom{Value: "other"}))
}
