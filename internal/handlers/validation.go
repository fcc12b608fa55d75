package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	appErrors "github.com/charlesng35/notesd/pkg/errors"
	appValidator "github.com/charlesng35/notesd/pkg/validator"
)

// bindAndValidate binds the JSON payload into dest and runs struct validation rules.
// When binding or validation fails, the failure is recorded on the context and false is returned.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		abort(c, appErrors.NewValidation("Invalid JSON payload"))
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		abort(c, appErrors.NewValidation(validationMessage(err)))
		return false
	}

	return true
}

func validationMessage(err error) string {
	var ve appValidator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return ve.First()
	}
	return "Invalid request payload"
}
