package validator

import (
	"sync"

	"github.com/go-playground/validator/v10"

	ierr "github.com/leasebill/billing-engine/internal/errors"
)

var (
	validate *validator.Validate
	once     sync.Once
)

func init() {
	once.Do(func() {
		validate = validator.New()
	})
}

// ValidateRequest runs struct tag validation over req, translating a
// validator.ValidationErrors into a reportable ErrValidation with one
// detail entry per offending field.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		details := make(map[string]any)
		if validateErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fieldErr := range validateErrs {
				details[fieldErr.Field()] = fieldErr.Error()
			}
		}
		return ierr.WithError(err).
			WithHint("configuration validation failed").
			WithReportableDetails(details).
			Mark(ierr.ErrValidation)
	}
	return nil
}
