package service

import (
	"github.com/go-playground/validator/v10"

	"github.com/astrxnomo/agendaun/internal/models"
	appErrors "github.com/astrxnomo/agendaun/pkg/errors"
)

func newValidator(validate *validator.Validate) *validator.Validate {
	if validate == nil {
		validate = validator.New()
	}
	_ = validate.RegisterValidation("color", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseColor(fl.Field().String())
		return ok
	})
	return validate
}

func invalidPayload(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

// normaliseID turns empty optional references into nil.
func normaliseID(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	value := *id
	return &value
}
