package editor

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jevonc/portfolio-backend/errs"
	"github.com/jevonc/portfolio-backend/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json names so the field in the error matches the request body
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("calendar_date", func(fl validator.FieldLevel) bool {
		_, err := models.ParseDate(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks the required fields of in. Surrounding whitespace does not count as a value.
func Validate(in Input) error {
	var err error
	switch v := in.(type) {
	case ProjectInput:
		v.Title, v.Description = strings.TrimSpace(v.Title), strings.TrimSpace(v.Description)
		err = validate.Struct(v)
	case AchievementInput:
		v.Title, v.Description = strings.TrimSpace(v.Title), strings.TrimSpace(v.Description)
		v.Date = strings.TrimSpace(v.Date)
		err = validate.Struct(v)
	default:
		return errs.NewBadRequestError("unsupported record input")
	}
	return toFieldError(err)
}

func toFieldError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errs.NewBadRequestError(err.Error())
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return errs.NewMissingRequiredFieldError(fe.Field())
	case "category":
		return errs.NewInvalidFieldError(fe.Field(), "must be one of "+joinCategories())
	case "oneof":
		return errs.NewInvalidFieldError(fe.Field(), "must be one of "+strings.ReplaceAll(fe.Param(), " ", ", "))
	case "calendar_date":
		return errs.NewInvalidFieldError(fe.Field(), "expected a date like 2006-01-02")
	}
	return errs.NewInvalidFieldError(fe.Field(), fe.Tag())
}

func joinCategories() string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
