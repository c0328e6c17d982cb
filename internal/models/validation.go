package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"natours-api/internal/apperror"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("difficulty", func(fl validator.FieldLevel) bool {
		return IsValidDifficulty(fl.Field().String())
	})
}

var fieldMessages = map[string]string{
	"name.required":         "A tour must have a name",
	"name.min":              "A tour name must have more or equal than 10 characters",
	"name.max":              "A tour name must have less or equal than 40 characters",
	"duration.required":     "A tour must have a duration",
	"duration.gt":           "A tour duration must be positive",
	"maxGroupSize.required": "A tour must have a maxGroupSize",
	"maxGroupSize.gt":       "A tour maxGroupSize must be positive",
	"difficulty.required":   "A tour must have a difficulty",
	"difficulty.difficulty": "Difficulty is either: easy, medium, difficult",
	"ratingAverage.gte":     "Rating must be above 1.0",
	"ratingAverage.lte":     "Rating must be below 5.0",
	"ratingQuantity.gte":    "Rating quantity cannot be negative",
	"price.required":        "A tour must have a price",
	"price.gt":              "A tour price must be positive",
	"priceDiscount.gte":     "Discount price cannot be negative",
	"summary.required":      "A tour must have a summary",
	"summary.min":           "A tour must have a summary",
	"imageCover.required":   "A tour must have a cover image",
	"imageCover.min":        "A tour must have a cover image",
}

// ValidateTourInput runs the field rules plus the creation-only check that a
// discount stays below the price.
func ValidateTourInput(in *TourInput) error {
	fields := collect(validate.Struct(in))

	if in.PriceDiscount != nil && in.Price != nil && !(*in.PriceDiscount < *in.Price) {
		if _, ok := fields["priceDiscount"]; !ok {
			fields["priceDiscount"] = fmt.Sprintf("Discount price (%v) should be below regular price", *in.PriceDiscount)
		}
	}

	if len(fields) > 0 {
		return apperror.Validation(fields)
	}
	return nil
}

func ValidateTourPatch(p *TourPatch) error {
	if fields := collect(validate.Struct(p)); len(fields) > 0 {
		return apperror.Validation(fields)
	}
	return nil
}

func collect(err error) map[string]string {
	fields := map[string]string{}
	if err == nil {
		return fields
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["_"] = err.Error()
		return fields
	}

	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag())
		}
		fields[fe.Field()] = msg
	}
	return fields
}
