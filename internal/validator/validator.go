// internal/validator/validator.go
package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"card-assistant/internal/domain"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New()

	// Known merchant category, e.g. "groceries"
	_ = Validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		s := domain.Category(fl.Field().String())
		for _, c := range domain.Categories {
			if s == c {
				return true
			}
		}
		return false
	})

	// Cap period: monthly, quarterly or yearly
	_ = Validate.RegisterValidation("capperiod", func(fl validator.FieldLevel) bool {
		switch domain.CapPeriod(fl.Field().String()) {
		case domain.CapMonthly, domain.CapQuarterly, domain.CapYearly:
			return true
		}
		return false
	})

	// Not empty and not only whitespace
	_ = Validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return len(regexp.MustCompile(`\S`).FindString(s)) > 0
	})
}
