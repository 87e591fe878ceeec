package validators

import (
	"fmt"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/SaltaGet/Back-SIJAC/internal/models"
)

var hhmm = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// IsClock reports whether s is a 24h HH:MM value.
func IsClock(s string) bool {
	return hhmm.MatchString(s)
}

// Register adds the project tags to gin's validator engine:
//
//	hhmm       24h clock value
//	case_state one of models.CaseStates
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return RegisterOn(v)
}

func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return IsClock(fl.Field().String())
	}); err != nil {
		return err
	}

	return v.RegisterValidation("case_state", func(fl validator.FieldLevel) bool {
		return models.IsCaseState(fl.Field().String())
	})
}
