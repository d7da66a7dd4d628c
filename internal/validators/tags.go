package validators

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

// Register adds the request tags used by the handlers to gin's validator:
//
//	hhmm     "15:04" wall-clock time
//	isodate  "2006-01-02" calendar date
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return RegisterOn(v)
}

func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation("hhmm", layout(timezone.TimeLayout)); err != nil {
		return err
	}
	return v.RegisterValidation("isodate", layout(timezone.DateLayout))
}

func layout(l string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if len(s) != len(l) {
			return false
		}
		_, err := time.Parse(l, s)
		return err == nil
	}
}
