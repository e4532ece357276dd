// Package validation registers the custom binding tags used by the DTOs:
// hhmm (clock time), ymd (calendar date) and hexcolor6 (#RRGGBB).
package validation

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/ren-jimpo/shift-management-app-sub000/pkg/timeutil"
)

var (
	once        sync.Once
	registerErr error

	hexColor6 = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

// Register installs the custom tags into gin's default validator. It is
// safe to call more than once.
func Register() error {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		registerErr = RegisterOn(v)
	})
	return registerErr
}

// RegisterOn installs the custom tags into v.
func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := timeutil.NormalizeTime(fl.Field().String())
		return err == nil
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("ymd", func(fl validator.FieldLevel) bool {
		_, err := timeutil.ParseDate(fl.Field().String())
		return err == nil
	}); err != nil {
		return err
	}
	return v.RegisterValidation("hexcolor6", func(fl validator.FieldLevel) bool {
		return hexColor6.MatchString(fl.Field().String())
	})
}
