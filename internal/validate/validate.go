// Package validate holds the shared struct validator with English messages.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/okian/heatsheet/internal/domain/clock"
)

// ErrValidation marks a struct that failed its validation tags.
var ErrValidation = errors.New("validation failed")

// Svc holds a singleton validator and translator.
type Svc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	once sync.Once
	svc  *Svc
)

// Get returns the validator singleton, initializing on first use.
func Get() *Svc {
	once.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())

		// json names for API payloads, koanf names for config
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, key := range []string{"json", "koanf"} {
				tag := fld.Tag.Get(key)
				if idx := strings.Index(tag, ","); idx >= 0 {
					tag = tag[:idx]
				}
				if tag != "" && tag != "-" {
					return tag
				}
			}
			return fld.Name
		})

		_ = en_translations.RegisterDefaultTranslations(v, trans)

		register(v, trans, "clock", "{0} must be a time of day (HH:MM or HH:MM:SS)", func(fl validator.FieldLevel) bool {
			_, err := clock.ParseTimeOfDay(fl.Field().String())
			return err == nil
		})
		register(v, trans, "mmss", "{0} must be a duration (MM:SS or MM:SS.cc)", func(fl validator.FieldLevel) bool {
			_, ok := clock.ParseDuration(fl.Field().String())
			return ok
		})

		svc = &Svc{Validator: v, Translator: trans}
	})
	return svc
}

func register(v *validator.Validate, trans ut.Translator, tag, text string, fn validator.Func) {
	_ = v.RegisterValidation(tag, fn)
	_ = v.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T(tag, fe.Field())
			return msg
		},
	)
}

// Struct validates s and returns an ErrValidation-wrapped error listing
// every failed field in English.
func Struct(s any) error {
	err := Get().Validator.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Translate(Get().Translator))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}
