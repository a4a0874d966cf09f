package config

import (
	stderrors "errors"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/graphkit/errors"
)

// FieldError describes one failed struct-tag rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// structValidator reports fields by their config key, falling back to the
// snake-cased Go name for untagged fields.
var structValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return toSnakeCase(fld.Name)
		}
		return name
	})
	return v
})

// ValidateStruct checks s against its `validate` tags. All failures come
// back as one INVALID_INPUT error whose "fields" detail lists them.
func ValidateStruct(s any) error {
	err := structValidator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.InvalidInput("config", err.Error())
	}

	fields := make([]FieldError, len(verrs))
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		// Drop the root type: Config.computer.workers -> computer.workers.
		_, path, found := strings.Cut(fe.Namespace(), ".")
		if !found {
			path = fe.Namespace()
		}
		fields[i] = FieldError{Field: path, Message: ruleMessage(fe)}
		msgs[i] = path + " " + fields[i].Message
	}
	return errors.New(errors.ErrCodeInvalidInput, strings.Join(msgs, "; ")).WithDetail("fields", fields)
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	}
	return "fails " + fe.Tag()
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
