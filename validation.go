package chain

import (
	"errors"
	"os"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/pt_BR"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	ptBRTranslations "github.com/go-playground/validator/v10/translations/pt_BR"
)

var (
	validatorOnce     sync.Once
	validatorInstance *validator.Validate
	translator        ut.Translator
	patterns          sync.Map // string -> *regexp.Regexp
)

// Validator returns the shared validator, allowing the registration of custom rules.
//
// Messages are translated to the locale of the VALIDATION_LOCALE environment variable ("en" or "pt_BR").
func Validator() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(fieldName)

		english := en.New()
		uni := ut.New(english, english, pt_BR.New())

		var err error
		switch locale := os.Getenv("VALIDATION_LOCALE"); locale {
		case "pt_BR", "pt-BR":
			translator, _ = uni.GetTranslator("pt_BR")
			err = ptBRTranslations.RegisterDefaultTranslations(v, translator)
		default:
			translator, _ = uni.GetTranslator("en")
			err = enTranslations.RegisterDefaultTranslations(v, translator)
		}
		if err != nil {
			logger.Warn().Err(err).Msg("unable to register validation translations")
		}

		validatorInstance = v
	})
	return validatorInstance
}

// fieldName names struct fields in validation errors after their xml or json name
func fieldName(field reflect.StructField) string {
	for _, key := range []string{"xml", "json"} {
		name := strings.SplitN(field.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if i := strings.LastIndexByte(name, '>'); i >= 0 {
			name = name[i+1:]
		}
		if i := strings.LastIndexByte(name, ' '); i >= 0 {
			name = name[i+1:]
		}
		if name != "" {
			return name
		}
	}
	return field.Name
}

// Validate checks the "validate" tags of a struct (or pointer to struct). Other values are accepted as is.
func Validate(obj any) error {
	value := reflect.ValueOf(obj)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil
	}

	err := Validator().Struct(value.Interface())
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	result := &ValidationError{}
	for _, fe := range fieldErrors {
		loc := []any{"body"}
		// namespace starts with the struct name
		for _, part := range strings.Split(fe.Namespace(), ".")[1:] {
			loc = append(loc, part)
		}
		result.Errors = append(result.Errors, FieldError{
			Loc:  loc,
			Msg:  fe.Translate(translator),
			Type: fe.Tag(),
		})
	}
	return result
}

// ValidateBody checks the value constraints declared by the body spec
func ValidateBody(spec *BodySpec, value any) error {
	if spec == nil || !spec.HasConstraints() {
		return nil
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	var tag string
	var subject any
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		tag, subject = spec.numericTag(), float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		tag, subject = spec.numericTag(), float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		tag, subject = spec.numericTag(), rv.Float()
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		tag, subject = spec.lengthTag(), rv.Interface()
	}

	result := &ValidationError{}
	if tag != "" {
		if err := Validator().Var(subject, tag); err != nil {
			var fieldErrors validator.ValidationErrors
			if !errors.As(err, &fieldErrors) {
				return err
			}
			for _, fe := range fieldErrors {
				result.Errors = append(result.Errors, FieldError{
					Loc:  []any{"body"},
					Msg:  strings.TrimSpace(fe.Translate(translator)),
					Type: fe.Tag(),
				})
			}
		}
	}

	if spec.Pattern != "" && rv.Kind() == reflect.String {
		re, err := compilePattern(spec.Pattern)
		if err != nil {
			return err
		}
		if !re.MatchString(rv.String()) {
			result.Errors = append(result.Errors, FieldError{
				Loc:  []any{"body"},
				Msg:  "String should match pattern '" + spec.Pattern + "'",
				Type: "string_pattern_mismatch",
			})
		}
	}

	if len(result.Errors) > 0 {
		return result
	}
	return nil
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if re, ok := patterns.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	patterns.Store(pattern, re)
	return re, nil
}
