package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"homehero/marketplace-service/internal/app/marketplace/entity"

	"github.com/go-playground/validator/v10"
)

// ErrValidation - базовая ошибка для errors.Is
var ErrValidation = errors.New("validation failed")

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Error содержит все нарушенные правила запроса в порядке объявления полей
type Error struct {
	Messages []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(e.Messages, "; "))
}

func (e *Error) Unwrap() error {
	return ErrValidation
}

// Messenger - запрос, который сам описывает сообщения об ошибках для своих полей
type Messenger interface {
	ValidationMessages() map[string]string
}

type Validator struct {
	validate *validator.Validate
}

// New создает валидатор с дополнительными тегами:
//
//	trimmin=N   - длина строки без пробелов по краям не меньше N
//	emailshape  - строка вида local@domain.tld
//	integral    - число без дробной части
func New() *Validator {
	v := validator.New()

	v.RegisterCustomTypeFunc(numberValue, entity.Number{})

	mustRegister(v, "trimmin", trimmedMin)
	mustRegister(v, "emailshape", func(fl validator.FieldLevel) bool {
		return emailShape.MatchString(fl.Field().String())
	})
	mustRegister(v, "integral", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		switch f.Kind() {
		case reflect.Float32, reflect.Float64:
			return f.Float() == math.Trunc(f.Float())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return true
		}
		return false
	})

	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// Validate проверяет все поля запроса и возвращает *Error со всеми нарушениями.
// Проверка не останавливается на первом неверном поле.
func (v *Validator) Validate(req Messenger) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("failed to validate request: %w", err)
	}

	messages := req.ValidationMessages()
	result := &Error{Messages: make([]string, 0, len(fieldErrors))}
	for _, fe := range fieldErrors {
		msg, ok := messages[fe.StructField()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		result.Messages = append(result.Messages, msg)
	}

	return result
}

func numberValue(field reflect.Value) interface{} {
	if n, ok := field.Interface().(entity.Number); ok && n.Valid {
		return n.Value
	}
	return nil
}

func trimmedMin(fl validator.FieldLevel) bool {
	minLen, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= minLen
}
