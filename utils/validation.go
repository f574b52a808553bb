package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

var hhmmPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	mustRegister(v, "hhmm", func(fl validator.FieldLevel) bool {
		return hhmmPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "handle", func(fl validator.FieldLevel) bool {
		return ValidHandle(fl.Field().String())
	})
	return v
}

// mustRegister panics when tag cannot be registered, so a broken tag never
// leaves validation permissive.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// Validate runs struct tag validation on input.
func Validate(input interface{}) error {
	return validate.Struct(input)
}

// Normalizer is implemented by inputs that clean their fields before
// validation.
type Normalizer interface {
	Normalize()
}

// ReadBody decodes the request body (JSON or form) into input. On failure it
// has already answered 400 and returns false.
func ReadBody(ctx iris.Context, input interface{}) bool {
	var err error
	if strings.HasPrefix(ctx.GetContentTypeRequested(), "application/json") {
		err = ctx.ReadJSON(input)
	} else {
		err = ctx.ReadForm(input)
	}
	if err != nil && !iris.IsErrPath(err) {
		JSONError(ctx, iris.StatusBadRequest, "bad_request", "Malformed request body")
		return false
	}
	if n, ok := input.(Normalizer); ok {
		n.Normalize()
	}
	return true
}

// ReadValid is ReadBody followed by validation.
func ReadValid(ctx iris.Context, input interface{}) bool {
	if !ReadBody(ctx, input) {
		return false
	}
	if err := Validate(input); err != nil {
		HandleValidationErrors(ctx, err)
		return false
	}
	return true
}

// HandleValidationErrors answers 400 with one message per failed field.
func HandleValidationErrors(ctx iris.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		JSONError(ctx, iris.StatusBadRequest, "validation_failed", err.Error())
		return
	}
	fields := make([]iris.Map, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, iris.Map{
			"field":   fe.Field(),
			"rule":    fe.Tag(),
			"message": fieldMessage(fe),
		})
	}
	ctx.StatusCode(iris.StatusBadRequest)
	ctx.JSON(iris.Map{"error": "validation_failed", "message": "Invalid input", "fields": fields})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "handle":
		return fe.Field() + " must be a 10-digit phone number"
	case "hhmm":
		return fe.Field() + " must be a time like 09:30"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "min", "gte":
		return fe.Field() + " must be at least " + fe.Param()
	case "max", "lte":
		return fe.Field() + " must be at most " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}
