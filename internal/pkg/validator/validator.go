package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"marketplace/internal/pkg/phone"
)

const phoneTag = "ma_phone"

var validate *validator.Validate

func init() {
	validate = validator.New()
	registerRules(validate)
}

// Validate struct fields
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	errors := make(map[string]string)
	for _, err := range verrs {
		errors[err.Field()] = err.Tag()
	}
	return errors
}

// Var validates a single value against a tag expression.
func Var(v interface{}, tag string) bool {
	return validate.Var(v, tag) == nil
}

// RegisterGinRules adds the custom tags to gin's binding validator so
// request DTOs can use them.
func RegisterGinRules() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerRules(v)
	}
}

func registerRules(v *validator.Validate) {
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation(phoneTag, func(fl validator.FieldLevel) bool {
		return phone.IsValid(fl.Field().String())
	})
}
