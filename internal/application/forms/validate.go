package forms

import (
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// Validate is the shared validator instance for all form structs.
	Validate   *validator.Validate
	Translator ut.Translator

	// custom validation tags & texts
	notBlankTag  = "notblank"
	notBlankText = "{0} must not be blank"

	strongPasswordTag  = "strongpassword"
	strongPasswordText = "{0} must be at least 8 characters with an uppercase letter, a lowercase letter, a digit and a special character"

	srPhoneTag   = "srphone"
	srPhoneText  = "{0} must be a valid Sri Lankan phone number"
	srPhoneRegex = regexp.MustCompile(`^(?:\+94|0)\d{9}$`)
)

// Instantiate the validator for use.
func init() {
	Validate = validator.New()

	// Register the english error messages for validation errors.
	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Use JSON tag names for errors instead of Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = Validate.RegisterValidation(notBlankTag, notBlankValidation)
	RegisterCustomTranslation(notBlankTag, notBlankText)
	_ = Validate.RegisterValidation(strongPasswordTag, strongPasswordValidation)
	RegisterCustomTranslation(strongPasswordTag, strongPasswordText)
	_ = Validate.RegisterValidation(srPhoneTag, srPhoneValidation)
	RegisterCustomTranslation(srPhoneTag, srPhoneText)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = Validate.RegisterTranslation(
		tag, Translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Errors maps a field's JSON name to its translated validation message.
type Errors map[string]string

// Check validates a form struct and returns field errors keyed by JSON name.
// POST: returns nil when the struct is valid
func Check(form any) Errors {
	err := Validate.Struct(form)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Errors{"form": err.Error()}
	}
	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Translate(Translator)
	}
	return out
}

// Custom Global Validators

// notBlankValidation rejects strings that are empty after trimming whitespace.
func notBlankValidation(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// strongPasswordValidation requires length >= 8 plus an upper, a lower,
// a digit and a special character.
func strongPasswordValidation(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) < 8 {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	return upper && lower && digit && special
}

// srPhoneValidation accepts Sri Lankan phone numbers in 0XXXXXXXXX or
// +94XXXXXXXXX form.
func srPhoneValidation(fl validator.FieldLevel) bool {
	return srPhoneRegex.MatchString(fl.Field().String())
}
