package services

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tivrax/storefront/models"
)

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

// ShippingValidator checks the shipping form and reports one message per
// failing field, keyed by the field's JSON name.
type ShippingValidator struct {
	validate *validator.Validate
}

func NewShippingValidator() *ShippingValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// digits=N: exactly N ASCII digits
	_ = v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		s := fl.Field().String()
		return len(s) == n && digitsOnly.MatchString(s)
	})
	return &ShippingValidator{validate: v}
}

// Normalize trims surrounding whitespace from every field.
func Normalize(d models.ShippingDetails) models.ShippingDetails {
	return models.ShippingDetails{
		Name:    strings.TrimSpace(d.Name),
		Phone:   strings.TrimSpace(d.Phone),
		Email:   strings.TrimSpace(d.Email),
		Address: strings.TrimSpace(d.Address),
		Pincode: strings.TrimSpace(d.Pincode),
	}
}

// Validate returns nil when the form is acceptable.
func (sv *ShippingValidator) Validate(d models.ShippingDetails) map[string]string {
	err := sv.validate.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"form": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = shippingMessage(fe.Field(), fe.Tag())
		}
	}
	return out
}

func shippingMessage(field, tag string) string {
	switch field {
	case "name":
		if tag == "required" {
			return "Name is required"
		}
		return "Name must be at least 3 characters"
	case "phone":
		if tag == "required" {
			return "Phone number is required"
		}
		return "Phone number must be 10 digits"
	case "email":
		if tag == "required" {
			return "Email is required"
		}
		return "Please enter a valid email address"
	case "address":
		if tag == "required" {
			return "Address is required"
		}
		return "Please enter a complete address"
	case "pincode":
		if tag == "required" {
			return "Pincode is required"
		}
		return "Pincode must be 6 digits"
	}
	return "Invalid value"
}
