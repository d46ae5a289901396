package application

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/example/detailing-backoffice/internal/calendar"
	"github.com/example/detailing-backoffice/internal/catalog"
)

// maxEmbeddedImageBytes bounds the decoded size of a data: image URL.
const maxEmbeddedImageBytes = 5 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Field errors are reported under their JSON names so that clients can map
	// them back to form inputs.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return field.Name
		default:
			return name
		}
	})

	mustRegister(v, "civildate", func(fl validator.FieldLevel) bool {
		_, err := calendar.Parse(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "timeslot", func(fl validator.FieldLevel) bool {
		return catalog.ValidTimeSlot(fl.Field().String())
	})
	mustRegister(v, "service", func(fl validator.FieldLevel) bool {
		_, ok := catalog.LookupService(fl.Field().String())
		return ok
	})
	mustRegister(v, "category", func(fl validator.FieldLevel) bool {
		return catalog.Category(fl.Field().String()).Valid()
	})
	mustRegister(v, "location", func(fl validator.FieldLevel) bool {
		return catalog.Location(fl.Field().String()).Valid()
	})
	mustRegister(v, "imagesrc", func(fl validator.FieldLevel) bool {
		return validImageSource(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("application: register %s validation: %v", tag, err))
	}
}

// validateStruct runs the struct tags of input and converts failures into a
// ValidationError keyed by JSON field path.
func validateStruct(input any) *ValidationError {
	vErr := &ValidationError{}

	err := validate.Struct(input)
	if err == nil {
		return vErr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		vErr.add("_", err.Error())
		return vErr
	}

	for _, fe := range fieldErrs {
		field := fieldPath(fe.Namespace())
		vErr.add(field, fieldMessage(field, fe.Tag()))
	}
	return vErr
}

// fieldPath drops the top-level struct name from a validator namespace such
// as "BookingInput.client.nom".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func fieldMessage(field, tag string) string {
	switch tag {
	case "required":
		return field + " is required"
	case "civildate":
		return field + " must be a YYYY-MM-DD date"
	case "timeslot":
		return field + " must be a bookable time slot"
	case "service":
		return field + " is not in the service catalog"
	case "category":
		return field + " is not a known category"
	case "location":
		return field + " must be atelier or domicile"
	case "imagesrc":
		return field + " must be an http(s) URL or an embedded image"
	default:
		return field + " is invalid"
	}
}

func validImageSource(value string) bool {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "data:") {
		header, payload, ok := strings.Cut(strings.TrimPrefix(value, "data:"), ",")
		if !ok || !strings.HasPrefix(header, "image/") || !strings.HasSuffix(header, ";base64") {
			return false
		}
		if base64.StdEncoding.DecodedLen(len(payload)) > maxEmbeddedImageBytes+2 {
			return false
		}
		decoded, err := base64.StdEncoding.DecodeString(payload)
		return err == nil && len(decoded) <= maxEmbeddedImageBytes
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
