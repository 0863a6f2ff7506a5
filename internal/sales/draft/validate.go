package draft

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Issue is a single field-level validation failure. Validators return issue
// lists instead of raising so callers can highlight fields without catching.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("dateparse", func(fl validator.FieldLevel) bool {
		return parseableDate(fl.Field().String())
	})
	return v
}

// parseableDate accepts the date layouts the dashboard forms emit.
func parseableDate(s string) bool {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// ValidateParameters checks one line item's payment terms.
func ValidateParameters(p Parameters) []Issue {
	return check(p)
}

// ValidateGuarantor checks guarantor personal fields and the embedded
// identification record.
func ValidateGuarantor(g GuarantorDetails) []Issue {
	return check(g)
}

// ValidateIdentification checks a standalone identification record.
func ValidateIdentification(id IdentificationDetails) []Issue {
	return check(id)
}

// ValidateNextOfKin checks the draft-wide next-of-kin record.
func ValidateNextOfKin(n NextOfKinDetails) []Issue {
	return check(n)
}

func check(value any) []Issue {
	err := validate.Struct(value)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []Issue{{Field: "", Message: err.Error()}}
	}
	issues := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, Issue{Field: fieldPath(fe), Message: message(fe)})
	}
	return issues
}

// fieldPath strips the root struct name from the namespace so issues read
// "identificationDetails.idNumber" rather than "GuarantorDetails.…".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be %s or more", fe.Param())
	case "dateparse":
		return "must be a parseable date"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
