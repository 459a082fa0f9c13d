package pathquery

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/topoviz/pkg/errors"
)

var validate = validator.New()

// Request describes one path query.
type Request struct {
	Collection        string     `json:"collection" validate:"required,max=128"`
	Source            string     `json:"source" validate:"required,max=512,nefield=Destination"`
	Destination       string     `json:"destination" validate:"required,max=512"`
	Constraint        Constraint `json:"constraint,omitempty" validate:"omitempty,oneof=shortest latency utilization load sovereignty"`
	Direction         Direction  `json:"direction,omitempty" validate:"omitempty,oneof=outbound inbound any"`
	ExcludedCountries []string   `json:"excluded_countries,omitempty" validate:"omitempty,max=64,dive,min=1,max=64"`
}

// Normalized returns a copy with defaults filled in: shortest constraint,
// outbound direction, and no excluded countries unless the constraint is
// sovereignty.
func (r Request) Normalized() Request {
	if r.Constraint == "" {
		r.Constraint = Shortest
	}
	if r.Direction == "" {
		r.Direction = Outbound
	}
	if r.Constraint != Sovereignty {
		r.ExcludedCountries = nil
	}
	return r
}

// Validate checks the request. Unknown constraints are INVALID_CONSTRAINT;
// any other violation is INVALID_INPUT.
func (r Request) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid path query")
	}
	e := verrs[0]
	if e.Field() == "Constraint" {
		return errors.New(errors.ErrCodeInvalidConstraint, "unknown constraint %q", r.Constraint)
	}
	return errors.New(errors.ErrCodeInvalidInput, "%s", describe(e))
}

func describe(e validator.FieldError) string {
	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "nefield":
		return "source and destination must differ"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, e.Tag())
	}
}
