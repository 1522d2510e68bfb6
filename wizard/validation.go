package wizard

import (
	"regexp"
	"strings"

	"ConferenceBot/model"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// Result is the outcome of checking one field.
type Result struct {
	Valid   bool
	Message string
}

// ValidationErrors maps each currently failing field to its message.
// A missing key means the field is valid or has not been validated yet.
type ValidationErrors map[model.Field]string

func (v ValidationErrors) clone() ValidationErrors {
	out := make(ValidationErrors, len(v))
	for k, msg := range v {
		out[k] = msg
	}
	return out
}

type rule func(value string) bool

func required(value string) bool { return strings.TrimSpace(value) != "" }

func validEmail(value string) bool { return required(value) && emailPattern.MatchString(value) }

type fieldRule struct {
	check   rule
	message string
}

// phone, organization and dietaryRequirements have no rule.
var rules = map[model.Field]fieldRule{
	model.FieldFirstName:      {required, "First name is required"},
	model.FieldLastName:       {required, "Last name is required"},
	model.FieldEmail:          {validEmail, "Valid email is required"},
	model.FieldMemberType:     {required, "Member type is required"},
	model.FieldAttendanceType: {required, "Attendance type is required"},
	model.FieldPaymentMethod:  {required, "Payment method is required"},
}

// ValidateField checks a single field value. It has no side effects.
func ValidateField(field model.Field, value string) Result {
	r, ok := rules[field]
	if !ok || r.check(value) {
		return Result{Valid: true}
	}
	return Result{Message: r.message}
}

// ValidateStep runs the rules of every field owned by step against form and
// returns the failing ones. The result is empty when the step is valid.
func ValidateStep(step Step, form model.RegistrationForm) ValidationErrors {
	failing := ValidationErrors{}
	for _, f := range step.Fields() {
		value, _ := form.Get(f)
		if res := ValidateField(f, value); !res.Valid {
			failing[f] = res.Message
		}
	}
	return failing
}
