package wizard

import "ConferenceBot/model"

// Step is one screen of the registration wizard.
type Step int

const (
	StepPersonal Step = iota + 1
	StepConference
	StepPayment
	StepConfirmation
)

// Steps lists all steps in order.
var Steps = []Step{StepPersonal, StepConference, StepPayment, StepConfirmation}

var stepFields = map[Step][]model.Field{
	StepPersonal:     {model.FieldFirstName, model.FieldLastName, model.FieldEmail, model.FieldPhone},
	StepConference:   {model.FieldMemberType, model.FieldAttendanceType, model.FieldDietaryRequirements},
	StepPayment:      {model.FieldPaymentMethod},
	StepConfirmation: nil,
}

// Fields returns the fields owned by the step, in prompt order.
func (s Step) Fields() []model.Field {
	return append([]model.Field(nil), stepFields[s]...)
}

func (s Step) Label() string {
	switch s {
	case StepPersonal:
		return "Personal Details"
	case StepConference:
		return "Conference Details"
	case StepPayment:
		return "Payment"
	case StepConfirmation:
		return "Confirmation"
	}
	return "Unknown"
}

func (s Step) Owns(f model.Field) bool {
	for _, owned := range stepFields[s] {
		if owned == f {
			return true
		}
	}
	return false
}

// fsm state names
const (
	statePersonal   = "personal_details"
	stateConference = "conference_details"
	statePayment    = "payment"
	stateConfirmed  = "confirmed"
)

func stepFromState(state string) Step {
	switch state {
	case stateConference:
		return StepConference
	case statePayment:
		return StepPayment
	case stateConfirmed:
		return StepConfirmation
	}
	return StepPersonal
}
