package wizard

import "ConferenceBot/model"

// StepView is the data of the active step. The set of implementations is closed:
// PersonalDetails, ConferenceDetails, PaymentDetails and Confirmation.
type StepView interface {
	Step() Step
	isStepView()
}

type PersonalDetails struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

type ConferenceDetails struct {
	MemberType          model.MemberType
	AttendanceType      model.AttendanceType
	DietaryRequirements string
}

type PaymentDetails struct {
	PaymentMethod model.PaymentMethod
	// Failure is the message of the last failed submission, if any.
	Failure string
}

type Confirmation struct {
	RegistrationID string
	FirstName      string
}

func (PersonalDetails) Step() Step   { return StepPersonal }
func (ConferenceDetails) Step() Step { return StepConference }
func (PaymentDetails) Step() Step    { return StepPayment }
func (Confirmation) Step() Step      { return StepConfirmation }

func (PersonalDetails) isStepView()   {}
func (ConferenceDetails) isStepView() {}
func (PaymentDetails) isStepView()    {}
func (Confirmation) isStepView()      {}

func viewOf(s State) StepView {
	switch s.Step {
	case StepConference:
		return ConferenceDetails{
			MemberType:          s.Form.MemberType,
			AttendanceType:      s.Form.AttendanceType,
			DietaryRequirements: s.Form.DietaryRequirements,
		}
	case StepPayment:
		v := PaymentDetails{PaymentMethod: s.Form.PaymentMethod}
		if s.Outcome.Status == OutcomeFailure {
			v.Failure = s.Outcome.Message
		}
		return v
	case StepConfirmation:
		v := Confirmation{FirstName: s.Form.FirstName}
		if s.Outcome.Confirmation != nil {
			v.RegistrationID = s.Outcome.Confirmation.ID
		}
		return v
	}
	return PersonalDetails{
		FirstName: s.Form.FirstName,
		LastName:  s.Form.LastName,
		Email:     s.Form.Email,
		Phone:     s.Form.Phone,
	}
}
