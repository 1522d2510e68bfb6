package model

// Field names a single entry of the registration record.
type Field string

const (
	FieldFirstName           Field = "firstName"
	FieldLastName            Field = "lastName"
	FieldEmail               Field = "email"
	FieldPhone               Field = "phone"
	FieldOrganization        Field = "organization"
	FieldMemberType          Field = "memberType"
	FieldAttendanceType      Field = "attendanceType"
	FieldDietaryRequirements Field = "dietaryRequirements"
	FieldPaymentMethod       Field = "paymentMethod"
)

// AllFields lists every field of RegistrationForm in record order.
var AllFields = []Field{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldPhone,
	FieldOrganization,
	FieldMemberType,
	FieldAttendanceType,
	FieldDietaryRequirements,
	FieldPaymentMethod,
}

// Label returns the human readable name used in prompts.
func (f Field) Label() string {
	switch f {
	case FieldFirstName:
		return "First Name"
	case FieldLastName:
		return "Last Name"
	case FieldEmail:
		return "Email"
	case FieldPhone:
		return "Phone Number"
	case FieldOrganization:
		return "Organization"
	case FieldMemberType:
		return "Member Type"
	case FieldAttendanceType:
		return "Attendance Type"
	case FieldDietaryRequirements:
		return "Dietary Requirements"
	case FieldPaymentMethod:
		return "Payment Method"
	}
	return string(f)
}

// Options returns the closed value set of an enum field, or nil for free text.
func (f Field) Options() []string {
	switch f {
	case FieldMemberType:
		return []string{string(MemberStudent), string(MemberProfessional), string(MemberCorporate)}
	case FieldAttendanceType:
		return []string{string(AttendanceInPerson), string(AttendanceVirtual), string(AttendanceHybrid)}
	case FieldPaymentMethod:
		return []string{string(PaymentCreditCard), string(PaymentBankTransfer), string(PaymentPayPal)}
	}
	return nil
}

type MemberType string

const (
	MemberStudent      MemberType = "student"
	MemberProfessional MemberType = "professional"
	MemberCorporate    MemberType = "corporate"
)

type AttendanceType string

const (
	AttendanceInPerson AttendanceType = "in_person"
	AttendanceVirtual  AttendanceType = "virtual"
	AttendanceHybrid   AttendanceType = "hybrid"
)

type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentPayPal       PaymentMethod = "paypal"
)

// RegistrationForm is the single accumulating record filled in by the wizard.
// Enum fields hold either one of their listed values or "" when unselected.
type RegistrationForm struct {
	FirstName           string         `json:"firstName"`
	LastName            string         `json:"lastName"`
	Email               string         `json:"email"`
	Phone               string         `json:"phone"`
	Organization        string         `json:"organization"`
	MemberType          MemberType     `json:"memberType"`
	AttendanceType      AttendanceType `json:"attendanceType"`
	DietaryRequirements string         `json:"dietaryRequirements"`
	PaymentMethod       PaymentMethod  `json:"paymentMethod"`
}

// Get returns the current value of a field as a string.
func (r RegistrationForm) Get(f Field) (string, error) {
	switch f {
	case FieldFirstName:
		return r.FirstName, nil
	case FieldLastName:
		return r.LastName, nil
	case FieldEmail:
		return r.Email, nil
	case FieldPhone:
		return r.Phone, nil
	case FieldOrganization:
		return r.Organization, nil
	case FieldMemberType:
		return string(r.MemberType), nil
	case FieldAttendanceType:
		return string(r.AttendanceType), nil
	case FieldDietaryRequirements:
		return r.DietaryRequirements, nil
	case FieldPaymentMethod:
		return string(r.PaymentMethod), nil
	}
	return "", ErrUnknownField
}

// Set assigns a field. Enum fields only accept a listed value or "".
func (r *RegistrationForm) Set(f Field, value string) error {
	if opts := f.Options(); opts != nil && value != "" && !contains(opts, value) {
		return ErrInvalidOption
	}

	switch f {
	case FieldFirstName:
		r.FirstName = value
	case FieldLastName:
		r.LastName = value
	case FieldEmail:
		r.Email = value
	case FieldPhone:
		r.Phone = value
	case FieldOrganization:
		r.Organization = value
	case FieldMemberType:
		r.MemberType = MemberType(value)
	case FieldAttendanceType:
		r.AttendanceType = AttendanceType(value)
	case FieldDietaryRequirements:
		r.DietaryRequirements = value
	case FieldPaymentMethod:
		r.PaymentMethod = PaymentMethod(value)
	default:
		return ErrUnknownField
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// Confirmation is what the registration endpoint returns on success.
type Confirmation struct {
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
}
