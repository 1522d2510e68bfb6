package model

// ConferenceSession is one entry of the participant's session list.
type ConferenceSession struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Speaker    string `json:"speaker"`
	Registered bool   `json:"registered"`
}

// CertificateInfo is the certificate summary shown on the dashboard.
type CertificateInfo struct {
	Name           string `json:"name"`
	Date           string `json:"date"`
	RegistrationID string `json:"registrationId"`
	MemberType     string `json:"memberType"`
}

// Feedback is a participant's rating of a conference session.
type Feedback struct {
	Rating   int    `json:"rating"`
	Comments string `json:"comments"`
}

const (
	MinRating = 1
	MaxRating = 5
)
