package repo

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"ConferenceBot/model"

	"github.com/goccy/go-json"
	"github.com/h2non/gock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const apiHost = "http://localhost:5000"

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c := NewClient("", 5*time.Second, zerolog.Nop())
	gock.InterceptClient(c.HTTPClient)
	t.Cleanup(func() {
		gock.RestoreClient(c.HTTPClient)
		gock.OffAll()
	})
	return c
}

var form = model.RegistrationForm{
	FirstName:      "Ada",
	LastName:       "Lovelace",
	Email:          "ada@example.com",
	MemberType:     model.MemberStudent,
	AttendanceType: model.AttendanceVirtual,
	PaymentMethod:  model.PaymentPayPal,
}

func TestRegisterSendsFormAndParsesID(t *testing.T) {
	c := newTestClient(t)

	var sent model.RegistrationForm
	gock.New(apiHost).
		Post("/api/register").
		MatchHeader("Content-Type", "application/json").
		AddMatcher(func(req *http.Request, _ *gock.Request) (bool, error) {
			body, err := io.ReadAll(req.Body)
			if err != nil {
				return false, err
			}
			return true, json.Unmarshal(body, &sent)
		}).
		Reply(201).
		JSON(map[string]any{"success": true, "data": map[string]any{"id": "reg-1"}})

	conf, err := c.Register(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, "reg-1", conf.ID)
	assert.Equal(t, form, sent)
	assert.True(t, gock.IsDone())
}

func TestRegisterAcceptsLegacyBody(t *testing.T) {
	c := newTestClient(t)
	gock.New(apiHost).
		Post("/api/register").
		Reply(201).
		JSON(map[string]any{"message": "Registration successful", "registration_id": 17})

	conf, err := c.Register(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, "17", conf.ID)
	assert.Equal(t, "Registration successful", conf.Message)
}

func TestRegisterFailures(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    any
		message string
	}{
		{"server message", 400, map[string]any{"error": "Email already registered"}, "Email already registered"},
		{"status text", 502, nil, "Bad Gateway"},
		{"not accepted", 200, map[string]any{"success": false, "error": "closed"}, "closed"},
		{"no id", 200, map[string]any{"success": true}, "registration response did not include an id"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t)
			reply := gock.New(apiHost).Post("/api/register").Reply(tc.status)
			if tc.body != nil {
				reply.JSON(tc.body)
			}

			_, err := c.Register(context.Background(), form)
			var subErr *model.SubmissionError
			require.ErrorAs(t, err, &subErr)
			assert.Equal(t, tc.message, subErr.Message)
			assert.Equal(t, tc.status, subErr.StatusCode)
		})
	}
}

func TestRegisterTransportError(t *testing.T) {
	c := newTestClient(t)
	cause := errors.New("connection refused")
	gock.New(apiHost).Post("/api/register").ReplyError(cause)

	_, err := c.Register(context.Background(), form)
	var subErr *model.SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Zero(t, subErr.StatusCode)
	assert.Contains(t, subErr.Message, "connection refused")
}

func TestRegistrationStatus(t *testing.T) {
	c := newTestClient(t)
	gock.New(apiHost).Get("/api/registration-status/reg-1").Reply(200).JSON(map[string]string{"status": "confirmed"})

	status, err := c.RegistrationStatus(context.Background(), "reg-1")
	require.NoError(t, err)
	assert.Equal(t, "confirmed", status)
}

func TestSessionsValidatesRecords(t *testing.T) {
	c := newTestClient(t)
	gock.New(apiHost).Get("/api/sessions/reg-1").Reply(200).JSON([]map[string]any{
		{"id": 3, "title": "Keynote", "date": "2024-08-01", "time": "09:00", "speaker": "Dr. Rock", "registered": true},
		{"id": "s-4", "title": "Tailings", "date": "2024-08-01", "time": "11:00", "speaker": "J. Ore"},
	})

	sessions, err := c.Sessions(context.Background(), "reg-1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, model.ConferenceSession{ID: "3", Title: "Keynote", Date: "2024-08-01", Time: "09:00", Speaker: "Dr. Rock", Registered: true}, sessions[0])
	assert.Equal(t, "s-4", sessions[1].ID)
	assert.False(t, sessions[1].Registered)

	gock.New(apiHost).Get("/api/sessions/reg-2").Reply(200).JSON([]map[string]any{{"title": "No id"}})
	_, err = c.Sessions(context.Background(), "reg-2")
	var fetchErr *model.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "sessions", fetchErr.Resource)
}

func TestCertificate(t *testing.T) {
	c := newTestClient(t)
	gock.New(apiHost).Get("/api/certificate/reg-1").Reply(200).JSON(map[string]string{
		"name": "Ada Lovelace", "date": "2024-08-02", "registrationId": "reg-1", "memberType": "student",
	})
	gock.New(apiHost).Get("/api/certificate/reg-2").Reply(404).JSON(map[string]string{"error": "Participant not found"})

	cert, err := c.Certificate(context.Background(), "reg-1")
	require.NoError(t, err)
	assert.Equal(t, &model.CertificateInfo{Name: "Ada Lovelace", Date: "2024-08-02", RegistrationID: "reg-1", MemberType: "student"}, cert)

	_, err = c.Certificate(context.Background(), "reg-2")
	var fetchErr *model.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 404, fetchErr.StatusCode)
	assert.Equal(t, "Participant not found", fetchErr.Message)
}

func TestRegisterSession(t *testing.T) {
	c := newTestClient(t)
	gock.New(apiHost).
		Post("/api/register-session").
		JSON(map[string]string{"userId": "reg-1", "sessionId": "s-4"}).
		Reply(200)
	gock.New(apiHost).Post("/api/register-session").Reply(409).JSON(map[string]string{"error": "Session full"})

	require.NoError(t, c.RegisterSession(context.Background(), "reg-1", "s-4"))

	err := c.RegisterSession(context.Background(), "reg-1", "s-5")
	var fetchErr *model.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "Session full", fetchErr.Message)
}

func TestCertificateLifecycle(t *testing.T) {
	c := newTestClient(t)
	gock.New(apiHost).Post("/api/certificates/reg-1").Reply(200).JSON(map[string]any{"success": true, "data": "cert-9"})
	gock.New(apiHost).Get("/api/certificates/cert-9/download").Reply(200).
		SetHeader("Content-Type", "application/pdf").
		BodyString("%PDF-1.4 fake")
	gock.New(apiHost).Get("/api/certificates/verify/cert-9").Reply(200).JSON(map[string]any{"success": true, "data": true})

	ctx := context.Background()
	id, err := c.GenerateCertificate(ctx, "reg-1")
	require.NoError(t, err)
	assert.Equal(t, "cert-9", id)

	doc, err := c.DownloadCertificate(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(doc))

	ok, err := c.VerifyCertificate(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGenerateCertificateRejected(t *testing.T) {
	c := newTestClient(t)
	gock.New(apiHost).Post("/api/certificates/reg-1").Reply(200).JSON(map[string]any{"success": false, "error": "not attended"})

	_, err := c.GenerateCertificate(context.Background(), "reg-1")
	var fetchErr *model.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "not attended", fetchErr.Message)
}

func TestSubmitFeedback(t *testing.T) {
	c := newTestClient(t)
	gock.New(apiHost).
		Post("/api/sessions/s-4/feedback").
		JSON(map[string]any{"rating": 5, "comments": "great"}).
		Reply(200)

	require.NoError(t, c.SubmitFeedback(context.Background(), "s-4", model.Feedback{Rating: 5, Comments: "great"}))
	assert.ErrorIs(t, c.SubmitFeedback(context.Background(), "s-4", model.Feedback{Rating: 0}), model.ErrInvalidRating)
	assert.ErrorIs(t, c.SubmitFeedback(context.Background(), "s-4", model.Feedback{Rating: 6}), model.ErrInvalidRating)
	assert.True(t, gock.IsDone())
}

func TestEndpointEscapesSegments(t *testing.T) {
	c := NewClient("https://api.example.org/api/", time.Second, zerolog.Nop())

	u, err := c.endpoint("certificates", "verify", "a/b c")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.org/api/certificates/verify/a%2Fb%20c", u)
}
