package repo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ConferenceBot/model"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is used when no API base URL is configured.
const DefaultBaseURL = "http://localhost:5000/api"

// Client talks to the conference registration API. It never retries; a
// retry is always a new call made by the user.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates an API client with a bounded per-request timeout.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "api").Logger(),
	}
}

// envelope is the {success, data, error} wrapper used by most endpoints.
type envelope[T any] struct {
	Success *bool  `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// flexID accepts ids sent either as JSON strings or numbers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id is neither string nor number: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

type response struct {
	status int
	body   []byte
}

func (r response) ok() bool { return r.status >= 200 && r.status < 300 }

// serverMessage prefers the message the server put in the body and falls
// back to the status text.
func (r response) serverMessage() string {
	var env envelope[json.RawMessage]
	if err := json.Unmarshal(r.body, &env); err == nil {
		if env.Error != "" {
			return env.Error
		}
		if env.Message != "" {
			return env.Message
		}
	}
	if text := http.StatusText(r.status); text != "" {
		return text
	}
	return "status " + strconv.Itoa(r.status)
}

func (c *Client) endpoint(elem ...string) (string, error) {
	escaped := make([]string, len(elem))
	for i, e := range elem {
		escaped[i] = url.PathEscape(e)
	}
	return url.JoinPath(c.BaseURL, escaped...)
}

// do sends one request. A non-nil error means the request never produced
// an HTTP response.
func (c *Client) do(ctx context.Context, method string, body any, elem ...string) (response, error) {
	target, err := c.endpoint(elem...)
	if err != nil {
		return response{}, fmt.Errorf("error building url: %w", err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return response{}, fmt.Errorf("error marshaling request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return response{}, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("method", method).Str("url", target).Msg("request failed")
		return response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, fmt.Errorf("error reading response body: %w", err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("api call")

	return response{status: resp.StatusCode, body: data}, nil
}

type registerData struct {
	ID flexID `json:"id"`
}

// registerResponse accepts both {success, data: {id}} and the older
// {message, registration_id} body.
type registerResponse struct {
	Success        *bool         `json:"success"`
	Data           *registerData `json:"data"`
	Error          string        `json:"error"`
	Message        string        `json:"message"`
	RegistrationID flexID        `json:"registration_id"`
}

// Register posts the whole registration form. Any 2xx is success as long as
// the body carries a registration id.
func (c *Client) Register(ctx context.Context, form model.RegistrationForm) (*model.Confirmation, error) {
	resp, err := c.do(ctx, http.MethodPost, form, "register")
	if err != nil {
		return nil, &model.SubmissionError{Message: err.Error(), Err: err}
	}
	if !resp.ok() {
		return nil, &model.SubmissionError{Message: resp.serverMessage(), StatusCode: resp.status}
	}

	var out registerResponse
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return nil, &model.SubmissionError{Message: "invalid registration response", StatusCode: resp.status, Err: err}
	}
	if out.Success != nil && !*out.Success {
		msg := out.Error
		if msg == "" {
			msg = "registration was not accepted"
		}
		return nil, &model.SubmissionError{Message: msg, StatusCode: resp.status}
	}

	id := out.RegistrationID
	if out.Data != nil && out.Data.ID != "" {
		id = out.Data.ID
	}
	if id == "" {
		return nil, &model.SubmissionError{Message: "registration response did not include an id", StatusCode: resp.status}
	}
	return &model.Confirmation{ID: string(id), Message: out.Message}, nil
}

func fetchFailed(resource string, resp response, err error) *model.FetchError {
	if err != nil {
		return &model.FetchError{Resource: resource, Message: err.Error(), Err: err}
	}
	return &model.FetchError{Resource: resource, Message: resp.serverMessage(), StatusCode: resp.status}
}

func decode(resource string, resp response, v any) error {
	if err := json.Unmarshal(resp.body, v); err != nil {
		return &model.FetchError{Resource: resource, Message: "invalid response", StatusCode: resp.status, Err: err}
	}
	return nil
}

func invalid(resource, msg string) *model.FetchError {
	return &model.FetchError{Resource: resource, Message: msg}
}

// RegistrationStatus returns the participant's registration status text.
func (c *Client) RegistrationStatus(ctx context.Context, userID string) (string, error) {
	const resource = "registration status"
	resp, err := c.do(ctx, http.MethodGet, nil, "registration-status", userID)
	if err != nil || !resp.ok() {
		return "", fetchFailed(resource, resp, err)
	}
	var out struct {
		Status string `json:"status"`
	}
	if err := decode(resource, resp, &out); err != nil {
		return "", err
	}
	if out.Status == "" {
		return "", invalid(resource, "response has no status")
	}
	return out.Status, nil
}

type sessionWire struct {
	ID         flexID `json:"id"`
	Title      string `json:"title"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Speaker    string `json:"speaker"`
	Registered bool   `json:"registered"`
}

// Sessions lists the conference sessions with the participant's registration flag.
func (c *Client) Sessions(ctx context.Context, userID string) ([]model.ConferenceSession, error) {
	const resource = "sessions"
	resp, err := c.do(ctx, http.MethodGet, nil, "sessions", userID)
	if err != nil || !resp.ok() {
		return nil, fetchFailed(resource, resp, err)
	}
	var wire []sessionWire
	if err := decode(resource, resp, &wire); err != nil {
		return nil, err
	}

	sessions := make([]model.ConferenceSession, 0, len(wire))
	for i, s := range wire {
		if s.ID == "" || s.Title == "" {
			return nil, invalid(resource, fmt.Sprintf("session %d is missing id or title", i))
		}
		sessions = append(sessions, model.ConferenceSession{
			ID:         string(s.ID),
			Title:      s.Title,
			Date:       s.Date,
			Time:       s.Time,
			Speaker:    s.Speaker,
			Registered: s.Registered,
		})
	}
	return sessions, nil
}

type certificateWire struct {
	Name           string `json:"name"`
	Date           string `json:"date"`
	RegistrationID flexID `json:"registrationId"`
	MemberType     string `json:"memberType"`
}

// Certificate returns the certificate summary of a participant.
func (c *Client) Certificate(ctx context.Context, userID string) (*model.CertificateInfo, error) {
	const resource = "certificate"
	resp, err := c.do(ctx, http.MethodGet, nil, "certificate", userID)
	if err != nil || !resp.ok() {
		return nil, fetchFailed(resource, resp, err)
	}
	var out certificateWire
	if err := decode(resource, resp, &out); err != nil {
		return nil, err
	}
	if out.Name == "" || out.RegistrationID == "" {
		return nil, invalid(resource, "certificate is missing name or registration id")
	}
	return &model.CertificateInfo{
		Name:           out.Name,
		Date:           out.Date,
		RegistrationID: string(out.RegistrationID),
		MemberType:     out.MemberType,
	}, nil
}

// RegisterSession signs the participant up for a session.
func (c *Client) RegisterSession(ctx context.Context, userID, sessionID string) error {
	body := struct {
		UserID    string `json:"userId"`
		SessionID string `json:"sessionId"`
	}{userID, sessionID}

	resp, err := c.do(ctx, http.MethodPost, body, "register-session")
	if err != nil || !resp.ok() {
		return fetchFailed("session registration", resp, err)
	}
	return nil
}

// GenerateCertificate asks the server to issue a certificate and returns its id.
func (c *Client) GenerateCertificate(ctx context.Context, userID string) (string, error) {
	const resource = "certificate generation"
	resp, err := c.do(ctx, http.MethodPost, nil, "certificates", userID)
	if err != nil || !resp.ok() {
		return "", fetchFailed(resource, resp, err)
	}
	var out envelope[string]
	if err := decode(resource, resp, &out); err != nil {
		return "", err
	}
	if out.Success == nil || !*out.Success {
		msg := out.Error
		if msg == "" {
			msg = "certificate was not generated"
		}
		return "", invalid(resource, msg)
	}
	if out.Data == "" {
		return "", invalid(resource, "response has no certificate id")
	}
	return out.Data, nil
}

// DownloadCertificate fetches the certificate document.
func (c *Client) DownloadCertificate(ctx context.Context, certificateID string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, nil, "certificates", certificateID, "download")
	if err != nil || !resp.ok() {
		return nil, fetchFailed("certificate download", resp, err)
	}
	if len(resp.body) == 0 {
		return nil, invalid("certificate download", "empty document")
	}
	return resp.body, nil
}

// VerifyCertificate reports whether a certificate code is genuine.
func (c *Client) VerifyCertificate(ctx context.Context, code string) (bool, error) {
	const resource = "certificate verification"
	resp, err := c.do(ctx, http.MethodGet, nil, "certificates", "verify", code)
	if err != nil || !resp.ok() {
		return false, fetchFailed(resource, resp, err)
	}
	var out envelope[bool]
	if err := decode(resource, resp, &out); err != nil {
		return false, err
	}
	if out.Success != nil && !*out.Success {
		msg := out.Error
		if msg == "" {
			msg = "verification was not performed"
		}
		return false, invalid(resource, msg)
	}
	return out.Data, nil
}

// SubmitFeedback rates a session. The rating is checked before any request is made.
func (c *Client) SubmitFeedback(ctx context.Context, sessionID string, feedback model.Feedback) error {
	if feedback.Rating < model.MinRating || feedback.Rating > model.MaxRating {
		return model.ErrInvalidRating
	}
	resp, err := c.do(ctx, http.MethodPost, feedback, "sessions", sessionID, "feedback")
	if err != nil || !resp.ok() {
		return fetchFailed("feedback", resp, err)
	}
	return nil
}
