package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ConferenceBot/model"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"github.com/rs/zerolog"
)

// Wizard events
const (
	EventAdvance = "advance"
	EventRetreat = "retreat"
	EventConfirm = "confirm"
)

// DefaultSubmitTimeout bounds a single registration request.
const DefaultSubmitTimeout = 30 * time.Second

// Submitter sends a completed registration to the server.
type Submitter interface {
	Register(ctx context.Context, form model.RegistrationForm) (*model.Confirmation, error)
}

type OutcomeStatus int

const (
	OutcomeUnset OutcomeStatus = iota
	OutcomeSuccess
	OutcomeFailure
)

// Outcome is the result of the last submission attempt.
type Outcome struct {
	Status       OutcomeStatus
	Message      string
	Confirmation *model.Confirmation
}

// State is a read-only snapshot of the wizard.
type State struct {
	ID         string
	Step       Step
	Form       model.RegistrationForm
	Errors     ValidationErrors
	Submitting bool
	Outcome    Outcome
}

// Wizard is the registration state machine. It is the only writer of its
// RegistrationForm; callers read it through State and View.
type Wizard struct {
	id string

	mu         sync.Mutex
	machine    *fsm.FSM
	form       model.RegistrationForm
	errors     ValidationErrors
	submitting bool
	outcome    Outcome

	submitter     Submitter
	submitTimeout time.Duration
	logger        zerolog.Logger
}

type Option func(*Wizard)

func WithLogger(logger zerolog.Logger) Option {
	return func(w *Wizard) { w.logger = logger }
}

func WithSubmitTimeout(d time.Duration) Option {
	return func(w *Wizard) {
		if d > 0 {
			w.submitTimeout = d
		}
	}
}

// New creates a wizard at the first step with an empty form.
func New(submitter Submitter, opts ...Option) *Wizard {
	w := &Wizard{
		id:            uuid.NewString(),
		errors:        ValidationErrors{},
		submitter:     submitter,
		submitTimeout: DefaultSubmitTimeout,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With().Str("wizard", w.id).Logger()

	w.machine = fsm.NewFSM(
		statePersonal,
		fsm.Events{
			{Name: EventAdvance, Src: []string{statePersonal}, Dst: stateConference},
			{Name: EventAdvance, Src: []string{stateConference}, Dst: statePayment},
			{Name: EventRetreat, Src: []string{stateConference}, Dst: statePersonal},
			{Name: EventRetreat, Src: []string{statePayment}, Dst: stateConference},
			// confirmed has no outgoing transitions
			{Name: EventConfirm, Src: []string{statePayment}, Dst: stateConfirmed},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				w.logger.Debug().Str("event", e.Event).Str("from", e.Src).Str("to", e.Dst).Msg("wizard transition")
			},
		},
	)
	return w
}

func (w *Wizard) ID() string { return w.id }

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return stepFromState(w.machine.Current())
}

// State returns a snapshot; mutating it has no effect on the wizard.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot()
}

// View returns the variant for the active step.
func (w *Wizard) View() StepView {
	return viewOf(w.State())
}

func (w *Wizard) snapshot() State {
	return State{
		ID:         w.id,
		Step:       stepFromState(w.machine.Current()),
		Form:       w.form,
		Errors:     w.errors.clone(),
		Submitting: w.submitting,
		Outcome:    w.outcome,
	}
}

// guard reports why no transition may start right now.
func (w *Wizard) guard() error {
	if w.submitting {
		return model.ErrSubmissionInFlight
	}
	if w.machine.Current() == stateConfirmed {
		return model.ErrWizardCompleted
	}
	return nil
}

// Set records a field value. Errors already shown for the field stay until
// the next transition attempt from its step.
func (w *Wizard) Set(field model.Field, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guard(); err != nil {
		return err
	}
	if err := w.form.Set(field, value); err != nil {
		return fmt.Errorf("error setting %s: %w", field, err)
	}
	return nil
}

// validate replaces the error entries of the step's fields and reports
// whether the step is valid. Entries of other steps are left alone.
func (w *Wizard) validate(step Step) bool {
	failing := ValidateStep(step, w.form)
	for _, f := range step.Fields() {
		if msg, bad := failing[f]; bad {
			w.errors[f] = msg
		} else {
			delete(w.errors, f)
		}
	}
	if len(failing) > 0 {
		w.logger.Debug().Int("step", int(step)).Int("failing", len(failing)).Msg("step validation failed")
		return false
	}
	return true
}

func (w *Wizard) fire(ctx context.Context, event string) error {
	if !w.machine.Can(event) {
		return fmt.Errorf("%w: %s from %s", model.ErrInvalidTransition, event, w.machine.Current())
	}
	if err := w.machine.Event(ctx, event); err != nil {
		return fmt.Errorf("error applying %s: %w", event, err)
	}
	return nil
}

// Advance validates the current step and moves to the next one. When any
// owned field fails, the wizard stays put and returns ErrStepInvalid; the
// messages are in State().Errors. Advance from the payment step is not
// allowed, use Submit.
func (w *Wizard) Advance(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guard(); err != nil {
		return err
	}
	if !w.machine.Can(EventAdvance) {
		return fmt.Errorf("%w: %s from %s", model.ErrInvalidTransition, EventAdvance, w.machine.Current())
	}
	if !w.validate(stepFromState(w.machine.Current())) {
		return model.ErrStepInvalid
	}
	if err := w.fire(ctx, EventAdvance); err != nil {
		return err
	}
	// a failure banner belongs to the attempt that produced it
	w.outcome = Outcome{}
	return nil
}

// Retreat moves back one step without validating or clearing anything. The
// last submission outcome is dropped once the user advances again.
func (w *Wizard) Retreat(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guard(); err != nil {
		return err
	}
	return w.fire(ctx, EventRetreat)
}

// Submit validates the payment step and sends the whole form. Only one
// submission runs at a time; a call made while another is in flight returns
// ErrSubmissionInFlight without contacting the server. On failure the wizard
// stays on the payment step and the returned error is also recorded in the
// outcome.
func (w *Wizard) Submit(ctx context.Context) error {
	w.mu.Lock()
	if err := w.guard(); err != nil {
		w.mu.Unlock()
		if errors.Is(err, model.ErrSubmissionInFlight) {
			w.logger.Debug().Msg("submit ignored, already in flight")
		}
		return err
	}
	if !w.machine.Can(EventConfirm) {
		current := w.machine.Current()
		w.mu.Unlock()
		return fmt.Errorf("%w: %s from %s", model.ErrInvalidTransition, EventConfirm, current)
	}
	if !w.validate(StepPayment) {
		w.mu.Unlock()
		return model.ErrStepInvalid
	}
	w.submitting = true
	w.outcome = Outcome{}
	form := w.form
	w.mu.Unlock()

	w.logger.Info().Str("email", form.Email).Msg("submitting registration")

	reqCtx, cancel := context.WithTimeout(ctx, w.submitTimeout)
	confirmation, err := w.submitter.Register(reqCtx, form)
	cancel()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false

	if err == nil && (confirmation == nil || confirmation.ID == "") {
		err = &model.SubmissionError{Message: "registration response did not include an id"}
	}
	if err != nil {
		w.outcome = Outcome{Status: OutcomeFailure, Message: failureMessage(err)}
		w.logger.Warn().Err(err).Msg("registration failed")
		return err
	}

	// the request context may already be done; the transition itself must not be skipped
	if err := w.fire(context.WithoutCancel(ctx), EventConfirm); err != nil {
		w.outcome = Outcome{Status: OutcomeFailure, Message: err.Error()}
		return err
	}
	w.outcome = Outcome{Status: OutcomeSuccess, Confirmation: confirmation}
	w.errors = ValidationErrors{}
	w.logger.Info().Str("registration", confirmation.ID).Msg("registration confirmed")
	return nil
}

func failureMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "The registration request timed out. Please try again."
	}
	var subErr *model.SubmissionError
	if errors.As(err, &subErr) && subErr.Message != "" {
		return subErr.Message
	}
	return err.Error()
}
