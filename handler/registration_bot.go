package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"ConferenceBot/model"
	"ConferenceBot/wizard"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
)

// Sender is the part of *bot.Bot the handlers use.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendDocument(ctx context.Context, params *bot.SendDocumentParams) (*models.Message, error)
}

// DashboardAPI is the read side used once a user is registered.
type DashboardAPI interface {
	RegistrationStatus(ctx context.Context, userID string) (string, error)
	Sessions(ctx context.Context, userID string) ([]model.ConferenceSession, error)
	Certificate(ctx context.Context, userID string) (*model.CertificateInfo, error)
	RegisterSession(ctx context.Context, userID, sessionID string) error
	GenerateCertificate(ctx context.Context, userID string) (string, error)
	DownloadCertificate(ctx context.Context, certificateID string) ([]byte, error)
	VerifyCertificate(ctx context.Context, code string) (bool, error)
	SubmitFeedback(ctx context.Context, sessionID string, feedback model.Feedback) error
}

// API is everything the bot needs from the registration server.
type API interface {
	wizard.Submitter
	DashboardAPI
}

const (
	cmdStart    = "/start"
	cmdHelp     = "/help"
	cmdRegister = "/register"
	cmdCancel   = "/cancel"
	cmdBack     = "/back"
	cmdSkip     = "/skip"
	cmdSubmit   = "/submit"
	cmdVerify   = "/verify"
)

type BotHandler struct {
	API            API
	Session        *Session
	ConferenceName string
	SubmitTimeout  time.Duration
	logger         zerolog.Logger

	mu    sync.Mutex
	chats map[int64]*chatState
}

func NewBotHandler(api API, session *Session, conferenceName string, submitTimeout time.Duration, logger zerolog.Logger) *BotHandler {
	return &BotHandler{
		API:            api,
		Session:        session,
		ConferenceName: conferenceName,
		SubmitTimeout:  submitTimeout,
		logger:         logger,
		chats:          make(map[int64]*chatState),
	}
}

// Handler is registered as the bot's default handler.
func (h *BotHandler) Handler(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handle(ctx, b, update)
}

func (h *BotHandler) handle(ctx context.Context, s Sender, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	msg := update.Message
	userID := msg.From.ID
	text := strings.TrimSpace(msg.Text)

	h.logger.Debug().Int64("user", userID).Str("username", msg.From.Username).Str("text", text).Msg("update")

	cmd, args := splitCommand(text)
	if cmd == cmdVerify {
		h.verify(ctx, s, msg.Chat.ID, args)
		return
	}

	token, err := h.Session.Token(ctx, userID)
	if err != nil {
		h.logger.Error().Err(err).Int64("user", userID).Msg("error reading session")
		h.send(ctx, s, msg.Chat.ID, "Something went wrong. Please try again later.", nil)
		return
	}
	if token != "" {
		h.dashboard(ctx, s, msg, token, cmd, args)
		return
	}

	h.registration(ctx, s, msg, cmd)
}

func (h *BotHandler) registration(ctx context.Context, s Sender, msg *models.Message, cmd string) {
	chatID := msg.Chat.ID
	userID := msg.From.ID

	var text string
	switch cmd {
	case cmdStart, cmdHelp:
		name := msg.From.Username
		if name == "" {
			name = msg.From.FirstName
		}
		text = fmt.Sprintf(`Hey %s! I can register you for the %s.
/register - start your registration
/back - go back one step
/skip - keep the current answer
/cancel - discard your registration
/verify <code> - check a certificate`, name, h.ConferenceName)
	case cmdRegister:
		st := h.startWizard(userID)
		h.prompt(ctx, s, chatID, st, true)
		return
	case cmdCancel:
		if h.dropWizard(userID) {
			text = "Registration cancelled. Use /register to start again."
		} else {
			text = "There is no registration in progress."
		}
	default:
		st := h.chat(userID)
		if st == nil {
			text = "Use /register to start your registration or /help to see what I can do."
			break
		}
		h.wizardInput(ctx, s, msg, st, cmd)
		return
	}

	h.send(ctx, s, chatID, text, nil)
}

func (h *BotHandler) startWizard(userID int64) *chatState {
	w := wizard.New(h.API,
		wizard.WithLogger(h.logger.With().Int64("user", userID).Logger()),
		wizard.WithSubmitTimeout(h.SubmitTimeout),
	)
	st := newChatState(w)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.chats[userID] = st
	return st
}

func (h *BotHandler) chat(userID int64) *chatState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.chats[userID]
}

func (h *BotHandler) dropWizard(userID int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.chats[userID]
	delete(h.chats, userID)
	return ok
}

func (h *BotHandler) wizardInput(ctx context.Context, s Sender, msg *models.Message, st *chatState, cmd string) {
	chatID := msg.Chat.ID
	w := st.wizard

	switch cmd {
	case cmdBack:
		if err := w.Retreat(ctx); err != nil {
			h.send(ctx, s, chatID, wizardErrorText(err), nil)
			return
		}
		st.ask(w.Step().Fields())
		h.prompt(ctx, s, chatID, st, true)
		return
	case cmdSubmit:
		if _, asking := st.next(); asking || w.Step() != wizard.StepPayment {
			h.prompt(ctx, s, chatID, st, false)
			return
		}
		h.submit(ctx, s, msg, st)
		return
	case "", cmdSkip:
	default:
		h.send(ctx, s, chatID, "I didn't understand that command. Use /back, /skip, /submit or /cancel.", nil)
		return
	}

	field, ok := st.next()
	if !ok {
		h.send(ctx, s, chatID, "Send /submit to try again or /back to change your answers.", nil)
		return
	}

	if cmd != cmdSkip {
		if err := w.Set(field, strings.TrimSpace(msg.Text)); err != nil {
			if errors.Is(err, model.ErrInvalidOption) {
				h.send(ctx, s, chatID, fmt.Sprintf("Please choose one of: %s", strings.Join(field.Options(), ", ")), nil)
				h.prompt(ctx, s, chatID, st, false)
				return
			}
			h.send(ctx, s, chatID, wizardErrorText(err), nil)
			return
		}
	}

	if done := st.pop(field); !done {
		h.prompt(ctx, s, chatID, st, false)
		return
	}
	h.completeStep(ctx, s, msg, st)
}

// completeStep fires the transition once every field of the step has been answered.
func (h *BotHandler) completeStep(ctx context.Context, s Sender, msg *models.Message, st *chatState) {
	w := st.wizard
	step := w.Step()
	if step == wizard.StepPayment {
		h.submit(ctx, s, msg, st)
		return
	}

	err := w.Advance(ctx)
	switch {
	case errors.Is(err, model.ErrStepInvalid):
		h.reaskFailing(ctx, s, msg.Chat.ID, st, step)
	case err != nil:
		h.send(ctx, s, msg.Chat.ID, wizardErrorText(err), nil)
	default:
		st.ask(w.Step().Fields())
		h.prompt(ctx, s, msg.Chat.ID, st, true)
	}
}

func (h *BotHandler) reaskFailing(ctx context.Context, s Sender, chatID int64, st *chatState, step wizard.Step) {
	errs := st.wizard.State().Errors
	fields := failing(step, errs)

	var b strings.Builder
	b.WriteString("Please fix the following:\n")
	for _, f := range fields {
		fmt.Fprintf(&b, "- %s\n", errs[f])
	}
	h.send(ctx, s, chatID, b.String(), nil)

	st.ask(fields)
	h.prompt(ctx, s, chatID, st, false)
}

func (h *BotHandler) submit(ctx context.Context, s Sender, msg *models.Message, st *chatState) {
	chatID := msg.Chat.ID
	w := st.wizard

	h.send(ctx, s, chatID, "Submitting...", removeKeyboard())
	err := w.Submit(ctx)
	switch {
	case err == nil:
	case errors.Is(err, model.ErrSubmissionInFlight):
		h.send(ctx, s, chatID, "Your registration is already being submitted.", nil)
		return
	case errors.Is(err, model.ErrStepInvalid):
		h.reaskFailing(ctx, s, chatID, st, wizard.StepPayment)
		return
	default:
		h.logger.Warn().Err(err).Int64("user", msg.From.ID).Msg("registration submit failed")
		h.send(ctx, s, chatID, renderView(w.View(), h.ConferenceName), nil)
		return
	}

	view := w.View()
	h.dropWizard(msg.From.ID)
	if c, ok := view.(wizard.Confirmation); ok && c.RegistrationID != "" {
		if err := h.Session.Login(ctx, msg.From.ID, c.RegistrationID); err != nil {
			h.logger.Error().Err(err).Int64("user", msg.From.ID).Str("registration", c.RegistrationID).Msg("error saving session")
			h.send(ctx, s, chatID, fmt.Sprintf(`Registration Complete!
Your registration ID is %s. Please keep it.
I couldn't open your dashboard on this chat, so /status and the other dashboard commands are not available here yet.`, c.RegistrationID), nil)
			return
		}
	}
	h.send(ctx, s, chatID, renderView(view, h.ConferenceName), nil)
}

// prompt asks for the next pending field, with the step header when header is set.
func (h *BotHandler) prompt(ctx context.Context, s Sender, chatID int64, st *chatState, header bool) {
	field, ok := st.next()
	if !ok {
		h.send(ctx, s, chatID, renderView(st.wizard.View(), h.ConferenceName), nil)
		return
	}

	var b strings.Builder
	if header {
		b.WriteString(renderView(st.wizard.View(), h.ConferenceName))
		b.WriteString("\n\n")
	}

	current, _ := st.wizard.State().Form.Get(field)
	fmt.Fprintf(&b, "Please enter your %s.", field.Label())
	switch {
	case current != "":
		fmt.Fprintf(&b, " Current answer: %s (send /skip to keep it).", current)
	case wizard.ValidateField(field, "").Valid:
		b.WriteString(" Send /skip to leave it empty.")
	}

	var markup models.ReplyMarkup
	if opts := field.Options(); opts != nil {
		markup = optionsKeyboard(opts)
	}
	h.send(ctx, s, chatID, b.String(), markup)
}

func optionsKeyboard(opts []string) *models.ReplyKeyboardMarkup {
	rows := make([][]models.KeyboardButton, 0, len(opts))
	for _, o := range opts {
		rows = append(rows, []models.KeyboardButton{{Text: o}})
	}
	return &models.ReplyKeyboardMarkup{
		Keyboard:        rows,
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
}

func removeKeyboard() *models.ReplyKeyboardRemove {
	return &models.ReplyKeyboardRemove{RemoveKeyboard: true}
}

// renderView maps every step variant to its text.
func renderView(v wizard.StepView, conferenceName string) string {
	switch v := v.(type) {
	case wizard.PersonalDetails:
		return "Step 1 of 4: Personal Information"
	case wizard.ConferenceDetails:
		return "Step 2 of 4: Conference Details"
	case wizard.PaymentDetails:
		if v.Failure != "" {
			return fmt.Sprintf("Registration failed: %s\nSend /submit to try again or /back to change your answers.", v.Failure)
		}
		return "Step 3 of 4: Payment Information"
	case wizard.Confirmation:
		return fmt.Sprintf(`Registration Complete!
Thank you for registering for the %s, %s.
Your registration ID is %s.
You will receive a confirmation email shortly. Send /help to see your dashboard.`, conferenceName, v.FirstName, v.RegistrationID)
	}
	return "Unknown step."
}

func wizardErrorText(err error) string {
	switch {
	case errors.Is(err, model.ErrSubmissionInFlight):
		return "Your registration is being submitted, please wait."
	case errors.Is(err, model.ErrWizardCompleted):
		return "Your registration is already complete."
	case errors.Is(err, model.ErrInvalidTransition):
		return "You can't do that at this step."
	}
	return "An error occurred."
}

// splitCommand returns the command (without any @botname suffix) and its
// arguments. Plain text yields an empty command.
func splitCommand(text string) (string, []string) {
	if !strings.HasPrefix(text, "/") {
		return "", nil
	}
	parts := strings.Fields(text)
	cmd := parts[0]
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd), parts[1:]
}

func (h *BotHandler) send(ctx context.Context, s Sender, chatID int64, text string, markup models.ReplyMarkup) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := s.SendMessage(ctx, params); err != nil {
		h.logger.Error().Err(err).Int64("chat", chatID).Msg("error sending message")
	}
}
