package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"ConferenceBot/model"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const (
	cmdStatus      = "/status"
	cmdSessions    = "/sessions"
	cmdJoin        = "/join"
	cmdCertificate = "/certificate"
	cmdDownload    = "/download"
	cmdFeedback    = "/feedback"
	cmdLogout      = "/logout"
)

// dashboard serves registered users. userID is the stored session token.
func (h *BotHandler) dashboard(ctx context.Context, s Sender, msg *models.Message, userID string, cmd string, args []string) {
	chatID := msg.Chat.ID

	var text string
	switch cmd {
	case cmdStart, cmdHelp:
		text = `Welcome back! Here's what you can do:
/status - view your registration status
/sessions - list conference sessions
/join <sessionId> - register for a session
/certificate - view your certificate
/download - download your certificate
/feedback <sessionId> <rating 1-5> [comments] - rate a session
/verify <code> - check a certificate
/logout - forget this registration on this chat`
	case cmdRegister:
		text = "You are already registered. Use /logout first to register someone else."
	case cmdStatus:
		status, err := h.API.RegistrationStatus(ctx, userID)
		if err != nil {
			text = h.fetchFailedText(err, cmdStatus)
			break
		}
		text = fmt.Sprintf("Registration Status: %s", status)
	case cmdSessions:
		text = h.sessionsText(ctx, userID)
	case cmdJoin:
		if len(args) != 1 {
			text = "Usage: /join <sessionId>"
			break
		}
		if err := h.API.RegisterSession(ctx, userID, args[0]); err != nil {
			text = h.fetchFailedText(err, cmdJoin)
			break
		}
		text = fmt.Sprintf("You are registered for session %s.", args[0])
	case cmdCertificate:
		cert, err := h.API.Certificate(ctx, userID)
		if err != nil {
			text = h.fetchFailedText(err, cmdCertificate)
			break
		}
		text = renderCertificate(cert, h.ConferenceName)
	case cmdDownload:
		h.download(ctx, s, chatID, userID)
		return
	case cmdFeedback:
		text = h.feedback(ctx, args)
	case cmdLogout:
		if err := h.Session.Logout(ctx, msg.From.ID); err != nil {
			h.logger.Error().Err(err).Int64("user", msg.From.ID).Msg("error clearing session")
			text = "Could not log you out. Please try again."
			break
		}
		text = "You have been logged out. Use /register to register again."
	default:
		text = "I didn't understand that command. Use /help."
	}

	h.send(ctx, s, chatID, text, nil)
}

func (h *BotHandler) sessionsText(ctx context.Context, userID string) string {
	sessions, err := h.API.Sessions(ctx, userID)
	if err != nil {
		return h.fetchFailedText(err, cmdSessions)
	}
	if len(sessions) == 0 {
		return "There are no sessions available yet."
	}

	text := "Available Sessions:\n"
	for _, session := range sessions {
		text += fmt.Sprintf("- %s (ID: %s)\n", session.Title, session.ID)
		text += fmt.Sprintf("  Speaker: %s\n", session.Speaker)
		text += fmt.Sprintf("  Date: %s %s\n", session.Date, session.Time)
		if session.Registered {
			text += "  Registered\n"
		} else {
			text += fmt.Sprintf("  Register with /join %s\n", session.ID)
		}
	}
	return text
}

func renderCertificate(cert *model.CertificateInfo, conferenceName string) string {
	return fmt.Sprintf(`Certificate of Participation
This is to certify that %s
has successfully participated in %s
as a %s member on %s.
Registration ID: %s
Use /download to get the PDF.`, cert.Name, conferenceName, cert.MemberType, cert.Date, cert.RegistrationID)
}

func (h *BotHandler) download(ctx context.Context, s Sender, chatID int64, userID string) {
	certificateID, err := h.API.GenerateCertificate(ctx, userID)
	if err != nil {
		h.send(ctx, s, chatID, h.fetchFailedText(err, cmdDownload), nil)
		return
	}
	doc, err := h.API.DownloadCertificate(ctx, certificateID)
	if err != nil {
		h.send(ctx, s, chatID, h.fetchFailedText(err, cmdDownload), nil)
		return
	}

	_, err = s.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID: chatID,
		Document: &models.InputFileUpload{
			Filename: fmt.Sprintf("certificate_%s.pdf", certificateID),
			Data:     bytes.NewReader(doc),
		},
		Caption: fmt.Sprintf("Your certificate. Verification code: %s", certificateID),
	})
	if err != nil {
		h.logger.Error().Err(err).Int64("chat", chatID).Msg("error sending certificate")
		h.send(ctx, s, chatID, "Could not send your certificate. Please try /download again.", nil)
	}
}

func (h *BotHandler) feedback(ctx context.Context, args []string) string {
	const usage = "Usage: /feedback <sessionId> <rating 1-5> [comments]"
	if len(args) < 2 {
		return usage
	}
	rating, err := strconv.Atoi(args[1])
	if err != nil {
		return usage
	}

	fb := model.Feedback{Rating: rating, Comments: strings.Join(args[2:], " ")}
	if err := h.API.SubmitFeedback(ctx, args[0], fb); err != nil {
		if errors.Is(err, model.ErrInvalidRating) {
			return "Rating must be a number from 1 to 5."
		}
		return h.fetchFailedText(err, cmdFeedback)
	}
	return "Thanks for your feedback!"
}

func (h *BotHandler) verify(ctx context.Context, s Sender, chatID int64, args []string) {
	if len(args) != 1 {
		h.send(ctx, s, chatID, "Usage: /verify <code>", nil)
		return
	}
	ok, err := h.API.VerifyCertificate(ctx, args[0])

	var text string
	switch {
	case err != nil:
		text = h.fetchFailedText(err, cmdVerify)
	case ok:
		text = fmt.Sprintf("Certificate %s is verified.", args[0])
	default:
		text = fmt.Sprintf("Certificate %s could not be verified.", args[0])
	}
	h.send(ctx, s, chatID, text, nil)
}

// fetchFailedText turns a dashboard failure into a message with a retry hint.
func (h *BotHandler) fetchFailedText(err error, retry string) string {
	h.logger.Warn().Err(err).Str("command", retry).Msg("dashboard request failed")

	var fetchErr *model.FetchError
	if errors.As(err, &fetchErr) {
		return fmt.Sprintf("Could not load %s: %s. Please try %s again.", fetchErr.Resource, fetchErr.Message, retry)
	}
	return fmt.Sprintf("Something went wrong. Please try %s again.", retry)
}
