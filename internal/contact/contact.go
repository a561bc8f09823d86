// Package contact relays the website contact form to the team inbox.
package contact

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/taqdeer/taqdeer-api/internal/logger"
	"github.com/taqdeer/taqdeer-api/pkg/response"
)

var (
	ErrMissingFields = errors.New("missing required fields")
	ErrInvalidEmail  = errors.New("invalid email address")
)

// Sender is satisfied by *mail.Mailer.
type Sender interface {
	SendHTML(to, replyTo, subject, templateName string, data interface{}) error
}

type Request struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type messageData struct {
	Name    string
	Email   string
	Subject string
	Lines   []string
}

type Service struct {
	sender Sender
	inbox  string
	log    *logger.Logger
}

func NewService(sender Sender, inbox string, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{sender: sender, inbox: inbox, log: log.With("service", "contact")}
}

func (s *Service) Send(ctx context.Context, req Request) error {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	msg := strings.TrimSpace(req.Message)
	if name == "" || email == "" || msg == "" {
		return ErrMissingFields
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}

	subject := strings.TrimSpace(req.Subject)
	title := "Taqdeer Contact: New message from website"
	if subject != "" {
		title = "Taqdeer Contact: " + subject
	}

	data := messageData{
		Name:    name,
		Email:   email,
		Subject: subject,
		Lines:   strings.Split(strings.ReplaceAll(msg, "\r\n", "\n"), "\n"),
	}

	// smtp has no context support; give up early if the caller already left.
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.sender.SendHTML(s.inbox, email, title, "contact.html", data); err != nil {
		s.log.Error("contact message not sent", "error", err)
		return err
	}
	return nil
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) Handler {
	return Handler{service: service}
}

func (h *Handler) ContactHandler(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}

	err := h.service.Send(r.Context(), req)
	switch {
	case errors.Is(err, ErrMissingFields):
		response.Error(w, http.StatusBadRequest, "Missing required fields", nil)
	case errors.Is(err, ErrInvalidEmail):
		response.Error(w, http.StatusBadRequest, "Invalid email address", nil)
	case err != nil:
		response.Error(w, http.StatusInternalServerError, "Failed to process contact form", nil)
	default:
		response.Success(w, response.MessageBody{Message: "Message sent successfully"})
	}
}
