package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"lounge-chat/internal/domain"
	"lounge-chat/internal/service"
)

// MessageHandler handles the message read and write endpoints
type MessageHandler struct {
	messageService *service.MessageService
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
	}
}

// PostMessageRequest mirrors the raw request body. Fields stay untyped so
// that a wrong JSON type is reported as a field validation failure instead
// of a decode failure.
type PostMessageRequest struct {
	Text        any `json:"text"`
	Username    any `json:"username"`
	DisplayName any `json:"displayName"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// List retrieves recent messages, oldest first.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}

	messages, err := h.messageService.RecentMessages(r.Context(), limit)
	if err != nil {
		slog.Error("failed to fetch recent messages", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "server_error", "Could not fetch messages")
		return
	}

	dtos := make([]domain.MessageDTO, 0, len(messages))
	for _, msg := range messages {
		dtos = append(dtos, msg.DTO())
	}

	writeJSON(w, http.StatusOK, map[string][]domain.MessageDTO{"messages": dtos})
}

// Create accepts a new message and runs it through the ingestion pipeline.
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "request body must be valid JSON")
		return
	}

	msg, err := h.messageService.PostMessage(r.Context(), clientIP(r), service.PostMessageInput{
		Text:        req.Text,
		Username:    req.Username,
		DisplayName: req.DisplayName,
	})

	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, msg.DTO())

	case domain.IsValidation(err):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())

	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Too many messages, slow down.")

	default:
		// The cause stays in the logs; callers only see a generic failure.
		slog.Error("could not create message", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "server_error", "Could not persist message")
	}
}

// clientIP returns the sender's network origin. chi's RealIP middleware has
// already rewritten RemoteAddr when the request came through a trusted
// proxy; otherwise strip the port.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorResponse{Error: kind, Message: message})
}
