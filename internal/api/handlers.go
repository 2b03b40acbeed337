package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/blockedby/tgchats/internal/logger"
	"github.com/blockedby/tgchats/internal/tdapi"
	"github.com/blockedby/tgchats/internal/telegram"
)

const (
	defaultMessageLimit = 20
	maxMessageLimit     = 100
)

// Handler serves the read-only chat endpoints.
type Handler struct {
	source ChatSource
	log    *logger.Logger
}

// NewHandler creates a handler reading from source.
func NewHandler(source ChatSource, log *logger.Logger) *Handler {
	return &Handler{
		source: source,
		log:    logger.OrGlobal(log).Component("api"),
	}
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// Status handles GET /api/v1/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	state, substate := h.source.Status()
	resp := StatusResponse{State: state.String(), Substate: substate}
	if user, err := h.source.User(); err == nil {
		resp.User = &UserResponse{
			ID:        user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Username:  user.Username,
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

// ListChats handles GET /api/v1/chats?kind=
func (h *Handler) ListChats(w http.ResponseWriter, r *http.Request) {
	switch kind := r.URL.Query().Get("kind"); kind {
	case "":
		respondJSON(w, http.StatusOK, newList(toChatResponses(h.source.AllChats())))
	case telegram.KindChat:
		respondJSON(w, http.StatusOK, newList(toChatResponses(h.source.PlainChats())))
	case telegram.KindChannel:
		h.ListChannels(w, r)
	case telegram.KindGroup:
		h.ListGroups(w, r)
	case telegram.KindForum:
		h.ListForums(w, r)
	default:
		respondError(w, http.StatusBadRequest, "unknown kind: "+kind)
	}
}

// ListChannels handles GET /api/v1/channels
func (h *Handler) ListChannels(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, newList(toChatResponses(h.source.Channels())))
}

// ListGroups handles GET /api/v1/groups
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, newList(toChatResponses(h.source.Groups())))
}

// ListForums handles GET /api/v1/forums
func (h *Handler) ListForums(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, newList(toChatResponses(h.source.Forums())))
}

// ListForumTopics handles GET /api/v1/forums/{chatID}/topics
func (h *Handler) ListForumTopics(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatIDParam(w, r)
	if !ok {
		return
	}

	forum, found := h.source.Forum(chatID)
	if !found {
		respondError(w, http.StatusNotFound, "forum not found")
		return
	}

	topics := forum.Topics()
	out := make([]TopicResponse, 0, len(topics))
	for _, topic := range topics {
		out = append(out, toTopicResponse(topic))
	}
	respondJSON(w, http.StatusOK, newList(out))
}

// ListMessages handles GET /api/v1/chats/{chatID}/messages?limit=
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatIDParam(w, r)
	if !ok {
		return
	}

	limit := defaultMessageLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxMessageLimit {
			respondError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	messages, err := h.source.LoadMessages(r.Context(), chatID, limit)
	if err != nil {
		if errors.Is(err, telegram.ErrNotAuthorized) {
			respondError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		h.log.Error().Err(err).Int64("chat.id", chatID).Msg("load messages")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]MessageResponse, 0, len(messages))
	for _, msg := range messages {
		out = append(out, toMessageResponse(msg))
	}
	respondJSON(w, http.StatusOK, newList(out))
}

func chatIDParam(w http.ResponseWriter, r *http.Request) (tdapi.ChatID, bool) {
	chatID, err := strconv.ParseInt(chi.URLParam(r, "chatID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid chat id")
		return 0, false
	}
	return chatID, true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
