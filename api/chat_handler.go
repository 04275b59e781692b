package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/services"
)

type chatHandler struct {
	responder Responder
	logger    zerolog.Logger
	chat      *services.ChatService
}

func newChatHandler(chat *services.ChatService) chatHandler {
	logger := log.With().Str("handlerName", "chatHandler").Logger()

	return chatHandler{
		responder: NewResponder(logger),
		logger:    logger,
		chat:      chat,
	}
}

type chatRequest struct {
	Messages []services.ChatMessage `json:"messages"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// reply generates the assistant's next turn for the portfolio chat
func (h chatHandler) reply() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.chat == nil {
			h.responder.WriteError(w, errs.NewNotConfiguredError("chat"))
			return
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewMalformedPayloadError("chat", err))
			return
		}

		reply, err := h.chat.Reply(r.Context(), req.Messages)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, chatResponse{Reply: reply})
	}
}
