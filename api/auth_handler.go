package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/services"
)

type authHandler struct {
	responder Responder
	logger    zerolog.Logger
	auth      *services.Authenticator
	roles     *services.RoleResolver
}

func newAuthHandler(auth *services.Authenticator, roles *services.RoleResolver) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder: NewResponder(logger),
		logger:    logger,
		auth:      auth,
		roles:     roles,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Identity *services.Identity `json:"identity"`
	Token    string             `json:"token,omitempty"`
	Role     string             `json:"role,omitempty"`
}

// signup registers a new account and returns a session token
func (h authHandler) signup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.auth == nil {
			h.responder.WriteError(w, errs.NewNotConfiguredError("authentication"))
			return
		}

		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewMalformedPayloadError("credentials", err))
			return
		}

		identity, token, err := h.auth.Signup(r.Context(), req.Email, req.Password)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		h.responder.WriteJSON(w, sessionResponse{Identity: identity, Token: token})
	}
}

// login verifies credentials and returns a session token
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.auth == nil {
			h.responder.WriteError(w, errs.NewNotConfiguredError("authentication"))
			return
		}

		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewMalformedPayloadError("credentials", err))
			return
		}

		identity, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, sessionResponse{Identity: identity, Token: token})
	}
}

// session echoes the viewer's resolved identity and privilege. An anonymous
// or invalid token is a null identity, not an error.
func (h authHandler) session() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := ctxGetIdentity(r.Context())

		response := sessionResponse{Identity: identity}
		if identity != nil {
			response.Role = h.roles.Resolve(r.Context(), identity).String()
		}

		h.responder.WriteJSON(w, response)
	}
}
