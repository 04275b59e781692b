package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/feed"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rpupo63/portfolio-backend/services"
	"github.com/rpupo63/portfolio-backend/viewmodel"
)

type projectHandler struct {
	responder Responder
	logger    zerolog.Logger
	projects  *database.ProjectRepo
	roles     *services.RoleResolver
	hub       *feed.Hub
	covers    *services.CoverStore
}

func newProjectHandler(projects *database.ProjectRepo, roles *services.RoleResolver, hub *feed.Hub, covers *services.CoverStore) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder: NewResponder(logger),
		logger:    logger,
		projects:  projects,
		roles:     roles,
		hub:       hub,
		covers:    covers,
	}
}

// ProjectCollection represents a list of projects
type ProjectCollection struct {
	Projects []models.Project `json:"projects"`
	Total    int              `json:"total"`
}

// viewModelFor builds a one-shot view model for the request's viewer with
// the privilege already resolved. Mutations go through its gating so a
// non-admin request never reaches the store.
func (h projectHandler) viewModelFor(r *http.Request) *viewmodel.ProjectList {
	vm := viewmodel.NewProjectList(h.projects, h.roles, nil, ctxGetIdentity(r.Context()))
	vm.ResolvePrivilege(r.Context())
	return vm
}

// getPublishedProjects lists published projects, newest first
func (h projectHandler) getPublishedProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := h.projects.FindPublished(r.Context(), 0)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "projects", err))
			return
		}

		h.responder.WriteJSON(w, ProjectCollection{
			Projects: projects,
			Total:    len(projects),
		})
	}
}

// getFeaturedProjects lists the landing-view subset: published and
// featured, falling back to the newest published projects when nothing is
// featured.
func (h projectHandler) getFeaturedProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := h.projects.FindFeatured(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "featured projects", err))
			return
		}

		if len(projects) == 0 {
			projects, err = h.projects.FindPublished(r.Context(), 3)
			if err != nil {
				h.responder.WriteError(w, wrapDatabaseError("find", "projects", err))
				return
			}
		}

		h.responder.WriteJSON(w, ProjectCollection{
			Projects: projects,
			Total:    len(projects),
		})
	}
}

// getProject retrieves a specific project by ID
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, ok := h.parseProjectID(w, r)
		if !ok {
			return
		}

		project, err := h.projects.FindByID(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "project", err))
			return
		}

		h.responder.WriteJSON(w, project)
	}
}

type createProjectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	GithubURL   string `json:"github_url"`
	CoverURL    string `json:"cover_url"`
	Tools       string `json:"tools"` // comma-separated
	Published   *bool  `json:"published"`
	Featured    bool   `json:"featured"`
}

// createProject creates a new project (admin only)
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Error().Err(err).Msg("Failed to decode project request body")
			h.responder.WriteError(w, errs.NewMalformedPayloadError("project", err))
			return
		}

		published := true
		if req.Published != nil {
			published = *req.Published
		}

		vm := h.viewModelFor(r)
		project, err := vm.Create(r.Context(), viewmodel.CreateInput{
			Title:       req.Title,
			Description: req.Description,
			GithubURL:   req.GithubURL,
			CoverURL:    req.CoverURL,
			ToolsCSV:    req.Tools,
			Published:   published,
			Featured:    req.Featured,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		h.responder.WriteJSON(w, project)
	}
}

type updateProjectRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	GithubURL   *string `json:"github_url"`
	CoverURL    *string `json:"cover_url"`
	Tools       *string `json:"tools"` // comma-separated
	Published   *bool   `json:"published"`
	Featured    *bool   `json:"featured"`
}

// fields converts the request into a partial update touching only the
// columns that were present in the payload.
func (req updateProjectRequest) fields() map[string]any {
	fields := make(map[string]any)
	if req.Title != nil {
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.GithubURL != nil {
		fields["github_url"] = *req.GithubURL
	}
	if req.CoverURL != nil {
		fields["cover_url"] = *req.CoverURL
	}
	if req.Tools != nil {
		fields["tools"] = pq.StringArray(models.SplitTools(*req.Tools))
	}
	if req.Published != nil {
		fields["published"] = *req.Published
	}
	if req.Featured != nil {
		fields["featured"] = *req.Featured
	}
	return fields
}

// updateProject applies a partial update to a project (admin only)
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, ok := h.parseProjectID(w, r)
		if !ok {
			return
		}

		var req updateProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Error().Err(err).Msg("Failed to decode project request body")
			h.responder.WriteError(w, errs.NewMalformedPayloadError("project", err))
			return
		}

		vm := h.viewModelFor(r)
		if err := vm.Update(r.Context(), projectID, req.fields()); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]string{
			"status":  "success",
			"message": "project updated successfully",
		})
	}
}

// togglePublished flips the published flag only (admin only)
func (h projectHandler) togglePublished() http.HandlerFunc {
	return h.toggleHandler("published", (*viewmodel.ProjectList).TogglePublished)
}

// toggleFeatured flips the featured flag only (admin only)
func (h projectHandler) toggleFeatured() http.HandlerFunc {
	return h.toggleHandler("featured", (*viewmodel.ProjectList).ToggleFeatured)
}

func (h projectHandler) toggleHandler(field string, toggle func(*viewmodel.ProjectList, context.Context, uuid.UUID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, ok := h.parseProjectID(w, r)
		if !ok {
			return
		}

		vm := h.viewModelFor(r)
		if err := toggle(vm, r.Context(), projectID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]string{
			"status":  "success",
			"message": field + " toggled",
		})
	}
}

// deleteProject deletes a project by ID (admin only, requires explicit
// confirmation via the confirm query parameter)
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, ok := h.parseProjectID(w, r)
		if !ok {
			return
		}

		confirmed := r.URL.Query().Get("confirm") == "true"

		vm := h.viewModelFor(r)
		if err := vm.Delete(r.Context(), projectID, confirmed); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]string{
			"status":  "success",
			"message": "project deleted successfully",
		})
	}
}

// uploadCover stores a cover image and attaches its public URL to the
// project (admin only). An upload failure leaves the record untouched and
// saveable.
func (h projectHandler) uploadCover() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.covers == nil {
			h.responder.WriteError(w, errs.NewNotConfiguredError("object storage"))
			return
		}

		projectID, ok := h.parseProjectID(w, r)
		if !ok {
			return
		}

		vm := h.viewModelFor(r)
		if !vm.Snapshot().IsAdmin {
			h.responder.WriteError(w, errs.NewForbiddenError("only admins can modify projects"))
			return
		}

		file, header, err := r.FormFile("cover")
		if err != nil {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("cover"))
			return
		}
		defer file.Close()

		publicURL, err := h.covers.UploadCover(r.Context(), header.Filename, file)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := vm.Update(r.Context(), projectID, map[string]any{"cover_url": publicURL}); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]string{
			"status":    "success",
			"cover_url": publicURL,
		})
	}
}

func (h projectHandler) parseProjectID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	projectIDStr := chi.URLParam(r, "projectID")
	if projectIDStr == "" {
		h.responder.WriteError(w, errs.NewBadRequestError("missing projectID"))
		return uuid.Nil, false
	}

	projectID, err := uuid.Parse(projectIDStr)
	if err != nil {
		h.responder.WriteError(w, errs.NewBadRequestError("invalid projectID"))
		return uuid.Nil, false
	}
	return projectID, true
}
