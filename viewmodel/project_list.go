// Package viewmodel composes the role resolver, the project store, and the
// change feed into the screen-facing unit behind the project list: a
// filtered, newest-first view of visible records, a three-valued privilege
// flag, and mutation entry points that are locally refused for non-admins.
//
// One instance backs one screen or connection. Local state is owned
// exclusively by the instance and converges with the store on the next
// successful fetch; feed-triggered and manual refetches may race, and the
// last write wins.
package viewmodel

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rpupo63/portfolio-backend/services"
)

// featuredFallbackCount is how many of the newest published projects stand
// in when nothing is featured.
const featuredFallbackCount = 3

// State is the screen lifecycle. A failed query still lands in Ready (with
// an empty list); there is no terminal error state that blocks the screen.
type State int

const (
	StateLoading State = iota
	StateReady
)

func (s State) String() string {
	if s == StateReady {
		return "ready"
	}
	return "loading"
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Gateway is the record store surface the view model composes.
type Gateway interface {
	FindPublished(ctx context.Context, limit int) ([]models.Project, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	Add(ctx context.Context, project *models.Project) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PrivilegeResolver resolves the viewer's admin privilege.
type PrivilegeResolver interface {
	Resolve(ctx context.Context, identity *services.Identity) services.Privilege
}

// SubscribeFunc registers a change callback and returns an unsubscribe
// handle.
type SubscribeFunc func(onChange func()) (unsubscribe func())

// Snapshot is an immutable copy of the view model state.
type Snapshot struct {
	State     State            `json:"state"`
	Privilege string           `json:"privilege"`
	IsAdmin   bool             `json:"is_admin"`
	Projects  []models.Project `json:"projects"`
}

// CreateInput carries the fields of a new project. Tools arrive as the raw
// comma-separated input and are split before the store call.
type CreateInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	GithubURL   string `json:"github_url"`
	CoverURL    string `json:"cover_url"`
	ToolsCSV    string `json:"tools_csv"`
	Published   bool   `json:"published"`
	Featured    bool   `json:"featured"`
}

// ProjectList is the composed view model for one screen instance.
type ProjectList struct {
	gateway   Gateway
	roles     PrivilegeResolver
	subscribe SubscribeFunc
	identity  *services.Identity
	logger    zerolog.Logger

	mu          sync.Mutex
	state       State
	privilege   services.Privilege
	projects    []models.Project
	closed      bool
	unsubscribe func()

	updates chan struct{}
}

// NewProjectList builds a view model for the given viewer. identity may be
// nil (anonymous viewer). subscribe may be nil when no change feed is
// wanted, e.g. for one-shot request handling.
func NewProjectList(gateway Gateway, roles PrivilegeResolver, subscribe SubscribeFunc, identity *services.Identity) *ProjectList {
	return &ProjectList{
		gateway:   gateway,
		roles:     roles,
		subscribe: subscribe,
		identity:  identity,
		logger:    log.With().Str("component", "projectList").Logger(),
		state:     StateLoading,
		privilege: services.PrivilegeUnknown,
		updates:   make(chan struct{}, 1),
	}
}

// Start subscribes to the change feed, kicks off privilege resolution, and
// performs the initial fetch. Privilege resolution does not block the
// Loading to Ready transition.
func (v *ProjectList) Start(ctx context.Context) {
	if v.subscribe != nil {
		unsub := v.subscribe(func() {
			// Feed events carry no payload; refetch and let the last
			// write win against any in-flight manual refetch.
			go v.Refetch(ctx)
		})

		v.mu.Lock()
		if v.closed {
			v.mu.Unlock()
			unsub()
			return
		}
		v.unsubscribe = unsub
		v.mu.Unlock()
	}

	go v.ResolvePrivilege(ctx)
	v.Refetch(ctx)
}

// ResolvePrivilege resolves the viewer's privilege sub-state. Failures
// inside the resolver fail closed; the value only moves away from Unknown
// once an answer exists.
func (v *ProjectList) ResolvePrivilege(ctx context.Context) {
	privilege := v.roles.Resolve(ctx, v.identity)

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.privilege = privilege
	v.mu.Unlock()
	v.notifyUpdated()
}

// Refetch reloads the visible list from the store. Any failure is logged
// and leaves the screen in Ready with an empty list, never blocked.
func (v *ProjectList) Refetch(ctx context.Context) {
	projects, err := v.gateway.FindPublished(ctx, 0)
	if err != nil {
		v.logger.Error().Err(err).Msg("project fetch failed")
		projects = nil
	}

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.state = StateReady
	v.projects = projects
	v.mu.Unlock()
	v.notifyUpdated()
}

// Snapshot returns a copy of the current state.
func (v *ProjectList) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	projects := make([]models.Project, len(v.projects))
	copy(projects, v.projects)

	return Snapshot{
		State:     v.state,
		Privilege: v.privilege.String(),
		IsAdmin:   v.privilege.IsAdmin(),
		Projects:  projects,
	}
}

// Visible returns the published projects, newest first.
func (v *ProjectList) Visible() []models.Project {
	return v.Snapshot().Projects
}

// Featured returns the curated subset for the landing view: published and
// featured, newest first, falling back to the newest published projects
// when nothing is featured.
func (v *ProjectList) Featured() []models.Project {
	return FeaturedWithFallback(v.Visible())
}

// Updates signals after every state change. The channel is never closed;
// consumers stop reading when their context ends.
func (v *ProjectList) Updates() <-chan struct{} {
	return v.updates
}

// Close marks the instance dead and unsubscribes from the change feed.
// In-flight requests that resolve afterwards are discarded by the liveness
// check. Idempotent; unsubscribe failures are swallowed.
func (v *ProjectList) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	unsub := v.unsubscribe
	v.unsubscribe = nil
	v.mu.Unlock()

	if unsub != nil {
		func() {
			defer func() { _ = recover() }()
			unsub()
		}()
	}
}

// Create inserts a new project. Admin-gated; the title must be non-blank
// after trimming, checked before any store call.
func (v *ProjectList) Create(ctx context.Context, in CreateInput) (*models.Project, error) {
	if err := v.requireAdmin(); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, errs.NewMissingRequiredFieldError("title")
	}

	project := models.Project{
		Title:       title,
		Description: optional(strings.TrimSpace(in.Description)),
		GithubURL:   optional(strings.TrimSpace(in.GithubURL)),
		CoverURL:    optional(in.CoverURL),
		Tools:       models.SplitTools(in.ToolsCSV),
		Published:   in.Published,
		Featured:    in.Featured,
	}

	if err := v.gateway.Add(ctx, &project); err != nil {
		return nil, errs.NewDatabaseError("create", "project", err)
	}

	// Local state changes strictly after the store confirms. Newest first.
	v.mu.Lock()
	if !v.closed && project.Published {
		v.projects = append([]models.Project{project}, v.projects...)
	}
	v.mu.Unlock()
	v.notifyUpdated()

	return &project, nil
}

// Update applies a partial update to a project. Admin-gated; only the given
// columns are sent to the store.
func (v *ProjectList) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if err := v.requireAdmin(); err != nil {
		return err
	}
	if len(fields) == 0 {
		return errs.NewBadRequestError("no fields to update")
	}
	if title, ok := fields["title"].(string); ok && strings.TrimSpace(title) == "" {
		return errs.NewMissingRequiredFieldError("title")
	}

	if err := v.gateway.UpdateFields(ctx, id, fields); err != nil {
		return errs.NewDatabaseError("update", "project", err)
	}

	v.applyLocal(id, fields)
	return nil
}

// TogglePublished flips the published flag, sending exactly that field.
func (v *ProjectList) TogglePublished(ctx context.Context, id uuid.UUID) error {
	return v.toggle(ctx, id, "published")
}

// ToggleFeatured flips the featured flag, sending exactly that field.
func (v *ProjectList) ToggleFeatured(ctx context.Context, id uuid.UUID) error {
	return v.toggle(ctx, id, "featured")
}

func (v *ProjectList) toggle(ctx context.Context, id uuid.UUID, field string) error {
	if err := v.requireAdmin(); err != nil {
		return err
	}

	current, err := v.currentValue(ctx, id, field)
	if err != nil {
		return err
	}

	fields := map[string]any{field: !current}
	if err := v.gateway.UpdateFields(ctx, id, fields); err != nil {
		return errs.NewDatabaseError("update", "project", err)
	}

	v.applyLocal(id, fields)
	return nil
}

// Delete removes a project permanently. Admin-gated and guarded by an
// explicit confirmation decision. On success the record leaves local state
// immediately; on failure local state is unchanged.
func (v *ProjectList) Delete(ctx context.Context, id uuid.UUID, confirmed bool) error {
	if err := v.requireAdmin(); err != nil {
		return err
	}
	if !confirmed {
		return errs.NewConfirmationRequiredError("delete project")
	}

	if err := v.gateway.Delete(ctx, id); err != nil {
		return errs.NewDatabaseError("delete", "project", err)
	}

	v.mu.Lock()
	if !v.closed {
		kept := v.projects[:0:0]
		for _, p := range v.projects {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		v.projects = kept
	}
	v.mu.Unlock()
	v.notifyUpdated()
	return nil
}

// requireAdmin refuses mutations locally unless the resolved privilege is
// admin. The store's own access control stays authoritative for calls that
// do go through.
func (v *ProjectList) requireAdmin() error {
	v.mu.Lock()
	privilege := v.privilege
	v.mu.Unlock()

	if !privilege.IsAdmin() {
		return errs.NewForbiddenError("only admins can modify projects")
	}
	return nil
}

// currentValue reads a flag from local state, falling back to the store for
// records not in the visible list (an unpublished row being re-published).
func (v *ProjectList) currentValue(ctx context.Context, id uuid.UUID, field string) (bool, error) {
	v.mu.Lock()
	for _, p := range v.projects {
		if p.ID == id {
			v.mu.Unlock()
			if field == "published" {
				return p.Published, nil
			}
			return p.Featured, nil
		}
	}
	v.mu.Unlock()

	project, err := v.gateway.FindByID(ctx, id)
	if err != nil {
		return false, errs.NewDatabaseError("find", "project", err)
	}
	if field == "published" {
		return project.Published, nil
	}
	return project.Featured, nil
}

// applyLocal mirrors confirmed field changes onto the local copy.
func (v *ProjectList) applyLocal(id uuid.UUID, fields map[string]any) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	for i := range v.projects {
		if v.projects[i].ID != id {
			continue
		}
		p := &v.projects[i]
		for key, value := range fields {
			switch key {
			case "title":
				if s, ok := value.(string); ok {
					p.Title = strings.TrimSpace(s)
				}
			case "description":
				if s, ok := value.(string); ok {
					p.Description = optional(s)
				}
			case "github_url":
				if s, ok := value.(string); ok {
					p.GithubURL = optional(s)
				}
			case "cover_url":
				if s, ok := value.(string); ok {
					p.CoverURL = optional(s)
				}
			case "tools":
				switch tools := value.(type) {
				case []string:
					p.Tools = tools
				case pq.StringArray:
					p.Tools = tools
				}
			case "published":
				if b, ok := value.(bool); ok {
					p.Published = b
				}
			case "featured":
				if b, ok := value.(bool); ok {
					p.Featured = b
				}
			}
		}
		break
	}
	v.mu.Unlock()
	v.notifyUpdated()
}

func (v *ProjectList) notifyUpdated() {
	select {
	case v.updates <- struct{}{}:
	default:
	}
}

// FeaturedWithFallback selects the landing-view subset from a published,
// newest-first list: the featured rows, or when none are featured, the
// newest few published rows. Idempotent on unchanged input.
func FeaturedWithFallback(published []models.Project) []models.Project {
	var featured []models.Project
	for _, p := range published {
		if p.Featured {
			featured = append(featured, p)
		}
	}
	if len(featured) > 0 {
		return featured
	}

	if len(published) > featuredFallbackCount {
		published = published[:featuredFallbackCount]
	}
	out := make([]models.Project, len(published))
	copy(out, published)
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
