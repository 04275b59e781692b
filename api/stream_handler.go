package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/viewmodel"
)

// streamProjects serves the project list as a server-sent event stream. One
// view model instance backs each connection: it subscribes to the change
// feed on connect, pushes a fresh snapshot on every state change, and is
// closed (unsubscribed) when the client goes away.
func (h projectHandler) streamProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			h.responder.WriteError(w, errs.NewBadRequestError("streaming unsupported"))
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		subscribe := func(onChange func()) func() {
			return h.hub.Subscribe(database.ProjectsCollection, onChange)
		}

		vm := viewmodel.NewProjectList(h.projects, h.roles, subscribe, ctxGetIdentity(r.Context()))
		defer vm.Close()

		ctx := r.Context()
		vm.Start(ctx)

		if !h.writeSnapshot(w, flusher, vm.Snapshot()) {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-vm.Updates():
				if !h.writeSnapshot(w, flusher, vm.Snapshot()) {
					return
				}
			}
		}
	}
}

func (h projectHandler) writeSnapshot(w http.ResponseWriter, flusher http.Flusher, snapshot viewmodel.Snapshot) bool {
	data, err := json.Marshal(snapshot)
	if err != nil {
		h.logger.Error().Err(err).Msg("error marshaling snapshot")
		return false
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return false
	}
	flusher.Flush()
	return true
}
