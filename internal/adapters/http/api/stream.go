package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/okian/jobscout/pkg/logger"
)

// StreamHandler serves progress events as server-sent events.
type StreamHandler struct {
	deps Dependencies
	log  logger.Logger
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(deps Dependencies, log logger.Logger) *StreamHandler {
	return &StreamHandler{deps: deps, log: log}
}

// HandleEvents handles GET /searches/{id}/events. The stream opens with a
// "session" snapshot and ends after the terminal event.
func (h *StreamHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	const op = "api.stream_events"
	ctx := r.Context()
	id := r.PathValue("id")

	events, unsubscribe, err := h.deps.Subscribe(ctx, id)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	defer unsubscribe()

	snapshot, err := h.deps.Get(ctx, id)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, "", "session", snapshot); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		h.log.Warn(ctx, "event stream cannot flush", logger.Error(wrapKind(op, ErrStreaming, err)))
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(w, e.ID, string(e.Kind), e); err != nil {
				h.log.Debug(ctx, "event stream closed", logger.String("session", id), logger.Error(err))
				return
			}
			_ = rc.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, id, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if id != "" {
		if _, err := fmt.Fprintf(w, "id: %s\n", id); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}
