package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/pkg/logger"
)

// searchRequest is the body of POST /searches. Omitted parameters take the
// server defaults.
type searchRequest struct {
	Resume        string  `json:"resume"`
	Location      *string `json:"location"`
	MinMatch      *int    `json:"min_match"`
	MaxAgeDays    *int    `json:"max_age_days"`
	IncludeRemote *bool   `json:"include_remote"`
	ScraperMode   *string `json:"scraper_mode"`
}

func (r searchRequest) params(defaults model.Parameters) model.Parameters {
	p := defaults
	if r.Location != nil {
		p.Location = *r.Location
	}
	if r.MinMatch != nil {
		p.MinMatch = *r.MinMatch
	}
	if r.MaxAgeDays != nil {
		p.MaxAgeDays = *r.MaxAgeDays
	}
	if r.IncludeRemote != nil {
		p.IncludeRemote = *r.IncludeRemote
	}
	if r.ScraperMode != nil {
		p.ScraperMode = model.ScraperMode(*r.ScraperMode)
	}
	return p
}

// SearchesHandler serves the search session resources.
type SearchesHandler struct {
	deps Dependencies
	cfg  serverConfig
}

// NewSearchesHandler creates a new searches handler.
func NewSearchesHandler(deps Dependencies, cfg serverConfig) *SearchesHandler {
	return &SearchesHandler{deps: deps, cfg: cfg}
}

// HandleCreate handles POST /searches.
func (h *SearchesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_search"
	var req searchRequest
	body := http.MaxBytesReader(w, r.Body, h.cfg.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", wrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}

	sess, err := h.deps.Submit(r.Context(), req.params(h.cfg.defaults), req.Resume)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	h.cfg.log.Info(r.Context(), "search accepted", logger.String("session", sess.ID))
	w.Header().Set("Location", "/searches/"+sess.ID)
	writeJSON(w, http.StatusAccepted, sess)
}

// HandleList handles GET /searches?limit=N.
func (h *SearchesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_searches"
	n := defaultListLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
			return
		}
		if v > h.cfg.maxListLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", wrapKind(op, ErrBadRequest, nil))
			return
		}
		n = v
	}
	list, err := h.deps.List(r.Context(), n)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleGet handles GET /searches/{id}.
func (h *SearchesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := h.deps.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, "api.get_search", err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// HandleResults handles GET /searches/{id}/results.
func (h *SearchesHandler) HandleResults(w http.ResponseWriter, r *http.Request) {
	rows, err := h.deps.Results(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, "api.get_results", err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// HandleCancel handles DELETE /searches/{id}. The session keeps running
// until its in-flight tasks end, so the response is the current snapshot.
func (h *SearchesHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	const op = "api.cancel_search"
	id := r.PathValue("id")
	if err := h.deps.Cancel(r.Context(), id); err != nil {
		writeServiceError(w, op, err)
		return
	}
	sess, err := h.deps.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusAccepted, sess)
}
