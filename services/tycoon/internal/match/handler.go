package match

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/appetiteclub/takoyaki/pkg/enums/mood"
	"github.com/appetiteclub/takoyaki/pkg/enums/tool"
	"github.com/appetiteclub/takoyaki/services/tycoon/internal/griddle"
	"github.com/appetiteclub/takoyaki/services/tycoon/internal/session"
)

const MaxBodyBytes = 1 << 20

const actionDiscard = "discard"

type Handler struct {
	logger apt.Logger
	config *apt.Config
	tlm    *telemetry.HTTP
	cache  *SessionCache
	hub    *SnapshotHub
	now    func() time.Time
}

type HandlerDeps struct {
	Cache *SessionCache
	Hub   *SnapshotHub
}

func NewHandler(hd HandlerDeps, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Handler{
		logger: logger,
		config: config,
		tlm:    telemetry.NewHTTP(),
		cache:  hd.Cache,
		hub:    hd.Hub,
		now:    time.Now,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Get("/", h.ListSessions)
		r.Get("/{id}", h.GetSession)
		r.Delete("/{id}", h.DeleteSession)
		r.Post("/{id}/start", h.StartMatch)
		r.Post("/{id}/stop", h.StopMatch)
		r.Post("/{id}/reset", h.ResetMatch)
		r.Post("/{id}/cells/{row}/{col}/{action}", h.UseCellTool)
		r.Post("/{id}/plates/{index}/{tool}", h.DressPlate)
		r.Post("/{id}/"+tool.Tools.Serve.Code(), h.Serve)
		r.Get("/{id}/ws", h.WatchSession)
	})
}

// ActionResponse is returned by every player action.
type ActionResponse struct {
	Outcome  string           `json:"outcome"`
	Changed  bool             `json:"changed"`
	Snapshot session.Snapshot `json:"snapshot"`
}

// ServeResponse is returned by the serve action.
type ServeResponse struct {
	session.ServeResult
	Snapshot session.Snapshot `json:"snapshot"`
}

type CreateSessionRequest struct {
	Start bool `json:"start"`
}

type ServeRequest struct {
	Mood string `json:"mood"`
}

type SessionSummary struct {
	ID        uuid.UUID     `json:"id"`
	State     session.State `json:"state"`
	Score     int           `json:"score"`
	Level     int           `json:"level"`
	Remaining string        `json:"remaining"`
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateSession")
	defer finish()

	log := h.log(r)

	var req CreateSessionRequest
	if !h.decodeOptionalPayload(w, r, log, &req) {
		return
	}

	id := h.cache.Create()
	snap, ok := h.update(w, r, log, id, func(s *session.Session, now time.Time) {
		if req.Start {
			s.Start(now)
		}
	})
	if !ok {
		return
	}

	log.Info("session created", "session_id", id.String(), "started", req.Start)
	apt.Respond(w, http.StatusCreated, snap, nil)
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListSessions")
	defer finish()

	now := h.now()
	summaries := make([]SessionSummary, 0, h.cache.Len())
	for _, id := range h.cache.IDs() {
		_ = h.cache.View(id, func(s *session.Session) {
			summaries = append(summaries, SessionSummary{
				ID:        id,
				State:     s.State(),
				Score:     s.Score(),
				Level:     s.Level(),
				Remaining: session.FormatRemaining(s.Remaining(now)),
			})
		})
	}

	apt.Respond(w, http.StatusOK, map[string]interface{}{
		"sessions": summaries,
		"count":    len(summaries),
	}, nil)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetSession")
	defer finish()

	log := h.log(r)

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	var snap session.Snapshot
	err := h.cache.View(id, func(s *session.Session) {
		snap = s.Snapshot(h.now())
	})
	if err != nil {
		h.respondCacheError(w, log, id, err)
		return
	}

	apt.Respond(w, http.StatusOK, snap, nil)
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteSession")
	defer finish()

	log := h.log(r)

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	if err := h.cache.Update(r.Context(), id, func(s *session.Session) { s.Stop(h.now()) }); err != nil {
		h.respondCacheError(w, log, id, err)
		return
	}
	if err := h.cache.Delete(id); err != nil {
		h.respondCacheError(w, log, id, err)
		return
	}
	if h.hub != nil {
		h.hub.Drop(id)
	}

	log.Info("session deleted", "session_id", id.String())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) StartMatch(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "Handler.StartMatch", func(s *session.Session, now time.Time) { s.Start(now) })
}

func (h *Handler) StopMatch(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "Handler.StopMatch", func(s *session.Session, now time.Time) { s.Stop(now) })
}

func (h *Handler) ResetMatch(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "Handler.ResetMatch", func(s *session.Session, now time.Time) { s.Reset() })
}

func (h *Handler) lifecycle(w http.ResponseWriter, r *http.Request, span string, fn func(*session.Session, time.Time)) {
	w, r, finish := h.tlm.Start(w, r, span)
	defer finish()

	log := h.log(r)

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	snap, ok := h.update(w, r, log, id, fn)
	if !ok {
		return
	}

	log.Info("match lifecycle changed", "session_id", id.String(), "state", string(snap.State))
	apt.Respond(w, http.StatusOK, snap, nil)
}

// UseCellTool applies batter, octopus or stick to a cell, or discards it.
func (h *Handler) UseCellTool(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UseCellTool")
	defer finish()

	log := h.log(r)

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	row, errRow := strconv.Atoi(chi.URLParam(r, "row"))
	col, errCol := strconv.Atoi(chi.URLParam(r, "col"))
	if errRow != nil || errCol != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid cell coordinates")
		return
	}

	action := chi.URLParam(r, "action")
	var apply func(*session.Session, time.Time) griddle.Outcome

	if action == actionDiscard {
		apply = func(s *session.Session, now time.Time) griddle.Outcome { return s.Discard(row, col, now) }
	} else {
		t := tool.ByName(action)
		if t == nil || !t.OnGriddle() {
			log.Debug("unknown cell tool", "action", action)
			apt.RespondError(w, http.StatusBadRequest, "Unknown cell action")
			return
		}
		switch *t {
		case tool.Tools.Batter:
			apply = func(s *session.Session, now time.Time) griddle.Outcome { return s.AddBatter(row, col, now) }
		case tool.Tools.Octopus:
			apply = func(s *session.Session, now time.Time) griddle.Outcome { return s.AddOctopus(row, col) }
		case tool.Tools.Stick:
			apply = func(s *session.Session, now time.Time) griddle.Outcome { return s.Stick(row, col, now) }
		}
	}

	var outcome griddle.Outcome
	snap, ok := h.update(w, r, log, id, func(s *session.Session, now time.Time) {
		outcome = apply(s, now)
	})
	if !ok {
		return
	}

	log.Debug("cell action", "session_id", id.String(), "action", action, "row", row, "col", col, "outcome", string(outcome))
	apt.Respond(w, http.StatusOK, ActionResponse{
		Outcome:  string(outcome),
		Changed:  outcome.Changed(),
		Snapshot: snap,
	}, nil)
}

// DressPlate applies sauce or a topping to a plated item.
func (h *Handler) DressPlate(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DressPlate")
	defer finish()

	log := h.log(r)

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid plate index")
		return
	}

	t := tool.ByName(chi.URLParam(r, "tool"))
	if t == nil || !t.OnPlate() {
		apt.RespondError(w, http.StatusBadRequest, "Unknown plate tool")
		return
	}

	var changed bool
	snap, ok := h.update(w, r, log, id, func(s *session.Session, now time.Time) {
		if *t == tool.Tools.Sauce {
			changed = s.AddSauce(index)
			return
		}
		changed = s.AddTopping(index, *t.Topping())
	})
	if !ok {
		return
	}

	outcome := "dressed"
	if !changed {
		outcome = string(griddle.OutcomeNoOp)
	}
	apt.Respond(w, http.StatusOK, ActionResponse{
		Outcome:  outcome,
		Changed:  changed,
		Snapshot: snap,
	}, nil)
}

func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Serve")
	defer finish()

	log := h.log(r)

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	var req ServeRequest
	if !h.decodeOptionalPayload(w, r, log, &req) {
		return
	}

	var finalMood mood.Mood
	if req.Mood != "" {
		m := mood.ByName(req.Mood)
		if m == nil {
			apt.RespondError(w, http.StatusBadRequest, "Unknown mood")
			return
		}
		finalMood = *m
	}

	var result session.ServeResult
	snap, ok := h.update(w, r, log, id, func(s *session.Session, now time.Time) {
		result = s.Serve(now, finalMood)
	})
	if !ok {
		return
	}

	log.Info("serve attempted", "session_id", id.String(), "success", result.Success, "completed", result.OrderCompleted)
	apt.Respond(w, http.StatusOK, ServeResponse{ServeResult: result, Snapshot: snap}, nil)
}

// WatchSession upgrades to a websocket that receives snapshots.
func (h *Handler) WatchSession(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}
	if h.hub == nil {
		apt.RespondError(w, http.StatusServiceUnavailable, "Snapshot feed disabled")
		return
	}

	var snap session.Snapshot
	if err := h.cache.View(id, func(s *session.Session) { snap = s.Snapshot(h.now()) }); err != nil {
		h.respondCacheError(w, log, id, err)
		return
	}

	if err := h.hub.Serve(w, r, id, snap); err != nil {
		log.Debug("websocket upgrade failed", "session_id", id.String(), "error", err)
	}
}

// update brings a running match up to the current time, applies fn, then
// snapshots and broadcasts.
func (h *Handler) update(w http.ResponseWriter, r *http.Request, log apt.Logger, id uuid.UUID, fn func(*session.Session, time.Time)) (session.Snapshot, bool) {
	var snap session.Snapshot
	err := h.cache.Update(r.Context(), id, func(s *session.Session) {
		now := h.now()
		if s.Running() {
			s.Tick(now)
		}
		fn(s, now)
		snap = s.Snapshot(now)
	})
	if err != nil {
		h.respondCacheError(w, log, id, err)
		return session.Snapshot{}, false
	}
	if h.hub != nil {
		h.hub.Broadcast(id, snap)
	}
	return snap, true
}

func (h *Handler) respondCacheError(w http.ResponseWriter, log apt.Logger, id uuid.UUID, err error) {
	if errors.Is(err, ErrSessionNotFound) {
		apt.RespondError(w, http.StatusNotFound, "Session not found")
		return
	}
	log.Error("session operation failed", "session_id", id.String(), "error", err)
	apt.RespondError(w, http.StatusInternalServerError, "Could not update session")
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", apt.RequestIDFrom(r.Context()))
}

func (h *Handler) parseIDParam(w http.ResponseWriter, r *http.Request, log apt.Logger) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		log.Debug("missing id parameter")
		apt.RespondError(w, http.StatusBadRequest, "Missing id parameter")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		log.Debug("invalid id parameter", "id", idStr)
		apt.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return uuid.Nil, false
	}

	return id, true
}

// decodeOptionalPayload accepts an empty body.
func (h *Handler) decodeOptionalPayload(w http.ResponseWriter, r *http.Request, log apt.Logger, out interface{}) bool {
	if r.Body == nil {
		return true
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("failed to read request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Failed to read request body")
		return false
	}
	if len(body) == 0 {
		return true
	}

	if err := json.Unmarshal(body, out); err != nil {
		log.Debug("failed to decode request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return false
	}
	return true
}
