package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/gymtrack/internal/telemetry/tracing"
	"github.com/2beens/gymtrack/internal/workout"
	"github.com/2beens/gymtrack/pkg"
)

type StartRestRequest struct {
	Spec   string `json:"spec"`
	Unit   string `json:"unit"`
	Target int    `json:"target"`
}

type DraftEntryRequest struct {
	Exercise string        `json:"exercise"`
	Index    int           `json:"index"`
	Field    workout.Field `json:"field"`
	Value    string        `json:"value"`
}

type TapResponse struct {
	Unit  string `json:"unit"`
	Count int    `json:"count"`
}

type DiscardResponse struct {
	Armed bool `json:"armed"`
}

type Handler struct {
	runtime *Runtime
}

func NewHandler(runtime *Runtime) *Handler {
	return &Handler{
		runtime: runtime,
	}
}

func (handler *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.state")
	defer span.End()

	pkg.WriteJSON(w, handler.runtime.CurrentSnapshot(), http.StatusOK)
}

func (handler *Handler) HandleTap(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.tap")
	defer span.End()

	unit := mux.Vars(r)["unit"]
	count, err := handler.runtime.Tap(unit)
	if err != nil {
		writeError(w, "tap", err)
		return
	}

	pkg.WriteJSON(w, TapResponse{Unit: unit, Count: count}, http.StatusOK)
}

func (handler *Handler) HandleStartRest(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.rest.start")
	defer span.End()

	var req StartRestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("start rest, unmarshal json params: %s", err)
		http.Error(w, "invalid rest request", http.StatusBadRequest)
		return
	}

	// the timer outlives the request
	spec, err := handler.runtime.StartRest(context.WithoutCancel(ctx), req.Spec, req.Unit, req.Target)
	if err != nil {
		writeError(w, "start rest", err)
		return
	}

	pkg.WriteJSON(w, spec, http.StatusOK)
}

func (handler *Handler) HandleCancelRest(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.rest.cancel")
	defer span.End()

	handler.runtime.CancelRest(ctx)
	handler.writeState(w)
}

func (handler *Handler) HandlePause(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.pause")
	defer span.End()

	if err := handler.runtime.Pause(); err != nil {
		writeError(w, "pause", err)
		return
	}
	handler.writeState(w)
}

func (handler *Handler) HandleResume(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.resume")
	defer span.End()

	if err := handler.runtime.Resume(); err != nil {
		writeError(w, "resume", err)
		return
	}
	handler.writeState(w)
}

func (handler *Handler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.finish")
	defer span.End()

	res, err := handler.runtime.Finish(ctx)
	if err != nil {
		writeError(w, "finish", err)
		return
	}

	status := http.StatusCreated
	if res.Armed {
		status = http.StatusAccepted
	}
	pkg.WriteJSON(w, res, status)
}

func (handler *Handler) HandleDiscard(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.discard")
	defer span.End()

	armed, err := handler.runtime.Discard(ctx)
	if err != nil {
		writeError(w, "discard", err)
		return
	}

	status := http.StatusOK
	if armed {
		status = http.StatusAccepted
	}
	pkg.WriteJSON(w, DiscardResponse{Armed: armed}, status)
}

func (handler *Handler) HandleDraftEntry(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.draft")
	defer span.End()

	var req DraftEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("draft entry, unmarshal json params: %s", err)
		http.Error(w, "invalid draft entry", http.StatusBadRequest)
		return
	}
	if req.Exercise == "" {
		http.Error(w, "error, exercise empty", http.StatusBadRequest)
		return
	}

	if err := handler.runtime.UpdateDraftEntry(ctx, req.Exercise, req.Index, req.Field, req.Value); err != nil {
		log.Tracef("draft entry [%s][%d]: %s", req.Exercise, req.Index, err)
		http.Error(w, "invalid draft entry", http.StatusBadRequest)
		return
	}
	handler.writeState(w)
}

func (handler *Handler) HandleSelectDay(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.day")
	defer span.End()

	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		http.Error(w, "error, day index NaN", http.StatusBadRequest)
		return
	}

	if err := handler.runtime.SelectDay(index); err != nil {
		writeError(w, "select day", err)
		return
	}
	handler.writeState(w)
}

func (handler *Handler) writeState(w http.ResponseWriter) {
	pkg.WriteJSON(w, handler.runtime.CurrentSnapshot(), http.StatusOK)
}

func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrUnknownUnit), errors.Is(err, ErrUnknownDay):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrNoSession):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Errorf("tracker %s: %s", op, err)
		http.Error(w, "tracker "+op+" failed", http.StatusInternalServerError)
	}
}
