package sessions

import (
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/gymtrack/internal/telemetry/tracing"
	"github.com/2beens/gymtrack/pkg"
)

type SyncResponse struct {
	Pushed int `json:"pushed"`
}

type DeleteResponse struct {
	DeletedID string `json:"deletedId"`
}

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.list")
	defer span.End()

	sessions, err := handler.repo.GetSessions(ctx)
	if err != nil {
		log.Errorf("failed to list sessions: %s", err)
		http.Error(w, "failed to list sessions", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, sessions, http.StatusOK)
}

func (handler *Handler) HandleLastForDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.last_for_day")
	defer span.End()

	day := mux.Vars(r)["day"]
	if day == "" {
		http.Error(w, "error, day empty", http.StatusBadRequest)
		return
	}

	session, err := handler.repo.GetLastSessionForDay(ctx, day)
	if err != nil {
		log.Errorf("failed to get last session for day [%s]: %s", day, err)
		http.Error(w, "failed to get last session", http.StatusInternalServerError)
		return
	}
	if session == nil {
		http.Error(w, "no session for day", http.StatusNotFound)
		return
	}

	pkg.WriteJSON(w, session, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.delete")
	defer span.End()

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	if err := handler.repo.DeleteSession(ctx, id); err != nil {
		log.Errorf("failed to delete session [%s]: %s", id, err)
		http.Error(w, "failed to delete session", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, DeleteResponse{DeletedID: id}, http.StatusOK)
}

func (handler *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.sync")
	defer span.End()

	pushed, err := handler.repo.SyncPending(ctx)
	if err != nil {
		log.Errorf("failed to sync sessions: %s", err)
		http.Error(w, "failed to sync sessions", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, SyncResponse{Pushed: pushed}, http.StatusOK)
}
