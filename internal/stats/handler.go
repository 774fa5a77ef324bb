package stats

import (
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/gymtrack/internal/telemetry/tracing"
	"github.com/2beens/gymtrack/pkg"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.summary")
	defer span.End()

	summary, err := handler.service.Summary(ctx)
	if err != nil {
		log.Errorf("failed to build stats summary: %s", err)
		http.Error(w, "failed to build stats summary", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, summary, http.StatusOK)
}

func (handler *Handler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.records")
	defer span.End()

	records, err := handler.service.Records(ctx)
	if err != nil {
		log.Errorf("failed to get personal records: %s", err)
		http.Error(w, "failed to get personal records", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, records, http.StatusOK)
}

func (handler *Handler) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.calendar")
	defer span.End()

	calendar, err := handler.service.Calendar(ctx)
	if err != nil {
		log.Errorf("failed to get calendar: %s", err)
		http.Error(w, "failed to get calendar", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, calendar, http.StatusOK)
}

func (handler *Handler) HandleExerciseHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.exercise_history")
	defer span.End()

	exerciseID := mux.Vars(r)["exercise"]
	if exerciseID == "" {
		http.Error(w, "error, exercise empty", http.StatusBadRequest)
		return
	}

	history, err := handler.service.ExerciseHistory(ctx, exerciseID)
	if err != nil {
		log.Errorf("failed to get history for exercise [%s]: %s", exerciseID, err)
		http.Error(w, "failed to get exercise history", http.StatusInternalServerError)
		return
	}
	if history == nil {
		history = []HistoryPoint{}
	}

	pkg.WriteJSON(w, history, http.StatusOK)
}
