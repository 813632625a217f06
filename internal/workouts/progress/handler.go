package progress

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/workouttracker/internal/telemetry/tracing"
	"github.com/2beens/workouttracker/pkg"
)

type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

type HistoryResponse struct {
	Name    string            `json:"name"`
	Count   int               `json:"count"`
	History []HistoryInstance `json:"history"`
}

type Handler struct {
	analyzer *Analyzer
}

func NewHandler(analyzer *Analyzer) *Handler {
	return &Handler{
		analyzer: analyzer,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/api/exercises/suggest", handler.HandleSuggest).Methods("GET", "OPTIONS").Name("suggest-exercises")
	r.HandleFunc("/api/exercises/catalog", handler.HandleCatalog).Methods("GET", "OPTIONS").Name("exercises-catalog")
	r.HandleFunc("/api/progress", handler.HandleProgress).Methods("GET", "OPTIONS").Name("progress")
	r.HandleFunc("/api/progress/history", handler.HandleHistory).Methods("GET", "OPTIONS").Name("progress-history")
}

func (handler *Handler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.suggest")
	defer span.End()

	suggestions, err := handler.analyzer.Suggestions(ctx, r.URL.Query().Get("q"))
	if err != nil {
		log.Errorf("failed to get exercise suggestions: %s", err)
		http.Error(w, "failed to get suggestions", http.StatusInternalServerError)
		return
	}

	handler.writeJSON(w, SuggestionsResponse{Suggestions: suggestions})
}

func (handler *Handler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.catalog")
	defer span.End()

	handler.writeJSON(w, Catalog())
}

func (handler *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.summaries")
	defer span.End()

	summaries, err := handler.analyzer.Summaries(ctx)
	if err != nil {
		log.Errorf("failed to get exercise summaries: %s", err)
		http.Error(w, "failed to get progress", http.StatusInternalServerError)
		return
	}

	handler.writeJSON(w, summaries)
}

func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.history")
	defer span.End()

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		http.Error(w, "error, exercise name empty", http.StatusBadRequest)
		return
	}

	history, err := handler.analyzer.History(ctx, name)
	if err != nil {
		log.Errorf("failed to get exercise history [%s]: %s", name, err)
		http.Error(w, "failed to get exercise history", http.StatusInternalServerError)
		return
	}

	handler.writeJSON(w, HistoryResponse{
		Name:    name,
		Count:   len(history),
		History: history,
	})
}

func (handler *Handler) writeJSON(w http.ResponseWriter, v any) {
	respJson, err := json.Marshal(v)
	if err != nil {
		log.Errorf("failed to marshal progress response: %s", err)
		http.Error(w, "failed to marshal response", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}
