package workouts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/workouttracker/internal/telemetry/metrics"
	"github.com/2beens/workouttracker/internal/telemetry/tracing"
	"github.com/2beens/workouttracker/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=workouts_mocks_test.go -package=workouts_test

type workoutsRepo interface {
	ListAllWithExercises(ctx context.Context) ([]Workout, error)
	Get(ctx context.Context, id int) (*Workout, error)
	Add(ctx context.Context, workout Workout) (*Workout, error)
	Finish(ctx context.Context, id int, endTime time.Time) error
	Delete(ctx context.Context, id int) error
	AddExercise(ctx context.Context, exercise Exercise) (*Exercise, error)
	DeleteExercise(ctx context.Context, id int) error
}

// snapshotInvalidator drops any cached workouts snapshot after a write.
type snapshotInvalidator interface {
	Invalidate()
}

type FinishWorkoutRequest struct {
	EndTime *time.Time `json:"endTime"`
}

// NewExerciseRequest keeps setDetails raw so malformed input is rejected
// here instead of being decoded leniently to no sets.
type NewExerciseRequest struct {
	WorkoutID  int             `json:"workoutId"`
	Name       string          `json:"name"`
	Sets       int             `json:"sets"`
	SetDetails json.RawMessage `json:"setDetails"`
	Notes      string          `json:"notes"`
}

func (req NewExerciseRequest) toExercise() (Exercise, error) {
	setDetails, err := DecodeSetDetails(req.SetDetails)
	if err != nil {
		return Exercise{}, validationErr("%s", err)
	}
	return Exercise{
		WorkoutID:  req.WorkoutID,
		Name:       req.Name,
		Sets:       req.Sets,
		SetDetails: setDetails,
		Notes:      req.Notes,
	}, nil
}

type NewWorkoutRequest struct {
	Date        string               `json:"date"`
	WorkoutName string               `json:"workoutName"`
	StartTime   *time.Time           `json:"startTime"`
	Notes       string               `json:"notes"`
	Exercises   []NewExerciseRequest `json:"exercises"`
}

func (req NewWorkoutRequest) toWorkout() (Workout, error) {
	workout := Workout{
		Date:        req.Date,
		WorkoutName: req.WorkoutName,
		StartTime:   req.StartTime,
		Notes:       req.Notes,
		Exercises:   make([]Exercise, 0, len(req.Exercises)),
	}
	for i, exReq := range req.Exercises {
		exercise, err := exReq.toExercise()
		if err != nil {
			return Workout{}, fmt.Errorf("exercise %d: %w", i, err)
		}
		workout.Exercises = append(workout.Exercises, exercise)
	}
	return workout, nil
}

type Handler struct {
	repo           workoutsRepo
	snapshotCache  snapshotInvalidator
	metricsManager *metrics.Manager
	now            func() time.Time
}

func NewHandler(repo workoutsRepo, snapshotCache snapshotInvalidator, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		snapshotCache:  snapshotCache,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/api/workouts", handler.HandleList).Methods("GET", "OPTIONS").Name("list-workouts")
	r.HandleFunc("/api/workouts", handler.HandleAdd).Methods("POST", "OPTIONS").Name("new-workout")
	r.HandleFunc("/api/workouts/{id}", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-workout")
	r.HandleFunc("/api/workouts/{id}", handler.HandleFinish).Methods("PUT", "OPTIONS").Name("finish-workout")
	r.HandleFunc("/api/workouts/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-workout")
	r.HandleFunc("/api/exercises", handler.HandleAddExercise).Methods("POST", "OPTIONS").Name("new-exercise")
	r.HandleFunc("/api/exercises/{id}", handler.HandleDeleteExercise).Methods("DELETE", "OPTIONS").Name("delete-exercise")
	r.HandleFunc("/api/backup/export", handler.HandleExport).Methods("GET", "OPTIONS").Name("export")
}

func (handler *Handler) invalidateSnapshot() {
	if handler.snapshotCache != nil {
		handler.snapshotCache.Invalidate()
	}
}

func idFromVars(r *http.Request) (int, error) {
	idStr := mux.Vars(r)["id"]
	if idStr == "" {
		return 0, errors.New("error, id empty")
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, errors.New("error, id NaN")
	}
	return id, nil
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	ws, err := handler.repo.ListAllWithExercises(ctx)
	if err != nil {
		log.Errorf("failed to list workouts: %s", err)
		http.Error(w, "failed to get workouts", http.StatusInternalServerError)
		return
	}

	wsJson, err := json.Marshal(ws)
	if err != nil {
		log.Errorf("failed to marshal workouts: %s", err)
		http.Error(w, "failed to marshal workouts", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, wsJson, http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.get")
	defer span.End()

	id, err := idFromVars(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	workout, err := handler.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			http.Error(w, "workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get workout %d: %s", id, err)
		http.Error(w, "failed to get workout", http.StatusInternalServerError)
		return
	}

	workoutJson, err := json.Marshal(workout)
	if err != nil {
		log.Errorf("failed to marshal workout: %s", err)
		http.Error(w, "failed to marshal workout", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, workoutJson, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.new")
	defer span.End()

	var req NewWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("new workout, unmarshal json params: %s", err)
		http.Error(w, "add workout failed, invalid json", http.StatusBadRequest)
		return
	}

	workout, err := req.toWorkout()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := ValidateWorkout(workout); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	workout.ID = 0
	workout.CreatedAt = handler.now()
	for i := range workout.Exercises {
		workout.Exercises[i].ID = 0
		workout.Exercises[i].CreatedAt = workout.CreatedAt
	}

	addedWorkout, err := handler.repo.Add(ctx, workout)
	if err != nil {
		log.Errorf("failed to add new workout [%s] [%s]: %s", workout.Date, workout.WorkoutName, err)
		http.Error(w, "error, failed to add new workout", http.StatusInternalServerError)
		return
	}
	handler.invalidateSnapshot()
	handler.metricsManager.CounterWorkoutsAdded.Inc()
	handler.metricsManager.CounterExercisesAdded.Add(float64(len(addedWorkout.Exercises)))

	addedJson, err := json.Marshal(addedWorkout)
	if err != nil {
		log.Errorf("failed to marshal new workout: %s", err)
		http.Error(w, "error, failed to marshal new workout", http.StatusInternalServerError)
		return
	}

	log.Debugf("new workout added: %d", addedWorkout.ID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedJson, http.StatusCreated)
}

func (handler *Handler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.finish")
	defer span.End()

	id, err := idFromVars(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// the body is optional, no end time means now
	var req FinishWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "finish workout failed, invalid json", http.StatusBadRequest)
		return
	}
	endTime := handler.now()
	if req.EndTime != nil {
		endTime = *req.EndTime
	}

	if err := handler.repo.Finish(ctx, id, endTime); err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			http.Error(w, "workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to finish workout %d: %s", id, err)
		http.Error(w, "failed to finish workout", http.StatusInternalServerError)
		return
	}
	handler.invalidateSnapshot()

	workout, err := handler.repo.Get(ctx, id)
	if err != nil {
		log.Errorf("failed to get finished workout %d: %s", id, err)
		http.Error(w, "failed to get workout", http.StatusInternalServerError)
		return
	}

	workoutJson, err := json.Marshal(workout)
	if err != nil {
		log.Errorf("failed to marshal workout: %s", err)
		http.Error(w, "failed to marshal workout", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, workoutJson, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	id, err := idFromVars(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := handler.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			http.Error(w, "workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete workout %d: %s", id, err)
		http.Error(w, "failed to delete workout", http.StatusInternalServerError)
		return
	}
	handler.invalidateSnapshot()

	w.WriteHeader(http.StatusNoContent)
}

func (handler *Handler) HandleAddExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.new-exercise")
	defer span.End()

	var req NewExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("new exercise, unmarshal json params: %s", err)
		http.Error(w, "add exercise failed, invalid json", http.StatusBadRequest)
		return
	}

	exercise, err := req.toExercise()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if exercise.WorkoutID <= 0 {
		http.Error(w, "error, workout id missing", http.StatusBadRequest)
		return
	}
	if err := ValidateExercise(exercise); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	exercise.ID = 0
	exercise.CreatedAt = handler.now()
	addedExercise, err := handler.repo.AddExercise(ctx, exercise)
	if err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			http.Error(w, "workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to add exercise [%s] to workout %d: %s", exercise.Name, exercise.WorkoutID, err)
		http.Error(w, "error, failed to add exercise", http.StatusInternalServerError)
		return
	}
	handler.invalidateSnapshot()
	handler.metricsManager.CounterExercisesAdded.Inc()

	addedJson, err := json.Marshal(addedExercise)
	if err != nil {
		log.Errorf("failed to marshal new exercise: %s", err)
		http.Error(w, "error, failed to marshal new exercise", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedJson, http.StatusCreated)
}

func (handler *Handler) HandleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete-exercise")
	defer span.End()

	id, err := idFromVars(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := handler.repo.DeleteExercise(ctx, id); err != nil {
		if errors.Is(err, ErrExerciseNotFound) {
			http.Error(w, "exercise not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete exercise %d: %s", id, err)
		http.Error(w, "failed to delete exercise", http.StatusInternalServerError)
		return
	}
	handler.invalidateSnapshot()

	w.WriteHeader(http.StatusNoContent)
}

// HandleExport returns all workouts as a downloadable JSON backup, or as a
// spreadsheet with ?format=xlsx.
func (handler *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.export")
	defer span.End()

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "xlsx" {
		http.Error(w, fmt.Sprintf("error, unknown export format [%s]", format), http.StatusBadRequest)
		return
	}

	ws, err := handler.repo.ListAllWithExercises(ctx)
	if err != nil {
		log.Errorf("export, failed to list workouts: %s", err)
		http.Error(w, "failed to export workouts", http.StatusInternalServerError)
		return
	}
	backup := NewBackup(ws, handler.now())

	var body []byte
	contentType := pkg.ContentType.JSON
	if format == "xlsx" {
		var buf bytes.Buffer
		err = backup.WriteXLSX(&buf)
		body = buf.Bytes()
		contentType = pkg.ContentType.XLSX
	} else {
		body, err = json.Marshal(backup)
	}
	if err != nil {
		log.Errorf("export, failed to encode backup: %s", err)
		http.Error(w, "failed to export workouts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, backup.FileName(format)))
	pkg.WriteResponseBytes(w, contentType, body, http.StatusOK)
}
