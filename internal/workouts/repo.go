package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/workouttracker/internal/telemetry/tracing"
	"github.com/2beens/workouttracker/pkg"
)

var (
	ErrWorkoutNotFound  = errors.New("workout not found")
	ErrExerciseNotFound = errors.New("exercise not found")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// ListAllWithExercises returns every workout, newest first, each with its exercises in log order.
func (r *Repo) ListAllWithExercises(ctx context.Context) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listall")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, date, workout_name, start_time, end_time, notes, created_at
			FROM workout
			ORDER BY date DESC, created_at DESC;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query workouts: %w", err)
	}
	workouts, err := rows2workouts(rows)
	if err != nil {
		return nil, fmt.Errorf("rows2workouts: %w", err)
	}

	exRows, err := r.db.Query(
		ctx,
		`SELECT id, workout_id, name, sets, set_details, notes, created_at
			FROM workout_exercise
			ORDER BY workout_id, created_at ASC, id ASC;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	exercises, err := rows2exercises(exRows)
	if err != nil {
		return nil, fmt.Errorf("rows2exercises: %w", err)
	}

	workoutIdx := make(map[int]int, len(workouts))
	for i, w := range workouts {
		workoutIdx[w.ID] = i
	}
	for _, e := range exercises {
		if i, ok := workoutIdx[e.WorkoutID]; ok {
			workouts[i].Exercises = append(workouts[i].Exercises, e)
		}
	}

	span.SetAttributes(attribute.Int("workouts.count", len(workouts)))
	span.SetAttributes(attribute.Int("exercises.count", len(exercises)))

	return workouts, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, date, workout_name, start_time, end_time, notes, created_at
			FROM workout
			WHERE id = $1;`,
		id,
	)
	if err != nil {
		return nil, err
	}
	workouts, err := rows2workouts(rows)
	if err != nil {
		return nil, err
	}
	if len(workouts) != 1 {
		return nil, ErrWorkoutNotFound
	}

	exRows, err := r.db.Query(
		ctx,
		`SELECT id, workout_id, name, sets, set_details, notes, created_at
			FROM workout_exercise
			WHERE workout_id = $1
			ORDER BY created_at ASC, id ASC;`,
		id,
	)
	if err != nil {
		return nil, err
	}
	workouts[0].Exercises, err = rows2exercises(exRows)
	if err != nil {
		return nil, err
	}

	return &workouts[0], nil
}

// Add stores the workout and all of its exercises in a single transaction.
func (r *Repo) Add(ctx context.Context, workout Workout) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if workout.CreatedAt.IsZero() {
		workout.CreatedAt = time.Now()
	}
	date, err := time.Parse(DateLayout, workout.Date)
	if err != nil {
		return nil, fmt.Errorf("parse date [%s]: %w", workout.Date, err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	err = tx.QueryRow(
		ctx,
		`INSERT INTO workout (date, workout_name, start_time, end_time, notes, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id;`,
		date, workout.WorkoutName, workout.StartTime, workout.EndTime, workout.Notes, workout.CreatedAt,
	).Scan(&workout.ID)
	if err != nil {
		return nil, fmt.Errorf("insert workout: %w", err)
	}

	for i := range workout.Exercises {
		workout.Exercises[i].WorkoutID = workout.ID
		if err = insertExercise(ctx, tx, &workout.Exercises[i]); err != nil {
			return nil, fmt.Errorf("insert exercise %d: %w", i, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	span.SetAttributes(attribute.Int("workout.id", workout.ID))
	if workout.Exercises == nil {
		workout.Exercises = []Exercise{}
	}
	return &workout, nil
}

// Finish sets the end time of a workout.
func (r *Repo) Finish(ctx context.Context, id int, endTime time.Time) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.finish")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE workout SET end_time = $1 WHERE id = $2;`,
		endTime, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

// Delete removes the workout, its exercises go with it (ON DELETE CASCADE).
func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM workout WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

func (r *Repo) AddExercise(ctx context.Context, exercise Exercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add-exercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", exercise.WorkoutID))

	if err := insertExercise(ctx, r.db, &exercise); err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}

	span.SetAttributes(attribute.Int("exercise.id", exercise.ID))
	return &exercise, nil
}

func (r *Repo) DeleteExercise(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete-exercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM workout_exercise WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}
	return nil
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertExercise(ctx context.Context, db queryRower, exercise *Exercise) error {
	if exercise.SetDetails == nil {
		exercise.SetDetails = SetDetails{}
	}
	if exercise.CreatedAt.IsZero() {
		exercise.CreatedAt = time.Now()
	}

	setDetailsJson, err := json.Marshal(exercise.SetDetails)
	if err != nil {
		return fmt.Errorf("marshal set details: %w", err)
	}

	return db.QueryRow(
		ctx,
		`INSERT INTO workout_exercise (workout_id, name, sets, set_details, notes, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id;`,
		exercise.WorkoutID, exercise.Name, exercise.Sets, string(setDetailsJson), exercise.Notes, exercise.CreatedAt,
	).Scan(&exercise.ID)
}

func rows2workouts(rows pgx.Rows) ([]Workout, error) {
	defer rows.Close()

	workouts := make([]Workout, 0)
	for rows.Next() {
		var w Workout
		var date time.Time
		var notes *string
		if err := rows.Scan(&w.ID, &date, &w.WorkoutName, &w.StartTime, &w.EndTime, &notes, &w.CreatedAt); err != nil {
			return nil, err
		}
		w.Date = date.Format(DateLayout)
		if notes != nil {
			w.Notes = *notes
		}
		w.Exercises = []Exercise{}
		workouts = append(workouts, w)
	}

	return workouts, rows.Err()
}

func rows2exercises(rows pgx.Rows) ([]Exercise, error) {
	defer rows.Close()

	exercises := make([]Exercise, 0)
	for rows.Next() {
		var e Exercise
		var setDetails *string
		var notes *string
		if err := rows.Scan(&e.ID, &e.WorkoutID, &e.Name, &e.Sets, &setDetails, &notes, &e.CreatedAt); err != nil {
			return nil, err
		}
		if setDetails != nil {
			e.SetDetails = ParseSetDetails([]byte(*setDetails))
		} else {
			e.SetDetails = SetDetails{}
		}
		if notes != nil {
			e.Notes = *notes
		}
		exercises = append(exercises, e)
	}

	return exercises, rows.Err()
}
