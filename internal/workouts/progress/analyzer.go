package progress

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/workouttracker/internal/telemetry/metrics"
	"github.com/2beens/workouttracker/internal/telemetry/tracing"
	"github.com/2beens/workouttracker/internal/workouts"
)

//go:generate mockgen -source=$GOFILE -destination=progress_mocks_test.go -package=progress_test

type workoutsLister interface {
	ListAllWithExercises(ctx context.Context) ([]workouts.Workout, error)
}

type snapshotCache interface {
	Get() ([]workouts.Workout, bool)
	Generation() uint64
	Set(generation uint64, snapshot []workouts.Workout) error
}

// Analyzer feeds workouts snapshots to the matching functions.
type Analyzer struct {
	repo           workoutsLister
	cache          snapshotCache
	metricsManager *metrics.Manager
}

func NewAnalyzer(repo workoutsLister, cache snapshotCache, metricsManager *metrics.Manager) *Analyzer {
	return &Analyzer{
		repo:           repo,
		cache:          cache,
		metricsManager: metricsManager,
	}
}

func (a *Analyzer) snapshot(ctx context.Context) (_ []workouts.Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.progress.snapshot")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var generation uint64
	if a.cache != nil {
		if snapshot, ok := a.cache.Get(); ok {
			a.metricsManager.CounterSnapshotCache.WithLabelValues("hit").Inc()
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return snapshot, nil
		}
		a.metricsManager.CounterSnapshotCache.WithLabelValues("miss").Inc()
		// taken before the db read, a write landing during it makes Set a no-op
		generation = a.cache.Generation()
	}

	snapshot, err := a.repo.ListAllWithExercises(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}

	if a.cache != nil {
		if err := a.cache.Set(generation, snapshot); err != nil {
			log.Warnf("failed to cache workouts snapshot: %s", err)
		}
	}

	return snapshot, nil
}

func (a *Analyzer) Suggestions(ctx context.Context, userInput string) (_ []string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.progress.suggestions")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("input", userInput))

	ws, err := a.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	suggestions := SuggestWithCatalog(userInput, workouts.ExerciseNames(ws))
	span.SetAttributes(attribute.Int("suggestions.count", len(suggestions)))
	return suggestions, nil
}

func (a *Analyzer) Summaries(ctx context.Context) (_ []ExerciseSummary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.progress.summaries")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	ws, err := a.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	summaries := Aggregate(ws)
	span.SetAttributes(attribute.Int("identities.count", len(summaries)))
	return summaries, nil
}

func (a *Analyzer) History(ctx context.Context, name string) (_ []HistoryInstance, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.progress.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("name", name))

	ws, err := a.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	history := HistoryFor(name, ws)
	span.SetAttributes(attribute.Int("history.count", len(history)))
	return history, nil
}
