package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/workouttracker/internal/telemetry/metrics"
	"github.com/2beens/workouttracker/internal/telemetry/tracing"
	"github.com/2beens/workouttracker/internal/workouts"
)

//go:generate mockgen -source=$GOFILE -destination=backup_mocks_test.go -package=backup_test

type workoutsLister interface {
	ListAllWithExercises(ctx context.Context) ([]workouts.Workout, error)
}

type uploader interface {
	Upload(ctx context.Context, name string, content []byte, mimeType string) (string, error)
}

// Runner takes a full JSON export of the workouts and ships it off-site.
type Runner struct {
	lister         workoutsLister
	uploader       uploader
	metricsManager *metrics.Manager
	now            func() time.Time
}

func NewRunner(lister workoutsLister, uploader uploader, metricsManager *metrics.Manager) *Runner {
	return &Runner{
		lister:         lister,
		uploader:       uploader,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

func (r *Runner) Run(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalBackupTracer.Start(ctx, "backup.run")
	start := r.now()
	defer func() {
		status := "success"
		if err != nil {
			status = "failed"
		}
		if r.metricsManager != nil {
			r.metricsManager.HistBackupDuration.Observe(time.Since(start).Seconds())
			r.metricsManager.CounterBackups.WithLabelValues(status).Inc()
		}
		tracing.EndSpanWithErrCheck(span, err)
	}()

	ws, err := r.lister.ListAllWithExercises(ctx)
	if err != nil {
		return fmt.Errorf("list workouts: %w", err)
	}

	b := workouts.NewBackup(ws, start)
	content, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal backup: %w", err)
	}

	fileName := b.FileName("json")
	span.SetAttributes(
		attribute.String("file", fileName),
		attribute.Int("workouts", b.WorkoutCount),
		attribute.Int("exercises", b.ExerciseCount),
	)

	fileId, err := r.uploader.Upload(ctx, fileName, content, "application/json")
	if err != nil {
		return fmt.Errorf("upload backup: %w", err)
	}

	log.Infof("workouts backup [%s] saved: %d workouts, %d exercises, file id %s",
		fileName, b.WorkoutCount, b.ExerciseCount, fileId)
	return nil
}
