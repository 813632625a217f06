package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/workouttracker/internal/workouts"
)

func workout(date string, exercises ...workouts.Exercise) workouts.Workout {
	return workouts.Workout{Date: date, WorkoutName: "Session " + date, Exercises: exercises}
}

func exercise(name string, weights ...float64) workouts.Exercise {
	details := workouts.SetDetails{}
	for _, w := range weights {
		details = append(details, workouts.SetDetail{Weight: w, Reps: 8, RPE: 8})
	}
	return workouts.Exercise{Name: name, Sets: len(weights), SetDetails: details}
}

func TestAggregate_MergesNormalizedNames(t *testing.T) {
	ws := []workouts.Workout{
		workout("2024-03-10", exercise("Bench Press", 60, 70)),
		workout("2024-03-12", exercise("bench press.", 80)),
	}

	summaries := Aggregate(ws)
	require.Len(t, summaries, 1)
	assert.Equal(t, 2, summaries[0].Count)
	assert.Equal(t, 80.0, summaries[0].MaxWeight)
	// the longer spelling wins the display name
	assert.Equal(t, "bench press.", summaries[0].Name)
}

func TestAggregate_EqualLengthKeepsFirstName(t *testing.T) {
	ws := []workouts.Workout{
		workout("2024-03-10", exercise("Bench Press", 60)),
		workout("2024-03-12", exercise("bench press", 50)),
	}

	summaries := Aggregate(ws)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Bench Press", summaries[0].Name)
	assert.Equal(t, 60.0, summaries[0].MaxWeight)
}

func TestAggregate_OrderedByCount(t *testing.T) {
	ws := []workouts.Workout{
		workout("2024-03-01", exercise("Plank"), exercise("Deadlift", 100)),
		workout("2024-03-03", exercise("Squats", 80), exercise("Deadlifts", 120)),
		workout("2024-03-05", exercise("Squats", 90), exercise("Deadlift", 110)),
	}

	summaries := Aggregate(ws)
	require.Len(t, summaries, 3)
	assert.Equal(t, []ExerciseSummary{
		{Name: "Deadlifts", Count: 3, MaxWeight: 120},
		{Name: "Squats", Count: 2, MaxWeight: 90},
		{Name: "Plank", Count: 1, MaxWeight: 0},
	}, summaries)
}

func TestAggregate_TiesKeepFirstSeenOrder(t *testing.T) {
	ws := []workouts.Workout{
		workout("2024-03-01", exercise("Leg Curl", 40), exercise("Calf Raises", 60), exercise("Lunges", 20)),
	}

	summaries := Aggregate(ws)
	require.Len(t, summaries, 3)
	assert.Equal(t, "Leg Curl", summaries[0].Name)
	assert.Equal(t, "Calf Raises", summaries[1].Name)
	assert.Equal(t, "Lunges", summaries[2].Name)
}

func TestAggregate_BoundaryDoesNotMerge(t *testing.T) {
	// 3 edits over 20 characters is exactly 85%
	ws := []workouts.Workout{
		workout("2024-03-01", exercise("Front Squat Barbells", 80), exercise("Front Squat Dumbells", 30)),
	}

	summaries := Aggregate(ws)
	require.Len(t, summaries, 2)
	assert.Equal(t, 1, summaries[0].Count)
	assert.Equal(t, 1, summaries[1].Count)
}

func TestAggregate_FirstMatchNotBestMatch(t *testing.T) {
	// "Front Squat Dambells" scores 90 against Barbells and 95 against Dumbells,
	// it still joins Barbells because that cluster was created first
	ws := []workouts.Workout{
		workout("2024-03-01", exercise("Front Squat Barbells", 80), exercise("Front Squat Dumbells", 30)),
		workout("2024-03-02", exercise("Front Squat Dambells", 35)),
	}

	summaries := Aggregate(ws)
	require.Len(t, summaries, 2)
	assert.Equal(t, ExerciseSummary{Name: "Front Squat Barbells", Count: 2, MaxWeight: 80}, summaries[0])
	assert.Equal(t, ExerciseSummary{Name: "Front Squat Dumbells", Count: 1, MaxWeight: 30}, summaries[1])
}

func TestAggregate_EdgeCases(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
	assert.NotNil(t, Aggregate(nil))
	assert.Empty(t, Aggregate([]workouts.Workout{workout("2024-03-01")}))

	// entries without a name end up in one identity
	ws := []workouts.Workout{
		workout("2024-03-01", workouts.Exercise{}, workouts.Exercise{SetDetails: workouts.ParseSetDetails([]byte(`{bad`))}),
	}
	summaries := Aggregate(ws)
	require.Len(t, summaries, 1)
	assert.Equal(t, ExerciseSummary{Name: "", Count: 2, MaxWeight: 0}, summaries[0])
}
