package workouts_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/2beens/workouttracker/internal/workouts"
)

func testWorkouts() []workouts.Workout {
	start := time.Date(2024, 3, 11, 17, 0, 0, 0, time.UTC)
	return []workouts.Workout{
		{
			ID: 2, Date: "2024-03-11", WorkoutName: "Push", StartTime: &start,
			Exercises: []workouts.Exercise{
				{ID: 5, WorkoutID: 2, Name: "Bench Press", Sets: 2, SetDetails: workouts.SetDetails{{Weight: 60, Reps: 10, RPE: 7}, {Weight: 65, Reps: 8, RPE: 9}}},
				{ID: 6, WorkoutID: 2, Name: "Tricep Dips", Sets: 1, SetDetails: workouts.SetDetails{{Weight: 0, Reps: 12, RPE: 8}}, Notes: "bodyweight"},
			},
		},
		{ID: 1, Date: "2024-03-09", WorkoutName: "Rest-ish", Exercises: []workouts.Exercise{}},
	}
}

func TestNewBackup(t *testing.T) {
	now := time.Date(2024, 3, 11, 22, 30, 0, 0, time.FixedZone("CET", 3600))
	b := workouts.NewBackup(testWorkouts(), now)

	assert.Equal(t, 2, b.WorkoutCount)
	assert.Equal(t, 2, b.ExerciseCount)
	assert.Equal(t, "workout-backup-2024-03-11.json", b.FileName("json"))
	assert.Equal(t, time.UTC, b.ExportDate.Location())

	empty := workouts.NewBackup(nil, now)
	assert.Equal(t, 0, empty.WorkoutCount)
	assert.NotNil(t, empty.Workouts)
}

func TestReadBackup_RoundTrip(t *testing.T) {
	b := workouts.NewBackup(testWorkouts(), time.Now())
	raw, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"exportDate"`)
	assert.Contains(t, string(raw), `"workoutCount":2`)

	read, err := workouts.ReadBackup(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, read.Workouts, 2)
	assert.Equal(t, 65.0, read.Workouts[0].Exercises[0].SetDetails.MaxWeight())

	_, err = workouts.ReadBackup(strings.NewReader("{not json"))
	assert.Error(t, err)
}

func TestReadBackup_StringEncodedSetDetails(t *testing.T) {
	raw := `{"workouts":[{"id":1,"date":"2024-01-02","workoutName":"Legs","exercises":[
		{"name":"Squats","sets":1,"setDetails":"[{\"weight\":100,\"reps\":5,\"rpe\":8}]"},
		{"name":"Lunges","sets":1,"setDetails":"garbage"}
	]}]}`

	b, err := workouts.ReadBackup(strings.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, b.Workouts[0].Exercises, 2)
	assert.Equal(t, 100.0, b.Workouts[0].Exercises[0].SetDetails.MaxWeight())
	assert.Empty(t, b.Workouts[0].Exercises[1].SetDetails)
}

func TestBackup_WriteXLSX(t *testing.T) {
	b := workouts.NewBackup(testWorkouts(), time.Now())

	var buf bytes.Buffer
	require.NoError(t, b.WriteXLSX(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Workouts", "Exercises"}, f.GetSheetList())

	workoutRows, err := f.GetRows("Workouts")
	require.NoError(t, err)
	require.Len(t, workoutRows, 3)
	assert.Equal(t, "Workout", workoutRows[0][2])
	assert.Equal(t, "Push", workoutRows[1][2])
	assert.Equal(t, "2024-03-11T17:00:00Z", workoutRows[1][3])

	exerciseRows, err := f.GetRows("Exercises")
	require.NoError(t, err)
	require.Len(t, exerciseRows, 3)
	assert.Equal(t, "Bench Press", exerciseRows[1][2])
	assert.Equal(t, "65", exerciseRows[1][4])
	assert.Equal(t, "60x10 @7; 65x8 @9", exerciseRows[1][5])
	assert.Equal(t, "bodyweight", exerciseRows[2][6])
}
