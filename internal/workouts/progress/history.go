package progress

import (
	"sort"

	"github.com/2beens/workouttracker/internal/workouts"
	"github.com/2beens/workouttracker/internal/workouts/matching"
)

type HistoryInstance struct {
	Date        string              `json:"date"`
	WorkoutName string              `json:"workoutName"`
	Sets        int                 `json:"sets"`
	SetDetails  workouts.SetDetails `json:"setDetails"`
	Notes       string              `json:"notes,omitempty"`
}

// HistoryFor lists every logged instance of the named exercise, newest first.
func HistoryFor(identityName string, ws []workouts.Workout) []HistoryInstance {
	target := matching.Normalize(identityName)

	history := make([]HistoryInstance, 0)
	for _, w := range ws {
		for _, e := range w.Exercises {
			if matching.Similarity(matching.Normalize(e.Name), target) <= matching.IdentityThreshold {
				continue
			}

			setDetails := e.SetDetails
			if setDetails == nil {
				setDetails = workouts.SetDetails{}
			}
			history = append(history, HistoryInstance{
				Date:        w.Date,
				WorkoutName: w.WorkoutName,
				Sets:        e.Sets,
				SetDetails:  setDetails,
				Notes:       e.Notes,
			})
		}
	}

	// YYYY-MM-DD sorts chronologically as a string
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Date > history[j].Date
	})

	return history
}
