package progress

import (
	"sort"
	"unicode/utf8"

	"github.com/2beens/workouttracker/internal/workouts"
	"github.com/2beens/workouttracker/internal/workouts/matching"
)

// ExerciseSummary is one exercise identity: all log entries that fuzzy match
// the first entry seen under that name.
type ExerciseSummary struct {
	Name      string  `json:"name"`
	Count     int     `json:"count"`
	MaxWeight float64 `json:"maxWeight"`
}

type cluster struct {
	key     string
	summary ExerciseSummary
}

// Aggregate clusters every logged exercise into identities, most logged first.
// Entries join the first cluster whose key scores above matching.IdentityThreshold,
// not the best one, so the result depends on log order.
func Aggregate(ws []workouts.Workout) []ExerciseSummary {
	var clusters []*cluster
	for _, w := range ws {
		for _, e := range w.Exercises {
			norm := matching.Normalize(e.Name)
			maxWeight := e.SetDetails.MaxWeight()

			var found *cluster
			for _, c := range clusters {
				if matching.Similarity(norm, c.key) > matching.IdentityThreshold {
					found = c
					break
				}
			}

			if found == nil {
				clusters = append(clusters, &cluster{
					key: norm,
					summary: ExerciseSummary{
						Name:      e.Name,
						Count:     1,
						MaxWeight: maxWeight,
					},
				})
				continue
			}

			found.summary.Count++
			if maxWeight > found.summary.MaxWeight {
				found.summary.MaxWeight = maxWeight
			}
			if utf8.RuneCountInString(e.Name) > utf8.RuneCountInString(found.summary.Name) {
				found.summary.Name = e.Name
			}
		}
	}

	summaries := make([]ExerciseSummary, 0, len(clusters))
	for _, c := range clusters {
		summaries = append(summaries, c.summary)
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Count > summaries[j].Count
	})

	return summaries
}
