package workouts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type SetDetail struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
	RPE    int     `json:"rpe"`
}

// SetDetails is stored as JSON text. Older rows hold the array itself, some
// clients sent it double encoded as a JSON string. Reads decode anything else
// to an empty list instead of failing the whole workout; writes reject it.
type SetDetails []SetDetail

var errSetDetailsNotList = errors.New("set details must be a list of sets")

// DecodeSetDetails accepts an array, or a string holding one. Missing or null
// means no sets.
func DecodeSetDetails(raw []byte) (SetDetails, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return SetDetails{}, nil
	}

	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("decode set details string: %w", err)
		}
		raw = bytes.TrimSpace([]byte(inner))
	}

	if len(raw) == 0 || raw[0] != '[' {
		return nil, errSetDetailsNotList
	}

	var details []SetDetail
	if err := json.Unmarshal(raw, &details); err != nil {
		return nil, fmt.Errorf("decode set details: %w", err)
	}
	return details, nil
}

// ParseSetDetails never fails, malformed input yields an empty list.
func ParseSetDetails(raw []byte) SetDetails {
	details, err := DecodeSetDetails(raw)
	if err != nil || details == nil {
		return SetDetails{}
	}
	return details
}

func (sd *SetDetails) UnmarshalJSON(data []byte) error {
	*sd = ParseSetDetails(data)
	return nil
}

func (sd SetDetails) MarshalJSON() ([]byte, error) {
	if sd == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]SetDetail(sd))
}

// MaxWeight is the heaviest set, or 0 when there are no sets.
func (sd SetDetails) MaxWeight() float64 {
	if len(sd) == 0 {
		return 0
	}
	maxWeight := sd[0].Weight
	for _, s := range sd[1:] {
		if s.Weight > maxWeight {
			maxWeight = s.Weight
		}
	}
	return maxWeight
}

type Exercise struct {
	ID         int        `json:"id"`
	WorkoutID  int        `json:"workoutId"`
	Name       string     `json:"name"`
	Sets       int        `json:"sets"`
	SetDetails SetDetails `json:"setDetails"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type Workout struct {
	ID          int        `json:"id"`
	Date        string     `json:"date"`
	WorkoutName string     `json:"workoutName"`
	StartTime   *time.Time `json:"startTime,omitempty"`
	EndTime     *time.Time `json:"endTime,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`

	Exercises []Exercise `json:"exercises"`
}

// ExerciseNames lists the name of every logged exercise, in log order.
func ExerciseNames(workouts []Workout) []string {
	var names []string
	for _, w := range workouts {
		for _, e := range w.Exercises {
			names = append(names, e.Name)
		}
	}
	return names
}
