package workouts

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

const (
	DateLayout = "2006-01-02"

	maxWorkoutNameLen  = 100
	maxExerciseNameLen = 50
	maxNotesLen        = 500
	maxSets            = 20
	maxSetWeight       = 1000
	minRPE, maxRPE     = 1, 10
)

var ErrValidation = errors.New("validation failed")

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func ValidateDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return validationErr("invalid date format, expected YYYY-MM-DD")
	}
	return nil
}

func validateNotes(notes string) error {
	if utf8.RuneCountInString(notes) > maxNotesLen {
		return validationErr("notes must be at most %d characters", maxNotesLen)
	}
	return nil
}

// ValidateWorkout checks a new workout and each of its exercises.
func ValidateWorkout(w Workout) error {
	if err := ValidateDate(w.Date); err != nil {
		return err
	}
	if l := utf8.RuneCountInString(w.WorkoutName); l < 1 || l > maxWorkoutNameLen {
		return validationErr("workout name must be between 1 and %d characters", maxWorkoutNameLen)
	}
	if err := validateNotes(w.Notes); err != nil {
		return err
	}
	for i, e := range w.Exercises {
		if err := ValidateExercise(e); err != nil {
			return fmt.Errorf("exercise %d: %w", i, err)
		}
	}
	return nil
}

func ValidateExercise(e Exercise) error {
	if l := utf8.RuneCountInString(e.Name); l < 1 || l > maxExerciseNameLen {
		return validationErr("exercise name must be between 1 and %d characters", maxExerciseNameLen)
	}
	if e.Sets < 1 || e.Sets > maxSets {
		return validationErr("sets must be between 1 and %d", maxSets)
	}
	if len(e.SetDetails) > maxSets {
		return validationErr("at most %d set details allowed", maxSets)
	}
	for i, s := range e.SetDetails {
		if s.Weight < 0 || s.Weight > maxSetWeight {
			return validationErr("set %d: weight must be between 0 and %d", i+1, maxSetWeight)
		}
		if s.Reps < 0 {
			return validationErr("set %d: reps must not be negative", i+1)
		}
		if s.RPE < minRPE || s.RPE > maxRPE {
			return validationErr("set %d: rpe must be between %d and %d", i+1, minRPE, maxRPE)
		}
	}
	return validateNotes(e.Notes)
}
