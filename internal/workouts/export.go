package workouts

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	sheetWorkouts  = "Workouts"
	sheetExercises = "Exercises"
)

// Backup is the export file format. It can be fed back to the progress
// functions as is, e.g. by workoutctl.
type Backup struct {
	ExportDate    time.Time `json:"exportDate"`
	WorkoutCount  int       `json:"workoutCount"`
	ExerciseCount int       `json:"exerciseCount"`
	Workouts      []Workout `json:"workouts"`
}

func NewBackup(workouts []Workout, now time.Time) *Backup {
	if workouts == nil {
		workouts = []Workout{}
	}
	exerciseCount := 0
	for _, w := range workouts {
		exerciseCount += len(w.Exercises)
	}
	return &Backup{
		ExportDate:    now.UTC(),
		WorkoutCount:  len(workouts),
		ExerciseCount: exerciseCount,
		Workouts:      workouts,
	}
}

// FileName is the suggested download name, e.g. workout-backup-2024-03-11.json
func (b *Backup) FileName(ext string) string {
	return fmt.Sprintf("workout-backup-%s.%s", b.ExportDate.Format(DateLayout), ext)
}

func ReadBackup(r io.Reader) (*Backup, error) {
	var b Backup
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode backup: %w", err)
	}
	if b.Workouts == nil {
		b.Workouts = []Workout{}
	}
	return &b, nil
}

// WriteXLSX writes the backup as a workbook with one sheet for workouts and one for exercises.
func (b *Backup) WriteXLSX(w io.Writer) (err error) {
	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("new header style: %w", err)
	}

	workoutsIdx, err := f.NewSheet(sheetWorkouts)
	if err != nil {
		return fmt.Errorf("new sheet %s: %w", sheetWorkouts, err)
	}
	if _, err := f.NewSheet(sheetExercises); err != nil {
		return fmt.Errorf("new sheet %s: %w", sheetExercises, err)
	}
	f.SetActiveSheet(workoutsIdx)
	f.DeleteSheet("Sheet1")

	workoutRows := [][]any{{"ID", "Date", "Workout", "Start", "End", "Exercises", "Notes"}}
	exerciseRows := [][]any{{"Workout ID", "Date", "Exercise", "Sets", "Max Weight", "Set Details", "Notes"}}
	for _, wo := range b.Workouts {
		workoutRows = append(workoutRows, []any{
			wo.ID, wo.Date, wo.WorkoutName, formatTime(wo.StartTime), formatTime(wo.EndTime), len(wo.Exercises), wo.Notes,
		})
		for _, e := range wo.Exercises {
			exerciseRows = append(exerciseRows, []any{
				wo.ID, wo.Date, e.Name, e.Sets, e.SetDetails.MaxWeight(), formatSetDetails(e.SetDetails), e.Notes,
			})
		}
	}

	if err := writeSheet(f, sheetWorkouts, workoutRows, headerStyle); err != nil {
		return err
	}
	if err := writeSheet(f, sheetExercises, exerciseRows, headerStyle); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("set %s row %d: %w", sheet, i+1, err)
		}
	}

	lastHeaderCell, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeaderCell, headerStyle); err != nil {
		return fmt.Errorf("set %s header style: %w", sheet, err)
	}
	return f.SetColWidth(sheet, "A", "G", 18)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// formatSetDetails renders sets like "60x10 @7; 65x8 @9"
func formatSetDetails(sd SetDetails) string {
	parts := make([]string, 0, len(sd))
	for _, s := range sd {
		parts = append(parts, fmt.Sprintf("%gx%d @%d", s.Weight, s.Reps, s.RPE))
	}
	return strings.Join(parts, "; ")
}
