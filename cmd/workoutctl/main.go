package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/2beens/workouttracker/internal/workouts/progress"
	"github.com/2beens/workouttracker/pkg"
)

type options struct {
	file   string
	server string
	token  string
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "workoutctl",
		Short:         "workoutctl - exercise suggestions and progress from a backup file or a running workout tracker",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().StringVarP(&opts.file, "file", "f", "", "workouts backup JSON file (from /api/backup/export)")
	rootCmd.PersistentFlags().StringVarP(&opts.server, "server", "s", "", "workout tracker base URL, e.g. http://localhost:3001")
	rootCmd.PersistentFlags().StringVarP(&opts.token, "token", "t", os.Getenv("WORKOUT_TRACKER_TOKEN"), "session token for --server (default $WORKOUT_TRACKER_TOKEN)")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "suggest <input>",
			Short: "Suggest exercise names for a partially typed input",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				src, err := opts.source()
				if err != nil {
					return err
				}
				suggestions, err := src.Suggestions(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				if len(suggestions) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no suggestions")
					return nil
				}
				for _, s := range suggestions {
					fmt.Fprintln(cmd.OutOrStdout(), s)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "progress",
			Short: "List every exercise identity with its log count and max weight",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				src, err := opts.source()
				if err != nil {
					return err
				}
				summaries, err := src.Summaries(cmd.Context())
				if err != nil {
					return err
				}
				return printSummaries(cmd.OutOrStdout(), summaries)
			},
		},
		&cobra.Command{
			Use:   "history <exercise name>",
			Short: "Show every logged instance of an exercise, newest first",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				src, err := opts.source()
				if err != nil {
					return err
				}
				history, err := src.History(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				return printHistory(cmd.OutOrStdout(), history)
			},
		},
		&cobra.Command{
			Use:   "hash-password <password>",
			Short: "Print the bcrypt hash to use as WORKOUT_TRACKER_PASSWORD_HASH",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				hash, err := pkg.HashPassword(args[0])
				if err != nil {
					return fmt.Errorf("hash password: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), hash)
				return nil
			},
		},
		newBackupCmd(opts),
	)

	return rootCmd
}

func (opts *options) source() (source, error) {
	switch {
	case opts.file != "" && opts.server != "":
		return nil, fmt.Errorf("use either --file or --server, not both")
	case opts.file != "":
		return newFileSource(opts.file)
	case opts.server != "":
		return newServerSource(opts.server, opts.token), nil
	default:
		return nil, fmt.Errorf("one of --file or --server is required")
	}
}

func printSummaries(out io.Writer, summaries []progress.ExerciseSummary) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EXERCISE\tLOGGED\tMAX WEIGHT")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%g\n", s.Name, s.Count, s.MaxWeight)
	}
	return tw.Flush()
}

func printHistory(out io.Writer, history []progress.HistoryInstance) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tWORKOUT\tSETS\tDETAILS")
	for _, h := range history {
		details := make([]string, 0, len(h.SetDetails))
		for _, sd := range h.SetDetails {
			details = append(details, fmt.Sprintf("%gx%d@%d", sd.Weight, sd.Reps, sd.RPE))
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", h.Date, h.WorkoutName, h.Sets, strings.Join(details, " "))
	}
	return tw.Flush()
}
