package main

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/2beens/workouttracker/internal/workouts"
)

func newBackupCmd(opts *options) *cobra.Command {
	var format, outDir string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Download a full export from the server (json or xlsx)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.server == "" {
				return fmt.Errorf("--server is required for backup")
			}
			if format != "json" && format != "xlsx" {
				return fmt.Errorf("unknown format [%s], use json or xlsx", format)
			}

			src := newServerSource(opts.server, opts.token)
			resp, err := src.get(cmd.Context(), "/api/backup/export?format="+format)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			fileName := attachmentName(resp.Header.Get("Content-Disposition"))
			if fileName == "" {
				fileName = workouts.NewBackup(nil, time.Now()).FileName(format)
			}

			path := filepath.Join(outDir, fileName)
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create backup file: %w", err)
			}
			defer f.Close()

			n, err := io.Copy(f, resp.Body)
			if err != nil {
				return fmt.Errorf("write backup file: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%d bytes)\n", path, n)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "export format: json or xlsx")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory to write the backup into")

	return cmd
}

func attachmentName(contentDisposition string) string {
	if contentDisposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentDisposition)
	if err != nil {
		return ""
	}
	name := filepath.Base(params["filename"])
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return ""
	}
	return name
}
