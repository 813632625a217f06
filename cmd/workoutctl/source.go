package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/2beens/workouttracker/internal/workouts"
	"github.com/2beens/workouttracker/internal/workouts/progress"
)

// source is where the workouts come from: a backup file processed locally,
// or a running server doing the same work.
type source interface {
	Suggestions(ctx context.Context, input string) ([]string, error)
	Summaries(ctx context.Context) ([]progress.ExerciseSummary, error)
	History(ctx context.Context, name string) ([]progress.HistoryInstance, error)
}

type fileSource struct {
	workouts []workouts.Workout
}

func newFileSource(path string) (*fileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open backup file: %w", err)
	}
	defer f.Close()

	b, err := workouts.ReadBackup(f)
	if err != nil {
		return nil, err
	}
	return &fileSource{workouts: b.Workouts}, nil
}

func (s *fileSource) Suggestions(_ context.Context, input string) ([]string, error) {
	return progress.SuggestWithCatalog(input, workouts.ExerciseNames(s.workouts)), nil
}

func (s *fileSource) Summaries(_ context.Context) ([]progress.ExerciseSummary, error) {
	return progress.Aggregate(s.workouts), nil
}

func (s *fileSource) History(_ context.Context, name string) ([]progress.HistoryInstance, error) {
	return progress.HistoryFor(name, s.workouts), nil
}

type serverSource struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func newServerSource(baseURL, token string) *serverSource {
	return &serverSource{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
	}
}

func (s *serverSource) Suggestions(ctx context.Context, input string) ([]string, error) {
	var resp progress.SuggestionsResponse
	if err := s.getJSON(ctx, "/api/exercises/suggest?q="+url.QueryEscape(input), &resp); err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}

func (s *serverSource) Summaries(ctx context.Context) ([]progress.ExerciseSummary, error) {
	var resp []progress.ExerciseSummary
	if err := s.getJSON(ctx, "/api/progress", &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *serverSource) History(ctx context.Context, name string) ([]progress.HistoryInstance, error) {
	var resp progress.HistoryResponse
	if err := s.getJSON(ctx, "/api/progress/history?name="+url.QueryEscape(name), &resp); err != nil {
		return nil, err
	}
	return resp.History, nil
}

func (s *serverSource) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp, nil
}

func (s *serverSource) getJSON(ctx context.Context, path string, v any) error {
	resp, err := s.get(ctx, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
