package main

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/greentrails/trail-importer/internal/domain"
	"github.com/greentrails/trail-importer/internal/logger"
	"github.com/greentrails/trail-importer/internal/service"
)

// pollInterval is how often the job row is re-read while the import runs.
const pollInterval = 5 * time.Second

func main() {
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "text",
		ServiceName: "trail-importer-cli",
	})
	logger.SetDefaultLogger(appLogger)

	serverURL := flag.String("server", "http://localhost:8080", "Import API base URL")
	sourcesFlag := flag.String("sources", "hiking_project", "Comma-separated source names")
	maxPerSource := flag.Int("max", 100, "Maximum trails per source")
	location := flag.String("location", "", "Location name for the run")
	flag.Parse()

	sources := strings.Split(*sourcesFlag, ",")
	for i := range sources {
		sources[i] = strings.TrimSpace(sources[i])
	}

	client := resty.New().SetBaseURL(*serverURL)

	appLogger.WithFields(logger.Fields{
		"sources": sources,
		"max":     *maxPerSource,
	}).Info("Triggering bulk import")

	// The import endpoint is synchronous; trigger it in the background and
	// poll the job row while it runs.
	type triggerResult struct {
		resp *service.ImportResponse
		err  error
	}
	done := make(chan triggerResult, 1)
	go func() {
		var resp service.ImportResponse
		r, err := client.R().
			SetBody(service.ImportRequest{
				Sources:            sources,
				MaxTrailsPerSource: *maxPerSource,
				LocationName:       *location,
			}).
			SetResult(&resp).
			Post("/api/v1/import")
		if err != nil {
			done <- triggerResult{err: err}
			return
		}
		if r.IsError() {
			done <- triggerResult{err: fmt.Errorf("import request failed: %s", r.String())}
			return
		}
		done <- triggerResult{resp: &resp}
	}()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case result := <-done:
			if result.err != nil {
				appLogger.WithError(result.err).Fatal("Import failed")
			}
			printFinal(appLogger, client, result.resp)
			return
		case <-ticker.C:
			printProgress(client)
		}
	}
}

// printProgress reads the newest processing job and prints its percentage.
func printProgress(client *resty.Client) {
	var body struct {
		Jobs []domain.BulkImportJob `json:"jobs"`
	}
	r, err := client.R().SetResult(&body).Get("/api/v1/import/jobs?limit=1")
	if err != nil || r.IsError() || len(body.Jobs) == 0 {
		return
	}

	job := body.Jobs[0]
	if job.Status != domain.JobStatusProcessing || job.TotalTrailsRequested == 0 {
		return
	}

	pct := float64(job.TrailsProcessed) / float64(job.TotalTrailsRequested) * 100
	fmt.Printf("job %s: %d/%d trails (%.0f%%)\n", job.ID, job.TrailsProcessed, job.TotalTrailsRequested, pct)
}

// printFinal fetches the terminal job row and prints the run summary.
func printFinal(log *logger.Logger, client *resty.Client, resp *service.ImportResponse) {
	var job domain.BulkImportJob
	r, err := client.R().SetResult(&job).Get("/api/v1/import/jobs/" + resp.JobID)
	if err == nil && !r.IsError() {
		fmt.Printf("job %s finished: status=%s processed=%d added=%d failed=%d\n",
			job.ID, job.Status, job.TrailsProcessed, job.TrailsAdded, job.TrailsFailed)
	}

	log.WithFields(logger.Fields{
		"job_id":       resp.JobID,
		"status":       resp.Status,
		"success_rate": resp.SuccessRate,
		"db_count":     resp.FinalDatabaseCount,
	}).Info(resp.Message)

	if len(resp.InsertErrors) > 0 {
		fmt.Println("trailing insert errors:")
		for _, msg := range resp.InsertErrors {
			fmt.Println("  " + msg)
		}
	}
}
