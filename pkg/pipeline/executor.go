package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rcoelho/event-staffing-api/pkg/importer"
	"github.com/rcoelho/event-staffing-api/pkg/models"
)

// BatchProgress is updated after every job and once per second during the
// inter-batch pause, so a polling caller sees both movement and the
// "paused, resuming in Ns" countdown.
type BatchProgress struct {
	Processed  int    `json:"processed"`
	Total      int    `json:"total"`
	Batch      int    `json:"batch"` // 1-based
	Batches    int    `json:"batches"`
	Current    string `json:"current,omitempty"`
	Success    int    `json:"success"`
	Errors     int    `json:"errors"`
	ResumingIn int    `json:"resuming_in,omitempty"` // seconds until the next batch starts
	Done       bool   `json:"done"`
}

// BatchResult is the executor's final tally.
type BatchResult struct {
	Success     int      `json:"success"`
	Errors      int      `json:"errors"`
	FailedNames []string `json:"failed_names,omitempty"`
}

// ExpandJobs crosses valid rows with the selected shifts, one job per
// (row, shift) pair, preserving row order then shift order. credentialIDs
// maps shift key -> normalized credential name -> created id; rows without
// a credential reference get an empty id.
func ExpandJobs(rows []models.ImportRow, shifts []models.Shift, credentialIDs map[string]map[string]string) []models.ImportJob {
	jobs := make([]models.ImportJob, 0, len(rows)*len(shifts))
	for _, row := range rows {
		for _, shift := range shifts {
			job := models.ImportJob{Row: row, Shift: shift}
			if row.CredentialName != "" {
				job.CredentialID = credentialIDs[shift.Key()][importer.NormalizeKey(row.CredentialName)]
			}
			jobs = append(jobs, job)
		}
	}
	return jobs
}

// Executor commits participant records in paced sequential batches. A failed
// job is counted and recorded, never retried beyond MaxRetries attempts, and
// never aborts its batch. There is no mid-batch cancellation; once started,
// a run continues to completion.
type Executor struct {
	Store      ParticipantStore
	Config     models.BatchConfig
	EventID    uint
	Log        *logrus.Entry
	OnProgress func(BatchProgress)
}

// Run processes the jobs and returns the final tally.
func (e *Executor) Run(ctx context.Context, jobs []models.ImportJob) BatchResult {
	size := e.Config.BatchSize
	if size <= 0 {
		size = models.DefaultBatchConfig().BatchSize
	}
	batches := (len(jobs) + size - 1) / size

	var result BatchResult
	progress := BatchProgress{Total: len(jobs), Batches: batches}

	for b := 0; b < batches; b++ {
		progress.Batch = b + 1
		start := b * size
		end := start + size
		if end > len(jobs) {
			end = len(jobs)
		}

		for i := start; i < end; i++ {
			job := jobs[i]
			progress.Current = fmt.Sprintf("%s (%s)", job.Row.DisplayName, job.Shift.Key())

			if e.create(ctx, job) {
				result.Success++
			} else {
				result.Errors++
				result.FailedNames = append(result.FailedNames, job.Row.DisplayName)
			}

			progress.Processed++
			progress.Success = result.Success
			progress.Errors = result.Errors
			e.emit(progress)

			// Every adjacent job pair is separated by the item pause; the
			// batch pause at a boundary comes on top of it.
			if i < len(jobs)-1 {
				time.Sleep(e.Config.PauseBetweenItems)
			}
		}

		if b < batches-1 {
			e.pauseBetweenBatches(&progress)
		}
	}

	progress.Current = ""
	progress.Done = true
	e.emit(progress)
	return result
}

// create runs one participant-creation call, with up to MaxRetries attempts.
// The default config uses a single attempt, matching the reference
// continue-on-error behavior.
func (e *Executor) create(ctx context.Context, job models.ImportJob) bool {
	attempts := e.Config.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for a := 0; a < attempts; a++ {
		_, err = e.Store.CreateParticipant(ctx, ParticipantPayload{
			EventID:        e.EventID,
			Shift:          job.Shift,
			FullName:       job.Row.FullName,
			Document:       job.Row.Document,
			Role:           job.Row.Role,
			CompanyName:    job.Row.CompanyName,
			CredentialID:   job.CredentialID,
			CredentialName: job.Row.CredentialName,
		})
		if err == nil {
			return true
		}
	}

	if e.Log != nil {
		e.Log.WithFields(logrus.Fields{
			"participant": job.Row.DisplayName,
			"shift":       job.Shift.Key(),
		}).WithError(err).Warn("participant creation failed")
	}
	return false
}

// pauseBetweenBatches sleeps the configured pause in one-second slices,
// updating the observable countdown each step.
func (e *Executor) pauseBetweenBatches(progress *BatchProgress) {
	remaining := e.Config.PauseBetweenBatches
	for remaining > 0 {
		progress.ResumingIn = int((remaining + time.Second - 1) / time.Second)
		e.emit(*progress)

		step := time.Second
		if remaining < step {
			step = remaining
		}
		time.Sleep(step)
		remaining -= step
	}
	progress.ResumingIn = 0
	e.emit(*progress)
}

func (e *Executor) emit(p BatchProgress) {
	if e.OnProgress != nil {
		e.OnProgress(p)
	}
}
