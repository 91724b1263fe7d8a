package pipeline

import (
	"github.com/rcoelho/event-staffing-api/pkg/models"
)

// Snapshot is a read-only copy of the pipeline state, safe to serialize
// while background runs keep writing.
type Snapshot struct {
	ID              string                      `json:"id"`
	EventID         uint                        `json:"event_id"`
	Stage           string                      `json:"stage"`
	Shifts          []models.Shift              `json:"shifts,omitempty"`
	RowCount        int                         `json:"row_count"`
	Counts          models.RowCounts            `json:"counts"`
	Outcomes        []models.RowOutcome         `json:"outcomes,omitempty"`
	Plan            []models.MissingReference   `json:"missing_references,omitempty"`
	Creation        *CreationProgress           `json:"creation,omitempty"`
	CreationResults []models.ReferenceResult    `json:"creation_results,omitempty"`
	Residual        []models.MissingReference   `json:"residual_missing,omitempty"`
	Verified        bool                        `json:"verified"`
	Batch           *BatchProgress              `json:"batch,omitempty"`
	Summary         *models.ImportSummary       `json:"summary,omitempty"`
}

// Snapshot returns a copy of the current state.
func (p *Pipeline) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Snapshot{
		ID:       p.id.String(),
		EventID:  p.eventID,
		Stage:    p.stage.String(),
		Shifts:   append([]models.Shift(nil), p.shifts...),
		RowCount: len(p.dataset),
		Counts:   p.counts,
		Outcomes: append([]models.RowOutcome(nil), p.outcomes...),
		Plan:     append([]models.MissingReference(nil), p.plan...),
		Residual: append([]models.MissingReference(nil), p.residual...),
		Verified: p.verified,
	}
	if p.creation != nil {
		progress := p.creation.progress
		// The run's done flag is authoritative: the final progress emission
		// lands just before the results are recorded.
		progress.Done = p.creation.done
		s.Creation = &progress
		s.CreationResults = append([]models.ReferenceResult(nil), p.creation.results...)
	}
	if p.batch != nil {
		progress := p.batch.progress
		progress.Done = p.batch.done
		s.Batch = &progress
	}
	if p.stage == StageComplete {
		summary := p.summaryLocked()
		s.Summary = &summary
	}
	return s
}

// Summary builds the final operator report: committed and failed job
// counts, the dataset classification counts, and the names that never made
// it (failed participants plus references that never resolved).
func (p *Pipeline) Summary() models.ImportSummary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.summaryLocked()
}

func (p *Pipeline) summaryLocked() models.ImportSummary {
	summary := models.ImportSummary{
		DuplicateCount: p.counts.Duplicate,
		InvalidCount:   p.counts.Invalid,
		WarningCount:   p.counts.Warnings,
	}
	if p.batch != nil {
		summary.SuccessCount = p.batch.result.Success
		summary.ErrorCount = p.batch.result.Errors
		summary.FailedNames = append(summary.FailedNames, p.batch.result.FailedNames...)
	}
	if p.creation != nil {
		for _, r := range p.creation.results {
			if !r.Resolved() {
				summary.FailedNames = append(summary.FailedNames, r.Reference.DisplayName)
			}
		}
	}
	return summary
}
