package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rcoelho/event-staffing-api/pkg/models"
)

// DefaultCredentialColor is used when the operator picked no display color
// for a credential name.
const DefaultCredentialColor = "#FFFFFF"

// CreationProgress is emitted after every per-shift attempt so a polling
// caller can render live progress.
type CreationProgress struct {
	Index     int      `json:"index"` // 1-based position of the reference in flight
	Total     int      `json:"total"`
	Current   string   `json:"current,omitempty"`
	Completed []string `json:"completed,omitempty"`
	Failed    []string `json:"failed,omitempty"`
	Partial   []string `json:"partial,omitempty"`
	Done      bool     `json:"done"`
	Cancelled bool     `json:"cancelled"`
}

// Orchestrator creates missing references, once per selected shift, with a
// fixed inter-attempt pause. Per-shift attempts are independent: a failure
// on one shift never aborts the remaining shifts of the same reference.
//
// All attempts run sequentially on the calling goroutine. That ordering is
// load-bearing: the read-after-write refresh after each reference must
// observe every create issued for it before the next reference starts.
type Orchestrator struct {
	Store      ReferenceStore
	Config     models.CreationConfig
	EventID    uint
	Colors     map[string]string // normalized credential name -> display color
	Log        *logrus.Entry
	OnProgress func(CreationProgress)

	cancelled atomic.Bool
}

// Cancel requests a cooperative stop. The flag is polled before every
// per-shift attempt; references past the cancellation point stay
// unattempted and the one in flight keeps its attempts so far.
func (o *Orchestrator) Cancel() { o.cancelled.Store(true) }

// Run processes the queue and returns one result per reference, in input
// order, including unattempted ones after a cancellation.
func (o *Orchestrator) Run(ctx context.Context, refs []models.MissingReference, shifts []models.Shift) []models.ReferenceResult {
	results := make([]models.ReferenceResult, len(refs))
	for i, ref := range refs {
		results[i] = models.ReferenceResult{Reference: ref}
	}

	progress := CreationProgress{Total: len(refs)}

	for i := range results {
		ref := results[i].Reference
		progress.Index = i + 1
		progress.Current = ref.DisplayName
		o.emit(progress)

		for si, shift := range shifts {
			if o.stopped(ctx) {
				progress.Cancelled = true
				progress.Done = true
				o.emit(progress)
				return results
			}

			attempt := o.attempt(ctx, ref, shift)
			results[i].Attempted = true
			results[i].Attempts = append(results[i].Attempts, attempt)
			if attempt.Succeeded {
				results[i].Successes++
			} else {
				results[i].Failures++
			}
			o.emit(progress)

			// The pause paces the next store write; nothing follows the last
			// attempt or a stop request.
			last := i == len(results)-1 && si == len(shifts)-1
			if !last && !o.stopped(ctx) {
				time.Sleep(o.Config.PauseFor(ref.Kind))
			}
		}

		// Read-after-write refresh before the next reference: verification
		// depends on the store being current.
		if results[i].Successes > 0 {
			o.refresh(ctx, ref.Kind)
		}

		switch {
		case results[i].Successes == 0:
			progress.Failed = append(progress.Failed, ref.DisplayName)
		case results[i].Partial():
			progress.Completed = append(progress.Completed, ref.DisplayName)
			progress.Partial = append(progress.Partial, ref.DisplayName)
		default:
			progress.Completed = append(progress.Completed, ref.DisplayName)
		}
		o.emit(progress)
	}

	progress.Current = ""
	progress.Done = true
	o.emit(progress)
	return results
}

func (o *Orchestrator) attempt(ctx context.Context, ref models.MissingReference, shift models.Shift) models.CreationAttempt {
	var (
		id  string
		err error
	)
	switch ref.Kind {
	case models.RefCompany:
		id, err = o.Store.CreateCompany(ctx, CompanyPayload{
			EventID: o.EventID,
			Shift:   shift,
			Name:    ref.DisplayName,
		})
	default:
		color := o.Colors[ref.Name]
		if color == "" {
			color = DefaultCredentialColor
		}
		id, err = o.Store.CreateCredential(ctx, CredentialPayload{
			EventID: o.EventID,
			Shift:   shift,
			Name:    ref.DisplayName,
			Color:   color,
		})
	}

	attempt := models.CreationAttempt{Shift: shift}
	if err != nil {
		attempt.Err = err.Error()
		if o.Log != nil {
			o.Log.WithFields(logrus.Fields{
				"kind":  ref.Kind,
				"name":  ref.DisplayName,
				"shift": shift.Key(),
			}).WithError(err).Warn("reference creation attempt failed")
		}
		return attempt
	}
	attempt.Succeeded = true
	attempt.CreatedID = id
	return attempt
}

func (o *Orchestrator) refresh(ctx context.Context, kind models.RefKind) {
	var err error
	if kind == models.RefCompany {
		_, err = o.Store.ListCompanies(ctx, o.EventID)
	} else {
		_, err = o.Store.ListCredentials(ctx, o.EventID)
	}
	if err != nil && o.Log != nil {
		o.Log.WithError(err).Warn("reference store refresh failed")
	}
}

func (o *Orchestrator) stopped(ctx context.Context) bool {
	return o.cancelled.Load() || ctx.Err() != nil
}

func (o *Orchestrator) emit(p CreationProgress) {
	if o.OnProgress != nil {
		// Copy the accumulating slices so the receiver can hold the value
		// across later mutations.
		p.Completed = append([]string(nil), p.Completed...)
		p.Failed = append([]string(nil), p.Failed...)
		p.Partial = append([]string(nil), p.Partial...)
		o.OnProgress(p)
	}
}
