package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rcoelho/event-staffing-api/pkg/importer"
	"github.com/rcoelho/event-staffing-api/pkg/models"
)

// Pipeline is one import session: the aggregate state plus the state
// machine driving the stages. All writes happen either on the caller's
// goroutine through the exported methods or on the single background
// goroutine of an active creation or import run; the mutex makes reads
// consistent, the stage guards keep writers from overlapping.
type Pipeline struct {
	mu sync.Mutex

	id      uuid.UUID
	eventID uint
	store   Store
	log     *logrus.Entry

	creationCfg models.CreationConfig
	batchCfg    models.BatchConfig

	stage     Stage
	shifts    []models.Shift
	dataset   []importer.Row
	outcomes  []models.RowOutcome
	counts    models.RowCounts
	validRows []models.ImportRow
	plan      []models.MissingReference

	creation *creationRun
	residual []models.MissingReference
	verified bool
	batch    *batchRun
}

type creationRun struct {
	orchestrator *Orchestrator
	progress     CreationProgress
	results      []models.ReferenceResult
	done         bool
}

type batchRun struct {
	progress BatchProgress
	result   BatchResult
	done     bool
}

// New creates a pipeline session for an event, starting at date selection.
func New(eventID uint, store Store, log *logrus.Entry) *Pipeline {
	id := uuid.New()
	return &Pipeline{
		id:          id,
		eventID:     eventID,
		store:       store,
		log:         log.WithField("pipeline", id.String()),
		creationCfg: models.DefaultCreationConfig(),
		batchCfg:    models.DefaultBatchConfig(),
	}
}

// ID returns the session id.
func (p *Pipeline) ID() uuid.UUID { return p.id }

// Stage returns the current stage.
func (p *Pipeline) Stage() Stage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stage
}

// SetBatchConfig overrides the import pacing. Only allowed before the
// import stage starts.
func (p *Pipeline) SetBatchConfig(cfg models.BatchConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.batch != nil {
		return fmt.Errorf("import already started")
	}
	p.batchCfg = cfg
	return nil
}

// SetCreationConfig overrides the creation pacing. Only allowed before the
// creation stage starts.
func (p *Pipeline) SetCreationConfig(cfg models.CreationConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.creation != nil {
		return fmt.Errorf("creation already started")
	}
	p.creationCfg = cfg
	return nil
}

// SelectShifts replaces the selected shifts. Valid only during date
// selection.
func (p *Pipeline) SelectShifts(keys []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stage != StageDateSelection {
		return fmt.Errorf("shifts can only be selected during %s, current stage is %s", StageDateSelection, p.stage)
	}

	seen := make(map[string]struct{}, len(keys))
	shifts := make([]models.Shift, 0, len(keys))
	for _, key := range keys {
		shift, err := models.ParseShiftKey(key)
		if err != nil {
			return err
		}
		if _, ok := seen[shift.Key()]; ok {
			continue
		}
		seen[shift.Key()] = struct{}{}
		shifts = append(shifts, shift)
	}
	models.SortShifts(shifts)
	p.shifts = shifts
	return nil
}

// AcceptDataset stores the parsed spreadsheet rows. Valid only during the
// upload stage.
func (p *Pipeline) AcceptDataset(rows []importer.Row) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stage != StageUpload {
		return fmt.Errorf("dataset can only be uploaded during %s, current stage is %s", StageUpload, p.stage)
	}
	if len(rows) == 0 {
		return fmt.Errorf("uploaded file has no data rows")
	}
	p.dataset = rows
	return nil
}

// Advance moves the pipeline one stage forward when the current stage's
// completion predicate holds. Validation branches straight to import when
// no references are missing.
func (p *Pipeline) Advance(ctx context.Context) (Stage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.stage {
	case StageDateSelection:
		if len(p.shifts) == 0 {
			return p.stage, fmt.Errorf("select at least one shift before continuing")
		}
		p.setStage(StageUpload)

	case StageUpload:
		if p.dataset == nil {
			return p.stage, fmt.Errorf("upload a spreadsheet before continuing")
		}
		p.setStage(StagePreview)

	case StagePreview:
		if err := p.runValidation(ctx); err != nil {
			return p.stage, err
		}
		if p.counts.Invalid > 0 {
			return p.stage, fmt.Errorf("%d rows have validation errors; fix the file and upload again", p.counts.Invalid)
		}
		p.setStage(StageValidation)

	case StageValidation:
		if err := p.runPlanning(ctx); err != nil {
			return p.stage, err
		}
		if len(p.plan) == 0 {
			// Nothing to create: creation and verification are skipped.
			p.setStage(StageImport)
		} else {
			p.setStage(StageCreation)
		}

	case StageCreation:
		if p.creation == nil || !p.creation.done {
			return p.stage, fmt.Errorf("entity creation has not finished")
		}
		p.setStage(StageVerification)

	case StageVerification:
		if !p.verified {
			return p.stage, fmt.Errorf("run verification before continuing")
		}
		if len(p.residual) > 0 {
			return p.stage, fmt.Errorf("still missing after creation: %s", referenceNames(p.residual))
		}
		p.setStage(StageImport)

	case StageImport:
		if p.batch == nil || !p.batch.done {
			return p.stage, fmt.Errorf("batch import has not finished")
		}
		p.setStage(StageComplete)

	default:
		return p.stage, fmt.Errorf("pipeline already complete")
	}

	return p.stage, nil
}

// Back moves to the immediate predecessor and resets state owned by the
// stage being left.
func (p *Pipeline) Back() (Stage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stage == StageDateSelection {
		return p.stage, fmt.Errorf("already at the first stage")
	}
	if p.creationActive() || p.batchActive() {
		return p.stage, fmt.Errorf("cannot go back while a run is in progress")
	}

	switch p.stage {
	case StageUpload:
		p.dataset = nil
	case StageValidation:
		p.outcomes = nil
		p.counts = models.RowCounts{}
		p.validRows = nil
		p.plan = nil
	case StageCreation:
		p.creation = nil
	case StageVerification:
		p.residual = nil
		p.verified = false
	case StageImport:
		p.batch = nil
	}

	p.setStage(p.stage.prev())
	return p.stage, nil
}

// StartCreation launches the entity creation orchestrator on a background
// goroutine. Re-running the stage after a partial or failed run is the
// supported retry mechanism.
func (p *Pipeline) StartCreation(ctx context.Context, colors map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stage != StageCreation {
		return fmt.Errorf("creation can only run during %s, current stage is %s", StageCreation, p.stage)
	}
	if p.creationActive() {
		return fmt.Errorf("creation already running")
	}

	normalized := make(map[string]string, len(colors))
	for name, color := range colors {
		normalized[importer.NormalizeKey(name)] = color
	}

	run := &creationRun{}
	run.orchestrator = &Orchestrator{
		Store:   p.store,
		Config:  p.creationCfg,
		EventID: p.eventID,
		Colors:  normalized,
		Log:     p.log,
		OnProgress: func(cp CreationProgress) {
			p.mu.Lock()
			run.progress = cp
			p.mu.Unlock()
		},
	}
	p.creation = run
	p.verified = false
	p.residual = nil

	refs := append([]models.MissingReference(nil), p.plan...)
	shifts := append([]models.Shift(nil), p.shifts...)

	go func() {
		results := run.orchestrator.Run(ctx, refs, shifts)
		p.mu.Lock()
		run.results = results
		run.done = true
		p.mu.Unlock()
		p.log.WithField("references", len(refs)).Info("entity creation finished")
	}()
	return nil
}

// CancelCreation requests a cooperative stop of the running orchestrator.
func (p *Pipeline) CancelCreation() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.creation == nil || p.creation.done {
		return fmt.Errorf("no creation run in progress")
	}
	p.creation.orchestrator.Cancel()
	return nil
}

// RunVerification refreshes the reference stores and recomputes the missing
// set over the parsed dataset.
func (p *Pipeline) RunVerification(ctx context.Context) ([]models.MissingReference, error) {
	p.mu.Lock()
	if p.stage != StageVerification {
		p.mu.Unlock()
		return nil, fmt.Errorf("verification can only run during %s, current stage is %s", StageVerification, p.stage)
	}
	valid := append([]models.ImportRow(nil), p.validRows...)
	p.mu.Unlock()

	residual, err := Verify(ctx, p.store, p.eventID, valid)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.residual = residual
	p.verified = true
	p.mu.Unlock()
	return residual, nil
}

// StartImport expands jobs and launches the batch executor on a background
// goroutine.
func (p *Pipeline) StartImport(ctx context.Context) error {
	p.mu.Lock()
	if p.stage != StageImport {
		p.mu.Unlock()
		return fmt.Errorf("import can only run during %s, current stage is %s", StageImport, p.stage)
	}
	if p.batchActive() {
		p.mu.Unlock()
		return fmt.Errorf("import already running")
	}
	valid := append([]models.ImportRow(nil), p.validRows...)
	shifts := append([]models.Shift(nil), p.shifts...)
	p.mu.Unlock()

	credentialIDs, err := p.credentialIndex(ctx)
	if err != nil {
		return err
	}
	jobs := ExpandJobs(valid, shifts, credentialIDs)

	p.mu.Lock()
	run := &batchRun{}
	p.batch = run
	executor := &Executor{
		Store:   p.store,
		Config:  p.batchCfg,
		EventID: p.eventID,
		Log:     p.log,
		OnProgress: func(bp BatchProgress) {
			p.mu.Lock()
			run.progress = bp
			p.mu.Unlock()
		},
	}
	p.mu.Unlock()

	go func() {
		result := executor.Run(ctx, jobs)
		p.mu.Lock()
		run.result = result
		run.done = true
		p.mu.Unlock()
		p.log.WithFields(logrus.Fields{
			"success": result.Success,
			"errors":  result.Errors,
		}).Info("batch import finished")
	}()
	return nil
}

// credentialIndex reads the credential store and indexes created ids by
// shift key and normalized name for job expansion.
func (p *Pipeline) credentialIndex(ctx context.Context) (map[string]map[string]string, error) {
	records, err := p.store.ListCredentials(ctx, p.eventID)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	index := make(map[string]map[string]string)
	for _, r := range records {
		key := r.Shift.Key()
		if index[key] == nil {
			index[key] = make(map[string]string)
		}
		index[key][importer.NormalizeKey(r.Name)] = r.ID
	}
	return index, nil
}

// runValidation parses and classifies the dataset against the persisted
// participant documents. Called while holding the mutex.
func (p *Pipeline) runValidation(ctx context.Context) error {
	existing, err := p.store.ListParticipantDocuments(ctx, p.eventID)
	if err != nil {
		return fmt.Errorf("list participant documents: %w", err)
	}

	parser := importer.NewParser(p.dataset, existing)
	p.outcomes = parser.ParseAll()
	p.counts = parser.Counts()
	p.validRows = importer.ValidRows(p.outcomes)

	p.log.WithFields(logrus.Fields{
		"total":     p.counts.Total,
		"valid":     p.counts.Valid,
		"invalid":   p.counts.Invalid,
		"duplicate": p.counts.Duplicate,
		"warnings":  p.counts.Warnings,
	}).Info("dataset classified")
	return nil
}

// runPlanning computes the missing references. Called while holding the
// mutex.
func (p *Pipeline) runPlanning(ctx context.Context) error {
	credentials, err := p.store.ListCredentials(ctx, p.eventID)
	if err != nil {
		return fmt.Errorf("list credentials: %w", err)
	}
	companies, err := p.store.ListCompanies(ctx, p.eventID)
	if err != nil {
		return fmt.Errorf("list companies: %w", err)
	}

	credNames := make([]string, 0, len(credentials))
	for _, c := range credentials {
		credNames = append(credNames, c.Name)
	}
	compNames := make([]string, 0, len(companies))
	for _, c := range companies {
		compNames = append(compNames, c.Name)
	}

	p.plan = importer.Plan(p.validRows, credNames, compNames)
	return nil
}

func (p *Pipeline) setStage(next Stage) {
	p.log.WithFields(logrus.Fields{"from": p.stage.String(), "to": next.String()}).Info("stage transition")
	p.stage = next
}

func (p *Pipeline) creationActive() bool {
	return p.creation != nil && !p.creation.done
}

func (p *Pipeline) batchActive() bool {
	return p.batch != nil && !p.batch.done
}

func referenceNames(refs []models.MissingReference) string {
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		names = append(names, fmt.Sprintf("%s %q", r.Kind, r.DisplayName))
	}
	return strings.Join(names, ", ")
}
