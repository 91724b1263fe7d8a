package pipeline

import (
	"context"
	"testing"

	"github.com/rcoelho/event-staffing-api/pkg/importer"
	"github.com/rcoelho/event-staffing-api/pkg/models"
)

func newTestPipeline(store Store) *Pipeline {
	p := New(1, store, testLog())
	p.SetCreationConfig(models.CreationConfig{})
	p.SetBatchConfig(models.BatchConfig{BatchSize: 10, MaxRetries: 1})
	return p
}

func datasetRow(name, doc, credential string) importer.Row {
	r := importer.Row{"nome": name, "empresa": "ACME Ltda", "funcao": "Guard", "cpf": doc}
	if credential != "" {
		r["credencial"] = credential
	}
	return r
}

func selectAndUpload(t *testing.T, p *Pipeline, rows []importer.Row) {
	t.Helper()
	ctx := context.Background()
	if err := p.SelectShifts([]string{"2026-03-14-setup-day"}); err != nil {
		t.Fatalf("select shifts: %v", err)
	}
	if _, err := p.Advance(ctx); err != nil {
		t.Fatalf("advance to upload: %v", err)
	}
	if err := p.AcceptDataset(rows); err != nil {
		t.Fatalf("accept dataset: %v", err)
	}
	if _, err := p.Advance(ctx); err != nil {
		t.Fatalf("advance to preview: %v", err)
	}
}

func TestPipelineStageGuards(t *testing.T) {
	p := newTestPipeline(newFakeStore())
	ctx := context.Background()

	if _, err := p.Advance(ctx); err == nil {
		t.Errorf("advancing with no shifts selected must fail")
	}
	if err := p.AcceptDataset([]importer.Row{datasetRow("Ana", "111", "")}); err == nil {
		t.Errorf("uploading during date selection must fail")
	}

	if err := p.SelectShifts([]string{"2026-03-14-setup-day"}); err != nil {
		t.Fatalf("select shifts: %v", err)
	}
	if _, err := p.Advance(ctx); err != nil {
		t.Fatalf("advance to upload: %v", err)
	}

	if err := p.SelectShifts([]string{"2026-03-15-event-day"}); err == nil {
		t.Errorf("selecting shifts after date selection must fail")
	}
	if _, err := p.Advance(ctx); err == nil {
		t.Errorf("advancing without an uploaded dataset must fail")
	}
	if err := p.AcceptDataset(nil); err == nil {
		t.Errorf("an empty dataset must be rejected")
	}
}

func TestPipelineInvalidRowsBlockValidation(t *testing.T) {
	p := newTestPipeline(newFakeStore())
	selectAndUpload(t, p, []importer.Row{
		datasetRow("Ana Souza", "111", ""),
		{"nome": "", "empresa": "ACME", "funcao": "Guard"},
	})

	if _, err := p.Advance(context.Background()); err == nil {
		t.Fatalf("invalid rows must block the preview stage")
	}
	if p.Stage() != StagePreview {
		t.Errorf("failed advance must not move the stage, got %s", p.Stage())
	}
}

func TestPipelineSkipsCreationWhenNothingMissing(t *testing.T) {
	store := newFakeStore()
	shift := models.Shift{Date: "2026-03-14", Stage: models.StageSetup, Period: models.PeriodDay}
	store.credentials = []CredentialRecord{{ID: "1", Name: "VIP", Shift: shift}}
	store.companies = []CompanyRecord{{ID: "2", Name: "ACME Ltda", Shift: shift}}

	p := newTestPipeline(store)
	selectAndUpload(t, p, []importer.Row{datasetRow("Ana Souza", "111", "VIP")})

	ctx := context.Background()
	if _, err := p.Advance(ctx); err != nil {
		t.Fatalf("advance to validation: %v", err)
	}
	stage, err := p.Advance(ctx)
	if err != nil {
		t.Fatalf("advance past validation: %v", err)
	}
	if stage != StageImport {
		t.Errorf("empty plan must branch straight to %s, got %s", StageImport, stage)
	}
}

func TestPipelineBackResetsOwnedState(t *testing.T) {
	p := newTestPipeline(newFakeStore())
	ctx := context.Background()

	if _, err := p.Back(); err == nil {
		t.Errorf("going back from the first stage must fail")
	}

	selectAndUpload(t, p, []importer.Row{datasetRow("Ana Souza", "111", "")})

	// Preview -> Upload keeps the dataset; Upload -> DateSelection drops it
	if stage, err := p.Back(); err != nil || stage != StageUpload {
		t.Fatalf("back to upload: stage=%s err=%v", stage, err)
	}
	if p.Snapshot().RowCount == 0 {
		t.Errorf("dataset must survive leaving the preview stage")
	}
	if stage, err := p.Back(); err != nil || stage != StageDateSelection {
		t.Fatalf("back to date selection: stage=%s err=%v", stage, err)
	}
	if p.Snapshot().RowCount != 0 {
		t.Errorf("leaving the upload stage must drop the dataset")
	}

	// The shifts survive; moving forward again requires a fresh upload
	if _, err := p.Advance(ctx); err != nil {
		t.Fatalf("re-advance to upload: %v", err)
	}
	if _, err := p.Advance(ctx); err == nil {
		t.Errorf("dataset was cleared, advancing must fail")
	}
}

func TestPipelineFullRun(t *testing.T) {
	store := newFakeStore()
	p := newTestPipeline(store)
	ctx := context.Background()

	selectAndUpload(t, p, []importer.Row{
		datasetRow("Ana Souza", "111", "VIP"),
		datasetRow("Bia Costa", "222", "VIP"),
		datasetRow("Clara Dias", "333", ""),
	})

	if _, err := p.Advance(ctx); err != nil {
		t.Fatalf("advance to validation: %v", err)
	}
	stage, err := p.Advance(ctx)
	if err != nil {
		t.Fatalf("advance past validation: %v", err)
	}
	if stage != StageCreation {
		t.Fatalf("missing references must route through creation, got %s", stage)
	}

	snap := p.Snapshot()
	if len(snap.Plan) != 2 { // VIP credential + ACME Ltda company
		t.Fatalf("expected 2 missing references, got %+v", snap.Plan)
	}

	if _, err := p.Advance(ctx); err == nil {
		t.Errorf("advancing before creation finished must fail")
	}
	if err := p.StartCreation(ctx, map[string]string{"VIP": "#00FF00"}); err != nil {
		t.Fatalf("start creation: %v", err)
	}
	if err := p.StartCreation(ctx, nil); err == nil {
		t.Errorf("starting creation twice must fail")
	}
	waitFor(t, "creation to finish", func() bool {
		s := p.Snapshot()
		return s.Creation != nil && s.Creation.Done
	})

	if _, err := p.Advance(ctx); err != nil {
		t.Fatalf("advance to verification: %v", err)
	}
	if _, err := p.Advance(ctx); err == nil {
		t.Errorf("advancing before verification ran must fail")
	}
	residual, err := p.RunVerification(ctx)
	if err != nil {
		t.Fatalf("verification: %v", err)
	}
	if len(residual) != 0 {
		t.Fatalf("all references were created, got residual %+v", residual)
	}
	if _, err := p.Advance(ctx); err != nil {
		t.Fatalf("advance to import: %v", err)
	}

	if err := p.StartImport(ctx); err != nil {
		t.Fatalf("start import: %v", err)
	}
	waitFor(t, "import to finish", func() bool {
		s := p.Snapshot()
		return s.Batch != nil && s.Batch.Done
	})

	stage, err = p.Advance(ctx)
	if err != nil {
		t.Fatalf("advance to complete: %v", err)
	}
	if stage != StageComplete {
		t.Fatalf("expected %s, got %s", StageComplete, stage)
	}

	// 3 valid rows x 1 shift
	if len(store.participants) != 3 {
		t.Fatalf("expected 3 participants committed, got %d", len(store.participants))
	}
	for _, part := range store.participants {
		if part.FullName == "ANA SOUZA" && part.CredentialID == "" {
			t.Errorf("credential rows must carry the created credential id")
		}
		if part.FullName == "CLARA DIAS" && part.CredentialID != "" {
			t.Errorf("rows without a credential must not pick one up")
		}
	}

	summary := p.Summary()
	if summary.SuccessCount != 3 || summary.ErrorCount != 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if summary.InvalidCount != 0 || summary.DuplicateCount != 0 {
		t.Errorf("clean dataset must report zero invalid/duplicate, got %+v", summary)
	}
	if len(summary.FailedNames) != 0 {
		t.Errorf("nothing failed, got %v", summary.FailedNames)
	}
}

func TestPipelineConfigLockedAfterRunStarts(t *testing.T) {
	store := newFakeStore()
	p := newTestPipeline(store)
	ctx := context.Background()

	selectAndUpload(t, p, []importer.Row{datasetRow("Ana Souza", "111", "VIP")})
	if _, err := p.Advance(ctx); err != nil {
		t.Fatalf("advance to validation: %v", err)
	}
	if _, err := p.Advance(ctx); err != nil {
		t.Fatalf("advance to creation: %v", err)
	}
	if err := p.StartCreation(ctx, nil); err != nil {
		t.Fatalf("start creation: %v", err)
	}
	if err := p.SetCreationConfig(models.CreationConfig{}); err == nil {
		t.Errorf("creation config must be locked once the run started")
	}
	waitFor(t, "creation to finish", func() bool {
		s := p.Snapshot()
		return s.Creation != nil && s.Creation.Done
	})
}

func TestVerifyRecomputesAgainstStore(t *testing.T) {
	store := newFakeStore()
	shift := models.Shift{Date: "2026-03-14", Stage: models.StageSetup, Period: models.PeriodDay}
	store.companies = []CompanyRecord{{ID: "1", Name: "ACME Ltda", Shift: shift}}

	valid := []models.ImportRow{
		{FullName: "ANA SOUZA", CompanyName: "ACME LTDA", CredentialName: "VIP"},
	}

	residual, err := Verify(context.Background(), store, 1, valid)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if len(residual) != 1 || residual[0].Kind != models.RefCredential || residual[0].Name != "VIP" {
		t.Fatalf("expected only the VIP credential missing, got %+v", residual)
	}

	store.credentials = []CredentialRecord{{ID: "2", Name: "vip", Shift: shift}}
	residual, err = Verify(context.Background(), store, 1, valid)
	if err != nil {
		t.Fatalf("verify after creation: %v", err)
	}
	if len(residual) != 0 {
		t.Errorf("expected nothing missing after creation, got %+v", residual)
	}
}
