package importer

import (
	"reflect"
	"testing"

	"github.com/rcoelho/event-staffing-api/pkg/models"
)

func plannerRows() []models.ImportRow {
	return []models.ImportRow{
		{FullName: "ANA SOUZA", CompanyName: "Acme Ltda", CredentialName: "VIP"},
		{FullName: "BIA COSTA", CompanyName: "ACME LTDA", CredentialName: "vip"},
		{FullName: "CLARA DIAS", CompanyName: "Beta Segurança", CredentialName: "Staff"},
		{FullName: "DANI ROCHA", CompanyName: "Beta Segurança"},
	}
}

func TestPlanFindsMissingReferences(t *testing.T) {
	missing := Plan(plannerRows(), []string{"Staff"}, []string{"beta segurança"})

	if len(missing) != 2 {
		t.Fatalf("expected 2 missing references, got %d: %+v", len(missing), missing)
	}

	// Credentials come first, then companies, each in first-appearance order
	if missing[0].Kind != models.RefCredential || missing[0].Name != "VIP" {
		t.Errorf("unexpected first missing reference: %+v", missing[0])
	}
	if missing[0].Occurrences != 2 {
		t.Errorf("VIP is referenced by 2 rows, got %d", missing[0].Occurrences)
	}
	if missing[1].Kind != models.RefCompany || missing[1].Name != "ACME LTDA" {
		t.Errorf("unexpected second missing reference: %+v", missing[1])
	}
	if missing[1].Occurrences != 2 {
		t.Errorf("ACME LTDA is referenced by 2 rows, got %d", missing[1].Occurrences)
	}
}

func TestPlanNormalizesMembership(t *testing.T) {
	// Store names differ in case and padding but are the same references
	missing := Plan(plannerRows(), []string{" vip ", "STAFF"}, []string{"ACME  LTDA", "Beta Segurança"})
	if len(missing) != 0 {
		t.Errorf("expected no missing references, got %+v", missing)
	}
}

func TestPlanIsIdempotent(t *testing.T) {
	rows := plannerRows()
	credentials := []string{"Staff"}
	companies := []string{"Beta Segurança"}

	first := Plan(rows, credentials, companies)
	second := Plan(rows, credentials, companies)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("planner is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestPlanEmptyInput(t *testing.T) {
	if missing := Plan(nil, nil, nil); len(missing) != 0 {
		t.Errorf("expected empty plan for empty input, got %+v", missing)
	}
}
