package pipeline

import (
	"context"
	"fmt"

	"github.com/rcoelho/event-staffing-api/pkg/importer"
	"github.com/rcoelho/event-staffing-api/pkg/models"
)

// Verify forces a refresh of both reference stores and re-runs the planner
// over the already-parsed valid rows. The returned slice holds the
// references still missing after creation; the pipeline may only advance to
// the import stage when it is empty.
func Verify(ctx context.Context, store ReferenceStore, eventID uint, valid []models.ImportRow) ([]models.MissingReference, error) {
	credentials, err := store.ListCredentials(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("refresh credentials: %w", err)
	}
	companies, err := store.ListCompanies(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("refresh companies: %w", err)
	}

	credNames := make([]string, 0, len(credentials))
	for _, c := range credentials {
		credNames = append(credNames, c.Name)
	}
	compNames := make([]string, 0, len(companies))
	for _, c := range companies {
		compNames = append(compNames, c.Name)
	}

	return importer.Plan(valid, credNames, compNames), nil
}
