package importer

import "github.com/rcoelho/event-staffing-api/pkg/models"

// Plan computes which credentials and companies referenced by the valid rows
// do not yet exist in the event's reference stores. Membership is checked by
// normalized name; each missing name carries the number of rows referencing
// it.
//
// Plan is pure: given the same rows and store snapshots it returns the same
// result, which is what lets the verification stage re-run it after entity
// creation.
func Plan(valid []models.ImportRow, credentials, companies []string) []models.MissingReference {
	missingCreds := collectMissing(valid, models.RefCredential, credentials)
	missingComps := collectMissing(valid, models.RefCompany, companies)
	return append(missingCreds, missingComps...)
}

func collectMissing(valid []models.ImportRow, kind models.RefKind, existing []string) []models.MissingReference {
	present := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		present[NormalizeKey(name)] = struct{}{}
	}

	index := make(map[string]int)
	var missing []models.MissingReference
	for _, row := range valid {
		display := row.CompanyName
		if kind == models.RefCredential {
			display = row.CredentialName
		}
		if display == "" {
			continue
		}
		key := NormalizeKey(display)
		if _, ok := present[key]; ok {
			continue
		}
		if i, ok := index[key]; ok {
			missing[i].Occurrences++
			continue
		}
		index[key] = len(missing)
		missing = append(missing, models.MissingReference{
			Kind:        kind,
			Name:        key,
			DisplayName: display,
			Occurrences: 1,
		})
	}
	return missing
}
