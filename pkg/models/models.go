package models

import "time"

// ImportRow is a normalized candidate participant produced by the row
// parser. Comparison fields (names) are upper-cased and trimmed; DisplayName
// keeps the original casing for rendering. Rows are never mutated after
// creation.
type ImportRow struct {
	Line           int    `json:"line"`
	FullName       string `json:"full_name"`
	Document       string `json:"document"`
	Role           string `json:"role"`
	CompanyName    string `json:"company_name"`
	CredentialName string `json:"credential_name,omitempty"`
	DisplayName    string `json:"display_name"`
}

// OutcomeKind classifies what happened to one input row.
type OutcomeKind string

const (
	OutcomeValid               OutcomeKind = "valid"
	OutcomeInvalid             OutcomeKind = "invalid"
	OutcomeDuplicateOfExisting OutcomeKind = "duplicate_existing"
	OutcomeDuplicateWithinFile OutcomeKind = "duplicate_in_file"
)

// RowOutcome is the classification of one input row. Exactly one outcome is
// produced per row; Line is 1-based in input order. Warnings never block a
// row from being valid.
type RowOutcome struct {
	Line        int         `json:"line"`
	Kind        OutcomeKind `json:"kind"`
	Row         *ImportRow  `json:"row,omitempty"`
	Reasons     []string    `json:"reasons,omitempty"`
	Warnings    []string    `json:"warnings,omitempty"`
	ExistingDoc string      `json:"existing_document,omitempty"`
}

// RowCounts are the running counters emitted alongside the outcomes.
type RowCounts struct {
	Total     int `json:"total"`
	Valid     int `json:"valid"`
	Invalid   int `json:"invalid"`
	Duplicate int `json:"duplicate"`
	Warnings  int `json:"warnings"`
}

// RefKind distinguishes the two reference entity kinds an import row can
// point at.
type RefKind string

const (
	RefCredential RefKind = "credential"
	RefCompany    RefKind = "company"
)

// MissingReference is a credential or company referenced by valid rows that
// does not yet exist in the event's reference store. Name is the normalized
// comparison key; DisplayName the first-seen original spelling.
type MissingReference struct {
	Kind        RefKind `json:"kind"`
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Occurrences int     `json:"occurrences"`
}

// CreationAttempt records the outcome of creating one missing reference for
// one shift.
type CreationAttempt struct {
	Shift     Shift  `json:"shift"`
	Succeeded bool   `json:"succeeded"`
	CreatedID string `json:"created_id,omitempty"`
	Err       string `json:"error,omitempty"`
}

// ReferenceResult aggregates the per-shift attempts for one missing
// reference. A reference counts as resolved when at least one shift
// succeeded; that leniency is a business rule, and the Partial flag
// surfaces the degraded-but-usable state to the operator.
type ReferenceResult struct {
	Reference MissingReference  `json:"reference"`
	Attempted bool              `json:"attempted"`
	Attempts  []CreationAttempt `json:"attempts,omitempty"`
	Successes int               `json:"successes"`
	Failures  int               `json:"failures"`
}

// Resolved reports whether at least one shift attempt succeeded.
func (r ReferenceResult) Resolved() bool { return r.Successes > 0 }

// Partial reports whether the reference succeeded on some but not all
// selected shifts.
func (r ReferenceResult) Partial() bool {
	return r.Successes > 0 && r.Failures > 0
}

// ImportJob is one participant-creation unit: a valid row crossed with one
// selected shift, plus the resolved credential id when the row references a
// credential.
type ImportJob struct {
	Row          ImportRow `json:"row"`
	Shift        Shift     `json:"shift"`
	CredentialID string    `json:"credential_id,omitempty"`
}

// BatchConfig controls the pacing of the batch import executor. MaxRetries
// is the number of attempts per job; the default of 1 means a failed job is
// recorded and never retried, which is the reference behavior.
type BatchConfig struct {
	BatchSize           int           `json:"batch_size"`
	PauseBetweenBatches time.Duration `json:"pause_between_batches"`
	PauseBetweenItems   time.Duration `json:"pause_between_items"`
	MaxRetries          int           `json:"max_retries"`
}

// DefaultBatchConfig returns the pacing used against the production store.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		BatchSize:           10,
		PauseBetweenBatches: 15 * time.Second,
		PauseBetweenItems:   time.Second,
		MaxRetries:          1,
	}
}

// CreationConfig controls the pacing of the entity creation orchestrator.
// Companies pause longer than credentials: each company fans out into more
// downstream records on the backing store.
type CreationConfig struct {
	CredentialPause time.Duration `json:"credential_pause"`
	CompanyPause    time.Duration `json:"company_pause"`
}

// DefaultCreationConfig returns the pacing used against the production store.
func DefaultCreationConfig() CreationConfig {
	return CreationConfig{
		CredentialPause: 500 * time.Millisecond,
		CompanyPause:    1500 * time.Millisecond,
	}
}

// PauseFor returns the inter-attempt pause for a reference kind.
func (c CreationConfig) PauseFor(kind RefKind) time.Duration {
	if kind == RefCompany {
		return c.CompanyPause
	}
	return c.CredentialPause
}

// ImportSummary is the final report handed back to the operator.
type ImportSummary struct {
	SuccessCount   int      `json:"success_count"`
	ErrorCount     int      `json:"error_count"`
	DuplicateCount int      `json:"duplicate_count"`
	InvalidCount   int      `json:"invalid_count"`
	WarningCount   int      `json:"warning_count"`
	FailedNames    []string `json:"failed_names,omitempty"`
}
