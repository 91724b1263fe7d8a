package importer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rcoelho/event-staffing-api/pkg/models"
)

// Row is one raw spreadsheet row: column name -> raw cell value. Column
// names are matched through FoldHeader, so callers may pass headers in any
// casing or accentuation.
type Row map[string]string

const (
	// DefaultChunkSize is how many rows are classified between yield points.
	DefaultChunkSize = 100

	documentWidth = 11
)

// DocumentSentinel is stored when neither document column carries a value.
// Eleven zeros keeps the column width compatible with real documents.
const DocumentSentinel = "00000000000"

// Column aliases, checked in order. The first alias with a non-empty value
// wins.
var (
	nameColumns         = []string{"nome", "name", "fullname"}
	companyColumns      = []string{"empresa", "company", "companyname"}
	roleColumns         = []string{"funcao", "cargo", "role"}
	credentialColumns   = []string{"credencial", "credential", "credentialname"}
	primaryDocColumns   = []string{"cpf", "document", "documento"}
	secondaryDocColumns = []string{"rg", "document2", "documento2"}
)

// freeTextRe matches characters outside word chars, whitespace, Latin-1
// accented letters, hyphen and period. Matches produce a warning, never an
// error.
var freeTextRe = regexp.MustCompile(`[^\w\s\x{00C0}-\x{00FF}.\-]`)

// Parser turns raw rows into RowOutcomes, one per input row in input order,
// running dedup inline against the already-persisted documents and against
// earlier rows of the same upload.
//
// Classification runs in chunks of ChunkSize with OnChunk invoked between
// chunks; that yield point is a scheduling contract so a cooperative host is
// never starved by a large upload. Next also makes the parser usable as a
// plain resumable iterator.
type Parser struct {
	ChunkSize int
	OnChunk   func(processed int)

	rows     []Row
	pos      int
	existing map[string]struct{}
	seen     map[string]struct{}
	counts   models.RowCounts
}

// NewParser creates a parser over rows. existingDocs are the documents of
// participants already persisted for the target event; they are normalized
// through the same padding as incoming rows.
func NewParser(rows []Row, existingDocs []string) *Parser {
	existing := make(map[string]struct{}, len(existingDocs))
	for _, d := range existingDocs {
		if digits := digitsOf(d); digits != "" {
			existing[PadDocument(digits)] = struct{}{}
		}
	}
	return &Parser{
		ChunkSize: DefaultChunkSize,
		rows:      rows,
		existing:  existing,
		seen:      make(map[string]struct{}),
	}
}

// Counts returns the running counters. Valid after any number of Next calls.
func (p *Parser) Counts() models.RowCounts { return p.counts }

// Next classifies the next row. The second return is false once all rows
// have been consumed.
func (p *Parser) Next() (models.RowOutcome, bool) {
	if p.pos >= len(p.rows) {
		return models.RowOutcome{}, false
	}
	line := p.pos + 1
	outcome := p.classify(line, p.rows[p.pos])
	p.pos++

	p.counts.Total++
	switch outcome.Kind {
	case models.OutcomeValid:
		p.counts.Valid++
		p.counts.Warnings += len(outcome.Warnings)
	case models.OutcomeInvalid:
		p.counts.Invalid++
	default:
		p.counts.Duplicate++
	}
	return outcome, true
}

// ParseAll drains the parser, yielding between chunks.
func (p *Parser) ParseAll() []models.RowOutcome {
	chunk := p.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	outcomes := make([]models.RowOutcome, 0, len(p.rows))
	for {
		o, ok := p.Next()
		if !ok {
			break
		}
		outcomes = append(outcomes, o)
		if len(outcomes)%chunk == 0 && p.OnChunk != nil {
			p.OnChunk(len(outcomes))
		}
	}
	return outcomes
}

// classify applies the validation rules in order, then document handling,
// then dedup. Rows failing a hard rule never reach dedup or the downstream
// stages.
func (p *Parser) classify(line int, raw Row) models.RowOutcome {
	row := foldRow(raw)

	name := strings.TrimSpace(lookup(row, nameColumns))
	company := strings.TrimSpace(lookup(row, companyColumns))
	role := strings.TrimSpace(lookup(row, roleColumns))
	credential := strings.TrimSpace(lookup(row, credentialColumns))

	var reasons []string
	reasons = appendRequired(reasons, "full name", name)
	reasons = appendRequired(reasons, "company", company)
	reasons = appendRequired(reasons, "role", role)
	if credential != "" && !lengthOK(credential) {
		reasons = append(reasons, "credential must be between 2 and 100 characters")
	}
	if len(reasons) > 0 {
		return models.RowOutcome{Line: line, Kind: models.OutcomeInvalid, Reasons: reasons}
	}

	var warnings []string

	// Identity document: primary column, secondary fallback, sentinel when
	// both are empty. Short documents are zero-padded to 11 digits.
	document := digitsOf(lookup(row, primaryDocColumns))
	if document == "" {
		document = digitsOf(lookup(row, secondaryDocColumns))
	}
	if document == "" {
		document = DocumentSentinel
		warnings = append(warnings, "no identity document provided; stored with placeholder document")
	} else {
		document = PadDocument(document)
	}

	for field, value := range map[string]string{
		"full name":  name,
		"company":    company,
		"role":       role,
		"credential": credential,
	} {
		if value != "" && freeTextRe.MatchString(value) {
			warnings = append(warnings, fmt.Sprintf("%s contains unusual characters", field))
		}
	}

	if _, ok := p.existing[document]; ok {
		return models.RowOutcome{
			Line:        line,
			Kind:        models.OutcomeDuplicateOfExisting,
			ExistingDoc: document,
		}
	}
	if _, ok := p.seen[document]; ok {
		return models.RowOutcome{Line: line, Kind: models.OutcomeDuplicateWithinFile}
	}
	p.seen[document] = struct{}{}

	return models.RowOutcome{
		Line: line,
		Kind: models.OutcomeValid,
		Row: &models.ImportRow{
			Line:           line,
			FullName:       NormalizeKey(name),
			Document:       document,
			Role:           role,
			CompanyName:    company,
			CredentialName: credential,
			DisplayName:    name,
		},
		Warnings: warnings,
	}
}

// ValidRows extracts the valid import rows from a slice of outcomes,
// preserving input order.
func ValidRows(outcomes []models.RowOutcome) []models.ImportRow {
	rows := make([]models.ImportRow, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Kind == models.OutcomeValid && o.Row != nil {
			rows = append(rows, *o.Row)
		}
	}
	return rows
}

func foldRow(raw Row) Row {
	folded := make(Row, len(raw))
	for k, v := range raw {
		folded[FoldHeader(k)] = v
	}
	return folded
}

func lookup(row Row, aliases []string) string {
	for _, a := range aliases {
		if v, ok := row[a]; ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func appendRequired(reasons []string, field, value string) []string {
	if value == "" {
		return append(reasons, field+" is required")
	}
	if !lengthOK(value) {
		return append(reasons, field+" must be between 2 and 100 characters")
	}
	return reasons
}

func lengthOK(value string) bool {
	n := len([]rune(value))
	return n >= 2 && n <= 100
}
