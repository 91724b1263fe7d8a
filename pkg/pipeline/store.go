package pipeline

import (
	"context"

	"github.com/rcoelho/event-staffing-api/pkg/models"
)

// CredentialRecord is one access-badge type as read back from the store.
type CredentialRecord struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Color string       `json:"color"`
	Shift models.Shift `json:"shift"`
}

// CompanyRecord is one employer entity as read back from the store.
type CompanyRecord struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Shift models.Shift `json:"shift"`
}

// CredentialPayload is the shift-scoped create payload for a credential.
type CredentialPayload struct {
	EventID uint         `json:"event_id"`
	Shift   models.Shift `json:"shift"`
	Name    string       `json:"name"`
	Color   string       `json:"color"`
}

// CompanyPayload is the shift-scoped create payload for a company.
type CompanyPayload struct {
	EventID uint         `json:"event_id"`
	Shift   models.Shift `json:"shift"`
	Name    string       `json:"name"`
}

// ParticipantPayload is the shift-scoped create payload for a participant.
type ParticipantPayload struct {
	EventID        uint         `json:"event_id"`
	Shift          models.Shift `json:"shift"`
	FullName       string       `json:"full_name"`
	Document       string       `json:"document"`
	Role           string       `json:"role"`
	CompanyName    string       `json:"company_name"`
	CredentialID   string       `json:"credential_id,omitempty"`
	CredentialName string       `json:"credential_name,omitempty"`
}

// ReferenceStore is the remote collection boundary for credentials and
// companies. Creates are not idempotent on the service side; the pipeline
// compensates with read-after-write refreshes.
type ReferenceStore interface {
	ListCredentials(ctx context.Context, eventID uint) ([]CredentialRecord, error)
	ListCompanies(ctx context.Context, eventID uint) ([]CompanyRecord, error)
	CreateCredential(ctx context.Context, p CredentialPayload) (string, error)
	CreateCompany(ctx context.Context, p CompanyPayload) (string, error)
}

// ParticipantStore is the remote collection boundary for participants.
type ParticipantStore interface {
	ListParticipantDocuments(ctx context.Context, eventID uint) ([]string, error)
	CreateParticipant(ctx context.Context, p ParticipantPayload) (string, error)
}

// Store is the full persistence boundary a pipeline needs.
type Store interface {
	ReferenceStore
	ParticipantStore
}
