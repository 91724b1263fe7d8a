package database

import (
	"context"
	"strconv"

	"gorm.io/gorm"

	"github.com/rcoelho/event-staffing-api/pkg/models"
	"github.com/rcoelho/event-staffing-api/pkg/pipeline"
)

// Store adapts the gorm database to the pipeline's persistence boundary.
type Store struct {
	DB *gorm.DB
}

// NewStore wraps a gorm handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

var _ pipeline.Store = (*Store)(nil)

// ListCredentials returns all credentials of an event.
func (s *Store) ListCredentials(ctx context.Context, eventID uint) ([]pipeline.CredentialRecord, error) {
	var rows []Credential
	if err := s.DB.WithContext(ctx).Where("event_id = ?", eventID).Find(&rows).Error; err != nil {
		return nil, err
	}
	records := make([]pipeline.CredentialRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, pipeline.CredentialRecord{
			ID:    strconv.FormatUint(uint64(r.ID), 10),
			Name:  r.Name,
			Color: r.Color,
			Shift: models.Shift{
				Date:   r.WorkDate,
				Stage:  models.WorkStage(r.WorkStage),
				Period: models.WorkPeriod(r.WorkPeriod),
			},
		})
	}
	return records, nil
}

// ListCompanies returns all companies of an event.
func (s *Store) ListCompanies(ctx context.Context, eventID uint) ([]pipeline.CompanyRecord, error) {
	var rows []Company
	if err := s.DB.WithContext(ctx).Where("event_id = ?", eventID).Find(&rows).Error; err != nil {
		return nil, err
	}
	records := make([]pipeline.CompanyRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, pipeline.CompanyRecord{
			ID:   strconv.FormatUint(uint64(r.ID), 10),
			Name: r.Name,
			Shift: models.Shift{
				Date:   r.WorkDate,
				Stage:  models.WorkStage(r.WorkStage),
				Period: models.WorkPeriod(r.WorkPeriod),
			},
		})
	}
	return records, nil
}

// CreateCredential inserts one shift-scoped credential.
func (s *Store) CreateCredential(ctx context.Context, p pipeline.CredentialPayload) (string, error) {
	row := Credential{
		EventID:    p.EventID,
		WorkDate:   p.Shift.Date,
		WorkStage:  string(p.Shift.Stage),
		WorkPeriod: string(p.Shift.Period),
		Name:       p.Name,
		Color:      p.Color,
	}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return "", err
	}
	return strconv.FormatUint(uint64(row.ID), 10), nil
}

// CreateCompany inserts one shift-scoped company.
func (s *Store) CreateCompany(ctx context.Context, p pipeline.CompanyPayload) (string, error) {
	row := Company{
		EventID:    p.EventID,
		WorkDate:   p.Shift.Date,
		WorkStage:  string(p.Shift.Stage),
		WorkPeriod: string(p.Shift.Period),
		Name:       p.Name,
	}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return "", err
	}
	return strconv.FormatUint(uint64(row.ID), 10), nil
}

// ListParticipantDocuments returns the distinct documents already persisted
// for an event, for dedup against uploaded rows.
func (s *Store) ListParticipantDocuments(ctx context.Context, eventID uint) ([]string, error) {
	var documents []string
	err := s.DB.WithContext(ctx).
		Model(&Participant{}).
		Where("event_id = ?", eventID).
		Distinct().
		Pluck("document", &documents).Error
	if err != nil {
		return nil, err
	}
	return documents, nil
}

// CreateParticipant inserts one shift-scoped participant record.
func (s *Store) CreateParticipant(ctx context.Context, p pipeline.ParticipantPayload) (string, error) {
	row := Participant{
		EventID:        p.EventID,
		WorkDate:       p.Shift.Date,
		WorkStage:      string(p.Shift.Stage),
		WorkPeriod:     string(p.Shift.Period),
		FullName:       p.FullName,
		Document:       p.Document,
		Role:           p.Role,
		CompanyName:    p.CompanyName,
		CredentialID:   p.CredentialID,
		CredentialName: p.CredentialName,
	}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return "", err
	}
	return strconv.FormatUint(uint64(row.ID), 10), nil
}
