package pipeline

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

// fakeStore is an in-memory Store with per-call failure injection, used by
// the orchestrator, executor and pipeline tests.
type fakeStore struct {
	mu           sync.Mutex
	credentials  []CredentialRecord
	companies    []CompanyRecord
	participants []ParticipantPayload
	documents    []string
	nextID       int

	credentialErr  func(CredentialPayload) error
	companyErr     func(CompanyPayload) error
	participantErr func(ParticipantPayload) error

	credentialLists int
	companyLists    int
}

func newFakeStore() *fakeStore { return &fakeStore{} }

func (f *fakeStore) ListCredentials(ctx context.Context, eventID uint) ([]CredentialRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.credentialLists++
	return append([]CredentialRecord(nil), f.credentials...), nil
}

func (f *fakeStore) ListCompanies(ctx context.Context, eventID uint) ([]CompanyRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.companyLists++
	return append([]CompanyRecord(nil), f.companies...), nil
}

func (f *fakeStore) CreateCredential(ctx context.Context, p CredentialPayload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.credentialErr != nil {
		if err := f.credentialErr(p); err != nil {
			return "", err
		}
	}
	f.nextID++
	id := strconv.Itoa(f.nextID)
	f.credentials = append(f.credentials, CredentialRecord{ID: id, Name: p.Name, Color: p.Color, Shift: p.Shift})
	return id, nil
}

func (f *fakeStore) CreateCompany(ctx context.Context, p CompanyPayload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.companyErr != nil {
		if err := f.companyErr(p); err != nil {
			return "", err
		}
	}
	f.nextID++
	id := strconv.Itoa(f.nextID)
	f.companies = append(f.companies, CompanyRecord{ID: id, Name: p.Name, Shift: p.Shift})
	return id, nil
}

func (f *fakeStore) ListParticipantDocuments(ctx context.Context, eventID uint) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.documents...), nil
}

func (f *fakeStore) CreateParticipant(ctx context.Context, p ParticipantPayload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.participantErr != nil {
		if err := f.participantErr(p); err != nil {
			return "", err
		}
	}
	f.nextID++
	f.participants = append(f.participants, p)
	return strconv.Itoa(f.nextID), nil
}

func testLog() *logrus.Entry {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(log)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
