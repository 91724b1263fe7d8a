package database

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Event represents the events table
type Event struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
}

// Participant represents the participants table. Each record is scoped to
// one shift of one event.
type Participant struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	EventID        uint      `gorm:"index;not null" json:"event_id"`
	WorkDate       string    `gorm:"not null" json:"work_date"`
	WorkStage      string    `gorm:"not null" json:"work_stage"`
	WorkPeriod     string    `gorm:"not null" json:"work_period"`
	FullName       string    `gorm:"not null" json:"full_name"`
	Document       string    `gorm:"index;not null" json:"document"`
	Role           string    `json:"role"`
	CompanyName    string    `json:"company_name"`
	CredentialID   string    `json:"credential_id"`
	CredentialName string    `json:"credential_name"`
	CheckedInAt    *time.Time `json:"checked_in_at"`
	CheckedOutAt   *time.Time `json:"checked_out_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// Credential represents the credentials table (access-badge types,
// shift-scoped).
type Credential struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EventID    uint      `gorm:"index;not null" json:"event_id"`
	WorkDate   string    `gorm:"not null" json:"work_date"`
	WorkStage  string    `gorm:"not null" json:"work_stage"`
	WorkPeriod string    `gorm:"not null" json:"work_period"`
	Name       string    `gorm:"not null" json:"name"`
	Color      string    `json:"color"`
	CreatedAt  time.Time `json:"created_at"`
}

// Company represents the companies table (employer entities, shift-scoped).
type Company struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EventID    uint      `gorm:"index;not null" json:"event_id"`
	WorkDate   string    `gorm:"not null" json:"work_date"`
	WorkStage  string    `gorm:"not null" json:"work_stage"`
	WorkPeriod string    `gorm:"not null" json:"work_period"`
	Name       string    `gorm:"not null" json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}

// APIKey represents the api_keys table
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"key"`
	Name       string     `gorm:"not null" json:"name"`
	KeyPreview string     `json:"key_preview"`
	RateLimit  int        `gorm:"default:10000" json:"rate_limit"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
}

// APIUsage represents the api_usage table
type APIUsage struct {
	ID                  uint   `gorm:"primaryKey" json:"id"`
	KeyID               uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date                string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount        int    `gorm:"default:0" json:"request_count"`
	RowsParsed          int    `gorm:"default:0" json:"rows_parsed"`
	ParticipantsCreated int    `gorm:"default:0" json:"participants_created"`
}

// Operator represents the operators table (console users)
type Operator struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// InitDB initializes the database connection and migrates the schema.
// DATABASE_URL selects postgres; without it a local sqlite file is used.
func InitDB() *gorm.DB {
	var db *gorm.DB
	var err error

	dsn := os.Getenv("DATABASE_URL")
	if dsn != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	} else {
		dbPath := os.Getenv("DATA_PATH")
		if dbPath == "" {
			dbPath = "staffing.db"
		}
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	}

	if err != nil {
		logrus.WithError(err).Fatal("failed to connect database")
	}

	db.AutoMigrate(&Event{}, &Participant{}, &Credential{}, &Company{}, &APIKey{}, &APIUsage{}, &Operator{})

	return db
}
