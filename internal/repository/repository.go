package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Satianurag/green-ai-carbon-scheduler/internal/models"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/repository/db"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// RunRepo is the append-only evidence log: one row per completed run.
type RunRepo interface {
	Append(ctx context.Context, rec models.RunRecord) error
	List(ctx context.Context, from, to time.Time) ([]models.RunRecord, error)
}

// DecisionRepo is the append-only scheduling decision log.
type DecisionRepo interface {
	Append(ctx context.Context, d models.Decision) error
	List(ctx context.Context, from, to time.Time) ([]models.Decision, error)
}

// ReadingRepo holds the latest observed intensity reading (single row).
type ReadingRepo interface {
	Save(ctx context.Context, r models.IntensityReading) error
	Load(ctx context.Context) (models.IntensityReading, error)
}

type Repository struct {
	Runs      RunRepo
	Decisions DecisionRepo
	Readings  ReadingRepo
	Auth      Authorization
}

func NewRepository(sqlDB *sql.DB) *Repository {
	return &Repository{
		Runs:      NewRunSQLite(sqlDB),
		Decisions: NewDecisionSQLite(sqlDB),
		Readings:  NewReadingSQLite(sqlDB),
		Auth:      NewUserRepository(sqlDB),
	}
}

// InitDB opens the SQLite file and ensures the schema exists.
func InitDB(path string) (*sql.DB, error) {
	return db.InitDB(path)
}
