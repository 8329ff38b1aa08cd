package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// parametrosRecord is the single persisted row mirroring the last settings
// payload fetched from the backend.
type parametrosRecord struct {
	ID          uint `gorm:"primaryKey"`
	NomeEmpresa string
	AlteraData  bool
	UpdatedAt   time.Time
}

func (parametrosRecord) TableName() string { return "parametros" }

// Store is the persistent fallback cache for company settings. It is not a
// source of truth; the backend is.
type Store interface {
	Load(ctx context.Context) (*Parametros, error)
	Save(ctx context.Context, p *Parametros) error
	Clear(ctx context.Context) error
}

type gormStore struct {
	db *gorm.DB
}

// Open initializes the terminal-local settings database and runs migrations.
func Open(path string) (Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open settings cache: %w", err)
	}
	if err := db.AutoMigrate(&parametrosRecord{}); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}
	return &gormStore{db: db}, nil
}

// NewStore wraps an existing gorm handle. Used by tests with an in-memory
// database.
func NewStore(db *gorm.DB) (Store, error) {
	if err := db.AutoMigrate(&parametrosRecord{}); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}
	return &gormStore{db: db}, nil
}

func (s *gormStore) Load(ctx context.Context) (*Parametros, error) {
	var rec parametrosRecord
	err := s.db.WithContext(ctx).First(&rec, 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cached settings: %w", err)
	}
	return &Parametros{NomeEmpresa: rec.NomeEmpresa, AlteraData: rec.AlteraData}, nil
}

func (s *gormStore) Save(ctx context.Context, p *Parametros) error {
	rec := parametrosRecord{ID: 1, NomeEmpresa: p.NomeEmpresa, AlteraData: p.AlteraData}
	if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return fmt.Errorf("failed to persist settings: %w", err)
	}
	return nil
}

func (s *gormStore) Clear(ctx context.Context) error {
	err := s.db.WithContext(ctx).Delete(&parametrosRecord{}, 1).Error
	if err != nil {
		return fmt.Errorf("failed to clear settings cache: %w", err)
	}
	return nil
}
