// Package store persists run reports, event tables and device-state
// snapshots. SQLite is the default for single-node deployments; a Postgres
// DSN switches drivers without touching callers.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"fleetscan/internal/model"
)

type Store struct {
	db *gorm.DB
}

// Open connects and migrates the schema. dsn empty selects SQLite at
// sqlitePath; a postgres:// or postgresql:// DSN selects Postgres.
func Open(dsn, sqlitePath string) (*Store, error) {
	var dial gorm.Dialector
	switch {
	case dsn == "":
		if sqlitePath == "" {
			sqlitePath = "fleetscan.db"
		}
		dial = sqlite.Open(sqlitePath)
	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		dial = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("store: unsupported dsn %q", dsn)
	}

	db, err := gorm.Open(dial, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if err := db.AutoMigrate(&model.RunReport{}, &model.EventRecord{}, &model.DeviceStateRecord{}); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// SaveRun writes a completed run's report, events and state snapshot in one
// transaction. Re-saving the same run id replaces its rows.
func (s *Store) SaveRun(ctx context.Context, report model.RunReport, events []model.EventRecord, states []model.DeviceStateRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_id = ?", report.RunID).Delete(&model.EventRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("run_id = ?", report.RunID).Delete(&model.DeviceStateRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&report).Error; err != nil {
			return err
		}
		if len(events) > 0 {
			if err := tx.CreateInBatches(&events, 500).Error; err != nil {
				return err
			}
		}
		if len(states) > 0 {
			if err := tx.CreateInBatches(&states, 500).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetRun(ctx context.Context, runID string) (model.RunReport, error) {
	var report model.RunReport
	err := s.db.WithContext(ctx).First(&report, "run_id = ?", runID).Error
	return report, err
}

func (s *Store) ListRuns(ctx context.Context, limit int) ([]model.RunReport, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []model.RunReport
	err := s.db.WithContext(ctx).Order("started_at desc").Limit(limit).Find(&runs).Error
	return runs, err
}

func (s *Store) GetEvents(ctx context.Context, runID string) ([]model.EventRecord, error) {
	var events []model.EventRecord
	err := s.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("client, device_id, timestamp, id").
		Find(&events).Error
	return events, err
}

func (s *Store) GetStates(ctx context.Context, runID string) ([]model.DeviceStateRecord, error) {
	var states []model.DeviceStateRecord
	err := s.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("client, device_id").
		Find(&states).Error
	return states, err
}

// IsNotFound reports whether err means the run does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
