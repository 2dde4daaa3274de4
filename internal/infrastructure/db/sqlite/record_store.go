package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/medbuddy/second-opinion-api/internal/core/ports"
)

// recordRow is the single-table layout backing all logical collections: each
// record is one JSON document keyed by (collection, id).
type recordRow struct {
	Collection string `gorm:"primaryKey;size:64"`
	ID         string `gorm:"primaryKey;size:36"`
	Data       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (recordRow) TableName() string { return "records" }

// RecordStore implements ports.RecordStore on an embedded SQLite database.
// Non-key queries load the whole collection and filter in memory, the same
// wholesale read pattern the store contract assumes; writes go through a
// transaction so the conditional update re-check is isolated.
type RecordStore struct {
	db *gorm.DB
}

// Open opens (creating if needed) the SQLite database at path and migrates
// the records table.
func Open(path string) (*RecordStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	if err := db.AutoMigrate(&recordRow{}); err != nil {
		return nil, fmt.Errorf("sqlite migrate: %w", err)
	}
	return &RecordStore{db: db}, nil
}

func (s *RecordStore) Create(ctx context.Context, collection string, fields ports.Fields) (ports.Record, error) {
	rec := make(ports.Record, len(fields)+2)
	for k, v := range fields {
		rec[k] = v
	}
	now := time.Now().UTC()
	rec["id"] = uuid.NewString()
	rec["createdAt"] = now.Format(time.RFC3339)

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("create record: encode: %w", err)
	}

	row := recordRow{
		Collection: collection,
		ID:         rec["id"].(string),
		Data:       string(data),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}
	return rec, nil
}

func (s *RecordStore) GetByKey(ctx context.Context, collection, key string, value any) (ports.Record, error) {
	if key == "id" {
		var row recordRow
		err := s.db.WithContext(ctx).
			Where("collection = ? AND id = ?", collection, value).
			First(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ports.ErrRecordNotFound
			}
			return nil, fmt.Errorf("get record: %w", err)
		}
		return decodeRow(row)
	}

	recs, err := s.Query(ctx, collection, ports.Fields{key: value})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ports.ErrRecordNotFound
	}
	return recs[0], nil
}

func (s *RecordStore) Query(ctx context.Context, collection string, filter ports.Fields) ([]ports.Record, error) {
	var rows []recordRow
	err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	var out []ports.Record
	for _, row := range rows {
		rec, err := decodeRow(row)
		if err != nil {
			return nil, err
		}
		if recordMatches(rec, filter) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *RecordStore) Update(ctx context.Context, collection, id string, fields ports.Fields) (ports.Record, error) {
	return s.UpdateIf(ctx, collection, id, nil, fields)
}

func (s *RecordStore) UpdateIf(ctx context.Context, collection, id string, expect, fields ports.Fields) (ports.Record, error) {
	var result ports.Record

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row recordRow
		err := tx.Where("collection = ? AND id = ?", collection, id).First(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ports.ErrRecordNotFound
			}
			return fmt.Errorf("update record: %w", err)
		}

		rec, err := decodeRow(row)
		if err != nil {
			return err
		}
		if !recordMatches(rec, expect) {
			return ports.ErrPreconditionFailed
		}

		now := time.Now().UTC()
		for k, v := range fields {
			rec[k] = v
		}
		rec["updatedAt"] = now.Format(time.RFC3339)

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("update record: encode: %w", err)
		}
		row.Data = string(data)
		row.UpdatedAt = now
		if err := tx.Save(&row).Error; err != nil {
			return fmt.Errorf("update record: %w", err)
		}

		result = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Ping reports backend connectivity for readiness probes.
func (s *RecordStore) Ping(ctx context.Context) error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

func decodeRow(row recordRow) (ports.Record, error) {
	var rec ports.Record
	if err := json.Unmarshal([]byte(row.Data), &rec); err != nil {
		return nil, fmt.Errorf("decode record %s/%s: %w", row.Collection, row.ID, err)
	}
	return rec, nil
}

func recordMatches(rec ports.Record, filter ports.Fields) bool {
	for k, v := range filter {
		if rec[k] != v {
			return false
		}
	}
	return true
}
