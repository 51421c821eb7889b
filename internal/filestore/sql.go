package filestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// uploadRecord is the gorm model backing the sqlite store.
type uploadRecord struct {
	ID          string `gorm:"primaryKey;size:36"`
	Name        string `gorm:"size:255"`
	ContentType string `gorm:"size:128"`
	Size        int64
	Data        []byte
	CreatedAt   time.Time
}

func (uploadRecord) TableName() string { return "uploads" }

// sqlStore keeps uploads in a database table through gorm.
type sqlStore struct {
	db       *gorm.DB
	maxBytes int64
}

func newSQLStore(db *gorm.DB, maxBytes int64) (*sqlStore, error) {
	if err := db.AutoMigrate(&uploadRecord{}); err != nil {
		return nil, fmt.Errorf("migrating uploads table: %w", err)
	}
	return &sqlStore{db: db, maxBytes: maxBytes}, nil
}

func (s *sqlStore) Put(ctx context.Context, u Upload) (File, error) {
	f, err := newFile(u, s.maxBytes)
	if err != nil {
		return File{}, err
	}
	rec := uploadRecord{
		ID:          f.ID,
		Name:        f.Name,
		ContentType: f.ContentType,
		Size:        f.Size,
		Data:        f.Data,
		CreatedAt:   f.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return File{}, fmt.Errorf("storing upload: %w", err)
	}
	return f.meta(), nil
}

func (s *sqlStore) Get(ctx context.Context, id string) (*File, error) {
	var rec uploadRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading upload: %w", err)
	}
	return &File{
		ID:          rec.ID,
		Name:        rec.Name,
		ContentType: rec.ContentType,
		Size:        rec.Size,
		CreatedAt:   rec.CreatedAt,
		Data:        rec.Data,
	}, nil
}

func (s *sqlStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&uploadRecord{}).Error
}

func (s *sqlStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
