// Package filestore keeps user uploads (PDFs, images) so later chat
// requests can refer to them by id.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no upload has the requested id.
	ErrNotFound = errors.New("filestore: file not found")

	// ErrTooLarge is returned when an upload exceeds the size limit.
	ErrTooLarge = errors.New("filestore: file too large")

	// ErrInvalidConfig is returned when a store is missing required options.
	ErrInvalidConfig = errors.New("filestore: invalid configuration")

	// ErrInvalidStoreType is returned for unknown store types.
	ErrInvalidStoreType = errors.New("filestore: invalid store type")
)

// Upload is a file being stored.
type Upload struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

// File is a stored upload.
type File struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
	Data        []byte    `json:"data,omitempty"`
}

// Store defines upload storage operations.
type Store interface {
	// Put stores the upload under a new id. The returned File has no Data.
	Put(ctx context.Context, u Upload) (File, error)

	// Get returns the file with its content, or ErrNotFound.
	Get(ctx context.Context, id string) (*File, error)

	// Delete removes a file. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close() error
}

// StoreType selects a Store implementation.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeDisk   StoreType = "disk"
	StoreTypeRedis  StoreType = "redis"
	StoreTypeSQLite StoreType = "sqlite"
)

// StoreOption configures a store.
type StoreOption func(*storeConfig)

type storeConfig struct {
	dir         string
	redisClient *redis.Client
	ttl         time.Duration
	db          *gorm.DB
	maxBytes    int64
}

// WithDir sets the directory of the disk store.
func WithDir(dir string) StoreOption {
	return func(c *storeConfig) { c.dir = dir }
}

// WithRedisClient sets the client of the redis store.
func WithRedisClient(client *redis.Client) StoreOption {
	return func(c *storeConfig) { c.redisClient = client }
}

// WithTTL sets how long the redis store keeps uploads.
func WithTTL(ttl time.Duration) StoreOption {
	return func(c *storeConfig) { c.ttl = ttl }
}

// WithDB sets the database of the sqlite store.
func WithDB(db *gorm.DB) StoreOption {
	return func(c *storeConfig) { c.db = db }
}

// WithMaxBytes limits the size of a single upload. Zero means no limit.
func WithMaxBytes(n int64) StoreOption {
	return func(c *storeConfig) { c.maxBytes = n }
}

// NewStore creates a Store of the given type.
func NewStore(storeType StoreType, opts ...StoreOption) (Store, error) {
	cfg := &storeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	switch storeType {
	case StoreTypeMemory:
		return newMemoryStore(cfg.maxBytes), nil

	case StoreTypeDisk:
		if cfg.dir == "" {
			return nil, fmt.Errorf("%w: disk store needs a directory", ErrInvalidConfig)
		}
		return newDiskStore(cfg.dir, cfg.maxBytes)

	case StoreTypeRedis:
		if cfg.redisClient == nil {
			return nil, fmt.Errorf("%w: redis store needs a client", ErrInvalidConfig)
		}
		return newRedisStore(cfg.redisClient, cfg.ttl, cfg.maxBytes), nil

	case StoreTypeSQLite:
		if cfg.db == nil {
			return nil, fmt.Errorf("%w: sqlite store needs a database", ErrInvalidConfig)
		}
		return newSQLStore(cfg.db, cfg.maxBytes)

	default:
		return nil, ErrInvalidStoreType
	}
}

// newFile reads an upload into a File with a fresh id.
func newFile(u Upload, maxBytes int64) (*File, error) {
	if u.Reader == nil {
		return nil, fmt.Errorf("filestore: upload has no content")
	}
	r := u.Reader
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, ErrTooLarge
	}

	contentType := u.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &File{
		ID:          uuid.NewString(),
		Name:        u.Name,
		ContentType: contentType,
		Size:        int64(len(data)),
		CreatedAt:   time.Now().UTC(),
		Data:        data,
	}, nil
}

// meta returns a copy of f without content.
func (f *File) meta() File {
	m := *f
	m.Data = nil
	return m
}
