package filestore

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nadzzz/parley/internal/config"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "uploads.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			s, err := NewStore(StoreTypeMemory, WithMaxBytes(1024))
			require.NoError(t, err)
			return s
		},
		"disk": func(t *testing.T) Store {
			s, err := NewStore(StoreTypeDisk, WithDir(filepath.Join(t.TempDir(), "uploads")), WithMaxBytes(1024))
			require.NoError(t, err)
			return s
		},
		"sqlite": func(t *testing.T) Store {
			s, err := NewStore(StoreTypeSQLite, WithDB(openTestDB(t)), WithMaxBytes(1024))
			require.NoError(t, err)
			return s
		},
	}

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			defer s.Close()
			ctx := t.Context()

			f, err := s.Put(ctx, Upload{Name: "form.pdf", ContentType: "application/pdf", Reader: strings.NewReader("%PDF-1.4")})
			require.NoError(t, err)
			assert.NotEmpty(t, f.ID)
			assert.Equal(t, "form.pdf", f.Name)
			assert.Equal(t, int64(8), f.Size)
			assert.Nil(t, f.Data)

			got, err := s.Get(ctx, f.ID)
			require.NoError(t, err)
			assert.Equal(t, []byte("%PDF-1.4"), got.Data)
			assert.Equal(t, "application/pdf", got.ContentType)
			assert.Equal(t, f.ID, got.ID)

			_, err = s.Get(ctx, "00000000-0000-0000-0000-000000000000")
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = s.Get(ctx, "../../etc/passwd")
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = s.Put(ctx, Upload{Name: "big.bin", Reader: bytes.NewReader(make([]byte, 2048))})
			assert.ErrorIs(t, err, ErrTooLarge)

			require.NoError(t, s.Delete(ctx, f.ID))
			_, err = s.Get(ctx, f.ID)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.NoError(t, s.Delete(ctx, f.ID))
		})
	}
}

func TestPut_DefaultContentType(t *testing.T) {
	s, err := NewStore(StoreTypeMemory)
	require.NoError(t, err)
	f, err := s.Put(t.Context(), Upload{Name: "x", Reader: strings.NewReader("x")})
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", f.ContentType)

	_, err = s.Put(t.Context(), Upload{Name: "empty"})
	assert.Error(t, err)
}

func TestNewStore_Config(t *testing.T) {
	_, err := NewStore("s3")
	assert.ErrorIs(t, err, ErrInvalidStoreType)

	for _, typ := range []StoreType{StoreTypeDisk, StoreTypeRedis, StoreTypeSQLite} {
		_, err := NewStore(typ)
		assert.ErrorIs(t, err, ErrInvalidConfig, typ)
	}
}

func TestRedisStore_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	s, err := NewStore(StoreTypeRedis, WithRedisClient(client))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Put(t.Context(), Upload{Name: "x", Reader: strings.NewReader("x")})
	assert.Error(t, err)
	_, err = s.Get(t.Context(), "missing")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(context.Background(), config.FilesConfig{Backend: "disk", Dir: dir}, 0)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(context.Background(), config.FilesConfig{Backend: "sqlite", SQLitePath: filepath.Join(dir, "uploads.db")}, 0)
	require.NoError(t, err)
	f, err := s.Put(t.Context(), Upload{Name: "a.png", ContentType: "image/png", Reader: strings.NewReader("png")})
	require.NoError(t, err)
	got, err := s.Get(t.Context(), f.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), got.Data)
	require.NoError(t, s.Close())

	_, err = Open(context.Background(), config.FilesConfig{Backend: "redis", RedisAddr: "127.0.0.1:1"}, 0)
	assert.Error(t, err)
}
