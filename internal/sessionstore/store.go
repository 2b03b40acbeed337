// Package sessionstore persists the MTProto session (auth key and DC) in a SQL
// database through GORM.
package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/celestix/gotgproto/storage"
	"github.com/glebarez/sqlite"
	"github.com/gotd/td/session"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/blockedby/tgchats/internal/logger"
)

// Open connects to dsn. PostgreSQL URLs and keyword DSNs use the postgres
// driver, anything else is treated as a SQLite file path.
func Open(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}

	var dialector gorm.Dialector
	if isPostgres(dsn) {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}
	return db, nil
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

// Store implements session.Storage on a single sessions row, in the same
// layout gotgproto uses.
type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

var _ session.Storage = (*Store)(nil)

// New creates the sessions table if needed.
func New(db *gorm.DB, log *logger.Logger) (*Store, error) {
	if err := db.AutoMigrate(&storage.Session{}); err != nil {
		return nil, fmt.Errorf("migrate sessions table: %w", err)
	}
	return &Store{db: db, log: logger.OrGlobal(log).Component("sessionstore")}, nil
}

// LoadSession implements session.Storage.
func (s *Store) LoadSession(ctx context.Context) ([]byte, error) {
	var row storage.Session
	err := s.db.WithContext(ctx).
		Where("version = ?", storage.LatestVersion).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if len(row.Data) == 0 {
		return nil, session.ErrNotFound
	}
	return row.Data, nil
}

// StoreSession implements session.Storage.
func (s *Store) StoreSession(ctx context.Context, data []byte) error {
	row := &storage.Session{Version: storage.LatestVersion, Data: data}
	if err := s.db.WithContext(ctx).Save(row).Error; err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	s.log.Debug().Int("bytes", len(data)).Msg("session stored")
	return nil
}

// Seed imports a Telethon string session when nothing is stored yet. It
// reports whether the session was imported.
func (s *Store) Seed(ctx context.Context, telethon string) (bool, error) {
	_, err := s.data(ctx)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, session.ErrNotFound) {
		return false, err
	}

	data, err := session.TelethonSession(telethon)
	if err != nil {
		return false, fmt.Errorf("decode session string: %w", err)
	}
	if err := s.saveData(ctx, data); err != nil {
		return false, err
	}
	s.log.Info().Int("dc", data.DC).Msg("session imported")
	return true, nil
}

// saveData stores an already decoded session.
func (s *Store) saveData(ctx context.Context, data *session.Data) error {
	if data == nil {
		return fmt.Errorf("session data is nil")
	}
	loader := session.Loader{Storage: s}
	return loader.Save(ctx, data)
}

func (s *Store) data(ctx context.Context) (*session.Data, error) {
	loader := session.Loader{Storage: s}
	return loader.Load(ctx)
}

// Reset removes the stored session, forcing a new login.
func (s *Store) Reset(ctx context.Context) error {
	err := s.db.WithContext(ctx).
		Where("version = ?", storage.LatestVersion).
		Delete(&storage.Session{}).Error
	if err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	return nil
}
