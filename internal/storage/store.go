// Package storage persists memories and emotional states in PostgreSQL with pgvector.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DefaultMemoriesTable        = "xiaochenguang_memories"
	DefaultEmotionalStatesTable = "emotional_states"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// Options selects table names.
type Options struct {
	MemoriesTable        string
	EmotionalStatesTable string
}

func (o Options) withDefaults() (Options, error) {
	if o.MemoriesTable == "" {
		o.MemoriesTable = DefaultMemoriesTable
	}
	if o.EmotionalStatesTable == "" {
		o.EmotionalStatesTable = DefaultEmotionalStatesTable
	}
	for _, name := range []string{o.MemoriesTable, o.EmotionalStatesTable} {
		if !tableNamePattern.MatchString(name) {
			return o, fmt.Errorf("invalid table name %q", name)
		}
	}
	return o, nil
}

// RenderSQL substitutes the {{memories_table}} and {{emotional_states_table}}
// placeholders of a migration file with the configured table names.
func (o Options) RenderSQL(sql string) string {
	return strings.NewReplacer(
		"{{memories_table}}", o.MemoriesTable,
		"{{emotional_states_table}}", o.EmotionalStatesTable,
	).Replace(sql)
}

// indexStatements mirrors the indexes of migrations/001_init.sql.
func (o Options) indexStatements() []string {
	return []string{
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%[1]s_conversation_type_created ON %[1]s (conversation_id, memory_type, created_at DESC)", o.MemoriesTable),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%[1]s_conversation_user_message ON %[1]s (conversation_id, user_message)", o.MemoriesTable),
		// at most one personality row per conversation
		fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS idx_%[1]s_personality ON %[1]s (conversation_id) WHERE memory_type = 'personality'", o.MemoriesTable),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%[1]s_user_timestamp ON %[1]s (user_id, timestamp DESC)", o.EmotionalStatesTable),
	}
}

// Store holds the DB pool and repositories.
type Store struct {
	db   *gorm.DB
	opts Options

	Memories        *MemoryRepo
	EmotionalStates *EmotionalStateRepo
}

// NewStore initializes the PostgreSQL pool and repositories.
func NewStore(ctx context.Context, databaseURL string, opts Options) (*Store, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return newStore(db, opts), nil
}

func newStore(db *gorm.DB, opts Options) *Store {
	validate := validator.New()
	return &Store{
		db:              db,
		opts:            opts,
		Memories:        &MemoryRepo{db: db, table: opts.MemoriesTable, validate: validate},
		EmotionalStates: &EmotionalStateRepo{db: db, table: opts.EmotionalStatesTable, validate: validate},
	}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// Options returns the resolved table names.
func (s *Store) Options() Options {
	return s.opts
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Migrate enables pgvector, creates or updates both tables and their indexes.
func (s *Store) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("failed to enable pgvector: %w", err)
	}
	if err := db.Table(s.opts.MemoriesTable).AutoMigrate(&memoryModel{}); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", s.opts.MemoriesTable, err)
	}
	if err := db.Table(s.opts.EmotionalStatesTable).AutoMigrate(&emotionalStateModel{}); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", s.opts.EmotionalStatesTable, err)
	}
	for _, stmt := range s.opts.indexStatements() {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	slog.Info("database migrated", "memories_table", s.opts.MemoriesTable, "emotional_states_table", s.opts.EmotionalStatesTable)
	return nil
}

// HasVectorExtension reports whether pgvector is installed.
func (s *Store) HasVectorExtension(ctx context.Context) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM pg_extension WHERE extname = 'vector'").
		Scan(&count).Error; err != nil {
		return false, fmt.Errorf("failed to query extensions: %w", err)
	}
	return count > 0, nil
}

func (s *Store) Close() {
	if s.db == nil {
		return
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return
	}
	_ = sqlDB.Close()
}
