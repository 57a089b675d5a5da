package interviewstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// ErrNotFound is returned when no interview exists for the given id.
var ErrNotFound = errors.New("interview not found")

// Store defines persistence for finished interviews.
type Store interface {
	Save(ctx context.Context, record *Record) error
	Get(ctx context.Context, id uuid.UUID) (*Record, error)
	List(ctx context.Context) ([]*Record, error)
}

// MySQLStore handles interview persistence using GORM.
type MySQLStore struct {
	db *gorm.DB
}

// NewMySQLStore creates an interview store with a GORM connection.
func NewMySQLStore(databaseURL string) (*MySQLStore, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}

	return &MySQLStore{db: db}, nil
}

// Save persists a finished interview, assigning an id when missing.
func (s *MySQLStore) Save(ctx context.Context, record *Record) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to save interview: %w", err)
	}
	return nil
}

// Get retrieves an interview by id.
func (s *MySQLStore) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	var record Record
	result := s.db.WithContext(ctx).First(&record, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get interview: %w", result.Error)
	}
	return &record, nil
}

// List returns all interviews, newest first.
func (s *MySQLStore) List(ctx context.Context) ([]*Record, error) {
	var records []*Record
	result := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&records)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", result.Error)
	}
	return records, nil
}

// Close closes the database connection.
func (s *MySQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB from gorm.DB: %w", err)
	}
	return sqlDB.Close()
}

// MemoryStore is an in-memory Store for tests and one-off runs.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[uuid.UUID]*Record)}
}

// Save persists a finished interview in memory.
func (s *MemoryStore) Save(ctx context.Context, record *Record) error {
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	copied := *record
	s.records[record.ID] = &copied
	return nil
}

// Get retrieves an interview by id.
func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.records[id]
	if !exists {
		return nil, ErrNotFound
	}

	copied := *record
	return &copied, nil
}

// List returns all interviews, newest first.
func (s *MemoryStore) List(ctx context.Context) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*Record, 0, len(s.records))
	for _, record := range s.records {
		copied := *record
		records = append(records, &copied)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID.String() > records[j].ID.String()
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return records, nil
}
