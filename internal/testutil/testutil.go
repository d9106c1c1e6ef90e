package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/ecommerce/internal/models"
)

// InitTestDB opens a fresh in-memory store with every table migrated. The
// pool is pinned to one connection so the in-memory database survives.
func InitTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func StrPtr(s string) *string { return &s }

type Event struct {
	Topic string
	Key   string
	Body  map[string]any
}

// RecordingPublisher keeps every published event in memory.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (p *RecordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	body, _ := event.(map[string]any)
	p.events = append(p.events, Event{Topic: topic, Key: key, Body: body})
	return nil
}

func (p *RecordingPublisher) Close() error { return nil }

func (p *RecordingPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

// Types lists the "type" field of every recorded event in order.
func (p *RecordingPublisher) Types() []string {
	var out []string
	for _, e := range p.Events() {
		t, _ := e.Body["type"].(string)
		out = append(out, t)
	}
	return out
}
