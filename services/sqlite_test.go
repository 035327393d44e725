package services

import (
	"context"
	"testing"
	"time"

	"document-tracker-api/catalog"
	"document-tracker-api/models"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	// One connection keeps the in-memory database alive and shared.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.TrackedDocument{},
		&models.RouteLog{},
		&models.Remark{},
		&models.RoutingSequence{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// stepClock advances one minute on every call so timestamps are strictly ordered.
type stepClock struct {
	current time.Time
}

func newStepClock() *stepClock {
	return &stepClock{current: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.current = c.current.Add(time.Minute)
	return c.current
}

var testCatalog = catalog.MustNew(
	[]catalog.DocumentType{
		{Name: "Letters", ShortCode: "LTR"},
		{Name: "Disbursement Voucher", ShortCode: "DV"},
	},
	[]catalog.Status{
		{Name: "Open", Color: "blue"},
		{Name: "Approved", Color: "green"},
	},
	[]catalog.Location{
		{Name: "Records Section", Department: "Administration"},
		{Name: "Office X", Department: "Administration"},
		{Name: "Office Y", Department: "Mayor's Office"},
		{Name: "Budget Office", Department: "Finance"},
		{Name: "HR Office", Department: "HR"},
		{Name: "Engineering Office", Department: "Engineering"},
	},
)

type recordedNotification struct {
	documentID string
	location   string
	actor      Actor
}

type fakeNotifier struct {
	calls []recordedNotification
}

func (f *fakeNotifier) DocumentRouted(_ context.Context, doc models.TrackedDocument, actor Actor) error {
	f.calls = append(f.calls, recordedNotification{documentID: doc.ID, location: doc.Location, actor: actor})
	return nil
}

type fakeScopeCache struct {
	entries       map[string][]string
	generation    int64
	invalidations int
}

func newFakeScopeCache() *fakeScopeCache {
	return &fakeScopeCache{entries: make(map[string][]string)}
}

func (f *fakeScopeCache) Get(_ context.Context, department string) ([]string, int64, bool) {
	ids, ok := f.entries[department]
	return ids, f.generation, ok
}

func (f *fakeScopeCache) Set(_ context.Context, department string, generation int64, ids []string) {
	if generation != f.generation {
		return
	}
	f.entries[department] = ids
}

func (f *fakeScopeCache) Invalidate(context.Context) {
	f.invalidations++
	f.generation++
	f.entries = make(map[string][]string)
}

type trackerFixture struct {
	db       *gorm.DB
	tracker  *TrackerService
	remarks  *RemarkService
	notifier *fakeNotifier
	cache    *fakeScopeCache
	clock    *stepClock
}

func newTrackerFixture(t *testing.T) *trackerFixture {
	t.Helper()
	db := newTestDB(t)
	clock := newStepClock()
	notifier := &fakeNotifier{}
	cache := newFakeScopeCache()

	tracker := NewTrackerService(db,
		WithCatalog(testCatalog),
		WithNotifier(notifier),
		WithScopeCache(cache),
		WithLogger(zap.NewNop()),
		WithClock(clock.Now),
	)
	tracker.spawn = func(f func()) { f() }

	remarks := NewRemarkService(db)
	remarks.now = clock.Now
	remarks.logger = zap.NewNop()

	return &trackerFixture{db: db, tracker: tracker, remarks: remarks, notifier: notifier, cache: cache, clock: clock}
}

var (
	clerk   = Actor{UserID: 1, Name: "Clerk One", Department: "Administration"}
	hrClerk = Actor{UserID: 2, Name: "HR Clerk", Department: "HR"}
)

func strPtr(s string) *string {
	return &s
}

func letterInput() DocumentInput {
	return DocumentInput{
		Type:         "Letters",
		Status:       "Open",
		Location:     "Office X",
		Requester:    "Juan Dela Cruz",
		Agency:       "DILG",
		Amount:       strPtr("100"),
		Particulars:  "Request for assistance",
		DateReceived: "2026-03-01",
	}
}

func (f *trackerFixture) create(t *testing.T, actor Actor, input DocumentInput) *models.TrackedDocument {
	t.Helper()
	result, err := f.tracker.Create(context.Background(), actor, input)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	return result.Document
}

func (f *trackerFixture) routeLogs(t *testing.T, id string) []models.RouteLog {
	t.Helper()
	entries, err := f.tracker.RouteLogs(context.Background(), id)
	if err != nil {
		t.Fatalf("RouteLogs returned error: %v", err)
	}
	return entries
}
