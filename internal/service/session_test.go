package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/msomdec/study-zen/internal/domain"
	"github.com/msomdec/study-zen/internal/repository/sqlite"
	"github.com/msomdec/study-zen/internal/service"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, db *sqlite.DB, email string) *domain.User {
	t.Helper()
	user := &domain.User{Email: email, DisplayName: "Student", PasswordHash: "hash"}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestSessionService_Create_Validation(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewSessionService(db.Sessions())
	user := createUser(t, db, "validate@example.com")

	tests := []struct {
		name   string
		record domain.SessionRecord
	}{
		{"missing user", domain.SessionRecord{Date: "2026-03-14", Type: "Focus", DurationMinutes: 25}},
		{"missing type", domain.SessionRecord{UserID: user.ID, Date: "2026-03-14", DurationMinutes: 25}},
		{"zero duration", domain.SessionRecord{UserID: user.ID, Date: "2026-03-14", Type: "Focus"}},
		{"too long", domain.SessionRecord{UserID: user.ID, Date: "2026-03-14", Type: "Focus", DurationMinutes: 91}},
		{"bad date", domain.SessionRecord{UserID: user.ID, Date: "14/03/2026", Type: "Focus", DurationMinutes: 25}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			record := tc.record
			err := svc.Create(context.Background(), &record)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestSessionService_CreateAndListForDay(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewSessionService(db.Sessions())
	user := createUser(t, db, "list@example.com")
	ctx := context.Background()

	for _, day := range []string{"2026-03-13", "2026-03-14", "2026-03-14"} {
		record := &domain.SessionRecord{UserID: user.ID, Date: day, Type: "Focus", DurationMinutes: 25}
		if err := svc.Create(ctx, record); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	all, err := svc.ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}

	today, err := svc.ListForDay(ctx, user.ID, "2026-03-14")
	if err != nil {
		t.Fatalf("ListForDay: %v", err)
	}
	if len(today) != 2 {
		t.Fatalf("expected 2 records today, got %d", len(today))
	}
	if n := service.CountForDay(all, "2026-03-14"); n != 2 {
		t.Fatalf("expected CountForDay 2, got %d", n)
	}
}

func TestSessionService_Subscribe(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewSessionService(db.Sessions())
	user := createUser(t, db, "subscribe@example.com")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := svc.Subscribe(ctx, user.ID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	initial := <-updates
	if len(initial) != 0 {
		t.Fatalf("expected empty initial list, got %d", len(initial))
	}

	record := &domain.SessionRecord{UserID: user.ID, Date: "2026-03-14", Type: "Short", DurationMinutes: 5}
	if err := svc.Create(context.Background(), record); err != nil {
		t.Fatalf("Create: %v", err)
	}

	select {
	case list := <-updates:
		if len(list) != 1 || list[0].Type != "Short" {
			t.Fatalf("expected one Short record, got %+v", list)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session update")
	}

	cancel()
	select {
	case _, ok := <-updates:
		if ok {
			t.Fatal("expected channel to be closed after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

// listHookRepo runs afterList once, right after the first ListByUser returns.
type listHookRepo struct {
	domain.SessionRepository
	afterList func()
}

func (r *listHookRepo) ListByUser(ctx context.Context, userID int64) ([]domain.SessionRecord, error) {
	list, err := r.SessionRepository.ListByUser(ctx, userID)
	if hook := r.afterList; hook != nil {
		r.afterList = nil
		hook()
	}
	return list, err
}

func TestSessionService_Subscribe_RecordSavedWhileSubscribing(t *testing.T) {
	db := newTestDB(t)
	repo := &listHookRepo{SessionRepository: db.Sessions()}
	svc := service.NewSessionService(repo)
	user := createUser(t, db, "concurrent@example.com")

	repo.afterList = func() {
		record := &domain.SessionRecord{UserID: user.ID, Date: "2026-03-14", Type: "Focus", DurationMinutes: 25}
		if err := svc.Create(context.Background(), record); err != nil {
			t.Errorf("Create: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := svc.Subscribe(ctx, user.ID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	select {
	case list := <-updates:
		if len(list) != 1 || list[0].Type != "Focus" {
			t.Fatalf("expected the record saved during Subscribe, got %+v", list)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session list")
	}
}

func TestSessionService_Subscribe_OtherUserNotNotified(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewSessionService(db.Sessions())
	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := svc.Subscribe(ctx, alice.ID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	<-updates

	record := &domain.SessionRecord{UserID: bob.ID, Date: "2026-03-14", Type: "Focus", DurationMinutes: 25}
	if err := svc.Create(context.Background(), record); err != nil {
		t.Fatalf("Create: %v", err)
	}

	select {
	case list := <-updates:
		t.Fatalf("expected no update for alice, got %+v", list)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestComputeStats(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	records := []domain.SessionRecord{
		{Date: "2026-03-14", DurationMinutes: 25},
		{Date: "2026-03-14", DurationMinutes: 5},
		{Date: "2026-03-13", DurationMinutes: 25},
		{Date: "2026-03-12", DurationMinutes: 15},
		{Date: "2026-03-10", DurationMinutes: 25},
	}

	stats := service.ComputeStats(records, now)
	if stats.TotalSessions != 5 {
		t.Fatalf("expected 5 sessions, got %d", stats.TotalSessions)
	}
	if stats.SessionsToday != 2 {
		t.Fatalf("expected 2 today, got %d", stats.SessionsToday)
	}
	if stats.TotalMinutes != 95 {
		t.Fatalf("expected 95 minutes, got %d", stats.TotalMinutes)
	}
	if stats.CurrentStreak != 3 {
		t.Fatalf("expected streak 3, got %d", stats.CurrentStreak)
	}
	if stats.LastSessionDay != "2026-03-14" {
		t.Fatalf("expected last day 2026-03-14, got %s", stats.LastSessionDay)
	}
}

func TestComputeStats_StreakFromYesterday(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	records := []domain.SessionRecord{
		{Date: "2026-03-13", DurationMinutes: 25},
		{Date: "2026-03-12", DurationMinutes: 25},
	}

	stats := service.ComputeStats(records, now)
	if stats.SessionsToday != 0 {
		t.Fatalf("expected 0 today, got %d", stats.SessionsToday)
	}
	if stats.CurrentStreak != 2 {
		t.Fatalf("expected streak 2, got %d", stats.CurrentStreak)
	}
}

func TestComputeStats_BrokenStreak(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	records := []domain.SessionRecord{{Date: "2026-03-11", DurationMinutes: 25}}

	stats := service.ComputeStats(records, now)
	if stats.CurrentStreak != 0 {
		t.Fatalf("expected streak 0, got %d", stats.CurrentStreak)
	}
}

func TestSessionService_Stats(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewSessionService(db.Sessions())
	user := createUser(t, db, "stats@example.com")
	ctx := context.Background()

	record := &domain.SessionRecord{UserID: user.ID, Date: "2026-03-14", Type: "Long", DurationMinutes: 15}
	if err := svc.Create(ctx, record); err != nil {
		t.Fatalf("Create: %v", err)
	}

	stats, err := svc.Stats(ctx, user.ID, time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalMinutes != 15 || stats.CurrentStreak != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
