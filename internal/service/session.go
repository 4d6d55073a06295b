package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/msomdec/study-zen/internal/domain"
)

// SessionService records completed focus sessions and streams each user's
// session list to live listeners.
type SessionService struct {
	records domain.SessionRepository

	mu     sync.Mutex
	subs   map[int64]map[int]chan []domain.SessionRecord
	nextID int
}

// NewSessionService creates a new SessionService.
func NewSessionService(records domain.SessionRepository) *SessionService {
	return &SessionService{
		records: records,
		subs:    make(map[int64]map[int]chan []domain.SessionRecord),
	}
}

// Create validates and stores a session record, then notifies listeners.
func (s *SessionService) Create(ctx context.Context, record *domain.SessionRecord) error {
	record.Type = strings.TrimSpace(record.Type)
	if record.UserID == 0 || record.Type == "" {
		return fmt.Errorf("%w: user and session type are required", domain.ErrInvalidInput)
	}
	if record.DurationMinutes < 1 || record.DurationMinutes > 90 {
		return fmt.Errorf("%w: duration must be between 1 and 90 minutes", domain.ErrInvalidInput)
	}
	if _, err := time.Parse(domain.DateKeyLayout, record.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrInvalidInput)
	}

	if err := s.records.Create(ctx, record); err != nil {
		return fmt.Errorf("create session record: %w", err)
	}

	s.publish(ctx, record.UserID)
	return nil
}

// ListByUser returns the user's session records, newest first.
func (s *SessionService) ListByUser(ctx context.Context, userID int64) ([]domain.SessionRecord, error) {
	return s.records.ListByUser(ctx, userID)
}

// ListForDay returns the user's records for one calendar day.
func (s *SessionService) ListForDay(ctx context.Context, userID int64, day string) ([]domain.SessionRecord, error) {
	return s.records.ListByUserAndDate(ctx, userID, day)
}

// Subscribe streams the user's session list: the current list first, then a
// fresh list after every new record, until ctx is done. A slow reader only
// ever sees the latest list.
func (s *SessionService) Subscribe(ctx context.Context, userID int64) (<-chan []domain.SessionRecord, error) {
	ch := make(chan []domain.SessionRecord, 1)

	// Register before listing so a record saved in between is still published.
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	if s.subs[userID] == nil {
		s.subs[userID] = make(map[int]chan []domain.SessionRecord)
	}
	s.subs[userID][id] = ch
	s.mu.Unlock()

	current, err := s.records.ListByUser(ctx, userID)
	if err != nil {
		s.unsubscribe(userID, id)
		return nil, fmt.Errorf("list session records: %w", err)
	}

	s.mu.Lock()
	select {
	case ch <- current:
	default:
		// publish already delivered a list at least as new.
	}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.unsubscribe(userID, id)
		close(ch)
	}()

	return ch, nil
}

func (s *SessionService) unsubscribe(userID int64, id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs[userID], id)
	if len(s.subs[userID]) == 0 {
		delete(s.subs, userID)
	}
}

func (s *SessionService) publish(ctx context.Context, userID int64) {
	s.mu.Lock()
	listening := len(s.subs[userID]) > 0
	s.mu.Unlock()
	if !listening {
		return
	}

	list, err := s.records.ListByUser(ctx, userID)
	if err != nil {
		slog.Error("refresh session listeners", "user_id", userID, "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs[userID] {
		// Replace any unread list with the newer one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- list:
		default:
		}
	}
}

// CountForDay returns how many records fall on the given day key.
func CountForDay(records []domain.SessionRecord, day string) int {
	n := 0
	for _, r := range records {
		if r.Date == day {
			n++
		}
	}
	return n
}

// Stats summarises the user's sessions relative to now; now's location
// decides which day is today.
func (s *SessionService) Stats(ctx context.Context, userID int64, now time.Time) (domain.SessionStats, error) {
	records, err := s.records.ListByUser(ctx, userID)
	if err != nil {
		return domain.SessionStats{}, fmt.Errorf("list session records: %w", err)
	}
	return ComputeStats(records, now), nil
}

// ComputeStats derives totals and the current day streak from records.
func ComputeStats(records []domain.SessionRecord, now time.Time) domain.SessionStats {
	today := domain.DateKey(now)
	stats := domain.SessionStats{TotalSessions: len(records)}

	days := make(map[string]bool, len(records))
	for _, r := range records {
		stats.TotalMinutes += r.DurationMinutes
		days[r.Date] = true
		if r.Date > stats.LastSessionDay {
			stats.LastSessionDay = r.Date
		}
	}
	stats.SessionsToday = CountForDay(records, today)

	// A streak survives until the end of the day after the last session.
	day := now
	if !days[today] {
		day = now.AddDate(0, 0, -1)
	}
	for days[domain.DateKey(day)] {
		stats.CurrentStreak++
		day = day.AddDate(0, 0, -1)
	}

	return stats
}
