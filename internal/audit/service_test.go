package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

type stubTimelineRepo struct {
	rows       []Entry
	lastLimit  int
	lastOffset int
}

func (s *stubTimelineRepo) TimelineWindow(ctx context.Context, filters TimelineFilters, limit, offset int) ([]Entry, error) {
	s.lastLimit = limit
	s.lastOffset = offset
	if limit < len(s.rows) {
		return s.rows[:limit], nil
	}
	return s.rows, nil
}

func mockEntry(at string) Entry {
	ts, _ := time.Parse(time.RFC3339, at)
	return Entry{
		ID:          uuid.New(),
		ActorID:     1,
		Action:      "period.close",
		Kind:        "financial_period",
		ResourceID:  "2026-07",
		BeforeState: "open",
		AfterState:  "closed",
		At:          ts,
	}
}

func TestTimelinePaging(t *testing.T) {
	repo := &stubTimelineRepo{rows: []Entry{
		mockEntry("2026-08-10T10:00:00Z"),
		mockEntry("2026-08-09T09:00:00Z"),
		mockEntry("2026-08-08T08:00:00Z"),
	}}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), TimelineFilters{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Rows))
	}
	if !result.Paging.HasNext || result.Paging.NextPage != 2 {
		t.Fatalf("expected hasNext with next page 2, got %+v", result.Paging)
	}
	if repo.lastLimit != 3 {
		t.Fatalf("expected limit 3, got %d", repo.lastLimit)
	}
	if repo.lastOffset != 0 {
		t.Fatalf("expected offset 0, got %d", repo.lastOffset)
	}
}

func TestTimelineClampsPageSize(t *testing.T) {
	repo := &stubTimelineRepo{}
	svc := NewService(repo)

	if _, err := svc.Timeline(context.Background(), TimelineFilters{PageSize: 500}); err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if repo.lastLimit != 51 {
		t.Fatalf("expected clamped limit 51, got %d", repo.lastLimit)
	}

	if _, err := svc.Timeline(context.Background(), TimelineFilters{Page: -3}); err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if repo.lastOffset != 0 {
		t.Fatalf("negative page must clamp to first window, got offset %d", repo.lastOffset)
	}
}

func TestTimelineSecondPageOffset(t *testing.T) {
	repo := &stubTimelineRepo{rows: []Entry{mockEntry("2026-08-08T08:00:00Z")}}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), TimelineFilters{Page: 2, PageSize: 10})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if repo.lastOffset != 10 {
		t.Fatalf("expected offset 10, got %d", repo.lastOffset)
	}
	if result.Paging.PrevPage != 1 || result.Paging.HasNext {
		t.Fatalf("unexpected paging: %+v", result.Paging)
	}
}

func TestEntryValidate(t *testing.T) {
	valid := Entry{ActorID: 1, Action: "period.close", Kind: "financial_period", ResourceID: "2026-07"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid entry rejected: %v", err)
	}
	cases := []Entry{
		{Action: "a", Kind: "k", ResourceID: "r"},
		{ActorID: 1, Kind: "k", ResourceID: "r"},
		{ActorID: 1, Action: "a", ResourceID: "r"},
		{ActorID: 1, Action: "a", Kind: "k"},
	}
	for i, entry := range cases {
		if err := entry.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}
