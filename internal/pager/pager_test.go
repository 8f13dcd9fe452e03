package pager

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestService(maxChars, maxLines int) *Service {
	return New(maxChars, maxLines, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func drain(t *testing.T, s *Service, owner string) []string {
	t.Helper()
	var pages []string
	for {
		page, ok := s.Advance(owner)
		if !ok {
			t.Fatalf("buffer vanished before exhaustion")
		}
		pages = append(pages, page.Text)
		if page.Index != len(pages) {
			t.Fatalf("expected page index %d, got %d", len(pages), page.Index)
		}
		if !page.HasMore {
			return pages
		}
	}
}

func TestPaginateRoundTrip(t *testing.T) {
	s := newTestService(40, 5)
	var lines []string
	for i := 0; i < 37; i++ {
		lines = append(lines, fmt.Sprintf("line %02d", i))
	}
	text := strings.Join(lines, "\n")

	s.Paginate("user", text)
	pages := drain(t, s, "user")

	if len(pages) < 2 {
		t.Fatalf("expected multiple pages, got %d", len(pages))
	}
	if got := strings.Join(pages, "\n"); got != text {
		t.Fatalf("round trip mismatch:\nwant %q\ngot  %q", text, got)
	}
	if _, ok := s.Advance("user"); ok {
		t.Fatalf("expected no data after exhaustion")
	}
}

func TestPaginateRespectsLimits(t *testing.T) {
	s := newTestService(30, 4)
	s.Paginate("user", strings.Repeat("abcdefghi\n", 20))

	for _, page := range drain(t, s, "user") {
		if len(page) >= 30 {
			t.Fatalf("page exceeds char limit: %d chars", len(page))
		}
		if n := strings.Count(page, "\n") + 1; n > 4 {
			t.Fatalf("page exceeds line limit: %d lines", n)
		}
	}
}

func TestPaginateSplitsOverlongLine(t *testing.T) {
	s := newTestService(10, 50)
	s.Paginate("user", strings.Repeat("x", 25))

	pages := drain(t, s, "user")
	joined := strings.ReplaceAll(strings.Join(pages, "\n"), "\n", "")
	if joined != strings.Repeat("x", 25) {
		t.Fatalf("overlong line content lost: %q", joined)
	}
	for _, page := range pages {
		for _, fragment := range strings.Split(page, "\n") {
			if len(fragment) > 10 {
				t.Fatalf("fragment exceeds limit: %q", fragment)
			}
		}
	}
}

func TestPaginateEmptyInput(t *testing.T) {
	s := newTestService(100, 10)
	s.Paginate("user", "")

	page, ok := s.Advance("user")
	if !ok {
		t.Fatalf("expected a single empty page")
	}
	if page.Text != "" || page.Total != 1 || page.HasMore {
		t.Fatalf("unexpected page: %+v", page)
	}
	if _, ok := s.Advance("user"); ok {
		t.Fatalf("expected buffer deleted after last page")
	}
}

func TestAdvanceWithoutBuffer(t *testing.T) {
	s := newTestService(100, 10)
	if _, ok := s.Advance("nobody"); ok {
		t.Fatalf("expected no data for unknown owner")
	}
}

func TestDrop(t *testing.T) {
	s := newTestService(100, 10)
	s.Paginate("user", "one\ntwo")
	s.Drop("user")
	if _, ok := s.Advance("user"); ok {
		t.Fatalf("expected no data after drop")
	}
}

func TestSweep(t *testing.T) {
	s := newTestService(100, 10)
	current := time.Now()
	s.now = func() time.Time { return current }

	s.Paginate("old", "stale")
	current = current.Add(time.Hour)
	s.Paginate("fresh", "recent")

	if removed := s.Sweep(30 * time.Minute); removed != 1 {
		t.Fatalf("expected 1 swept buffer, got %d", removed)
	}
	if _, ok := s.Advance("old"); ok {
		t.Fatalf("expected swept buffer to report no data")
	}
	if _, ok := s.Advance("fresh"); !ok {
		t.Fatalf("expected fresh buffer to survive sweep")
	}
}
