// Package pager slices large command output into bounded chat-sized pages
// and tracks per-owner "continue" state.
package pager

import (
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Page is one bounded chunk of a paginated text together with its position
// in the buffer it came from.
type Page struct {
	Text    string
	Index   int
	Total   int
	HasMore bool
}

type buffer struct {
	pages     []string
	current   int
	createdAt time.Time
}

// Service stores one pagination buffer per owner. A buffer is advanced
// monotonically and deleted once the last page has been handed out.
type Service struct {
	maxChars int
	maxLines int
	logger   *slog.Logger

	mu      sync.Mutex
	buffers map[string]*buffer
	now     func() time.Time
}

func New(maxChars, maxLines int, logger *slog.Logger) *Service {
	if maxChars < 1 {
		maxChars = 3096
	}
	if maxLines < 1 {
		maxLines = 500
	}
	return &Service{
		maxChars: maxChars,
		maxLines: maxLines,
		logger:   logger,
		buffers:  make(map[string]*buffer),
		now:      time.Now,
	}
}

// Paginate splits text into pages and stores the buffer for ownerID,
// replacing any buffer the owner already had.
func (s *Service) Paginate(ownerID, text string) {
	pages := splitPages(text, s.maxChars, s.maxLines)
	s.logger.Debug("buffer stored", "owner", ownerID, "pages", len(pages), "chars", len(text))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffers[ownerID] = &buffer{pages: pages, current: 1, createdAt: s.now()}
}

// Advance returns the owner's next page and reports whether a buffer was
// present. The second return value is false when the owner has no buffer
// or it was already exhausted; callers show a neutral "no more data" then.
func (s *Service) Advance(ownerID string) (Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf, ok := s.buffers[ownerID]
	if !ok {
		return Page{}, false
	}

	page := Page{
		Text:  buf.pages[buf.current-1],
		Index: buf.current,
		Total: len(buf.pages),
	}
	buf.current++
	if buf.current > len(buf.pages) {
		delete(s.buffers, ownerID)
	} else {
		page.HasMore = true
	}
	return page, true
}

// Drop discards the owner's buffer, if any.
func (s *Service) Drop(ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buffers, ownerID)
}

// Sweep evicts buffers older than maxAge and returns how many were removed.
// A swept buffer behaves exactly like an exhausted one afterwards.
func (s *Service) Sweep(maxAge time.Duration) int {
	cutoff := s.now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for owner, buf := range s.buffers {
		if buf.createdAt.Before(cutoff) {
			delete(s.buffers, owner)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Debug("stale buffers swept", "removed", removed)
	}
	return removed
}

// splitPages packs lines greedily into pages of at most maxChars characters
// (counting one separator per line) and maxLines lines. A single line longer
// than maxChars is first hard-split into maxChars-sized fragments. Empty
// input yields a single empty page.
func splitPages(text string, maxChars, maxLines int) []string {
	raw := strings.Split(text, "\n")

	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		for len(line) > maxChars {
			lines = append(lines, line[:maxChars])
			line = line[maxChars:]
		}
		lines = append(lines, line)
	}

	pages := []string{}
	var page strings.Builder
	pageChars := 0
	pageLines := 0
	for _, line := range lines {
		if pageLines > 0 && (pageChars+len(line)+1 >= maxChars || pageLines+1 >= maxLines) {
			pages = append(pages, page.String())
			page.Reset()
			pageChars = 0
			pageLines = 0
		}
		if pageLines > 0 {
			page.WriteString("\n")
		}
		page.WriteString(line)
		pageChars += len(line) + 1
		pageLines++
	}
	pages = append(pages, page.String())
	return pages
}
