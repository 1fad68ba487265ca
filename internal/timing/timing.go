// Package timing keeps a bounded buffer of per-request network timings,
// fed by net/http/httptrace, and decomposes them into latency phases.
package timing

import (
	"strings"
	"sync"
	"time"

	"github.com/hamed0406/uptimeboard/internal/domain"
)

// DefaultBufferSize matches the usual resource-timing buffer of a browser.
const DefaultBufferSize = 250

type Breakdown = domain.Timing

// Entry is one recorded request. Zero marks mean the phase did not happen.
type Entry struct {
	Name               string
	StartTime          time.Time
	DNSStart           time.Time
	DNSEnd             time.Time
	ConnectStart       time.Time
	ConnectEnd         time.Time // includes the TLS handshake when there is one
	SecureConnectStart time.Time
	RequestStart       time.Time
	ResponseStart      time.Time
	ResponseEnd        time.Time
}

func (e Entry) Duration() time.Duration {
	if e.ResponseEnd.IsZero() || e.StartTime.IsZero() {
		return 0
	}
	return e.ResponseEnd.Sub(e.StartTime)
}

// Source is the runtime capability for looking up recorded timings.
type Source interface {
	Supported() bool
	// Lookup returns the most recent entry whose name starts with url
	// with any query string removed.
	Lookup(url string) (Entry, bool)
}

// Unsupported is the fallback when timing collection is disabled.
type Unsupported struct{}

func (Unsupported) Supported() bool              { return false }
func (Unsupported) Lookup(string) (Entry, bool) { return Entry{}, false }

type Buffer struct {
	mu      sync.Mutex
	limit   int
	entries []Entry
}

func NewBuffer(limit int) *Buffer {
	if limit <= 0 {
		limit = DefaultBufferSize
	}
	return &Buffer{limit: limit, entries: make([]Entry, 0, limit)}
}

func (b *Buffer) Supported() bool { return true }

// Add appends an entry, evicting the oldest once the buffer is full.
func (b *Buffer) Add(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.entries) >= b.limit {
		copy(b.entries, b.entries[1:])
		b.entries = b.entries[:len(b.entries)-1]
	}
	b.entries = append(b.entries, e)
}

func (b *Buffer) Lookup(url string) (Entry, bool) {
	base := BaseURL(url)
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.entries) - 1; i >= 0; i-- {
		if strings.HasPrefix(b.entries[i].Name, base) {
			return b.entries[i], true
		}
	}
	return Entry{}, false
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

func (b *Buffer) Clear() {
	b.mu.Lock()
	b.entries = b.entries[:0]
	b.mu.Unlock()
}

// BaseURL strips the query string and fragment.
func BaseURL(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		return url[:i]
	}
	return url
}

// Profile decomposes the latest matching entry into phases. It returns nil
// when the source is unsupported or holds no matching entry.
func Profile(src Source, url string) *Breakdown {
	if src == nil || !src.Supported() {
		return nil
	}
	e, ok := src.Lookup(url)
	if !ok {
		return nil
	}
	return Decompose(e)
}

func Decompose(e Entry) *Breakdown {
	bd := &Breakdown{
		DNS:      span(e.DNSStart, e.DNSEnd),
		TCP:      span(e.ConnectStart, e.ConnectEnd),
		TTFB:     span(e.RequestStart, e.ResponseStart),
		Download: span(e.ResponseStart, e.ResponseEnd),
		Total:    millis(e.Duration()),
	}
	if !e.SecureConnectStart.IsZero() {
		bd.TLS = span(e.SecureConnectStart, e.ConnectEnd)
	}
	return bd
}

func span(from, to time.Time) int64 {
	if from.IsZero() || to.IsZero() {
		return 0
	}
	return millis(to.Sub(from))
}

func millis(d time.Duration) int64 {
	ms := d.Round(time.Millisecond).Milliseconds()
	if ms < 0 {
		return 0
	}
	return ms
}
