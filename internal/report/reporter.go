package report

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"db-retain/internal/schema"
)

var (
	// ErrNothingToReport means no table was processed; the sink was not called.
	ErrNothingToReport = errors.New("nothing to report")
	// ErrAlreadyFlushed means the run's records were already handed to a sink.
	ErrAlreadyFlushed = errors.New("report already flushed")
)

// Sink persists the ordered outcome records of one run.
type Sink interface {
	Name() string
	Write(ctx context.Context, records []schema.OutcomeRecord) error
}

// SinkError is a failed report write. Table processing has already completed.
type SinkError struct {
	Sink    string
	Records int
	Cause   error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("sink error [sink=%s, records=%d]: %v", e.Sink, e.Records, e.Cause)
}

func (e *SinkError) Unwrap() error {
	return e.Cause
}

type entry struct {
	index  int
	record schema.OutcomeRecord
}

// Reporter accumulates one OutcomeRecord per table. It is safe for concurrent
// use; Records always comes back in table-discovery order.
type Reporter struct {
	mu      sync.Mutex
	entries []entry
	next    int
	flushed bool
}

func NewReporter() *Reporter {
	return &Reporter{}
}

// Record appends rec after every record seen so far.
func (r *Reporter) Record(rec schema.OutcomeRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry{index: r.next, record: rec})
	r.next++
}

// RecordAt appends rec at the table's discovery position. Used when tables
// complete out of order.
func (r *Reporter) RecordAt(index int, rec schema.OutcomeRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry{index: index, record: rec})
	if index >= r.next {
		r.next = index + 1
	}
}

func (r *Reporter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Records returns a copy of the records in discovery order.
func (r *Reporter) Records() []schema.OutcomeRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedLocked()
}

func (r *Reporter) sortedLocked() []schema.OutcomeRecord {
	sorted := slices.Clone(r.entries)
	slices.SortStableFunc(sorted, func(a, b entry) int { return cmp.Compare(a.index, b.index) })

	out := make([]schema.OutcomeRecord, len(sorted))
	for i, e := range sorted {
		out[i] = e.record
	}
	return out
}

// Flush hands every record to sink exactly once. With no records it returns
// ErrNothingToReport without calling sink. A sink failure is a *SinkError and
// leaves the reporter flushable again.
func (r *Reporter) Flush(ctx context.Context, sink Sink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.flushed {
		return ErrAlreadyFlushed
	}
	if len(r.entries) == 0 {
		return ErrNothingToReport
	}

	records := r.sortedLocked()
	if err := sink.Write(ctx, records); err != nil {
		return &SinkError{Sink: sink.Name(), Records: len(records), Cause: err}
	}
	r.flushed = true
	return nil
}
