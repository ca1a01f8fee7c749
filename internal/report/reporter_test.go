package report_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"db-retain/internal/report"
	"db-retain/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	calls   int
	records []schema.OutcomeRecord
	err     error
}

func (s *captureSink) Name() string { return "capture" }

func (s *captureSink) Write(ctx context.Context, records []schema.OutcomeRecord) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.records = records
	return nil
}

func rec(name string, action schema.ActionKind) schema.OutcomeRecord {
	return schema.OutcomeRecord{Table: schema.TableRef{Schema: "dbo", Name: name}, Action: action}
}

func TestReporter_RecordKeepsOrder(t *testing.T) {
	r := report.NewReporter()
	r.Record(rec("a", schema.ActionSkipped))
	r.Record(rec("b", schema.ActionFullDiscard))

	got := r.Records()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Table.Name)
	assert.Equal(t, "b", got[1].Table.Name)
}

func TestReporter_RecordAtRestoresDiscoveryOrder(t *testing.T) {
	r := report.NewReporter()
	r.RecordAt(2, rec("c", schema.ActionFailed))
	r.RecordAt(0, rec("a", schema.ActionSkipped))
	r.RecordAt(1, rec("b", schema.ActionFilteredDelete))

	var names []string
	for _, rr := range r.Records() {
		names = append(names, rr.Table.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestReporter_ConcurrentAppends(t *testing.T) {
	r := report.NewReporter()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.RecordAt(i, schema.OutcomeRecord{Table: schema.TableRef{Name: string(rune('a' + i%26))}})
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 100, r.Len())
}

func TestReporter_FlushEmpty(t *testing.T) {
	r := report.NewReporter()
	sink := &captureSink{}

	err := r.Flush(context.Background(), sink)
	assert.ErrorIs(t, err, report.ErrNothingToReport)
	assert.Zero(t, sink.calls, "sink must not be called without records")
}

func TestReporter_FlushOnce(t *testing.T) {
	r := report.NewReporter()
	r.Record(rec("orders", schema.ActionFilteredDelete))
	sink := &captureSink{}

	require.NoError(t, r.Flush(context.Background(), sink))
	assert.Len(t, sink.records, 1)

	err := r.Flush(context.Background(), sink)
	assert.ErrorIs(t, err, report.ErrAlreadyFlushed)
	assert.Equal(t, 1, sink.calls)
}

func TestReporter_FlushSinkError(t *testing.T) {
	r := report.NewReporter()
	r.Record(rec("orders", schema.ActionFilteredDelete))
	r.Record(rec("logs", schema.ActionFullDiscard))

	cause := errors.New("disk full")
	err := r.Flush(context.Background(), &captureSink{err: cause})

	var sinkErr *report.SinkError
	require.True(t, errors.As(err, &sinkErr))
	assert.Equal(t, "capture", sinkErr.Sink)
	assert.Equal(t, 2, sinkErr.Records)
	assert.ErrorIs(t, err, cause)

	// the records are still there for another sink
	retry := &captureSink{}
	require.NoError(t, r.Flush(context.Background(), retry))
	assert.Len(t, retry.records, 2)
}
