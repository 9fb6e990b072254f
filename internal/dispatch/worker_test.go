package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// flakyTransport fails publishes to a chosen set of channels and accepts
// the rest.
type flakyTransport struct {
	failing map[string]bool
	calls   []publishCall
}

func (f *flakyTransport) Publish(_ context.Context, channel string, data []byte) error {
	f.calls = append(f.calls, publishCall{Channel: channel, Data: data})
	if f.failing[channel] {
		return errRedisDown
	}
	return nil
}

var errRedisDown = errors.New("connection refused")

type parkCall struct {
	job *Job
	at  float64
}

type fakeParker struct {
	calls []parkCall
	err   error
}

func (f *fakeParker) Park(_ context.Context, job *Job, at float64) error {
	f.calls = append(f.calls, parkCall{job: job, at: at})
	return f.err
}

func retryJob(channels ...string) *Job {
	frame, _ := json.Marshal(map[string]string{"event": "message:sent"})
	return &Job{
		ID:         "01TESTULID",
		Event:      "message:sent",
		Channels:   channels,
		Frame:      frame,
		EnqueuedAt: time.Now(),
	}
}

func newTestWorker(tr *flakyTransport, p *fakeParker) *Worker {
	return &Worker{
		retries:     p,
		transport:   tr,
		logger:      zap.NewNop(),
		MaxAttempts: 5,
	}
}

func TestWorker_ProcessAllChannelsSucceed(t *testing.T) {
	tr := &flakyTransport{}
	p := &fakeParker{}
	w := newTestWorker(tr, p)

	w.process(context.Background(), retryJob("guest.42", "cast.7"))

	assert.Len(t, tr.calls, 2)
	assert.Empty(t, p.calls, "nothing should be parked on success")
}

func TestWorker_ProcessReparksOnlyFailedChannels(t *testing.T) {
	tr := &flakyTransport{failing: map[string]bool{"cast.7": true}}
	p := &fakeParker{}
	w := newTestWorker(tr, p)

	job := retryJob("guest.42", "cast.7", "chat.10")
	before := time.Now()
	w.process(context.Background(), job)

	// Every channel still gets its attempt before the job is parked.
	require.Len(t, tr.calls, 3)
	require.Len(t, p.calls, 1)

	parked := p.calls[0].job
	assert.Equal(t, []string{"cast.7"}, parked.Channels)
	assert.Equal(t, 1, parked.Attempts)

	// Backoff is 1<<attempts seconds, so the retry lands in the future.
	assert.GreaterOrEqual(t, p.calls[0].at, float64(before.Add(time.Second).Unix()))
}

func TestWorker_ProcessBackoffGrowsWithAttempts(t *testing.T) {
	tr := &flakyTransport{failing: map[string]bool{"guest.42": true}}
	p := &fakeParker{}
	w := newTestWorker(tr, p)

	job := retryJob("guest.42")
	job.Attempts = 2
	before := time.Now()
	w.process(context.Background(), job)

	require.Len(t, p.calls, 1)
	assert.Equal(t, 3, p.calls[0].job.Attempts)
	assert.GreaterOrEqual(t, p.calls[0].at, float64(before.Add(7*time.Second).Unix()))
}

func TestWorker_ProcessDropsJobAtMaxAttempts(t *testing.T) {
	tr := &flakyTransport{failing: map[string]bool{"guest.42": true}}
	p := &fakeParker{}
	w := newTestWorker(tr, p)

	job := retryJob("guest.42")
	job.Attempts = 4
	w.process(context.Background(), job)

	assert.Empty(t, p.calls, "a job at max attempts is dropped, not parked")
}
