package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"deadline_notifier/internal/domain/mail"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMessage() *mail.Message {
	return &mail.Message{
		From:     "noreply@x.com",
		To:       []string{"a@x.com"},
		Subject:  "report",
		BodyText: "body",
	}
}

// newTestDispatcher returns a dispatcher with no pacing and recorded instead
// of real backoff sleeps.
func newTestDispatcher(t *testing.T, transport mail.Transport, maxRetries int) (*Dispatcher, *[]time.Duration) {
	t.Helper()
	d := NewDispatcher(transport, DispatchConfig{MaxRetries: maxRetries}, testLogger())
	slept := &[]time.Duration{}
	d.sleep = func(dur time.Duration) { *slept = append(*slept, dur) }
	require.NoError(t, d.Open())
	return d, slept
}

func TestSendSucceedsFirstAttempt(t *testing.T) {
	transport := &fakeTransport{sender: &fakeSender{}}
	d, slept := newTestDispatcher(t, transport, 3)

	result, err := d.Send(context.Background(), testMessage())

	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, 1, result.Attempts)
	assert.Empty(t, *slept)

	sent, failed, retries := d.Stats()
	assert.Equal(t, 1, sent)
	assert.Equal(t, 0, failed)
	assert.Equal(t, 0, retries)
}

func TestSendRetriesTransientError(t *testing.T) {
	transport := &fakeTransport{sender: &fakeSender{errs: []error{
		fmt.Errorf("dial tcp: connection refused"),
	}}}
	d, slept := newTestDispatcher(t, transport, 3)

	result, err := d.Send(context.Background(), testMessage())

	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, []time.Duration{2 * time.Second}, *slept)

	_, _, retries := d.Stats()
	assert.Equal(t, 1, retries)
}

func TestSendPermanentErrorFailsImmediately(t *testing.T) {
	transport := &fakeTransport{sender: &fakeSender{errs: []error{
		fmt.Errorf("535 authentication failed"),
	}}}
	d, slept := newTestDispatcher(t, transport, 3)

	result, err := d.Send(context.Background(), testMessage())

	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Equal(t, 1, result.Attempts)
	assert.Contains(t, result.ErrorMessage, "authentication failed")
	assert.Empty(t, *slept)

	_, failed, _ := d.Stats()
	assert.Equal(t, 1, failed)
}

func TestSendExhaustsRetries(t *testing.T) {
	transport := &fakeTransport{sender: &fakeSender{errs: []error{
		fmt.Errorf("timeout"),
		fmt.Errorf("timeout"),
		fmt.Errorf("timeout"),
	}}}
	d, slept := newTestDispatcher(t, transport, 2)

	result, err := d.Send(context.Background(), testMessage())

	require.NoError(t, err)
	assert.False(t, result.OK)
	// maxRetries of 2 means 3 total attempts, with doubling backoff between.
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *slept)
}

func TestSendTreatsUnmatchedErrorAsRetryable(t *testing.T) {
	transport := &fakeTransport{sender: &fakeSender{errs: []error{
		fmt.Errorf("some unclassified smtp failure"),
	}}}
	d, _ := newTestDispatcher(t, transport, 3)

	result, err := d.Send(context.Background(), testMessage())

	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, 2, result.Attempts)
}

func TestSendReconnectsOnClosedConnection(t *testing.T) {
	transport := &fakeTransport{sender: &fakeSender{errs: []error{
		fmt.Errorf("write: broken pipe"),
	}}}
	d, _ := newTestDispatcher(t, transport, 3)
	require.Equal(t, 1, transport.connects)

	result, err := d.Send(context.Background(), testMessage())

	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, 2, transport.connects)
}

func TestSendWithoutOpenConnection(t *testing.T) {
	d := NewDispatcher(&fakeTransport{sender: &fakeSender{}}, DispatchConfig{}, testLogger())

	_, err := d.Send(context.Background(), testMessage())

	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestSendPacesConsecutiveSends(t *testing.T) {
	transport := &fakeTransport{sender: &fakeSender{}}
	d := NewDispatcher(transport, DispatchConfig{DelaySeconds: 0.05}, testLogger())
	require.NoError(t, d.Open())

	start := time.Now()
	_, err := d.Send(context.Background(), testMessage())
	require.NoError(t, err)
	_, err = d.Send(context.Background(), testMessage())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestCloseIsSafeWithoutOpen(t *testing.T) {
	d := NewDispatcher(&fakeTransport{sender: &fakeSender{}}, DispatchConfig{}, testLogger())
	d.Close() // no connection, must not panic
}

func TestCloseReleasesConnection(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(&fakeTransport{sender: sender}, DispatchConfig{}, testLogger())
	require.NoError(t, d.Open())

	d.Close()

	assert.True(t, sender.closed)
}
