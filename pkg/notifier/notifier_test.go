package notifier

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"pastehub/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHub struct {
	mu     sync.Mutex
	events []string
	data   []interface{}
}

func (f *fakeHub) Broadcast(event string, data interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	f.data = append(f.data, data)
}

func (f *fakeHub) snapshot() ([]string, []interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...), append([]interface{}(nil), f.data...)
}

type fakeConsumer struct {
	mu       sync.Mutex
	failures int
	attaches int
	handler  func([]byte) error
}

func (f *fakeConsumer) Consume(queue string, handler func([]byte) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attaches++
	if f.failures > 0 {
		f.failures--
		return errors.New("not connected")
	}
	f.handler = handler
	return nil
}

func (f *fakeConsumer) attachCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attaches
}

func TestStartRetriesUntilAttached(t *testing.T) {
	broker := &fakeConsumer{failures: 2}
	n := New(broker, &fakeHub{})
	n.retryDelay = time.Millisecond
	defer n.Stop()

	n.Start()

	require.Eventually(t, func() bool {
		return broker.attachCount() == 3
	}, time.Second, time.Millisecond)
}

func TestHandleMessageBroadcastsViewUpdate(t *testing.T) {
	h := &fakeHub{}
	n := New(&fakeConsumer{}, h)

	viewed := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	body, err := json.Marshal(models.ViewMessage{
		TextID:    42,
		ViewerIP:  "10.0.0.1",
		Timestamp: viewed,
	})
	require.NoError(t, err)

	require.NoError(t, n.handleMessage(body))

	events, data := h.snapshot()
	require.Equal(t, []string{"text-view-update"}, events)
	assert.Equal(t, TextViewUpdate{
		TextID:    "42",
		Timestamp: "2025-06-01T12:30:00Z",
	}, data[0])
}

func TestHandleMessageRejectsMalformedPayload(t *testing.T) {
	h := &fakeHub{}
	n := New(&fakeConsumer{}, h)

	require.Error(t, n.handleMessage([]byte("{not json")))

	events, _ := h.snapshot()
	assert.Empty(t, events)
}

func TestBroadcastEdit(t *testing.T) {
	h := &fakeHub{}
	n := New(&fakeConsumer{}, h)

	title := "revised"
	n.BroadcastEdit(9, models.UpdateFields{Title: &title, ShareableID: "abc"})

	events, data := h.snapshot()
	require.Equal(t, []string{"text-updated"}, events)

	got := data[0].(TextUpdated)
	assert.Equal(t, "9", got.TextID)
	assert.Equal(t, "abc", got.UpdatedText.ShareableID)
	require.NotNil(t, got.UpdatedText.Title)
	assert.Equal(t, "revised", *got.UpdatedText.Title)
}

func TestStopHaltsRetryLoop(t *testing.T) {
	broker := &fakeConsumer{failures: 1 << 30}
	n := New(broker, &fakeHub{})
	n.retryDelay = time.Millisecond

	n.Start()
	require.Eventually(t, func() bool {
		return broker.attachCount() >= 1
	}, time.Second, time.Millisecond)

	n.Stop()
	time.Sleep(10 * time.Millisecond)
	after := broker.attachCount()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, after, broker.attachCount())

	// Idempotent.
	n.Stop()
}
