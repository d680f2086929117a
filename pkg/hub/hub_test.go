package hub

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"pastehub/pkg/envelope"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	reads  chan struct{}
	closed bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{reads: make(chan struct{})}
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("connection closed")
	}
	f.frames = append(f.frames, data)
	return nil
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	<-f.reads
	return 0, nil, errors.New("connection closed")
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) frameCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func (f *fakeConn) lastFrame() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames[len(f.frames)-1]
}

func TestBroadcastReachesEverySubscriber(t *testing.T) {
	h := New()
	conns := []*fakeConn{newFakeConn(), newFakeConn(), newFakeConn()}
	for i, c := range conns {
		h.Register(c, i)
	}
	require.Equal(t, 3, h.ClientCount())

	h.Broadcast("text-view-update", map[string]string{"textId": "7"})

	for _, c := range conns {
		require.Equal(t, 1, c.frameCount())

		var env envelope.Envelope
		require.NoError(t, json.Unmarshal(c.lastFrame(), &env))
		assert.Equal(t, "text-view-update", env.Event)

		var payload map[string]string
		require.NoError(t, json.Unmarshal(env.Data, &payload))
		assert.Equal(t, "7", payload["textId"])
	}
}

func TestUnregisterStopsDelivery(t *testing.T) {
	h := New()
	stay := newFakeConn()
	leave := newFakeConn()
	h.Register(stay, 1)
	h.Register(leave, 2)

	h.Unregister(leave)
	assert.Equal(t, 1, h.ClientCount())
	assert.True(t, leave.closed)

	h.Broadcast("text-view-update", map[string]string{"textId": "7"})
	assert.Equal(t, 1, stay.frameCount())
	assert.Equal(t, 0, leave.frameCount())

	// Unknown connections are a no-op.
	h.Unregister(leave)
}

func TestHandleClientConnLifecycle(t *testing.T) {
	h := New()
	c := newFakeConn()

	done := make(chan struct{})
	go func() {
		h.HandleClientConn(c, 5)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return h.ClientCount() == 1
	}, time.Second, time.Millisecond)

	// Client goes away: read fails, connection is unregistered.
	close(c.reads)
	<-done
	assert.Equal(t, 0, h.ClientCount())
}

func TestBroadcastSkipsUnmarshalableData(t *testing.T) {
	h := New()
	c := newFakeConn()
	h.Register(c, 1)

	h.Broadcast("text-view-update", func() {})
	assert.Equal(t, 0, c.frameCount())
}
