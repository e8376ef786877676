package hub

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/livedesk/user-service/internal/events"
	"github.com/livedesk/user-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn records sends and can be told to fail.
type fakeConn struct {
	mu       sync.Mutex
	sent     [][]byte
	sendErr  error
	closed   bool
	closeErr error
}

func (c *fakeConn) Send(message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, message)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return c.closeErr
}

func (c *fakeConn) sentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func testEvent() events.UserEvent {
	return events.NewUserEvent(events.UserCreated, models.User{ID: "1", Name: "John Doe", Email: "john@example.com"})
}

func TestBroadcastWithNoConnectionsIsNoOp(t *testing.T) {
	h := New()

	h.Broadcast(testEvent())

	assert.Equal(t, 0, h.ConnectionCount())
}

func TestBroadcastReachesAllConnections(t *testing.T) {
	h := New()
	a, b := &fakeConn{}, &fakeConn{}
	h.Add(a)
	h.Add(b)

	h.Broadcast(testEvent())

	assert.Equal(t, 1, a.sentCount())
	assert.Equal(t, 1, b.sentCount())
}

func TestBroadcastEvictsFailedConnectionAndContinues(t *testing.T) {
	h := New()
	dead := &fakeConn{sendErr: errors.New("broken pipe")}
	live := &fakeConn{}
	h.Add(dead)
	h.Add(live)

	h.Broadcast(testEvent())

	assert.Equal(t, 1, h.ConnectionCount(), "dead connection must be evicted")
	assert.Equal(t, 1, live.sentCount(), "broadcast must continue past a failed send")

	// The evicted connection is not retried on the next broadcast.
	h.Broadcast(testEvent())
	assert.Equal(t, 2, live.sentCount())
	assert.Equal(t, 0, dead.sentCount())
}

func TestAddIsIdempotent(t *testing.T) {
	h := New()
	conn := &fakeConn{}

	h.Add(conn)
	h.Add(conn)

	assert.Equal(t, 1, h.ConnectionCount())
}

func TestRemoveIsIdempotent(t *testing.T) {
	h := New()
	conn := &fakeConn{}
	h.Add(conn)

	h.Remove(conn)
	h.Remove(conn)

	assert.Equal(t, 0, h.ConnectionCount())
}

func TestSendToFailureEvicts(t *testing.T) {
	h := New()
	dead := &fakeConn{sendErr: errors.New("connection reset")}
	h.Add(dead)

	err := h.SendTo(dead, []byte("hello"))

	require.Error(t, err)
	assert.Equal(t, 0, h.ConnectionCount())
}

func TestSendToSuccess(t *testing.T) {
	h := New()
	conn := &fakeConn{}
	h.Add(conn)

	err := h.SendTo(conn, []byte("hello"))

	require.NoError(t, err)
	assert.Equal(t, 1, conn.sentCount())
	assert.Equal(t, 1, h.ConnectionCount())
}

func TestCloseAllClosesEverythingAndClearsSet(t *testing.T) {
	h := New()
	a := &fakeConn{}
	b := &fakeConn{closeErr: errors.New("already closed")}
	h.Add(a)
	h.Add(b)

	h.CloseAll()

	assert.Equal(t, 0, h.ConnectionCount())
	assert.True(t, a.closed)
	assert.True(t, b.closed, "close failures must not stop the sweep")
}

func TestConcurrentAddRemoveBroadcast(t *testing.T) {
	h := New()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn := &fakeConn{}
			h.Add(conn)
			h.Broadcast(testEvent())
			h.BroadcastMessage([]byte(fmt.Sprintf("msg-%p", conn)))
			h.Remove(conn)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, h.ConnectionCount())
}
