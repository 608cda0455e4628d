package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-chat/internal/models"
)

type fakeFetcher struct {
	mu    sync.Mutex
	calls map[string]int
	pages map[string][]models.Message
	err   error
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{calls: map[string]int{}, pages: map[string][]models.Message{}}
}

func (f *fakeFetcher) GetMessages(_ context.Context, roomID string, since *time.Time) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[roomID]++
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Message(nil), f.pages[roomID]...), nil
}

func (f *fakeFetcher) set(roomID string, msgs ...models.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[roomID] = msgs
}

func (f *fakeFetcher) count(roomID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[roomID]
}

func TestJoinFetchesImmediately(t *testing.T) {
	f := newFakeFetcher()
	f.set("room-1", models.Message{ID: "m1"})

	p := New(f, WithInterval(time.Hour))
	p.Join(context.Background(), "room-1")
	defer p.Leave()

	require.Eventually(t, func() bool {
		msgs, _ := p.Snapshot()
		return len(msgs) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "room-1", p.RoomID())
}

func TestEachFetchReplacesWindow(t *testing.T) {
	f := newFakeFetcher()
	f.set("room-1", models.Message{ID: "m1"}, models.Message{ID: "m2"})

	updates := make(chan []models.Message, 16)
	p := New(f, WithInterval(10*time.Millisecond), OnUpdate(func(_ string, msgs []models.Message) {
		select {
		case updates <- msgs:
		default:
		}
	}))
	p.Join(context.Background(), "room-1")
	defer p.Leave()

	first := <-updates
	require.Len(t, first, 2)

	f.set("room-1", models.Message{ID: "m2"}, models.Message{ID: "m3"})
	require.Eventually(t, func() bool {
		msgs, _ := p.Snapshot()
		return len(msgs) == 2 && msgs[1].ID == "m3"
	}, time.Second, 5*time.Millisecond)

	msgs, _ := p.Snapshot()
	assert.Equal(t, "m2", msgs[0].ID)
}

func TestSwitchingRoomStopsPreviousLoop(t *testing.T) {
	f := newFakeFetcher()
	f.set("a", models.Message{ID: "a1"})
	f.set("b", models.Message{ID: "b1"})

	p := New(f, WithInterval(5*time.Millisecond))
	p.Join(context.Background(), "a")
	require.Eventually(t, func() bool { return f.count("a") >= 2 }, time.Second, time.Millisecond)

	p.Join(context.Background(), "b")
	defer p.Leave()
	stopped := f.count("a")

	require.Eventually(t, func() bool {
		msgs, _ := p.Snapshot()
		return len(msgs) == 1 && msgs[0].ID == "b1"
	}, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, f.count("a"))
}

func TestLeaveStopsPolling(t *testing.T) {
	f := newFakeFetcher()
	p := New(f, WithInterval(5*time.Millisecond))
	p.Join(context.Background(), "room-1")
	require.Eventually(t, func() bool { return f.count("room-1") >= 1 }, time.Second, time.Millisecond)

	p.Leave()
	n := f.count("room-1")
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, f.count("room-1"))
	assert.Empty(t, p.RoomID())

	msgs, _ := p.Snapshot()
	assert.Empty(t, msgs)
}

func TestErrorsDoNotStopPolling(t *testing.T) {
	f := newFakeFetcher()
	f.err = errors.New("boom")

	var (
		mu     sync.Mutex
		errCnt int
	)
	p := New(f, WithInterval(5*time.Millisecond), OnError(func(_ string, err error) {
		mu.Lock()
		errCnt++
		mu.Unlock()
	}))
	p.Join(context.Background(), "room-1")
	defer p.Leave()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return errCnt >= 3
	}, time.Second, time.Millisecond)
}

func TestRefreshFetchesEarly(t *testing.T) {
	f := newFakeFetcher()
	p := New(f, WithInterval(time.Hour))
	p.Join(context.Background(), "room-1")
	defer p.Leave()

	require.Eventually(t, func() bool { return f.count("room-1") == 1 }, time.Second, time.Millisecond)
	p.Refresh()
	require.Eventually(t, func() bool { return f.count("room-1") == 2 }, time.Second, time.Millisecond)
}

func TestCallbackCanSwitchRoom(t *testing.T) {
	f := newFakeFetcher()
	f.set("a", models.Message{ID: "a1"})
	f.set("b", models.Message{ID: "b1"})

	var p *Poller
	p = New(f, WithInterval(5*time.Millisecond), OnUpdate(func(roomID string, _ []models.Message) {
		if roomID == "a" {
			p.Join(context.Background(), "b")
		}
	}))
	p.Join(context.Background(), "a")

	require.Eventually(t, func() bool {
		msgs, _ := p.Snapshot()
		return p.RoomID() == "b" && len(msgs) == 1 && msgs[0].ID == "b1"
	}, time.Second, 5*time.Millisecond)

	left := make(chan struct{})
	go func() {
		p.Leave()
		close(left)
	}()
	select {
	case <-left:
	case <-time.After(time.Second):
		t.Fatal("Leave did not return")
	}
}

func TestCallbackCanLeave(t *testing.T) {
	f := newFakeFetcher()
	f.set("room-1", models.Message{ID: "m1"})

	left := make(chan struct{})
	var p *Poller
	p = New(f, WithInterval(5*time.Millisecond), OnUpdate(func(string, []models.Message) {
		p.Leave()
		select {
		case <-left:
		default:
			close(left)
		}
	}))
	p.Join(context.Background(), "room-1")

	select {
	case <-left:
	case <-time.After(time.Second):
		t.Fatal("Leave from callback did not return")
	}
	assert.Empty(t, p.RoomID())
}
