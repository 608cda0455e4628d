package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-chat/internal/config"
	"portfolio-chat/internal/db"
	"portfolio-chat/internal/repositories"
)

func TestConcurrentSendsListInCreationOrder(t *testing.T) {
	ctx := context.Background()
	database, err := db.Connect(ctx, config.DatabaseConfig{Driver: db.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	rooms := repositories.NewRoomRepo(database)
	room, err := rooms.CreateRoom(ctx, "General", nil)
	require.NoError(t, err)
	chat := NewChatService(rooms, repositories.NewMessageRepo(database), nil, room.ID)

	const clients = 20
	var wg sync.WaitGroup
	errs := make(chan error, clients)
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := chat.SendMessage(ctx, SendMessageInput{
				Content:  fmt.Sprintf("message %d", i),
				Username: fmt.Sprintf("client-%d", i),
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	list, err := chat.ListMessages(ctx, "", nil)
	require.NoError(t, err)
	require.Len(t, list, clients)

	seen := make(map[string]bool, clients)
	for i, msg := range list {
		seen[msg.Content] = true
		if i == 0 {
			continue
		}
		prev := list[i-1]
		ordered := prev.CreatedAt.Before(msg.CreatedAt) ||
			(prev.CreatedAt.Equal(msg.CreatedAt) && prev.ID < msg.ID)
		assert.True(t, ordered, "message %d (%s) listed before %d (%s)", i-1, prev.ID, i, msg.ID)
	}
	assert.Len(t, seen, clients)
}
