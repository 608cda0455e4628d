package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"portfolio-chat/internal/client"
	"portfolio-chat/internal/models"
	"portfolio-chat/internal/poller"
)

func newWatchCmd() *cobra.Command {
	var (
		serverURL string
		roomID    string
		interval  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll a room and print its messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			interval, err := watchInterval(interval)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd.OutOrStdout(), client.New(serverURL, 10*time.Second), roomID, interval)
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "http://localhost:8083", "chat server base URL")
	cmd.Flags().StringVar(&roomID, "room", "", "room id (default: first listed room)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "poll interval (default chat.poll_interval)")

	return cmd
}

// watchInterval returns flag when set, otherwise the configured
// chat.poll_interval.
func watchInterval(flag time.Duration) (time.Duration, error) {
	if flag > 0 {
		return flag, nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return 0, err
	}
	return cfg.Chat.PollInterval, nil
}

func runWatch(ctx context.Context, out io.Writer, c *client.Client, roomID string, interval time.Duration) error {
	if roomID == "" {
		rooms, err := c.ListRooms(ctx)
		if err != nil {
			return err
		}
		if len(rooms) == 0 {
			return errors.New("server has no active rooms")
		}
		roomID = rooms[0].ID
		fmt.Fprintf(out, "watching %s (%s)\n", rooms[0].Name, roomID)
	}

	p := poller.New(c,
		poller.WithInterval(interval),
		poller.OnUpdate(func(_ string, msgs []models.Message) { printWindow(out, msgs) }),
		poller.OnError(func(_ string, err error) { fmt.Fprintf(out, "poll failed: %v\n", err) }),
	)
	p.Join(ctx, roomID)
	<-ctx.Done()
	p.Leave()
	return nil
}

func printWindow(out io.Writer, msgs []models.Message) {
	fmt.Fprintln(out, "----")
	for _, m := range msgs {
		name := m.Username
		if m.IsAdmin {
			name += " [admin]"
		}
		fmt.Fprintf(out, "%s %s: %s\n", m.CreatedAt.Local().Format("15:04:05"), name, m.Content)
	}
}
