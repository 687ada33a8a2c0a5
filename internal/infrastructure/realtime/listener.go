package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"
	jsoniter "github.com/json-iterator/go"

	"imhungri/pkg/contextx"
	"imhungri/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

const channelName = "deal_events"

// Event is one row-change notification published by the database triggers.
type Event struct {
	Op     string `json:"op"` // update, delete
	DealID string `json:"deal_id"`
	Votes  *int   `json:"votes,omitempty"`
}

const (
	OpUpdate = "update"
	OpDelete = "delete"
)

// Listener holds a dedicated LISTEN connection and forwards deal change
// notifications to the events channel.
type Listener struct {
	dsn    string
	events chan Event

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	isRunning  bool
	wg         sync.WaitGroup
}

func NewListener(dsn string) *Listener {
	return &Listener{
		dsn:    dsn,
		events: make(chan Event, 100),
	}
}

// Events returns the stream of decoded notifications. Closed on Stop.
func (l *Listener) Events() <-chan Event {
	return l.events
}

func (l *Listener) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.isRunning {
		return errors.New("listener is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	l.cancelFunc = cancel
	l.isRunning = true

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer close(l.events)
		defer func() {
			l.mu.Lock()
			l.isRunning = false
			l.cancelFunc = nil
			l.mu.Unlock()
		}()

		if err := l.run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger(runCtx).Error("realtime listener stopped", logx.Error(err))
		}
	}()

	return nil
}

func (l *Listener) Stop() {
	l.mu.Lock()

	if !l.isRunning {
		l.mu.Unlock()
		return
	}

	if l.cancelFunc != nil {
		l.cancelFunc()
	}
	l.mu.Unlock()

	l.wg.Wait()
}

func (l *Listener) run(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return fmt.Errorf("pgx.Connect: %w", err)
	}
	defer conn.Close(context.WithoutCancel(ctx))

	if _, err := conn.Exec(ctx, "LISTEN "+channelName); err != nil {
		return fmt.Errorf("listen %s: %w", channelName, err)
	}

	logger(ctx).Info("realtime listener started", slog.String("channel", channelName))

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("wait for notification: %w", err)
		}

		var event Event
		if err := json.Unmarshal([]byte(notification.Payload), &event); err != nil {
			logger(ctx).Warn(
				"dropping malformed notification",
				slog.String("payload", notification.Payload),
				logx.Error(err),
			)
			continue
		}

		select {
		case l.events <- event:
		case <-ctx.Done():
			return ctx.Err()
		default:
			// A full buffer means the syncer is stuck; dropping is safer
			// than blocking the connection.
			logger(ctx).Warn("event buffer full, dropping",
				slog.String(logx.FieldDealID, event.DealID))
		}
	}
}
