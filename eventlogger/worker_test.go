package eventlogger

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryLogger struct {
	mu     sync.Mutex
	events []Event
}

func (m *memoryLogger) Save(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *memoryLogger) GetByType(_ context.Context, eventType string) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, e := range m.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryLogger) GetRecent(_ context.Context, limit int) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > len(m.events) {
		limit = len(m.events)
	}
	return m.events[len(m.events)-limit:], nil
}

func TestWorkerDrainsOnShutdown(t *testing.T) {
	logger := &memoryLogger{}
	worker := NewWorker(logger, 10)
	worker.Start()

	for i := 0; i < 5; i++ {
		worker.Log(NewEvent(WithType("test.event")))
	}
	worker.Shutdown()

	saved, err := logger.GetByType(context.Background(), "test.event")
	require.NoError(t, err)
	require.Len(t, saved, 5)
}

func TestWorkerDropsWhenBufferFull(t *testing.T) {
	logger := &memoryLogger{}
	worker := NewWorker(logger, 2)
	// Worker not started: the buffer fills and extra events are dropped
	// instead of blocking the caller.
	for i := 0; i < 5; i++ {
		worker.Log(NewEvent(WithType("test.event")))
	}

	worker.Start()
	worker.Shutdown()

	saved, err := logger.GetByType(context.Background(), "test.event")
	require.NoError(t, err)
	require.Len(t, saved, 2)
}

func TestNewEventOptions(t *testing.T) {
	evt := NewEvent(
		WithType("expense.recorded"),
		WithData(map[string]string{"expense_id": "abc"}),
		WithMetadata(map[string]string{"source": "api"}),
	)

	require.Equal(t, "expense.recorded", evt.Type)
	require.Equal(t, "api", evt.Metadata["source"])
	require.NotZero(t, evt.ID)
	require.False(t, evt.CreatedAt.IsZero())
}
