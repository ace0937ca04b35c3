package sse

import (
	"context"
	"sync"

	"bus-fleet/internal/models"
)

const clientBuffer = 10

// SeatEventEmitter fans seat status changes out to the clients watching a
// schedule on this instance.
type SeatEventEmitter struct {
	mu      sync.RWMutex
	clients map[string][]chan models.SeatStatusChangeEvent
}

func NewSeatEventEmitter() *SeatEventEmitter {
	return &SeatEventEmitter{clients: make(map[string][]chan models.SeatStatusChangeEvent)}
}

// Subscribe returns a channel of the schedule's seat changes. The channel
// is closed once ctx is done.
func (e *SeatEventEmitter) Subscribe(ctx context.Context, scheduleID string) <-chan models.SeatStatusChangeEvent {
	clientChan := make(chan models.SeatStatusChangeEvent, clientBuffer)

	e.mu.Lock()
	e.clients[scheduleID] = append(e.clients[scheduleID], clientChan)
	e.mu.Unlock()

	go func() {
		<-ctx.Done()
		e.removeClient(scheduleID, clientChan)
	}()

	return clientChan
}

// PublishSeatStatus never blocks: a client whose buffer is full misses the
// event.
func (e *SeatEventEmitter) PublishSeatStatus(_ context.Context, event models.SeatStatusChangeEvent) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, clientChan := range e.clients[event.ScheduleID] {
		select {
		case clientChan <- event:
		default:
		}
	}
	return nil
}

// Subscribers reports how many clients watch the schedule.
func (e *SeatEventEmitter) Subscribers(scheduleID string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.clients[scheduleID])
}

func (e *SeatEventEmitter) removeClient(scheduleID string, clientChan chan models.SeatStatusChangeEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	clients := e.clients[scheduleID]
	for i, c := range clients {
		if c == clientChan {
			clients = append(clients[:i], clients[i+1:]...)
			close(clientChan)
			break
		}
	}
	if len(clients) == 0 {
		delete(e.clients, scheduleID)
	} else {
		e.clients[scheduleID] = clients
	}
}
