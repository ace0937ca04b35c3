package api_test

import (
	"bufio"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bus-fleet/internal/api"
	bookings "bus-fleet/internal/bookings/service"
	buses "bus-fleet/internal/buses/service"
	"bus-fleet/internal/logger"
	"bus-fleet/internal/manifest"
	"bus-fleet/internal/models"
	schedules "bus-fleet/internal/schedules/service"
	"bus-fleet/internal/sse"
	"bus-fleet/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nextEvent reads one SSE frame and returns its event name and data.
func nextEvent(t *testing.T, sc *bufio.Scanner) (string, string) {
	t.Helper()
	var name, data string
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if name != "" {
				return name, data
			}
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
	require.NoError(t, sc.Err())
	t.Fatal("stream ended before a full event")
	return "", ""
}

func TestSeatEventsStreamBookings(t *testing.T) {
	s := memstore.New()
	log := logger.NewConsoleLogger(io.Discard)
	emitter := sse.NewSeatEventEmitter()
	h := &api.Handler{
		Buses:      buses.NewBusService(s, log),
		Schedules:  schedules.NewScheduleService(s, log),
		Bookings:   bookings.NewBookingService(s, nil, emitter, log),
		Manifest:   manifest.NewReporter(s, log),
		SeatEvents: emitter,
		Logger:     log,
	}
	srv := httptest.NewServer(api.NewRouter(h))
	defer srv.Close()

	_, schedule := createBusAndSchedule(t, srv, 4)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(srv.URL + "/api/schedules/" + schedule.ID + "/seats/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	sc := bufio.NewScanner(resp.Body)
	name, data := nextEvent(t, sc)
	require.Equal(t, "connected", name)
	assert.Contains(t, data, schedule.ID)

	booked, _ := call(t, srv, http.MethodPost, "/api/schedules/"+schedule.ID+"/seats/2", anaBooking)
	require.Equal(t, http.StatusCreated, booked.StatusCode)

	name, data = nextEvent(t, sc)
	require.Equal(t, "seat_status", name)
	var event models.SeatStatusChangeEvent
	require.NoError(t, json.Unmarshal([]byte(data), &event))
	assert.Equal(t, schedule.ID, event.ScheduleID)
	assert.Equal(t, []int{2}, event.SeatNumbers)
	assert.Equal(t, models.SeatBooked, event.Status)
}

func TestSeatEventsErrors(t *testing.T) {
	srv := newServer(t)
	_, schedule := createBusAndSchedule(t, srv, 2)

	resp, _ := call(t, srv, http.MethodGet, "/api/schedules/"+schedule.ID+"/seats/events", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "streaming disabled without an emitter")

	s := memstore.New()
	log := logger.NewConsoleLogger(io.Discard)
	h := &api.Handler{
		Schedules:  schedules.NewScheduleService(s, log),
		SeatEvents: sse.NewSeatEventEmitter(),
		Logger:     log,
	}
	streaming := httptest.NewServer(api.NewRouter(h))
	defer streaming.Close()

	resp, _ = call(t, streaming, http.MethodGet, "/api/schedules/missing/seats/events", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
