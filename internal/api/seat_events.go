package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"bus-fleet/internal/utils"

	"github.com/go-chi/chi/v5"
)

// StreamSeatEvents streams seat status changes of one schedule as Server-Sent
// Events until the client disconnects.
func (h *Handler) StreamSeatEvents(w http.ResponseWriter, r *http.Request) {
	if h.SeatEvents == nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Not found", "seat event streaming is disabled"))
		return
	}

	scheduleID := chi.URLParam(r, "scheduleId")
	if _, err := h.Schedules.GetSchedule(r.Context(), scheduleID); err != nil {
		h.writeError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal server error", "streaming unsupported"))
		return
	}

	// streams outlive the server's write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	setupSSEHeaders(w)
	ctx := r.Context()
	events := h.SeatEvents.Subscribe(ctx, scheduleID)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"schedule_id\":%q}\n\n", scheduleID)
	flusher.Flush()
	h.Logger.Info("SSE", fmt.Sprintf("client watching seats of schedule %s", scheduleID))

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				h.Logger.Error("SSE", fmt.Sprintf("failed to serialize seat event: %v", err))
				continue
			}
			fmt.Fprintf(w, "event: seat_status\ndata: %s\n\n", data)
			flusher.Flush()
		case <-ctx.Done():
			h.Logger.Debug("SSE", fmt.Sprintf("client left seats of schedule %s", scheduleID))
			return
		}
	}
}

func setupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream;charset=UTF-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Content-Type-Options", "nosniff")
}
