package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"bus-fleet/internal/analytics"
	"bus-fleet/internal/apperr"
	"bus-fleet/internal/bookings/boardingpass"
	bookings "bus-fleet/internal/bookings/service"
	buses "bus-fleet/internal/buses/service"
	"bus-fleet/internal/logger"
	"bus-fleet/internal/manifest"
	schedules "bus-fleet/internal/schedules/service"
	"bus-fleet/internal/sse"
	"bus-fleet/internal/utils"

	"github.com/go-chi/chi/v5"
)

// Handler maps HTTP requests onto the fleet services. It adds no rules of
// its own.
type Handler struct {
	Analytics  *analytics.Service
	Buses      *buses.BusService
	Schedules  *schedules.ScheduleService
	Bookings   *bookings.BookingService
	Manifest   *manifest.Reporter
	Passes     *boardingpass.Generator
	SeatEvents *sse.SeatEventEmitter
	Logger     *logger.Logger
}

// RegisterRoutes registers the fleet routes on a chi router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/buses", func(r chi.Router) {
		r.Get("/", h.ListBuses)
		r.Post("/", h.AddBus)
		r.Route("/{busId}", func(r chi.Router) {
			r.Get("/", h.GetBus)
			r.Put("/", h.UpdateBus)
			r.Delete("/", h.DeleteBus)
			r.Get("/schedules", h.ListSchedules)
			r.Post("/schedules", h.AddSchedule)
			r.Get("/passengers", h.ListPassengers)
			r.Get("/occupancy", h.BusOccupancy)
		})
	})

	r.Route("/schedules/{scheduleId}", func(r chi.Router) {
		r.Get("/", h.GetSchedule)
		r.Put("/", h.UpdateSchedule)
		r.Delete("/", h.DeleteSchedule)
		r.Get("/bookings", h.ListBookings)
		r.Get("/seats", h.SeatMap)
		r.Get("/seats/events", h.StreamSeatEvents)
		r.Route("/seats/{seat}", func(r chi.Router) {
			r.Get("/", h.GetBooking)
			r.Post("/", h.BookSeat)
			r.Delete("/", h.CancelSeat)
			r.Get("/boarding-pass", h.BoardingPass)
		})
	})

	r.Post("/boarding-passes/verify", h.VerifyBoardingPass)
	r.Get("/analytics/occupancy", h.FleetOccupancy)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation("body", fmt.Sprintf("malformed JSON: %v", err))
	}
	return nil
}

func seatParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "seat")
	seat, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("seat_number", fmt.Sprintf("%q is not a number", raw))
	}
	return seat, nil
}

// writeError renders err with the status of its category. Storage and
// unknown failures are logged and never shown to the client verbatim.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := http.StatusInternalServerError, "Internal server error"
	detail := "internal server error"

	switch {
	case errors.Is(err, apperr.ErrValidation):
		status, message, detail = http.StatusBadRequest, "Validation failed", err.Error()
	case errors.Is(err, apperr.ErrNotFound):
		status, message, detail = http.StatusNotFound, "Not found", err.Error()
	case errors.Is(err, apperr.ErrSeatUnavailable):
		status, message, detail = http.StatusConflict, "Seat unavailable", err.Error()
	default:
		h.Logger.Error("API", fmt.Sprintf("%s %s failed: %v", r.Method, r.URL.Path, err))
	}

	utils.WriteJSON(w, status, utils.ErrorResponse(message, detail))
}
