package api

import (
	"errors"
	"net/http"
	"sort"

	"bus-fleet/internal/apperr"
	"bus-fleet/internal/bookings/boardingpass"
	bookings "bus-fleet/internal/bookings/service"
	"bus-fleet/internal/models"
	"bus-fleet/internal/utils"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	list, err := h.Bookings.GetBookings(r.Context(), chi.URLParam(r, "scheduleId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Bookings retrieved", list))
}

func (h *Handler) SeatMap(w http.ResponseWriter, r *http.Request) {
	scheduleID := chi.URLParam(r, "scheduleId")
	state, err := h.Bookings.SeatMap(r.Context(), scheduleID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	seats := make([]models.SeatView, 0, len(state))
	for seat, status := range state {
		seats = append(seats, models.SeatView{SeatNumber: seat, Status: status})
	}
	sort.Slice(seats, func(i, j int) bool { return seats[i].SeatNumber < seats[j].SeatNumber })

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Seat map retrieved", models.SeatMapResponse{
		ScheduleID:     scheduleID,
		Capacity:       len(state),
		Seats:          seats,
		AvailableSeats: bookings.FreeSeats(state),
	}))
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	seat, err := seatParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	booking, err := h.Bookings.GetBooking(r.Context(), chi.URLParam(r, "scheduleId"), seat)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Booking retrieved", booking))
}

func (h *Handler) BookSeat(w http.ResponseWriter, r *http.Request) {
	seat, err := seatParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req models.BookingRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	booking, err := h.Bookings.BookSeat(r.Context(), chi.URLParam(r, "scheduleId"), seat, req.PassengerInfo)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Seat booked", booking))
}

func (h *Handler) CancelSeat(w http.ResponseWriter, r *http.Request) {
	seat, err := seatParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.Bookings.CancelSeat(r.Context(), chi.URLParam(r, "scheduleId"), seat); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) BoardingPass(w http.ResponseWriter, r *http.Request) {
	seat, err := seatParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	pass, err := h.Bookings.BoardingPass(r.Context(), chi.URLParam(r, "scheduleId"), seat)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	png, err := h.Passes.QRCode(*pass)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

type verifyRequest struct {
	Token string `json:"token"`
}

// VerifyBoardingPass decodes a scanned token and checks that the booking it
// names still holds the seat.
func (h *Handler) VerifyBoardingPass(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	pass, err := h.Passes.Decode(req.Token)
	if errors.Is(err, boardingpass.ErrInvalidToken) {
		h.writeError(w, r, apperr.Validation("token", "not a valid boarding pass"))
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	booking, err := h.Bookings.GetBooking(r.Context(), pass.ScheduleID, pass.SeatNumber)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if booking.ID != pass.BookingID {
		h.writeError(w, r, apperr.NotFound("booking", pass.BookingID))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Boarding pass valid", pass))
}
