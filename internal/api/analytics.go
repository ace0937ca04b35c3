package api

import (
	"net/http"

	"bus-fleet/internal/utils"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) BusOccupancy(w http.ResponseWriter, r *http.Request) {
	report, err := h.Analytics.BusOccupancy(r.Context(), chi.URLParam(r, "busId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Bus occupancy retrieved", report))
}

func (h *Handler) FleetOccupancy(w http.ResponseWriter, r *http.Request) {
	report, err := h.Analytics.FleetOccupancy(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Fleet occupancy retrieved", report))
}
