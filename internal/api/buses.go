package api

import (
	"net/http"

	"bus-fleet/internal/manifest"
	"bus-fleet/internal/models"
	"bus-fleet/internal/utils"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListBuses(w http.ResponseWriter, r *http.Request) {
	list, err := h.Buses.ListBuses(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Buses retrieved", list))
}

func (h *Handler) GetBus(w http.ResponseWriter, r *http.Request) {
	bus, err := h.Buses.GetBus(r.Context(), chi.URLParam(r, "busId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Bus retrieved", bus))
}

func (h *Handler) AddBus(w http.ResponseWriter, r *http.Request) {
	var req models.BusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	bus, err := h.Buses.AddBus(r.Context(), req.BusNumber, req.Capacity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Bus created", bus))
}

func (h *Handler) UpdateBus(w http.ResponseWriter, r *http.Request) {
	var req models.BusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	bus, err := h.Buses.UpdateBus(r.Context(), chi.URLParam(r, "busId"), req.BusNumber, req.Capacity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Bus updated", bus))
}

func (h *Handler) DeleteBus(w http.ResponseWriter, r *http.Request) {
	if err := h.Buses.DeleteBus(r.Context(), chi.URLParam(r, "busId")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListPassengers(w http.ResponseWriter, r *http.Request) {
	var opts []manifest.Option
	if r.URL.Query().Get("strict") == "true" {
		opts = append(opts, manifest.RequireExisting())
	}

	rows, err := h.Manifest.ListPassengers(r.Context(), chi.URLParam(r, "busId"), r.URL.Query().Get("schedule_id"), opts...)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Passengers retrieved", rows))
}
