package api

import (
	"net/http"

	"bus-fleet/internal/models"
	"bus-fleet/internal/utils"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	list, err := h.Schedules.ListSchedules(r.Context(), chi.URLParam(r, "busId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Schedules retrieved", list))
}

func (h *Handler) AddSchedule(w http.ResponseWriter, r *http.Request) {
	var req models.ScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	schedule, err := h.Schedules.AddSchedule(r.Context(), chi.URLParam(r, "busId"), req.DepartureTime, req.ArrivalTime, req.Date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Schedule created", schedule))
}

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.Schedules.GetSchedule(r.Context(), chi.URLParam(r, "scheduleId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Schedule retrieved", schedule))
}

func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var req models.ScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	schedule, err := h.Schedules.UpdateSchedule(r.Context(), chi.URLParam(r, "scheduleId"), req.DepartureTime, req.ArrivalTime, req.Date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Schedule updated", schedule))
}

func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	if err := h.Schedules.DeleteSchedule(r.Context(), chi.URLParam(r, "scheduleId")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
