package models

import (
	"time"
)

// SeatStatusChangeEvent is published whenever seats of a schedule change
// between free and booked.
type SeatStatusChangeEvent struct {
	ScheduleID  string     `json:"schedule_id"`
	SeatNumbers []int      `json:"seat_numbers"`
	Status      SeatStatus `json:"status"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

func NewSeatStatusChangeEvent(scheduleID string, seatNumbers []int, status SeatStatus) SeatStatusChangeEvent {
	return SeatStatusChangeEvent{
		ScheduleID:  scheduleID,
		SeatNumbers: seatNumbers,
		Status:      status,
		OccurredAt:  time.Now().UTC(),
	}
}
