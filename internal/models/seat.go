package models

type SeatStatus string

const (
	SeatFree   SeatStatus = "free"
	SeatBooked SeatStatus = "booked"
)

type SeatView struct {
	SeatNumber int        `json:"seat_number"`
	Status     SeatStatus `json:"status"`
}

type SeatMapResponse struct {
	ScheduleID     string     `json:"schedule_id"`
	Capacity       int        `json:"capacity"`
	Seats          []SeatView `json:"seats"`
	AvailableSeats []int      `json:"available_seats"`
}
