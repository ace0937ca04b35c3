package models

// BoardingPass is the payload encoded into a booking's QR code.
type BoardingPass struct {
	BookingID     string `json:"booking_id"`
	ScheduleID    string `json:"schedule_id"`
	BusNumber     string `json:"bus_number"`
	Date          string `json:"date"`
	DepartureTime string `json:"departure_time"`
	SeatNumber    int    `json:"seat_number"`
	PassengerName string `json:"passenger_name"`
}
