package models

// PassengerRow is one line of a manifest: a booking joined with its schedule.
type PassengerRow struct {
	ScheduleID    string `json:"schedule_id"`
	ScheduleDate  string `json:"schedule_date"`
	DepartureTime string `json:"departure_time"`
	SeatNumber    int    `json:"seat_number"`
	Name          string `json:"name"`
	Age           int    `json:"age"`
	Gender        Gender `json:"gender"`
	ContactInfo   string `json:"contact_info"`
}

func NewPassengerRow(schedule Schedule, booking Booking) PassengerRow {
	return PassengerRow{
		ScheduleID:    schedule.ID,
		ScheduleDate:  schedule.Date,
		DepartureTime: schedule.DepartureTime,
		SeatNumber:    booking.SeatNumber,
		Name:          booking.Passenger.Name,
		Age:           booking.Passenger.Age,
		Gender:        booking.Passenger.Gender,
		ContactInfo:   booking.Passenger.ContactInfo,
	}
}
