package models_test

import (
	"testing"

	"bus-fleet/internal/apperr"
	"bus-fleet/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestValidateBus(t *testing.T) {
	assert.NoError(t, models.ValidateBus("B1", 40))
	assert.ErrorIs(t, models.ValidateBus("B1", 0), apperr.ErrValidation)
	assert.ErrorIs(t, models.ValidateBus("B1", -3), apperr.ErrValidation)
	assert.ErrorIs(t, models.ValidateBus("   ", 10), apperr.ErrValidation)
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, models.ValidateSchedule("08:00", "10:00", "2024-01-01"))
	assert.ErrorIs(t, models.ValidateSchedule("", "10:00", "2024-01-01"), apperr.ErrValidation)
	assert.ErrorIs(t, models.ValidateSchedule("08:00", "", "2024-01-01"), apperr.ErrValidation)
	assert.ErrorIs(t, models.ValidateSchedule("08:00", "10:00", "01/01/2024"), apperr.ErrValidation)
	assert.ErrorIs(t, models.ValidateSchedule("08:00", "10:00", "2024-02-30"), apperr.ErrValidation)
}

func TestPassengerInfoValidate(t *testing.T) {
	valid := models.PassengerInfo{Name: "Ana", Age: 30, Gender: models.GenderFemale, ContactInfo: "x"}
	assert.NoError(t, valid.Validate())

	missingName := valid
	missingName.Name = ""
	assert.ErrorIs(t, missingName.Validate(), apperr.ErrValidation)

	badAge := valid
	badAge.Age = 0
	assert.ErrorIs(t, badAge.Validate(), apperr.ErrValidation)

	badGender := valid
	badGender.Gender = "Female"
	assert.ErrorIs(t, badGender.Validate(), apperr.ErrValidation)

	missingContact := valid
	missingContact.ContactInfo = " "
	assert.ErrorIs(t, missingContact.Validate(), apperr.ErrValidation)
}

func TestNewPassengerRow(t *testing.T) {
	schedule := models.Schedule{ID: "s1", Date: "2024-01-01", DepartureTime: "08:00"}
	booking := models.Booking{
		SeatNumber: 2,
		Passenger:  models.PassengerInfo{Name: "Ana", Age: 30, Gender: models.GenderFemale, ContactInfo: "x"},
	}

	row := models.NewPassengerRow(schedule, booking)

	assert.Equal(t, models.PassengerRow{
		ScheduleID:    "s1",
		ScheduleDate:  "2024-01-01",
		DepartureTime: "08:00",
		SeatNumber:    2,
		Name:          "Ana",
		Age:           30,
		Gender:        models.GenderFemale,
		ContactInfo:   "x",
	}, row)
}
