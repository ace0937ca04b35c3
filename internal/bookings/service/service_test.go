package bookings_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"bus-fleet/internal/apperr"
	bookings "bus-fleet/internal/bookings/service"
	buses "bus-fleet/internal/buses/service"
	"bus-fleet/internal/models"
	schedules "bus-fleet/internal/schedules/service"
	"bus-fleet/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSeatLocker struct {
	mock.Mock
}

func (m *MockSeatLocker) LockSeat(ctx context.Context, scheduleID string, seatNumber int, token string) (bool, error) {
	args := m.Called(ctx, scheduleID, seatNumber, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockSeatLocker) UnlockSeat(ctx context.Context, scheduleID string, seatNumber int, token string) error {
	args := m.Called(ctx, scheduleID, seatNumber, token)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishSeatStatus(ctx context.Context, event models.SeatStatusChangeEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

var ana = models.PassengerInfo{Name: "Ana", Age: 30, Gender: models.GenderFemale, ContactInfo: "x"}

func setupSchedule(t *testing.T, s *memstore.Store, capacity int) *models.Schedule {
	t.Helper()
	ctx := context.Background()
	bus := &models.Bus{BusNumber: "B1", Capacity: capacity}
	require.NoError(t, s.CreateBus(ctx, bus))
	schedule := &models.Schedule{BusID: bus.ID, DepartureTime: "08:00", ArrivalTime: "10:00", Date: "2024-01-01"}
	require.NoError(t, s.CreateSchedule(ctx, schedule))
	return schedule
}

func TestSeatStateDerivation(t *testing.T) {
	s := memstore.New()
	svc := bookings.NewBookingService(s, nil, nil, nil)
	ctx := context.Background()
	schedule := setupSchedule(t, s, 6)

	for _, seat := range []int{2, 5} {
		_, err := svc.BookSeat(ctx, schedule.ID, seat, ana)
		require.NoError(t, err)
	}

	state, err := svc.SeatState(ctx, schedule.ID, 6)
	require.NoError(t, err)
	assert.Equal(t, map[int]models.SeatStatus{
		1: models.SeatFree,
		2: models.SeatBooked,
		3: models.SeatFree,
		4: models.SeatFree,
		5: models.SeatBooked,
		6: models.SeatFree,
	}, state)

	available, err := svc.AvailableSeats(ctx, schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 4, 6}, available)

	_, err = svc.SeatState(ctx, schedule.ID, 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestBookSeatCapacityBound(t *testing.T) {
	s := memstore.New()
	svc := bookings.NewBookingService(s, nil, nil, nil)
	ctx := context.Background()
	schedule := setupSchedule(t, s, 3)

	for _, seat := range []int{0, -1, 4} {
		_, err := svc.BookSeat(ctx, schedule.ID, seat, ana)
		assert.ErrorIs(t, err, apperr.ErrValidation, "seat %d", seat)
	}

	_, err := svc.BookSeat(ctx, schedule.ID, 3, ana)
	assert.NoError(t, err)
}

func TestBookSeatValidatesPassengerAndSchedule(t *testing.T) {
	s := memstore.New()
	svc := bookings.NewBookingService(s, nil, nil, nil)
	ctx := context.Background()
	schedule := setupSchedule(t, s, 3)

	noName := ana
	noName.Name = ""
	_, err := svc.BookSeat(ctx, schedule.ID, 1, noName)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	badGender := ana
	badGender.Gender = "F"
	_, err = svc.BookSeat(ctx, schedule.ID, 1, badGender)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.BookSeat(ctx, "missing", 1, ana)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestConcurrentBookSeatSingleWinner(t *testing.T) {
	s := memstore.New()
	svc := bookings.NewBookingService(s, nil, nil, nil)
	ctx := context.Background()
	schedule := setupSchedule(t, s, 10)

	const attempts = 40
	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		winners     int
		unavailable int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			p := ana
			p.Name = fmt.Sprintf("passenger-%d", n)
			_, err := svc.BookSeat(ctx, schedule.ID, 4, p)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners++
			} else if errors.Is(err, apperr.ErrSeatUnavailable) {
				unavailable++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.Equal(t, attempts-1, unavailable)

	booked, err := svc.GetBookings(ctx, schedule.ID)
	require.NoError(t, err)
	assert.Len(t, booked, 1)
}

func TestCancelSeatIsIdempotent(t *testing.T) {
	s := memstore.New()
	svc := bookings.NewBookingService(s, nil, nil, nil)
	ctx := context.Background()
	schedule := setupSchedule(t, s, 3)

	_, err := svc.BookSeat(ctx, schedule.ID, 2, ana)
	require.NoError(t, err)
	_, err = svc.BookSeat(ctx, schedule.ID, 3, ana)
	require.NoError(t, err)

	require.NoError(t, svc.CancelSeat(ctx, schedule.ID, 2))
	once, err := svc.GetBookings(ctx, schedule.ID)
	require.NoError(t, err)

	require.NoError(t, svc.CancelSeat(ctx, schedule.ID, 2))
	twice, err := svc.GetBookings(ctx, schedule.ID)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	require.Len(t, twice, 1)
	assert.Equal(t, 3, twice[0].SeatNumber)

	_, err = svc.GetBooking(ctx, schedule.ID, 2)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestBookCancelRebookScenario(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	busSvc := buses.NewBusService(s, nil)
	scheduleSvc := schedules.NewScheduleService(s, nil)
	svc := bookings.NewBookingService(s, nil, nil, nil)

	bus, err := busSvc.AddBus(ctx, "B1", 2)
	require.NoError(t, err)
	schedule, err := scheduleSvc.AddSchedule(ctx, bus.ID, "08:00", "10:00", "2024-01-01")
	require.NoError(t, err)

	booking, err := svc.BookSeat(ctx, schedule.ID, 1, ana)
	require.NoError(t, err)
	assert.Equal(t, ana, booking.Passenger)

	_, err = svc.BookSeat(ctx, schedule.ID, 1, ana)
	var unavailable *apperr.SeatUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, 1, unavailable.SeatNumber)

	require.NoError(t, svc.CancelSeat(ctx, schedule.ID, 1))

	_, err = svc.BookSeat(ctx, schedule.ID, 1, ana)
	assert.NoError(t, err)
}

func TestBookSeatUsesHoldAndPublishes(t *testing.T) {
	s := memstore.New()
	locker := new(MockSeatLocker)
	events := new(MockEventPublisher)
	svc := bookings.NewBookingService(s, locker, events, nil)
	ctx := context.Background()
	schedule := setupSchedule(t, s, 4)

	var token string
	locker.On("LockSeat", mock.Anything, schedule.ID, 2, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { token = args.String(3) }).
		Return(true, nil).Once()
	locker.On("UnlockSeat", mock.Anything, schedule.ID, 2, mock.AnythingOfType("string")).Return(nil).Once()
	events.On("PublishSeatStatus", mock.Anything, mock.MatchedBy(func(e models.SeatStatusChangeEvent) bool {
		return e.ScheduleID == schedule.ID && e.Status == models.SeatBooked && len(e.SeatNumbers) == 1 && e.SeatNumbers[0] == 2
	})).Return(nil).Once()

	_, err := svc.BookSeat(ctx, schedule.ID, 2, ana)
	require.NoError(t, err)

	assert.NotEmpty(t, token)
	locker.AssertCalled(t, "UnlockSeat", mock.Anything, schedule.ID, 2, token)
	locker.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestBookSeatHeldElsewhere(t *testing.T) {
	s := memstore.New()
	locker := new(MockSeatLocker)
	events := new(MockEventPublisher)
	svc := bookings.NewBookingService(s, locker, events, nil)
	ctx := context.Background()
	schedule := setupSchedule(t, s, 4)

	locker.On("LockSeat", mock.Anything, schedule.ID, 1, mock.Anything).Return(false, nil)

	_, err := svc.BookSeat(ctx, schedule.ID, 1, ana)
	assert.ErrorIs(t, err, apperr.ErrSeatUnavailable)

	booked, err := svc.GetBookings(ctx, schedule.ID)
	require.NoError(t, err)
	assert.Empty(t, booked)
	locker.AssertNotCalled(t, "UnlockSeat", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	events.AssertNotCalled(t, "PublishSeatStatus", mock.Anything, mock.Anything)
}

func TestBookSeatFallsBackToStoreWhenHoldFails(t *testing.T) {
	s := memstore.New()
	locker := new(MockSeatLocker)
	svc := bookings.NewBookingService(s, locker, nil, nil)
	ctx := context.Background()
	schedule := setupSchedule(t, s, 4)

	locker.On("LockSeat", mock.Anything, schedule.ID, 1, mock.Anything).Return(false, errors.New("redis down"))

	_, err := svc.BookSeat(ctx, schedule.ID, 1, ana)
	require.NoError(t, err)

	_, err = svc.BookSeat(ctx, schedule.ID, 1, ana)
	assert.ErrorIs(t, err, apperr.ErrSeatUnavailable)
}

func TestPublishFailureDoesNotFailBooking(t *testing.T) {
	s := memstore.New()
	events := new(MockEventPublisher)
	svc := bookings.NewBookingService(s, nil, events, nil)
	ctx := context.Background()
	schedule := setupSchedule(t, s, 4)

	events.On("PublishSeatStatus", mock.Anything, mock.Anything).Return(errors.New("broker unreachable"))

	_, err := svc.BookSeat(ctx, schedule.ID, 1, ana)
	assert.NoError(t, err)
}

func TestCancelPublishesOnlyWhenSeatWasBooked(t *testing.T) {
	s := memstore.New()
	events := new(MockEventPublisher)
	svc := bookings.NewBookingService(s, nil, events, nil)
	ctx := context.Background()
	schedule := setupSchedule(t, s, 4)

	events.On("PublishSeatStatus", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.BookSeat(ctx, schedule.ID, 1, ana)
	require.NoError(t, err)
	require.NoError(t, svc.CancelSeat(ctx, schedule.ID, 1))
	require.NoError(t, svc.CancelSeat(ctx, schedule.ID, 1))

	events.AssertNumberOfCalls(t, "PublishSeatStatus", 2)
	last := events.Calls[1].Arguments.Get(1).(models.SeatStatusChangeEvent)
	assert.Equal(t, models.SeatFree, last.Status)
}

func TestBoardingPassDetails(t *testing.T) {
	s := memstore.New()
	svc := bookings.NewBookingService(s, nil, nil, nil)
	ctx := context.Background()
	schedule := setupSchedule(t, s, 4)

	booking, err := svc.BookSeat(ctx, schedule.ID, 3, ana)
	require.NoError(t, err)

	pass, err := svc.BoardingPass(ctx, schedule.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, pass.BookingID)
	assert.Equal(t, "B1", pass.BusNumber)
	assert.Equal(t, "2024-01-01", pass.Date)
	assert.Equal(t, "Ana", pass.PassengerName)

	_, err = svc.BoardingPass(ctx, schedule.ID, 4)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPublishersReachEveryPublisher(t *testing.T) {
	failing := new(MockEventPublisher)
	healthy := new(MockEventPublisher)
	event := models.NewSeatStatusChangeEvent("sched-1", []int{2}, models.SeatBooked)

	failing.On("PublishSeatStatus", mock.Anything, event).Return(errors.New("broker unreachable"))
	healthy.On("PublishSeatStatus", mock.Anything, event).Return(nil)

	err := bookings.Publishers{failing, healthy}.PublishSeatStatus(context.Background(), event)
	assert.ErrorContains(t, err, "broker unreachable")
	healthy.AssertExpectations(t)

	assert.NoError(t, bookings.Publishers{}.PublishSeatStatus(context.Background(), event))
}
