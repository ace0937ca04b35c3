// Package apperr holds the typed failures returned by the fleet services.
//
// Every typed error matches its sentinel through errors.Is, so callers can
// branch on the category without caring about the details:
//
//	if errors.Is(err, apperr.ErrSeatUnavailable) { ... }
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrSeatUnavailable = errors.New("seat unavailable")
	ErrStorage         = errors.New("storage failure")
)

// ValidationError reports malformed input. The caller should re-prompt.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports a referenced bus or schedule that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// SeatUnavailableError reports a seat already booked (or held) for a schedule.
type SeatUnavailableError struct {
	ScheduleID string
	SeatNumber int
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("seat %d is already booked for schedule %s", e.SeatNumber, e.ScheduleID)
}

func (e *SeatUnavailableError) Is(target error) bool { return target == ErrSeatUnavailable }

// StorageError wraps an opaque backend failure. It is never retried here.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

func SeatUnavailable(scheduleID string, seat int) error {
	return &SeatUnavailableError{ScheduleID: scheduleID, SeatNumber: seat}
}

func Storage(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// Wrap passes categorised errors through untouched and reports anything else
// as a StorageError for op. Nil stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrSeatUnavailable),
		errors.Is(err, ErrStorage):
		return err
	}
	return Storage(op, err)
}
