package service

import "errors"

var (
	// ErrStorage wraps any failure reading from or writing to the flight store.
	ErrStorage = errors.New("storage failure")
)
