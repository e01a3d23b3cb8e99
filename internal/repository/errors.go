package repository

import "errors"

var (
	// ErrRecordNotFound indicates no proof record exists for the campaign
	ErrRecordNotFound = errors.New("proof record not found")

	// ErrStoreUnavailable indicates the durable store is unavailable
	ErrStoreUnavailable = errors.New("proof store unavailable")
)
