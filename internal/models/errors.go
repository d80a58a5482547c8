package models

import "errors"

// Custom errors
var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key violation")
	ErrInvalidID    = errors.New("invalid ID format")
	ErrUnknownSport = errors.New("unknown sport")
	ErrInvalidGame  = errors.New("invalid game record")
	ErrEmptyGameLog = errors.New("game log is empty")
)
