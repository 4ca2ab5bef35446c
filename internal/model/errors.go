package model

import "errors"

// Common errors used across the application
var (
	// Player record errors
	ErrPlayerNotFound = errors.New("player not found")

	// Code pool errors
	ErrCodeIndexOutOfRange = errors.New("code index out of range")
)
