package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrManagerClosed is returned by operations on a subscription manager after Close.
	ErrManagerClosed = errors.New("subscription manager is closed")
	// ErrSessionNotFound is returned when no live session exists for a wallet.
	ErrSessionNotFound = errors.New("wallet session not found")
	// ErrInvalidAddress is returned for malformed 0x addresses.
	ErrInvalidAddress = errors.New("invalid wallet address")
)

// TransportInitError reports that the stream or RPC transport could not be constructed.
type TransportInitError struct {
	Endpoint string
	Err      error
}

func (e *TransportInitError) Error() string {
	return fmt.Sprintf("failed to initialize transport %s: %v", e.Endpoint, e.Err)
}

func (e *TransportInitError) Unwrap() error {
	return e.Err
}
