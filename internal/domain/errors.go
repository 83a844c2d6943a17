package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAuthentication      = errors.New("authentication required")
	ErrRewardNotFound      = errors.New("reward not found")
	ErrInsufficientPoints  = errors.New("insufficient points")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBackingStore        = errors.New("backing store failure")
	ErrInvalidAmount       = errors.New("invalid points amount")
	ErrInvalidCursor       = errors.New("invalid cursor")
)

var (
	ErrPurchaseAlreadyExistsByUser = errors.New("purchase already registered by user")
	ErrPurchaseAlreadyExists       = errors.New("purchase already registered")
	ErrPurchaseAlreadyProcessed    = errors.New("purchase already processed")
)

var ErrUserExists = errors.New("username already taken")

// ConfigError reports a malformed tier catalog or service configuration.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "config: " + e.Reason
}

func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// StoreError marks err as a backing store failure while keeping it inspectable.
func StoreError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrBackingStore, op, err)
}
