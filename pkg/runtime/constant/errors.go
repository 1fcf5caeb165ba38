package constant

import "errors"

var (
	ErrDeviceType   = errors.New("unsupported device type")
	ErrUnknownBoard = errors.New("unsupported board")

	// Validation reasons
	ErrInvalidID             = errors.New("duplicate or invalid id")
	ErrInvalidPinSpec        = errors.New("invalid pin spec")
	ErrInvalidBusAddress     = errors.New("invalid bus address")
	ErrInvalidBusID          = errors.New("invalid bus id")
	ErrInvalidUpdateInterval = errors.New("invalid update interval")
	ErrInvalidChannelSpec    = errors.New("invalid channel spec")
	ErrMalformedRecord       = errors.New("malformed record")

	// Generation environment
	ErrDuplicateID      = errors.New("id already declared")
	ErrAddressInUse     = errors.New("bus address already in use")
	ErrUnknownBus       = errors.New("unknown bus")
	ErrSlotAlreadySet   = errors.New("slot already set")
	ErrForeignComponent = errors.New("component does not belong to this program")
)
