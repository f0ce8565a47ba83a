package loratx

import (
	"errors"
	"fmt"
)

var (
	ErrBus                = errors.New("bus transaction failed")
	ErrIllegalTransition  = errors.New("illegal mode transition")
	ErrPayloadTooLarge    = errors.New("payload too large")
	ErrPreconditionNotMet = errors.New("precondition not met")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrGetVersion         = errors.New("version not matched")
	ErrRxNotDone          = errors.New("rx not done")
	ErrCrcNotMatched      = errors.New("crc not matched")
)

// BusError reports a failed SPI transaction. It matches ErrBus with
// errors.Is and unwraps to the transport error.
type BusError struct {
	Op  string
	Reg Register
	Err error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("%s register 0x%02x: %v: %v", e.Op, byte(e.Reg), ErrBus, e.Err)
}

func (e *BusError) Unwrap() error { return e.Err }

func (e *BusError) Is(target error) bool { return target == ErrBus }
