package loratx

import "fmt"

// State is the driver's view of the chip operating mode. Every state other
// than StatePoweredUnknown implies LoRa modulation.
type State uint8

const (
	StatePoweredUnknown State = iota
	StateSleep
	StateStandby
	StateTransmit
	StateReceive
)

func (s State) String() string {
	switch s {
	case StatePoweredUnknown:
		return "PoweredUnknown"
	case StateSleep:
		return "SleepLoRa"
	case StateStandby:
		return "StandbyLoRa"
	case StateTransmit:
		return "TransmitLoRa"
	case StateReceive:
		return "ReceiveLoRa"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// State returns the last mode the driver put the chip in. The chip leaves
// TransmitLoRa on its own; the driver only notices through TxDone,
// WaitTxDone or an explicit Standby.
func (l *Lora) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Sleep puts the chip in LoRa sleep. This is the only transition allowed
// after a reset, since the modulation flag is latched only while asleep.
func (l *Lora) Sleep() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enterSleep()
}

// Standby puts the chip in LoRa standby. From TransmitLoRa it aborts any
// transmission still in progress.
func (l *Lora) Standby() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enterStandby()
}

func (l *Lora) enterSleep() error {
	from := l.state
	if err := l.setMode(ModeSleep); err != nil {
		return err
	}
	l.state = StateSleep
	return l.leave(from)
}

func (l *Lora) enterStandby() error {
	from := l.state
	switch from {
	case StatePoweredUnknown:
		return l.illegal(from, StateStandby)
	case StateStandby:
		return nil
	case StateSleep:
		l.delay(l.cfg.SettleDelay.Duration())
	}
	if err := l.setMode(ModeStandby); err != nil {
		return err
	}
	l.state = StateStandby
	return l.leave(from)
}

// leave undoes what a mode left behind once the chip is out of it. A TxDone
// flag nobody observed would otherwise complete the next transmission at
// once.
func (l *Lora) leave(from State) error {
	switch from {
	case StateTransmit:
		return l.writeRegister(RegIrqFlags, IrqTxDoneMask)
	case StateReceive:
		return l.writeRegister(RegDioMapping1, dio0TxDone)
	}
	return nil
}

// startTransmit is the last step of a FIFO load. It is only reachable from
// standby with the carrier and modem already programmed.
func (l *Lora) startTransmit() error {
	if l.state != StateStandby {
		return l.illegal(l.state, StateTransmit)
	}
	if !l.frequencySet || !l.modemSet {
		return fmt.Errorf("%w: transmit before frequency and modem configuration", ErrPreconditionNotMet)
	}
	if err := l.setMode(ModeTx); err != nil {
		return err
	}
	l.state = StateTransmit
	return nil
}

func (l *Lora) setMode(m Mode) error {
	if err := l.writeRegister(RegOpMode, byte(ModeLongRange|m)); err != nil {
		return err
	}
	l.log("mode %s -> %#02x", l.state, byte(ModeLongRange|m))
	return nil
}

func (l *Lora) requireState(want State, op string) error {
	if l.state != want {
		return fmt.Errorf("%w: %s requires %s, radio is %s", ErrPreconditionNotMet, op, want, l.state)
	}
	return nil
}

func (l *Lora) illegal(from, to State) error {
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
}
