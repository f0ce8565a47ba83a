package loratx

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

const (
	resetHold   = time.Millisecond
	resetSettle = 10 * time.Millisecond
)

// Reset pulses the reset line and forgets everything programmed so far. It
// must complete before any register access.
func (l *Lora) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reset()
}

func (l *Lora) reset() error {
	if err := l.rst.Out(gpio.Low); err != nil {
		return err
	}
	l.delay(resetHold)
	if err := l.rst.Out(gpio.High); err != nil {
		return err
	}
	l.delay(resetSettle)

	l.state = StatePoweredUnknown
	l.frequencySet = false
	l.modemSet = false
	l.log("reset")
	return nil
}
