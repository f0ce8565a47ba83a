package loratx

import (
	"context"
	"time"
)

// dio0WaitSlice bounds a single DIO0 edge wait so the context is checked.
const dio0WaitSlice = 50 * time.Millisecond

// TxDone reports whether the transmission started by LoadAndTransmit has
// finished. On completion the TxDone flag is cleared and the driver
// records that the chip is back in standby.
func (l *Lora) TxDone() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireState(StateTransmit, "tx done"); err != nil {
		return false, err
	}
	irq, err := l.readRegister(RegIrqFlags)
	if err != nil {
		return false, err
	}
	if irq&IrqTxDoneMask == 0 {
		return false, nil
	}
	if err := l.writeRegister(RegIrqFlags, IrqTxDoneMask); err != nil {
		return false, err
	}
	l.state = StateStandby
	l.log("tx done")
	return true, nil
}

// WaitTxDone blocks until TxDone reports completion or ctx ends. With a
// DIO0 pin the wait sleeps on its rising edge, otherwise RegIrqFlags is
// polled every PollInterval.
func (l *Lora) WaitTxDone(ctx context.Context) error {
	return l.wait(ctx, l.TxDone)
}

// wait calls check until it reports done. The driver lock is not held
// between calls. Both the DIO0 and the polling path give up with ctx.Err().
func (l *Lora) wait(ctx context.Context, check func() (bool, error)) error {
	for {
		done, err := check()
		if err != nil || done {
			return err
		}
		if l.dio0 != nil {
			if err := ctx.Err(); err != nil {
				return err
			}
			l.dio0.WaitForEdge(dio0WaitSlice)
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.cfg.PollInterval.Duration()):
		}
	}
}
