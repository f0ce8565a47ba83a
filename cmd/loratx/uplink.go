package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// transmitter is the part of *loratx.Lora the uplink loop needs.
type transmitter interface {
	Transmit(payload []byte) error
	WaitTxDone(ctx context.Context) error
	Standby() error
}

type uplinker struct {
	radio   transmitter
	payload []byte
	wait    bool
	timeout time.Duration
	logf    func(format string, v ...interface{})
}

// run sends the payload once, or every interval until ctx is done. A failed
// uplink is logged and the loop carries on; retry policy is the interval.
func (u *uplinker) run(ctx context.Context, interval time.Duration) error {
	if u.logf == nil {
		u.logf = log.Printf
	}
	if interval <= 0 {
		return u.send(ctx)
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		if err := u.send(ctx); err != nil {
			u.logf("[loratx] uplink failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}

func (u *uplinker) send(ctx context.Context) error {
	id := uuid.New()
	u.logf("[loratx] uplink %s: %d bytes", id, len(u.payload))
	if err := u.radio.Transmit(u.payload); err != nil {
		return err
	}
	if !u.wait {
		// Nobody watches for completion, so the radio is forced back to
		// standby before the next load.
		return u.standbyLater(ctx)
	}
	wctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()
	start := time.Now()
	if err := u.radio.WaitTxDone(wctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			if serr := u.radio.Standby(); serr != nil {
				return errors.Join(err, fmt.Errorf("standby: %w", serr))
			}
		}
		return err
	}
	u.logf("[loratx] uplink %s: tx done after %s", id, time.Since(start).Round(time.Millisecond))
	return nil
}

// standbyLater gives the chip the given timeout to finish on air.
func (u *uplinker) standbyLater(ctx context.Context) error {
	select {
	case <-ctx.Done():
	case <-time.After(u.timeout):
	}
	return u.radio.Standby()
}
