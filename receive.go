package loratx

import (
	"context"
	"errors"
)

type Message struct {
	Data []byte
	RSSI int
	SNR  float64
}

// StartReceive switches the chip from standby to continuous receive with
// DIO0 signalling RxDone.
func (l *Lora) StartReceive() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireState(StateStandby, "receive"); err != nil {
		return err
	}
	for _, w := range []struct {
		reg Register
		v   byte
	}{
		{RegIrqFlags, IrqAllMask},
		{RegDioMapping1, dio0RxDone},
		{RegFifoRxBaseAddr, l.cfg.FifoRxBase},
		{RegFifoAddrPtr, l.cfg.FifoRxBase},
	} {
		if err := l.writeRegister(w.reg, w.v); err != nil {
			return err
		}
	}
	if err := l.setMode(ModeRxContinuous); err != nil {
		return err
	}
	l.state = StateReceive
	return nil
}

// ReadMessage returns the last received packet, or ErrRxNotDone when none
// is pending. IRQ flags are cleared before the CRC is checked so a bad
// packet does not block the next one.
func (l *Lora) ReadMessage() (*Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireState(StateReceive, "read message"); err != nil {
		return nil, err
	}
	irq, err := l.readRegister(RegIrqFlags)
	if err != nil {
		return nil, err
	}
	if irq&IrqRxDoneMask == 0 {
		return nil, ErrRxNotDone
	}
	if err := l.writeRegister(RegIrqFlags, irq); err != nil {
		return nil, err
	}
	if irq&IrqPayloadCrcErrorMask != 0 {
		return nil, ErrCrcNotMatched
	}

	n, err := l.readRegister(RegRxNbBytes)
	if err != nil {
		return nil, err
	}
	cur, err := l.readRegister(RegFifoRxCurrentAddr)
	if err != nil {
		return nil, err
	}
	if err := l.writeRegister(RegFifoAddrPtr, cur); err != nil {
		return nil, err
	}
	data, err := l.readRegisterBytes(RegFifo, int(n))
	if err != nil {
		return nil, err
	}

	rssi, err := l.readRegister(RegPktRssiValue)
	if err != nil {
		return nil, err
	}
	snr, err := l.readRegister(RegPktSnrValue)
	if err != nil {
		return nil, err
	}
	m := &Message{Data: data, RSSI: l.rssi(rssi), SNR: float64(int8(snr)) * 0.25}
	l.log("rx %d bytes rssi=%d snr=%.2f", len(m.Data), m.RSSI, m.SNR)
	return m, nil
}

// Receive waits for the next packet. The chip must already be receiving.
func (l *Lora) Receive(ctx context.Context) (*Message, error) {
	var msg *Message
	err := l.wait(ctx, func() (bool, error) {
		m, err := l.ReadMessage()
		if errors.Is(err, ErrRxNotDone) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		msg = m
		return true, nil
	})
	return msg, err
}

func (l *Lora) rssi(v byte) int {
	if l.frequency < RfMidBandThreshold {
		return int(v) - RssiOffsetLfPort
	}
	return int(v) - RssiOffsetHfPort
}
