package loratx

import "fmt"

// Packet is a payload to be placed in the chip FIFO at FifoBaseAddress.
// The driver does not keep Payload once LoadAndTransmit returns.
type Packet struct {
	Payload         []byte
	FifoBaseAddress byte
}

// Check reports whether the packet fits the FIFO above its base address.
func (p Packet) Check() error {
	n := len(p.Payload)
	if n == 0 {
		return fmt.Errorf("%w: empty payload", ErrPreconditionNotMet)
	}
	room := FifoSize - int(p.FifoBaseAddress)
	if room > MaxPktLength {
		room = MaxPktLength
	}
	if n > room {
		return fmt.Errorf("%w: %d bytes at base 0x%02x, room for %d", ErrPayloadTooLarge, n, p.FifoBaseAddress, room)
	}
	return nil
}

// Transmit loads payload at the configured TX base address and starts
// transmitting.
func (l *Lora) Transmit(payload []byte) error {
	return l.LoadAndTransmit(Packet{Payload: payload, FifoBaseAddress: l.cfg.FifoTxBase})
}

// LoadAndTransmit writes the packet into the FIFO, sets the payload length
// and switches the chip to transmit. Every precondition is checked before
// the first register write. It returns once the chip has been told to
// transmit; see TxDone and WaitTxDone for completion.
func (l *Lora) LoadAndTransmit(p Packet) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != StateStandby {
		return l.illegal(l.state, StateTransmit)
	}
	if !l.frequencySet || !l.modemSet {
		return fmt.Errorf("%w: transmit before frequency and modem configuration", ErrPreconditionNotMet)
	}
	if err := p.Check(); err != nil {
		return err
	}

	if err := l.writeRegister(RegFifoTxBaseAddr, p.FifoBaseAddress); err != nil {
		return err
	}
	if err := l.writeRegister(RegFifoAddrPtr, p.FifoBaseAddress); err != nil {
		return err
	}
	if err := l.burstWrite(RegFifo, p.Payload); err != nil {
		return err
	}
	if err := l.writeRegister(RegPayloadLength, byte(len(p.Payload))); err != nil {
		return err
	}
	if err := l.startTransmit(); err != nil {
		return err
	}
	l.log("tx %d bytes from fifo 0x%02x", len(p.Payload), p.FifoBaseAddress)
	return nil
}
