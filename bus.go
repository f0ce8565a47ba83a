package loratx

import "periph.io/x/conn/v3/gpio"

// ReadRegister reads one register.
func (l *Lora) ReadRegister(reg Register) (byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readRegister(reg)
}

// ReadRegisterBytes reads n bytes starting at reg in a single transaction.
// Reading RegFifo this way drains the FIFO from RegFifoAddrPtr onwards.
func (l *Lora) ReadRegisterBytes(reg Register, n int) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readRegisterBytes(reg, n)
}

// WriteRegister writes one register.
func (l *Lora) WriteRegister(reg Register, value byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writeRegister(reg, value)
}

// BurstWrite writes each byte of data to reg in its own transaction, in
// order. It stops at the first failure.
func (l *Lora) BurstWrite(reg Register, data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.burstWrite(reg, data)
}

func (l *Lora) readRegister(reg Register) (byte, error) {
	w := []byte{byte(reg) & addressMask, 0x00}
	r := make([]byte, len(w))
	if err := l.tx(w, r); err != nil {
		return 0, &BusError{Op: "read", Reg: reg, Err: err}
	}
	return r[1], nil
}

func (l *Lora) readRegisterBytes(reg Register, n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	w := make([]byte, n+1)
	w[0] = byte(reg) & addressMask
	r := make([]byte, len(w))
	if err := l.tx(w, r); err != nil {
		return nil, &BusError{Op: "read", Reg: reg, Err: err}
	}
	return r[1:], nil
}

func (l *Lora) writeRegister(reg Register, value byte) error {
	if err := l.tx([]byte{byte(reg) | writeBit, value}, nil); err != nil {
		return &BusError{Op: "write", Reg: reg, Err: err}
	}
	return nil
}

func (l *Lora) burstWrite(reg Register, data []byte) error {
	for _, b := range data {
		if err := l.writeRegister(reg, b); err != nil {
			return err
		}
	}
	return nil
}

// tx runs one transaction, framing it with the manual chip select when the
// SPI port does not drive CS itself.
func (l *Lora) tx(w, r []byte) error {
	if l.cs == nil {
		return l.conn.Tx(w, r)
	}
	if err := l.cs.Out(gpio.Low); err != nil {
		return err
	}
	err := l.conn.Tx(w, r)
	if csErr := l.cs.Out(gpio.High); err == nil {
		err = csErr
	}
	return err
}
