package loratx

import (
	"context"
	"errors"
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

// deliver places a packet in the fake chip as the modem would.
func deliver(chip *fakeChip, at byte, data string, irq byte) {
	copy(chip.fifo[at:], data)
	chip.regs[RegRxNbBytes] = byte(len(data))
	chip.regs[RegFifoRxCurrentAddr] = at
	chip.regs[RegPktRssiValue] = 100
	chip.regs[RegPktSnrValue] = 0xf8 // -8, i.e. -2dB
	chip.regs[RegIrqFlags] = irq
}

func TestStartReceive(t *testing.T) {
	l, chip := readyLora(t)
	assert.NilError(t, l.StartReceive())
	assert.Equal(t, l.State(), StateReceive)
	assert.Equal(t, chip.regs[RegDioMapping1], byte(0x00))
	assert.Equal(t, chip.regs[RegOpMode], byte(0x85))

	// Back to standby remaps DIO0 to TxDone.
	assert.NilError(t, l.Standby())
	assert.Equal(t, chip.regs[RegOpMode], byte(0x81))
	assert.Equal(t, chip.regs[RegDioMapping1], byte(0x40))
}

func TestStartReceiveNeedsStandby(t *testing.T) {
	l, chip := newTestLora(t)
	err := l.StartReceive()
	assert.Assert(t, errors.Is(err, ErrPreconditionNotMet))
	assert.Equal(t, len(chip.frames), 0)
}

func TestReadMessage(t *testing.T) {
	l, chip := readyLora(t)
	assert.NilError(t, l.StartReceive())

	_, err := l.ReadMessage()
	assert.Assert(t, errors.Is(err, ErrRxNotDone))

	deliver(chip, 0x10, "ping", IrqRxDoneMask)
	m, err := l.ReadMessage()
	assert.NilError(t, err)
	assert.Equal(t, string(m.Data), "ping")
	assert.Equal(t, m.RSSI, 100-157)
	assert.Equal(t, m.SNR, -2.0)
	assert.Equal(t, chip.regs[RegIrqFlags], byte(0))
	assert.Equal(t, l.State(), StateReceive)
}

func TestReadMessageCrcError(t *testing.T) {
	l, chip := readyLora(t)
	assert.NilError(t, l.StartReceive())
	deliver(chip, 0, "bad", IrqRxDoneMask|IrqPayloadCrcErrorMask)
	_, err := l.ReadMessage()
	assert.Assert(t, errors.Is(err, ErrCrcNotMatched))
	assert.Equal(t, chip.regs[RegIrqFlags], byte(0))
}

func TestReceiveWaits(t *testing.T) {
	l, chip := readyLora(t)
	assert.NilError(t, l.StartReceive())
	go func() {
		time.Sleep(5 * time.Millisecond)
		l.mu.Lock()
		deliver(chip, 0x40, "hello", IrqRxDoneMask)
		l.mu.Unlock()
	}()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	m, err := l.Receive(ctx)
	assert.NilError(t, err)
	assert.Equal(t, string(m.Data), "hello")
}

func TestRssiLowBand(t *testing.T) {
	l, _ := readyLora(t)
	assert.NilError(t, l.SetFrequency(433e6))
	assert.Equal(t, l.rssi(100), 100-164)
}
