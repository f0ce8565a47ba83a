package loratx

import (
	"errors"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/spi"
)

var errBusFault = errors.New("spi: transfer failed")

type regWrite struct {
	Reg Register
	V   byte
}

// fakeChip is an spi.Conn behaving like the SX127x register file: writes to
// RegFifo go through RegFifoAddrPtr, writes to RegIrqFlags clear bits.
type fakeChip struct {
	regs   [0x80]byte
	fifo   [FifoSize]byte
	frames [][]byte
	writes []regWrite

	// failAt makes the n-th transaction (1-based) fail.
	failAt  int
	onWrite func(reg Register, v byte)
}

func newFakeChip() *fakeChip {
	f := &fakeChip{}
	f.regs[RegVersion] = ChipVersion
	return f
}

func (f *fakeChip) String() string      { return "fakeChip" }
func (f *fakeChip) Duplex() conn.Duplex { return conn.Full }

func (f *fakeChip) TxPackets(p []spi.Packet) error {
	return errors.New("fakeChip: TxPackets not supported")
}

func (f *fakeChip) Tx(w, r []byte) error {
	if f.failAt == len(f.frames)+1 {
		f.frames = append(f.frames, append([]byte(nil), w...))
		return errBusFault
	}
	f.frames = append(f.frames, append([]byte(nil), w...))
	reg := Register(w[0] & addressMask)
	if w[0]&writeBit != 0 {
		v := w[1]
		f.writes = append(f.writes, regWrite{reg, v})
		switch reg {
		case RegFifo:
			f.fifo[f.regs[RegFifoAddrPtr]] = v
			f.regs[RegFifoAddrPtr]++
		case RegIrqFlags:
			f.regs[RegIrqFlags] &^= v
		default:
			f.regs[reg] = v
		}
		if f.onWrite != nil {
			f.onWrite(reg, v)
		}
		return nil
	}
	for i := 1; i < len(r); i++ {
		if reg == RegFifo {
			r[i] = f.fifo[f.regs[RegFifoAddrPtr]]
			f.regs[RegFifoAddrPtr]++
			continue
		}
		r[i] = f.regs[reg]
	}
	return nil
}

// writesTo returns the values written to reg, in order.
func (f *fakeChip) writesTo(reg Register) []byte {
	var out []byte
	for _, w := range f.writes {
		if w.Reg == reg {
			out = append(out, w.V)
		}
	}
	return out
}

// newTestLora returns a driver on a fake chip with delays disabled.
func newTestLora(t *testing.T) (*Lora, *fakeChip) {
	t.Helper()
	chip := newFakeChip()
	l, err := New(chip, &gpiotest.Pin{N: "RST"}, nil, DefaultConfig())
	assert.NilError(t, err)
	l.delay = func(time.Duration) {}
	return l, chip
}

// readyLora returns a driver in LoRa standby with carrier and modem
// programmed, and the fake chip's transcript cleared.
func readyLora(t *testing.T) (*Lora, *fakeChip) {
	t.Helper()
	l, chip := newTestLora(t)
	assert.NilError(t, l.Init())
	assert.Equal(t, l.State(), StateStandby)
	chip.frames = nil
	chip.writes = nil
	return l, chip
}
