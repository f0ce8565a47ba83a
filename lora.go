// Package loratx drives a Semtech SX127x transceiver in LoRa mode over SPI.
//
// A Lora owns its SPI connection and the reset, DIO0 and optional chip
// select lines. Every exported method takes the driver lock for its whole
// register sequence, so a FIFO load is never interleaved with another
// goroutine's writes.
//
// Typical use:
//
//	l, err := loratx.Open(cfg)
//	...
//	if err := l.Init(); err != nil { ... }
//	if err := l.Transmit([]byte("hello")); err != nil { ... }
//	err = l.WaitTxDone(ctx) // optional
package loratx

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/driver/driverreg"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// LogPrintf is a function used by the driver to print logging info.
type LogPrintf func(format string, v ...interface{})

type Lora struct {
	mu   sync.Mutex
	conn spi.Conn
	port spi.PortCloser
	rst  gpio.PinOut
	dio0 gpio.PinIn
	cs   gpio.PinOut
	cfg  Config

	delay func(time.Duration)
	logf  LogPrintf

	state        State
	frequency    uint64
	frequencySet bool
	modem        ModemConfig
	modemSet     bool
}

// New wraps an already connected SPI device. reset is mandatory, dio0 may
// be nil.
func New(conn spi.Conn, reset gpio.PinOut, dio0 gpio.PinIn, cfg Config) (*Lora, error) {
	if conn == nil {
		return nil, errors.New("loratx: nil spi connection")
	}
	if reset == nil {
		return nil, errors.New("loratx: nil reset pin")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Lora{
		conn:  conn,
		rst:   reset,
		dio0:  dio0,
		cfg:   cfg,
		delay: time.Sleep,
		logf:  func(string, ...interface{}) {},
		state: StatePoweredUnknown,
	}, nil
}

// Open initializes the host drivers, opens cfg.SPIPort and looks up the
// configured pins. The radio itself is not touched; call Init.
func Open(cfg Config) (*Lora, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ResetPin == "" {
		return nil, fmt.Errorf("%w: reset pin not set", ErrInvalidConfig)
	}
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	if _, err := driverreg.Init(); err != nil {
		return nil, err
	}

	p, err := spireg.Open(cfg.SPIPort)
	if err != nil {
		return nil, err
	}
	l, err := open(p, cfg)
	if err != nil {
		p.Close()
		return nil, err
	}
	return l, nil
}

func open(p spi.PortCloser, cfg Config) (*Lora, error) {
	c, err := p.Connect(physic.Frequency(cfg.SPISpeedHz)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		return nil, err
	}

	reset := gpioreg.ByName(cfg.ResetPin)
	if reset == nil {
		return nil, fmt.Errorf("failed to find RESET pin %q", cfg.ResetPin)
	}
	if err := reset.Out(gpio.High); err != nil {
		return nil, err
	}

	var dio0 gpio.PinIn
	if cfg.DIO0Pin != "" {
		pin := gpioreg.ByName(cfg.DIO0Pin)
		if pin == nil {
			return nil, fmt.Errorf("failed to find DIO0 pin %q", cfg.DIO0Pin)
		}
		if err := pin.In(gpio.PullDown, gpio.RisingEdge); err != nil {
			return nil, err
		}
		dio0 = pin
	}

	l, err := New(c, reset, dio0, cfg)
	if err != nil {
		return nil, err
	}
	l.port = p

	if cfg.CSPin != "" {
		cs := gpioreg.ByName(cfg.CSPin)
		if cs == nil {
			return nil, fmt.Errorf("failed to find CS pin %q", cfg.CSPin)
		}
		if err := l.SetChipSelect(cs); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// SetLogger sets a logging function, nil disables logging, which is the
// default.
func (l *Lora) SetLogger(f LogPrintf) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if f == nil {
		f = func(string, ...interface{}) {}
	}
	l.logf = f
}

// SetChipSelect makes the driver frame each transaction with cs, for SPI
// ports that leave chip select to the caller. The line is parked high.
func (l *Lora) SetChipSelect(cs gpio.PinOut) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if cs != nil {
		if err := cs.Out(gpio.High); err != nil {
			return err
		}
	}
	l.cs = cs
	return nil
}

// Config returns the configuration the driver was built with.
func (l *Lora) Config() Config {
	return l.cfg
}

// Init resets the chip, checks its version and programs it from the
// configuration, leaving it in LoRa standby ready to transmit.
func (l *Lora) Init() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.reset(); err != nil {
		return err
	}
	v, err := l.readRegister(RegVersion)
	if err != nil {
		return err
	}
	if v != ChipVersion {
		return fmt.Errorf("%w: expect 0x%02x found 0x%02x", ErrGetVersion, ChipVersion, v)
	}

	if err := l.enterSleep(); err != nil {
		return err
	}
	if err := l.enterStandby(); err != nil {
		return err
	}
	if err := l.setFrequency(l.cfg.FrequencyHz); err != nil {
		return err
	}
	if err := l.applyModemConfig(l.cfg.Modem); err != nil {
		return err
	}
	if err := l.setLnaBoost(l.cfg.LnaBoost); err != nil {
		return err
	}

	pa, err := paConfig(l.cfg.TxPower, l.cfg.PABoost)
	if err != nil {
		return err
	}
	for _, w := range []struct {
		reg Register
		v   byte
	}{
		{RegSyncWord, l.cfg.SyncWord},
		{RegPreambleMsb, byte(l.cfg.PreambleLength >> 8)},
		{RegPreambleLsb, byte(l.cfg.PreambleLength)},
		{RegPaConfig, pa},
		{RegFifoRxBaseAddr, l.cfg.FifoRxBase},
		{RegDioMapping1, dio0TxDone},
		{RegIrqFlags, IrqAllMask},
	} {
		if err := l.writeRegister(w.reg, w.v); err != nil {
			return err
		}
	}
	l.log("initialized: %s", physic.Frequency(l.frequency)*physic.Hertz)
	return nil
}

// setLnaBoost flips the LNA current boost and keeps the gain bits.
func (l *Lora) setLnaBoost(boost bool) error {
	lna, err := l.readRegister(RegLna)
	if err != nil {
		return err
	}
	if boost {
		return l.writeRegister(RegLna, lna|LnaBoostHf)
	}
	return l.writeRegister(RegLna, lna&^LnaBoostHf)
}

// Version reads RegVersion.
func (l *Lora) Version() (byte, error) {
	return l.ReadRegister(RegVersion)
}

// Close puts the chip to sleep when it was initialized and releases the
// SPI port if Open created it.
func (l *Lora) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var err error
	if l.state != StatePoweredUnknown {
		err = l.enterSleep()
	}
	if l.port != nil {
		if cerr := l.port.Close(); err == nil {
			err = cerr
		}
		l.port = nil
	}
	return err
}

func (l *Lora) log(format string, v ...interface{}) {
	l.logf(format, v...)
}
