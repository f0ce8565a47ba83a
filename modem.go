package loratx

import "fmt"

// Bandwidth is the LoRa signal bandwidth in Hz.
type Bandwidth uint32

const (
	BW7_8k   Bandwidth = 7800
	BW10_4k  Bandwidth = 10400
	BW15_6k  Bandwidth = 15600
	BW20_8k  Bandwidth = 20800
	BW31_25k Bandwidth = 31250
	BW41_7k  Bandwidth = 41700
	BW62_5k  Bandwidth = 62500
	BW125k   Bandwidth = 125000
	BW250k   Bandwidth = 250000
	BW500k   Bandwidth = 500000
)

// bandwidths is indexed by the RegModemConfig1 bandwidth code.
var bandwidths = [...]Bandwidth{BW7_8k, BW10_4k, BW15_6k, BW20_8k, BW31_25k, BW41_7k, BW62_5k, BW125k, BW250k, BW500k}

func (bw Bandwidth) code() (byte, bool) {
	for i, b := range bandwidths {
		if b == bw {
			return byte(i), true
		}
	}
	return 0, false
}

// CodingRate is the RegModemConfig1 coding rate code, 4/(4+n).
type CodingRate uint8

const (
	CR4_5 CodingRate = 1
	CR4_6 CodingRate = 2
	CR4_7 CodingRate = 3
	CR4_8 CodingRate = 4
)

// SpreadingFactor is log2 of the chips per symbol.
type SpreadingFactor uint8

const (
	SF6 SpreadingFactor = iota + 6
	SF7
	SF8
	SF9
	SF10
	SF11
	SF12
)

// ModemConfig holds the physical layer parameters that must match between
// transmitter and receiver.
type ModemConfig struct {
	Bandwidth       Bandwidth       `json:"bandwidth_hz"`
	CodingRate      CodingRate      `json:"coding_rate"`
	SpreadingFactor SpreadingFactor `json:"spreading_factor"`
	CRC             bool            `json:"crc"`
	// LowDataRateOptimize is mandated when a symbol lasts longer than 16ms.
	LowDataRateOptimize bool `json:"low_data_rate_optimize"`
	// AGC lets the LNA gain follow the AGC loop instead of RegLna.
	AGC bool `json:"agc"`
}

// Validate checks the config without touching the radio. SF6 needs
// implicit header mode, which this driver does not use.
func (c ModemConfig) Validate() error {
	if _, ok := c.Bandwidth.code(); !ok {
		return fmt.Errorf("%w: bandwidth %d Hz", ErrInvalidConfig, c.Bandwidth)
	}
	if c.CodingRate < CR4_5 || c.CodingRate > CR4_8 {
		return fmt.Errorf("%w: coding rate code %d", ErrInvalidConfig, c.CodingRate)
	}
	if c.SpreadingFactor < SF7 || c.SpreadingFactor > SF12 {
		return fmt.Errorf("%w: spreading factor %d", ErrInvalidConfig, c.SpreadingFactor)
	}
	return nil
}

// Registers returns the RegModemConfig1, 2 and 3 values for c.
func (c ModemConfig) Registers() ([3]byte, error) {
	if err := c.Validate(); err != nil {
		return [3]byte{}, err
	}
	bw, _ := c.Bandwidth.code()
	var regs [3]byte
	regs[0] = bw<<mc1BandwidthShift | byte(c.CodingRate)<<mc1CodingRateShift
	regs[1] = byte(c.SpreadingFactor) << mc2SpreadingShift
	if c.CRC {
		regs[1] |= mc2CrcOn
	}
	if c.LowDataRateOptimize {
		regs[2] |= mc3LowDataRateOpt
	}
	if c.AGC {
		regs[2] |= mc3AgcAutoOn
	}
	return regs, nil
}

// ApplyModemConfig writes the three modem configuration registers. The chip
// must be in LoRa standby.
func (l *Lora) ApplyModemConfig(cfg ModemConfig) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.applyModemConfig(cfg)
}

func (l *Lora) applyModemConfig(cfg ModemConfig) error {
	if err := l.requireState(StateStandby, "modem configuration"); err != nil {
		return err
	}
	regs, err := cfg.Registers()
	if err != nil {
		return err
	}
	if err := l.writeRegister(RegModemConfig1, regs[0]); err != nil {
		return err
	}
	if err := l.writeRegister(RegModemConfig2, regs[1]); err != nil {
		return err
	}
	if err := l.writeRegister(RegModemConfig3, regs[2]); err != nil {
		return err
	}
	l.modem = cfg
	l.modemSet = true
	l.log("modem bw=%d cr=4/%d sf=%d crc=%t -> %#02x %#02x %#02x",
		cfg.Bandwidth, 4+cfg.CodingRate, cfg.SpreadingFactor, cfg.CRC, regs[0], regs[1], regs[2])
	return nil
}
