package loratx

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Config is the deployment description of one radio: how it is wired and
// what it should be programmed with.
type Config struct {
	// SPIPort is a spireg name such as "/dev/spidev0.0" or "SPI0.0". Empty
	// selects the first port found.
	SPIPort    string `json:"spi_port"`
	SPISpeedHz int64  `json:"spi_speed_hz"`
	// ResetPin and DIO0Pin are gpioreg names. DIO0Pin is optional; without
	// it completion is detected by polling RegIrqFlags.
	ResetPin string `json:"reset_pin"`
	DIO0Pin  string `json:"dio0_pin,omitempty"`
	// CSPin is only needed when the SPI port does not drive chip select.
	CSPin string `json:"cs_pin,omitempty"`

	RefClockHz     uint64      `json:"ref_clock_hz"`
	FrequencyHz    uint64      `json:"frequency_hz"`
	Modem          ModemConfig `json:"modem"`
	FifoTxBase     byte        `json:"fifo_tx_base"`
	FifoRxBase     byte        `json:"fifo_rx_base"`
	SyncWord       byte        `json:"sync_word"`
	PreambleLength uint16      `json:"preamble_length"`
	TxPower        uint8       `json:"tx_power_dbm"`
	PABoost        bool        `json:"pa_boost"`
	LnaBoost       bool        `json:"lna_boost"`

	// SettleDelay is waited between sleep and standby.
	SettleDelay  Duration `json:"settle_delay"`
	PollInterval Duration `json:"poll_interval"`
}

// DefaultConfig returns an SX1276 on a 32MHz crystal at 915MHz, SF7,
// 125kHz, 4/5, CRC on. Pins are left empty.
func DefaultConfig() Config {
	return Config{
		SPISpeedHz:  4e6,
		RefClockHz:  DefaultRefClockHz,
		FrequencyHz: 915e6,
		Modem: ModemConfig{
			Bandwidth:       BW125k,
			CodingRate:      CR4_5,
			SpreadingFactor: SF7,
			CRC:             true,
			AGC:             true,
		},
		FifoTxBase:     0x80,
		FifoRxBase:     0x00,
		SyncWord:       0x12,
		PreambleLength: 8,
		TxPower:        17,
		PABoost:        true,
		LnaBoost:       true,
		SettleDelay:    Duration(10 * time.Millisecond),
		PollInterval:   Duration(time.Millisecond),
	}
}

// LoadConfig reads a JSON file over DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the radio parameters. Pin names are checked by Open.
func (c Config) Validate() error {
	switch {
	case c.RefClockHz == 0:
		return fmt.Errorf("%w: reference clock not set", ErrInvalidConfig)
	case !frequencyInRange(c.FrequencyHz, c.RefClockHz):
		return fmt.Errorf("%w: frequency %d Hz", ErrInvalidConfig, c.FrequencyHz)
	case c.SPISpeedHz <= 0:
		return fmt.Errorf("%w: spi speed %d", ErrInvalidConfig, c.SPISpeedHz)
	case c.PreambleLength < 6:
		return fmt.Errorf("%w: preamble length %d", ErrInvalidConfig, c.PreambleLength)
	case c.PollInterval <= 0:
		return fmt.Errorf("%w: poll interval %s", ErrInvalidConfig, c.PollInterval)
	}
	if _, err := paConfig(c.TxPower, c.PABoost); err != nil {
		return err
	}
	return c.Modem.Validate()
}

// paConfig encodes RegPaConfig with MaxPower at its ceiling.
func paConfig(dBm uint8, boost bool) (byte, error) {
	if boost {
		if dBm < 2 || dBm > 17 {
			return 0, fmt.Errorf("%w: tx power %d dBm with PA_BOOST", ErrInvalidConfig, dBm)
		}
		return PABoost | 0x70 | (dBm - 2), nil
	}
	if dBm > 14 {
		return 0, fmt.Errorf("%w: tx power %d dBm on RFO", ErrInvalidConfig, dBm)
	}
	return 0x70 | dBm, nil
}

// Duration is a time.Duration that reads "10ms" style strings from JSON.
type Duration time.Duration

func (d Duration) Duration() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case float64:
		*d = Duration(v)
	case string:
		p, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*d = Duration(p)
	default:
		return fmt.Errorf("invalid duration %s", b)
	}
	return nil
}
