package loratx

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NilError(t, DefaultConfig().Validate())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "radio.json")
	err := os.WriteFile(path, []byte(`{
		"spi_port": "/dev/spidev0.0",
		"reset_pin": "GPIO14",
		"dio0_pin": "GPIO26",
		"frequency_hz": 868100000,
		"modem": {"bandwidth_hz": 250000, "coding_rate": 2, "spreading_factor": 9, "crc": true},
		"settle_delay": "5ms"
	}`), 0o644)
	assert.NilError(t, err)

	cfg, err := LoadConfig(path)
	assert.NilError(t, err)
	assert.Equal(t, cfg.SPIPort, "/dev/spidev0.0")
	assert.Equal(t, cfg.ResetPin, "GPIO14")
	assert.Equal(t, cfg.DIO0Pin, "GPIO26")
	assert.Equal(t, cfg.FrequencyHz, uint64(868100000))
	assert.Equal(t, cfg.Modem.Bandwidth, BW250k)
	assert.Equal(t, cfg.Modem.SpreadingFactor, SF9)
	assert.Equal(t, cfg.SettleDelay.Duration(), 5*time.Millisecond)
	// Untouched fields keep their defaults.
	assert.Equal(t, cfg.RefClockHz, DefaultRefClockHz)
	assert.Equal(t, cfg.FifoTxBase, byte(0x80))
	assert.Equal(t, cfg.PollInterval.Duration(), time.Millisecond)
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "radio.json")
	assert.NilError(t, os.WriteFile(path, []byte(`{"modem": {"spreading_factor": 6}}`), 0o644))
	_, err := LoadConfig(path)
	assert.Assert(t, errors.Is(err, ErrInvalidConfig))

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Assert(t, errors.Is(err, os.ErrNotExist))
}

func TestConfigValidate(t *testing.T) {
	for _, tc := range []struct {
		desc   string
		mutate func(*Config)
	}{
		{"no crystal", func(c *Config) { c.RefClockHz = 0 }},
		{"no carrier", func(c *Config) { c.FrequencyHz = 0 }},
		{"carrier above synthesizer range", func(c *Config) { c.FrequencyHz = 1100e6 }},
		{"carrier wrapping the word", func(c *Config) { c.FrequencyHz = 1<<45 + 915e6 }},
		{"short preamble", func(c *Config) { c.PreambleLength = 4 }},
		{"PA_BOOST too hot", func(c *Config) { c.TxPower = 20 }},
		{"RFO too hot", func(c *Config) { c.PABoost = false; c.TxPower = 15 }},
		{"no poll interval", func(c *Config) { c.PollInterval = 0 }},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			assert.Assert(t, errors.Is(cfg.Validate(), ErrInvalidConfig))
		})
	}
}

func TestPaConfig(t *testing.T) {
	v, err := paConfig(17, true)
	assert.NilError(t, err)
	assert.Equal(t, v, byte(0xff))
	v, err = paConfig(2, true)
	assert.NilError(t, err)
	assert.Equal(t, v, byte(0xf0))
	v, err = paConfig(14, false)
	assert.NilError(t, err)
	assert.Equal(t, v, byte(0x7e))
}

func TestDurationJSON(t *testing.T) {
	var d Duration
	assert.NilError(t, json.Unmarshal([]byte(`"250us"`), &d))
	assert.Equal(t, d.Duration(), 250*time.Microsecond)
	assert.NilError(t, json.Unmarshal([]byte(`1000`), &d))
	assert.Equal(t, d.Duration(), time.Microsecond)
	assert.Assert(t, json.Unmarshal([]byte(`true`), &d) != nil)

	b, err := json.Marshal(Duration(10 * time.Millisecond))
	assert.NilError(t, err)
	assert.Equal(t, string(b), `"10ms"`)
}
