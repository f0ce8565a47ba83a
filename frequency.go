package loratx

import "fmt"

// DefaultRefClockHz is the usual crystal fitted next to an SX127x.
const DefaultRefClockHz uint64 = 32e6

// FrequencyWord is the 24-bit carrier setting held in RegFrfMsb..RegFrfLsb.
type FrequencyWord uint32

const maxFrequencyWord FrequencyWord = 1<<24 - 1

// ComputeFrequencyWord returns hz * 2^19 / refClockHz, truncated to 24 bits.
func ComputeFrequencyWord(hz, refClockHz uint64) FrequencyWord {
	return FrequencyWord((hz<<19)/refClockHz) & maxFrequencyWord
}

func frequencyInRange(hz, refClockHz uint64) bool {
	// hz<<19 must not wrap.
	if hz == 0 || hz >= 1<<45 {
		return false
	}
	return (hz<<19)/refClockHz <= uint64(maxFrequencyWord)
}

// Bytes returns the word in register order: MSB, MID, LSB.
func (w FrequencyWord) Bytes() [3]byte {
	return [3]byte{byte(w >> 16), byte(w >> 8), byte(w)}
}

// Hz converts the word back to a carrier frequency.
func (w FrequencyWord) Hz(refClockHz uint64) uint64 {
	return (uint64(w) * refClockHz) >> 19
}

// FrequencyStep is the synthesizer resolution for the given crystal.
func FrequencyStep(refClockHz uint64) uint64 {
	return refClockHz >> 19
}

// SetFrequency programs the carrier. The chip must be in LoRa standby.
func (l *Lora) SetFrequency(hz uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.setFrequency(hz)
}

func (l *Lora) setFrequency(hz uint64) error {
	if err := l.requireState(StateStandby, "set frequency"); err != nil {
		return err
	}
	if !frequencyInRange(hz, l.cfg.RefClockHz) {
		return fmt.Errorf("%w: frequency %d Hz", ErrInvalidConfig, hz)
	}
	frf := ComputeFrequencyWord(hz, l.cfg.RefClockHz).Bytes()
	// The synthesizer only takes the new value once the LSB is written.
	if err := l.writeRegister(RegFrfMsb, frf[0]); err != nil {
		return err
	}
	if err := l.writeRegister(RegFrfMid, frf[1]); err != nil {
		return err
	}
	if err := l.writeRegister(RegFrfLsb, frf[2]); err != nil {
		return err
	}
	l.frequency = hz
	l.frequencySet = true
	l.log("frequency %d Hz -> %#02x %#02x %#02x", hz, frf[0], frf[1], frf[2])
	return nil
}
