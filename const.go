package loratx

// Register is a chip register address in 0x00-0x7F. The read/write tag bit is
// applied by the bus layer and never stored here.
type Register byte

// Mode is the low three bits of RegOpMode.
type Mode byte

const (
	RegFifo              Register = 0x00
	RegOpMode            Register = 0x01
	RegFrfMsb            Register = 0x06
	RegFrfMid            Register = 0x07
	RegFrfLsb            Register = 0x08
	RegPaConfig          Register = 0x09
	RegLna               Register = 0x0c
	RegFifoAddrPtr       Register = 0x0d
	RegFifoTxBaseAddr    Register = 0x0e
	RegFifoRxBaseAddr    Register = 0x0f
	RegFifoRxCurrentAddr Register = 0x10
	RegIrqFlags          Register = 0x12
	RegRxNbBytes         Register = 0x13
	RegPktSnrValue       Register = 0x19
	RegPktRssiValue      Register = 0x1a
	RegModemConfig1      Register = 0x1d
	RegModemConfig2      Register = 0x1e
	RegPreambleMsb       Register = 0x20
	RegPreambleLsb       Register = 0x21
	RegPayloadLength     Register = 0x22
	RegModemConfig3      Register = 0x26
	RegSyncWord          Register = 0x39
	RegDioMapping1       Register = 0x40
	RegVersion           Register = 0x42
)

const (
	// ModeLongRange selects LoRa modulation. It is only latched while the
	// chip is asleep.
	ModeLongRange    Mode = 0x80
	ModeSleep        Mode = 0x00
	ModeStandby      Mode = 0x01
	ModeTx           Mode = 0x03
	ModeRxContinuous Mode = 0x05
)

const (
	// Bus transaction tag bits.
	writeBit    byte = 0x80
	addressMask byte = 0x7f
)

const (
	IrqTxDoneMask          byte = 0x08
	IrqPayloadCrcErrorMask byte = 0x20
	IrqRxDoneMask          byte = 0x40
	IrqAllMask             byte = 0xff
)

// RegDioMapping1 values: bits 7-6 select the DIO0 source.
const (
	dio0RxDone byte = 0x00
	dio0TxDone byte = 0x40
)

// Modem configuration bitfields.
const (
	mc1BandwidthShift  = 4
	mc1CodingRateShift = 1
	mc2SpreadingShift  = 4
	mc2CrcOn           = 0x04
	mc3LowDataRateOpt  = 0x08
	mc3AgcAutoOn       = 0x04
)

const (
	PABoost byte = 0x80
	// LnaBoostHf is the high-frequency LNA current boost field of RegLna.
	LnaBoostHf byte = 0x03

	// ChipVersion is the silicon revision reported by RegVersion.
	ChipVersion byte = 0x12

	// FifoSize is the size of the chip's shared TX/RX buffer.
	FifoSize = 256
	// MaxPktLength is the largest value RegPayloadLength can hold.
	MaxPktLength = 255

	RfMidBandThreshold uint64 = 525e6
	RssiOffsetHfPort          = 157
	RssiOffsetLfPort          = 164
)
