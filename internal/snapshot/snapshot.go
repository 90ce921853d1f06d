// Package snapshot defines the host metrics record exchanged between the
// producer and the sampler, and its line-oriented text encoding.
//
// A snapshot is written as one "<Label>: <value>[ <unit>]" line per field.
// The same labels, in the same order, name the columns of a sampler row.
package snapshot

// Snapshot is one reading of every tracked host metric. Any field whose source
// was unavailable is zero.
type Snapshot struct {
	CPUUser   uint64 // clock ticks
	CPUSystem uint64
	CPUIdle   uint64

	MemTotal  uint64 // kB
	MemFree   uint64
	SwapTotal uint64
	SwapFree  uint64

	DiskRead  uint64 // completed operations
	DiskWrite uint64
	NetRX     uint64 // bytes
	NetTX     uint64

	Load1  float64
	Load5  float64
	Load15 float64

	CPUFreqKHz uint64
	CPUTempC   int64
}

const (
	LabelCPUUser   = "CPU User"
	LabelCPUSystem = "CPU System"
	LabelCPUIdle   = "CPU Idle"
	LabelMemTotal  = "Memory Total"
	LabelMemFree   = "Memory Free"
	LabelSwapTotal = "Swap Total"
	LabelSwapFree  = "Swap Free"
	LabelDiskRead  = "Disk Read"
	LabelDiskWrite = "Disk Write"
	LabelNetRX     = "Network RX"
	LabelNetTX     = "Network TX"
	LabelLoad1     = "Load 1min"
	LabelLoad5     = "Load 5min"
	LabelLoad15    = "Load 15min"
	LabelCPUFreq   = "CPU Frequency"
	LabelCPUTemp   = "CPU Temperature"
)

const (
	unitKB      = " kB"
	unitKHz     = " kHz"
	unitCelsius = "°C"
)
