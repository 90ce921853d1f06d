package producer

import "context"

// Host is the set of OS metric sources. Every method is queried independently;
// an error from one never affects the others.
type Host interface {
	CPUTimes(ctx context.Context) (CPUTimes, error)
	Memory(ctx context.Context) (Usage, error)
	Swap(ctx context.Context) (Usage, error)
	DiskIO(ctx context.Context) (IOCount, error)
	NetIO(ctx context.Context) (IOCount, error)
	LoadAvg(ctx context.Context) (LoadAvg, error)
	CPUFreqKHz(ctx context.Context) (uint64, error)
	CPUTempC(ctx context.Context) (int64, error)
}

// CPUTimes holds aggregate CPU time in clock ticks.
type CPUTimes struct {
	User   uint64
	System uint64
	Idle   uint64
}

// Usage is a total/free pair in kB.
type Usage struct {
	Total uint64
	Free  uint64
}

// IOCount is a cumulative in/out counter pair. For disks In is reads and Out
// is writes; for network In is bytes received and Out is bytes sent.
type IOCount struct {
	In  uint64
	Out uint64
}

type LoadAvg struct {
	Load1  float64
	Load5  float64
	Load15 float64
}
