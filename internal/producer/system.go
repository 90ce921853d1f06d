package producer

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
)

// userHZ is the USER_HZ tick rate /proc/stat reports CPU time in.
const userHZ = 100

const (
	DefaultCPUFreqPath = "/sys/devices/system/cpu/cpu0/cpufreq/scaling_cur_freq"
	DefaultThermalPath = "/sys/class/thermal/thermal_zone0/temp"
)

// SystemOptions selects which OS endpoints SystemHost reads.
type SystemOptions struct {
	// NetInterface limits network counters to one interface. Empty sums all.
	NetInterface string
	// DiskDevices limits disk counters to the named devices. Empty sums all.
	DiskDevices []string
	CPUFreqPath string
	ThermalPath string
}

// SystemHost reads the local machine through gopsutil and sysfs.
type SystemHost struct {
	opts SystemOptions
}

func NewSystemHost(opts SystemOptions) *SystemHost {
	if opts.CPUFreqPath == "" {
		opts.CPUFreqPath = DefaultCPUFreqPath
	}
	if opts.ThermalPath == "" {
		opts.ThermalPath = DefaultThermalPath
	}
	return &SystemHost{opts: opts}
}

func (h *SystemHost) CPUTimes(ctx context.Context) (CPUTimes, error) {
	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return CPUTimes{}, err
	}
	if len(times) == 0 {
		return CPUTimes{}, fmt.Errorf("no aggregate cpu line")
	}
	t := times[0]
	return CPUTimes{
		User:   ticks(t.User),
		System: ticks(t.System),
		Idle:   ticks(t.Idle),
	}, nil
}

func (h *SystemHost) Memory(ctx context.Context) (Usage, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Usage{}, err
	}
	return Usage{Total: vm.Total / 1024, Free: vm.Free / 1024}, nil
}

func (h *SystemHost) Swap(ctx context.Context) (Usage, error) {
	sw, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		return Usage{}, err
	}
	return Usage{Total: sw.Total / 1024, Free: sw.Free / 1024}, nil
}

func (h *SystemHost) DiskIO(ctx context.Context) (IOCount, error) {
	counters, err := disk.IOCountersWithContext(ctx, h.opts.DiskDevices...)
	if err != nil {
		return IOCount{}, err
	}
	var out IOCount
	for _, c := range counters {
		out.In += c.ReadCount
		out.Out += c.WriteCount
	}
	return out, nil
}

func (h *SystemHost) NetIO(ctx context.Context) (IOCount, error) {
	perNIC := h.opts.NetInterface != ""
	stats, err := net.IOCountersWithContext(ctx, perNIC)
	if err != nil {
		return IOCount{}, err
	}
	for _, s := range stats {
		if !perNIC || s.Name == h.opts.NetInterface {
			return IOCount{In: s.BytesRecv, Out: s.BytesSent}, nil
		}
	}
	if perNIC {
		return IOCount{}, fmt.Errorf("interface %q not found", h.opts.NetInterface)
	}
	return IOCount{}, fmt.Errorf("no network counters")
}

func (h *SystemHost) LoadAvg(ctx context.Context) (LoadAvg, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return LoadAvg{}, err
	}
	return LoadAvg{Load1: avg.Load1, Load5: avg.Load5, Load15: avg.Load15}, nil
}

// CPUFreqKHz reads the current frequency of cpu0 from sysfs and falls back to
// the nominal frequency gopsutil reports.
func (h *SystemHost) CPUFreqKHz(ctx context.Context) (uint64, error) {
	khz, err := readUint(h.opts.CPUFreqPath)
	if err == nil {
		return khz, nil
	}
	infos, infoErr := cpu.InfoWithContext(ctx)
	if infoErr != nil || len(infos) == 0 || infos[0].Mhz <= 0 {
		return 0, err
	}
	return uint64(math.Round(infos[0].Mhz * 1000)), nil
}

// CPUTempC reads a thermal zone in millidegrees and falls back to the first
// CPU-looking hwmon sensor.
func (h *SystemHost) CPUTempC(ctx context.Context) (int64, error) {
	milli, err := readInt(h.opts.ThermalPath)
	if err == nil {
		return milli / 1000, nil
	}
	temps, sensorErr := host.SensorsTemperaturesWithContext(ctx)
	if t, ok := pickCPUSensor(temps); ok {
		return int64(t.Temperature), nil
	}
	if sensorErr != nil {
		return 0, fmt.Errorf("%w; sensors: %w", err, sensorErr)
	}
	return 0, err
}

func pickCPUSensor(temps []host.TemperatureStat) (host.TemperatureStat, bool) {
	for _, key := range []string{"coretemp", "k10temp", "cpu", "package", "tctl"} {
		for _, t := range temps {
			if strings.Contains(strings.ToLower(t.SensorKey), key) {
				return t, true
			}
		}
	}
	return host.TemperatureStat{}, false
}

func ticks(seconds float64) uint64 {
	if seconds <= 0 {
		return 0
	}
	return uint64(math.Round(seconds * userHZ))
}
