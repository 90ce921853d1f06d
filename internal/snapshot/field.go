package snapshot

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var errNonFinite = errors.New("non-finite value")

// field binds a label to its unit suffix and to typed accessors on Snapshot.
type field struct {
	label  string
	unit   string
	format func(s *Snapshot) string
	set    func(s *Snapshot, v string) error
}

// fields lists every metric in column order.
var fields = []field{
	uintField(LabelCPUUser, "", func(s *Snapshot) *uint64 { return &s.CPUUser }),
	uintField(LabelCPUSystem, "", func(s *Snapshot) *uint64 { return &s.CPUSystem }),
	uintField(LabelCPUIdle, "", func(s *Snapshot) *uint64 { return &s.CPUIdle }),
	uintField(LabelMemTotal, unitKB, func(s *Snapshot) *uint64 { return &s.MemTotal }),
	uintField(LabelMemFree, unitKB, func(s *Snapshot) *uint64 { return &s.MemFree }),
	uintField(LabelSwapTotal, unitKB, func(s *Snapshot) *uint64 { return &s.SwapTotal }),
	uintField(LabelSwapFree, unitKB, func(s *Snapshot) *uint64 { return &s.SwapFree }),
	uintField(LabelDiskRead, "", func(s *Snapshot) *uint64 { return &s.DiskRead }),
	uintField(LabelDiskWrite, "", func(s *Snapshot) *uint64 { return &s.DiskWrite }),
	uintField(LabelNetRX, "", func(s *Snapshot) *uint64 { return &s.NetRX }),
	uintField(LabelNetTX, "", func(s *Snapshot) *uint64 { return &s.NetTX }),
	loadField(LabelLoad1, func(s *Snapshot) *float64 { return &s.Load1 }),
	loadField(LabelLoad5, func(s *Snapshot) *float64 { return &s.Load5 }),
	loadField(LabelLoad15, func(s *Snapshot) *float64 { return &s.Load15 }),
	uintField(LabelCPUFreq, unitKHz, func(s *Snapshot) *uint64 { return &s.CPUFreqKHz }),
	{
		label: LabelCPUTemp,
		unit:  unitCelsius,
		format: func(s *Snapshot) string {
			return strconv.FormatInt(s.CPUTempC, 10)
		},
		set: func(s *Snapshot, v string) error {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return err
			}
			s.CPUTempC = n
			return nil
		},
	},
}

// byLabel indexes fields for the parser.
var byLabel = func() map[string]field {
	m := make(map[string]field, len(fields))
	for _, f := range fields {
		m[f.label] = f
	}
	return m
}()

func uintField(label, unit string, ptr func(*Snapshot) *uint64) field {
	return field{
		label: label,
		unit:  unit,
		format: func(s *Snapshot) string {
			return strconv.FormatUint(*ptr(s), 10)
		},
		set: func(s *Snapshot, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return err
			}
			*ptr(s) = n
			return nil
		},
	}
}

// loadField formats with two fraction digits. Integer-only values, as written
// by older producers, parse as well.
func loadField(label string, ptr func(*Snapshot) *float64) field {
	return field{
		label: label,
		format: func(s *Snapshot) string {
			return strconv.FormatFloat(*ptr(s), 'f', 2, 64)
		},
		set: func(s *Snapshot, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return err
			}
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return errNonFinite
			}
			if f < 0 {
				f = 0
			}
			*ptr(s) = f
			return nil
		},
	}
}

// value strips the unit suffix declared for f, tolerating a missing space.
func (f field) value(raw string) string {
	v := strings.TrimSpace(raw)
	if f.unit == "" {
		return v
	}
	unit := strings.TrimSpace(f.unit)
	return strings.TrimSpace(strings.TrimSuffix(v, unit))
}
