package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SAMPLE_INTERVAL", "MAX_TICKS", "SINK_PATH", "SNAPSHOT_SOURCE", "SERVE_ADDR",
		"NET_INTERFACE", "DISK_DEVICES", "CPUFREQ_PATH", "THERMAL_PATH", "LOG_LEVEL",
		"SERVICE_NAME", "SERVICE_DISPLAY_NAME", "SERVICE_DESCRIPTION",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("LOG_FILE", "")
	os.Unsetenv("LOG_FILE")
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sysdata.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SampleInterval() != DefaultInterval {
		t.Errorf("SampleInterval = %v, want %v", cfg.SampleInterval(), DefaultInterval)
	}
	if cfg.MaxTicks() != DefaultMaxTicks {
		t.Errorf("MaxTicks = %d, want %d", cfg.MaxTicks(), DefaultMaxTicks)
	}
	if cfg.SinkPath() != DefaultSinkPath {
		t.Errorf("SinkPath = %q, want %q", cfg.SinkPath(), DefaultSinkPath)
	}
	if cfg.SnapshotSource() != DefaultSource {
		t.Errorf("SnapshotSource = %q, want %q", cfg.SnapshotSource(), DefaultSource)
	}
	if cfg.ServiceName() != "sysdata" {
		t.Errorf("ServiceName = %q, want sysdata", cfg.ServiceName())
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
interval: 2.5
max_ticks: 0
sink_path: /var/lib/sysdata/out.csv
source: /proc/read_system_data
net_interface: eth0
disk_devices: [sda, nvme0n1]
log_file: ""
log_level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	got := map[string]any{
		"interval":  cfg.SampleInterval(),
		"max_ticks": cfg.MaxTicks(),
		"sink":      cfg.SinkPath(),
		"source":    cfg.SnapshotSource(),
		"net":       cfg.NetInterface(),
		"disks":     cfg.DiskDevices(),
		"log_file":  cfg.LogFile(),
		"log_level": cfg.LogLevel(),
	}
	want := map[string]any{
		"interval":  2500 * time.Millisecond,
		"max_ticks": 0,
		"sink":      "/var/lib/sysdata/out.csv",
		"source":    "/proc/read_system_data",
		"net":       "eth0",
		"disks":     []string{"sda", "nvme0n1"},
		"log_file":  "",
		"log_level": "debug",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "interval: 5\nmax_ticks: 3\nsink_path: file.csv\n")
	t.Setenv("SAMPLE_INTERVAL", "250ms")
	t.Setenv("MAX_TICKS", "7")
	t.Setenv("SINK_PATH", "env.csv")
	t.Setenv("DISK_DEVICES", "sda, sdb,,")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SampleInterval() != 250*time.Millisecond {
		t.Errorf("SampleInterval = %v, want 250ms", cfg.SampleInterval())
	}
	if cfg.MaxTicks() != 7 {
		t.Errorf("MaxTicks = %d, want 7", cfg.MaxTicks())
	}
	if cfg.SinkPath() != "env.csv" {
		t.Errorf("SinkPath = %q, want env.csv", cfg.SinkPath())
	}
	if diff := cmp.Diff([]string{"sda", "sdb"}, cfg.DiskDevices()); diff != "" {
		t.Errorf("DiskDevices mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{name: "bad yaml", file: "interval: [1"},
		{name: "bad interval in file", file: "interval: soon"},
		{name: "negative max ticks", file: "max_ticks: -1"},
		{name: "negative interval", env: map[string]string{"SAMPLE_INTERVAL": "-1s"}},
		{name: "bad max ticks env", env: map[string]string{"MAX_TICKS": "many"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfig(t, tt.file)
			}
			if _, err := Load(path); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestParseInterval(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "1", want: time.Second},
		{in: "0.5", want: 500 * time.Millisecond},
		{in: "0", want: 0},
		{in: "1500ms", want: 1500 * time.Millisecond},
		{in: " 2m ", want: 2 * time.Minute},
		{in: "", wantErr: true},
		{in: "fast", wantErr: true},
		{in: "NaN", wantErr: true},
		{in: "Inf", wantErr: true},
		{in: "-Inf", wantErr: true},
		{in: "1e300", wantErr: true},
		{in: "-1e300", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseInterval(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseInterval(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseInterval(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWith(t *testing.T) {
	clearEnv(t)
	base, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	interval := 3 * time.Second
	ticks := 0
	sink := "override.csv"
	cfg, err := base.With(Overrides{SampleInterval: &interval, MaxTicks: &ticks, SinkPath: &sink})
	if err != nil {
		t.Fatalf("With: %v", err)
	}
	if cfg.SampleInterval() != interval || cfg.MaxTicks() != 0 || cfg.SinkPath() != sink {
		t.Errorf("overrides not applied: %v %d %q", cfg.SampleInterval(), cfg.MaxTicks(), cfg.SinkPath())
	}
	if base.SinkPath() != DefaultSinkPath {
		t.Errorf("base config mutated: SinkPath = %q", base.SinkPath())
	}

	negative := -1
	if _, err := base.With(Overrides{MaxTicks: &negative}); err == nil {
		t.Error("expected validation error for negative max ticks")
	}
	empty := ""
	if _, err := base.With(Overrides{SinkPath: &empty}); err == nil {
		t.Error("expected validation error for empty sink path")
	}
}

func TestParseInterval_OutOfRangeMessage(t *testing.T) {
	_, err := ParseInterval("1e300")
	if err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Fatalf("err = %v, want an out of range error", err)
	}
}

func TestServiceArguments(t *testing.T) {
	clearEnv(t)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	noFile, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff([]string{"run", "--workdir", wd}, noFile.ServiceArguments()); diff != "" {
		t.Errorf("arguments without a config file (-want +got):\n%s", diff)
	}
	if noFile.ConfigFile() != "" {
		t.Errorf("ConfigFile = %q, want empty for a missing file", noFile.ConfigFile())
	}

	path := writeConfig(t, "max_ticks: 5\n")
	withFile, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"run", "--workdir", wd, "--config", path}
	if diff := cmp.Diff(want, withFile.ServiceArguments()); diff != "" {
		t.Errorf("arguments with a config file (-want +got):\n%s", diff)
	}
	if withFile.WorkingDirectory() != wd {
		t.Errorf("WorkingDirectory = %q, want %q", withFile.WorkingDirectory(), wd)
	}
}

func TestServiceArguments_RelativeConfigBecomesAbsolute(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile("custom.yaml", []byte("max_ticks: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("custom.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	wd, _ := os.Getwd()
	if got, want := cfg.ConfigFile(), filepath.Join(wd, "custom.yaml"); got != want {
		t.Errorf("ConfigFile = %q, want %q", got, want)
	}
}

func TestNewFromFile_ReadsDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(".env", []byte("SERVE_ADDR=127.0.0.1:9999\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	os.Unsetenv("SERVE_ADDR")

	cfg, err := NewFromFile(writeConfig(t, "max_ticks: 2\n"))
	if err != nil {
		t.Fatalf("NewFromFile: %v", err)
	}
	if cfg.ServeAddr() != "127.0.0.1:9999" {
		t.Errorf("ServeAddr = %q, want the .env value", cfg.ServeAddr())
	}
	if cfg.MaxTicks() != 2 {
		t.Errorf("MaxTicks = %d, want 2 from the file", cfg.MaxTicks())
	}
}
