package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile = "sysdata.yaml"
	DefaultInterval   = time.Second
	DefaultMaxTicks   = 10000
	DefaultSinkPath   = "system_data.csv"
	DefaultSource     = "builtin"
	DefaultServeAddr  = ":9465"
	DefaultLogFile    = "sysdata.log"
)

// Config holds sysdata configuration. Fields are unexported to prevent modification.
type Config struct {
	sampleInterval     time.Duration
	maxTicks           int
	sinkPath           string
	snapshotSource     string
	serveAddr          string
	netInterface       string
	diskDevices        []string
	cpuFreqPath        string
	thermalPath        string
	logFile            string
	logLevel           string
	serviceName        string
	serviceDisplayName string
	serviceDescription string
	binaryPath         string
	configFile         string
	workDir            string
}

// fileConfig mirrors the YAML config file. Empty values keep the defaults.
type fileConfig struct {
	Interval     Interval `yaml:"interval"`
	MaxTicks     *int     `yaml:"max_ticks"`
	SinkPath     string   `yaml:"sink_path"`
	Source       string   `yaml:"source"`
	ServeAddr    string   `yaml:"serve_addr"`
	NetInterface string   `yaml:"net_interface"`
	DiskDevices  []string `yaml:"disk_devices"`
	CPUFreqPath  string   `yaml:"cpufreq_path"`
	ThermalPath  string   `yaml:"thermal_path"`
	LogFile      *string  `yaml:"log_file"`
	LogLevel     string   `yaml:"log_level"`
}

// Interval is a sampling period written either as seconds ("2", "0.5") or as
// a Go duration ("1500ms").
type Interval struct {
	time.Duration
	set bool
}

func (i *Interval) UnmarshalYAML(node *yaml.Node) error {
	d, err := ParseInterval(node.Value)
	if err != nil {
		return err
	}
	i.Duration, i.set = d, true
	return nil
}

// maxIntervalSeconds is the longest interval a time.Duration can hold.
const maxIntervalSeconds = float64(math.MaxInt64) / float64(time.Second)

// ParseInterval accepts plain seconds or a Go duration string.
func ParseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty interval")
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(secs) || math.IsInf(secs, 0) || math.Abs(secs) > maxIntervalSeconds {
			return 0, fmt.Errorf("interval %q out of range", s)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: %w", s, err)
	}
	return d, nil
}

func defaultBinaryPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(
			os.Getenv("ProgramFiles"),
			"sysdata",
			"sysdata.exe",
		)
	case "darwin", "linux":
		return "/usr/local/bin/sysdata"
	default:
		return ""
	}
}

func defaults() *Config {
	return &Config{
		sampleInterval:     DefaultInterval,
		maxTicks:           DefaultMaxTicks,
		sinkPath:           DefaultSinkPath,
		snapshotSource:     DefaultSource,
		serveAddr:          DefaultServeAddr,
		logFile:            DefaultLogFile,
		logLevel:           "info",
		serviceName:        "sysdata",
		serviceDisplayName: "sysdata sampler",
		serviceDescription: "Samples host telemetry into a CSV file at a fixed interval",
		binaryPath:         defaultBinaryPath(),
		workDir:            workingDir(),
	}
}

func workingDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}

// New loads configuration from defaults, the YAML file named by SYSDATA_CONFIG
// (or sysdata.yaml), a .env file and the environment, in that order.
func New() (*Config, error) {
	path := os.Getenv("SYSDATA_CONFIG")
	if path == "" {
		path = DefaultConfigFile
	}
	return NewFromFile(path)
}

// NewFromFile is New with an explicit config file path.
func NewFromFile(path string) (*Config, error) {
	_ = godotenv.Load() // ignore error if .env not found
	return Load(path)
}

// Load reads defaults, the config file at path and the environment, without
// reading .env. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if err := cfg.applyFile(path); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	if abs, err := filepath.Abs(path); err == nil {
		c.configFile = abs
	}
	if fc.Interval.set {
		c.sampleInterval = fc.Interval.Duration
	}
	if fc.MaxTicks != nil {
		c.maxTicks = *fc.MaxTicks
	}
	if fc.LogFile != nil {
		c.logFile = *fc.LogFile
	}
	if len(fc.DiskDevices) > 0 {
		c.diskDevices = fc.DiskDevices
	}
	setString(&c.sinkPath, fc.SinkPath)
	setString(&c.snapshotSource, fc.Source)
	setString(&c.serveAddr, fc.ServeAddr)
	setString(&c.netInterface, fc.NetInterface)
	setString(&c.cpuFreqPath, fc.CPUFreqPath)
	setString(&c.thermalPath, fc.ThermalPath)
	setString(&c.logLevel, fc.LogLevel)
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SAMPLE_INTERVAL"); v != "" {
		d, err := ParseInterval(v)
		if err != nil {
			return fmt.Errorf("config: SAMPLE_INTERVAL: %w", err)
		}
		c.sampleInterval = d
	}
	if v := os.Getenv("MAX_TICKS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: MAX_TICKS: %w", err)
		}
		c.maxTicks = n
	}
	if v, ok := os.LookupEnv("LOG_FILE"); ok {
		c.logFile = v
	}
	if v := os.Getenv("DISK_DEVICES"); v != "" {
		c.diskDevices = splitList(v)
	}
	setString(&c.sinkPath, os.Getenv("SINK_PATH"))
	setString(&c.snapshotSource, os.Getenv("SNAPSHOT_SOURCE"))
	setString(&c.serveAddr, os.Getenv("SERVE_ADDR"))
	setString(&c.netInterface, os.Getenv("NET_INTERFACE"))
	setString(&c.cpuFreqPath, os.Getenv("CPUFREQ_PATH"))
	setString(&c.thermalPath, os.Getenv("THERMAL_PATH"))
	setString(&c.logLevel, os.Getenv("LOG_LEVEL"))
	setString(&c.serviceName, os.Getenv("SERVICE_NAME"))
	setString(&c.serviceDisplayName, os.Getenv("SERVICE_DISPLAY_NAME"))
	setString(&c.serviceDescription, os.Getenv("SERVICE_DESCRIPTION"))
	return nil
}

func (c *Config) validate() error {
	if c.sampleInterval < 0 {
		return fmt.Errorf("config: interval must not be negative, got %s", c.sampleInterval)
	}
	if c.maxTicks < 0 {
		return fmt.Errorf("config: max_ticks must not be negative, got %d", c.maxTicks)
	}
	if c.sinkPath == "" {
		return fmt.Errorf("config: sink_path is required")
	}
	return nil
}

// Overrides carries command-line values. Nil fields leave the config unchanged.
type Overrides struct {
	SampleInterval *time.Duration
	MaxTicks       *int
	SinkPath       *string
	SnapshotSource *string
	ServeAddr      *string
}

// With returns a validated copy of c with o applied.
func (c *Config) With(o Overrides) (*Config, error) {
	out := *c
	if o.SampleInterval != nil {
		out.sampleInterval = *o.SampleInterval
	}
	if o.MaxTicks != nil {
		out.maxTicks = *o.MaxTicks
	}
	if o.SinkPath != nil {
		out.sinkPath = *o.SinkPath
	}
	if o.SnapshotSource != nil {
		out.snapshotSource = *o.SnapshotSource
	}
	if o.ServeAddr != nil {
		out.serveAddr = *o.ServeAddr
	}
	if err := out.validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Getter methods (immutable from outside)

func (c *Config) SampleInterval() time.Duration {
	return c.sampleInterval
}

func (c *Config) MaxTicks() int {
	return c.maxTicks
}

func (c *Config) SinkPath() string {
	return c.sinkPath
}

func (c *Config) SnapshotSource() string {
	return c.snapshotSource
}

func (c *Config) ServeAddr() string {
	return c.serveAddr
}

func (c *Config) NetInterface() string {
	return c.netInterface
}

func (c *Config) DiskDevices() []string {
	return append([]string(nil), c.diskDevices...)
}

func (c *Config) CPUFreqPath() string {
	return c.cpuFreqPath
}

func (c *Config) ThermalPath() string {
	return c.thermalPath
}

func (c *Config) LogFile() string {
	return c.logFile
}

func (c *Config) LogLevel() string {
	return c.logLevel
}

func (c *Config) ServiceName() string {
	return c.serviceName
}

func (c *Config) ServiceDisplayName() string {
	return c.serviceDisplayName
}

func (c *Config) ServiceDescription() string {
	return c.serviceDescription
}

func (c *Config) BinaryPath() string {
	return c.binaryPath
}

// ConfigFile is the absolute path of the config file that was read, or empty.
func (c *Config) ConfigFile() string {
	return c.configFile
}

// WorkingDirectory is the directory the config was loaded from; relative
// paths such as the sink resolve against it.
func (c *Config) WorkingDirectory() string {
	return c.workDir
}

// ServiceArguments is the command line an installed service runs with, so it
// reads the same config file and resolves the same relative paths.
func (c *Config) ServiceArguments() []string {
	args := []string{"run"}
	if c.workDir != "" {
		args = append(args, "--workdir", c.workDir)
	}
	if c.configFile != "" {
		args = append(args, "--config", c.configFile)
	}
	return args
}
