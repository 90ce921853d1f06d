package policy

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/The-Promised-Neverland/sysdata/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("SERVICE_NAME", "sysdata-test")
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

// configWithFile loads a config from a real file so the service arguments
// carry --config.
func configWithFile(t *testing.T) (*config.Config, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sysdata.yaml")
	if err := os.WriteFile(path, []byte("max_ticks: 5\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	testConfig(t)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg, path
}

func TestLinuxPolicy_Unit(t *testing.T) {
	cfg, path := configWithFile(t)
	p := NewLinuxPolicy(cfg)
	p.binaryPath = "/opt/sysdata/bin/sysdata"
	p.workDir = "/var/lib/sysdata"
	p.args = cfg.ServiceArguments()
	unit := p.unit()

	wd := cfg.WorkingDirectory()
	for _, want := range []string{
		"WorkingDirectory=/var/lib/sysdata\n",
		"ExecStart=/opt/sysdata/bin/sysdata run --workdir " + unitQuote(wd) + " --config " + unitQuote(path) + "\n",
		"Restart=on-failure\n",
		"WantedBy=multi-user.target\n",
	} {
		if !strings.Contains(unit, want) {
			t.Errorf("unit missing %q:\n%s", want, unit)
		}
	}
	if got, want := p.unitPath(), "/etc/systemd/system/sysdata-test.service"; got != want {
		t.Errorf("unitPath = %q, want %q", got, want)
	}
}

func TestLinuxPolicy_UnitWithoutConfigFile(t *testing.T) {
	p := NewLinuxPolicy(testConfig(t))
	p.binaryPath = "/usr/local/bin/sysdata"
	p.workDir = ""
	p.args = []string{"run"}

	unit := p.unit()
	if !strings.Contains(unit, "ExecStart=/usr/local/bin/sysdata run\n") {
		t.Errorf("unexpected ExecStart:\n%s", unit)
	}
	if strings.Contains(unit, "WorkingDirectory=") {
		t.Errorf("unit should not set WorkingDirectory:\n%s", unit)
	}
}

func TestUnitQuote(t *testing.T) {
	tests := map[string]string{
		"/usr/local/bin/sysdata": "/usr/local/bin/sysdata",
		"/srv/my data":           `"/srv/my data"`,
		`C:\sysdata`:             `"C:\\sysdata"`,
		"":                       `""`,
	}
	for in, want := range tests {
		if got := unitQuote(in); got != want {
			t.Errorf("unitQuote(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestLinuxPolicy_WritesUnit(t *testing.T) {
	p := NewLinuxPolicy(testConfig(t))
	p.unitDir = t.TempDir()
	var calls []string
	p.run = func(name string, args ...string) (string, error) {
		calls = append(calls, name+" "+strings.Join(args, " "))
		return "", nil
	}

	if err := p.ConfigureAutoStart(); err != nil {
		t.Fatalf("ConfigureAutoStart: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(p.unitDir, "sysdata-test.service"))
	if err != nil {
		t.Fatalf("read unit: %v", err)
	}
	if string(data) != p.unit() {
		t.Errorf("written unit differs from rendered unit")
	}
	want := []string{"systemctl daemon-reload", "systemctl enable sysdata-test"}
	if strings.Join(calls, "|") != strings.Join(want, "|") {
		t.Errorf("commands = %q, want %q", calls, want)
	}
}

func TestDarwinPolicy_Plist(t *testing.T) {
	cfg, path := configWithFile(t)
	p := NewDarwinPolicy(cfg)
	p.workDir = "/var/lib/sysdata & co"
	plist := p.plistContent()

	for _, want := range []string{
		"<string>sysdata-test</string>",
		"<string>run</string>",
		"<string>--config</string>\n\t\t<string>" + path + "</string>\n\t</array>",
		"<key>WorkingDirectory</key>\n\t<string>/var/lib/sysdata &amp; co</string>",
		"<key>SuccessfulExit</key>",
		"/var/log/sysdata-test.out",
	} {
		if !strings.Contains(plist, want) {
			t.Errorf("plist missing %q", want)
		}
	}
	if got := sanitizeLabel("com.example.sysdata"); got != "com_example_sysdata" {
		t.Errorf("sanitizeLabel = %q", got)
	}
}

func TestNewServicePolicy(t *testing.T) {
	p, err := NewServicePolicy(testConfig(t))
	switch runtime.GOOS {
	case "linux", "darwin", "windows":
		if err != nil || p == nil {
			t.Fatalf("NewServicePolicy on %s: %v", runtime.GOOS, err)
		}
	default:
		if err == nil {
			t.Fatalf("expected error on %s", runtime.GOOS)
		}
	}
}
