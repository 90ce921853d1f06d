package policy

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/The-Promised-Neverland/sysdata/internal/config"
	"github.com/The-Promised-Neverland/sysdata/pkg/logger"
	"github.com/The-Promised-Neverland/sysdata/pkg/utils"
)

// DarwinPolicy installs a launchd daemon plist.
type DarwinPolicy struct {
	serviceName string
	binaryPath  string
	args        []string
	workDir     string
}

func NewDarwinPolicy(cfg *config.Config) *DarwinPolicy {
	return &DarwinPolicy{
		serviceName: cfg.ServiceName(),
		binaryPath:  cfg.BinaryPath(),
		args:        cfg.ServiceArguments(),
		workDir:     cfg.WorkingDirectory(),
	}
}

func (p *DarwinPolicy) ConfigureAutoStart() error {
	plistPath := p.plistPath()
	if err := os.MkdirAll(filepath.Dir(plistPath), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(plistPath, []byte(p.plistContent()), 0644); err != nil {
		return err
	}
	_, _ = utils.RunCommand("launchctl", "bootout", "system", plistPath)
	if _, err := utils.RunCommand("launchctl", "bootstrap", "system", plistPath); err != nil {
		return err
	}
	logger.Log.Info("launchd plist installed and loaded", "path", plistPath)
	return nil
}

func (p *DarwinPolicy) ConfigureRestartPolicy() error {
	logger.Log.Info("launchd restart policy enforced via KeepAlive.SuccessfulExit")
	return nil
}

func (p *DarwinPolicy) plistPath() string {
	return filepath.Join(
		"/Library/LaunchDaemons",
		p.serviceName+".plist",
	)
}

func (p *DarwinPolicy) plistContent() string {
	var programArguments strings.Builder
	for _, a := range append([]string{p.binaryPath}, p.args...) {
		programArguments.WriteString("\t\t<string>" + html.EscapeString(a) + "</string>\n")
	}
	var workDir string
	if p.workDir != "" {
		workDir = "\n\t<key>WorkingDirectory</key>\n\t<string>" + html.EscapeString(p.workDir) + "</string>\n"
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN"
 "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>%s</string>

	<key>ProgramArguments</key>
	<array>
%s	</array>
%s
	<key>RunAtLoad</key>
	<true/>

	<key>KeepAlive</key>
	<dict>
		<key>SuccessfulExit</key>
		<false/>
	</dict>

	<key>ProcessType</key>
	<string>Background</string>

	<key>StandardOutPath</key>
	<string>/var/log/%s.out</string>

	<key>StandardErrorPath</key>
	<string>/var/log/%s.err</string>
</dict>
</plist>
`,
		p.serviceName,
		programArguments.String(),
		workDir,
		sanitizeLabel(p.serviceName),
		sanitizeLabel(p.serviceName),
	)
}

func sanitizeLabel(label string) string {
	return strings.ReplaceAll(label, ".", "_")
}
