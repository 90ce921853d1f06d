package policy

import (
	"fmt"
	"runtime"

	"github.com/The-Promised-Neverland/sysdata/internal/config"
)

// ServicePolicy applies the OS specific boot and restart settings after the
// service is registered.
type ServicePolicy interface {
	ConfigureAutoStart() error
	ConfigureRestartPolicy() error
}

// NewServicePolicy returns the policy for the running OS.
func NewServicePolicy(cfg *config.Config) (ServicePolicy, error) {
	switch runtime.GOOS {
	case "windows":
		return NewWindowsPolicy(cfg), nil
	case "linux":
		return NewLinuxPolicy(cfg), nil
	case "darwin":
		return NewDarwinPolicy(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
}
