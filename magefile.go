//go:build mage
// +build mage

package main

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var Default = Build

type Cross mg.Namespace

var (
	buildDir = "bin"
	binName  = "sysdata"
	mainPkg  = "./cmd"
)

func binPath() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(buildDir, binName+".exe")
	}
	return filepath.Join(buildDir, binName)
}

// Builds sysdata for the current platform
func Build() error {
	fmt.Println("Building...")
	return sh.RunV("go", "build", "-o", binPath(), mainPkg)
}

// Runs the unit tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Copies the binary to /usr/local/bin and registers the OS service. Needs root.
func Install() error {
	mg.Deps(Build)
	if runtime.GOOS == "windows" {
		return fmt.Errorf("install on windows: run bin\\sysdata.exe install from an administrator shell")
	}
	if err := sh.RunV("install", "-m", "0755", binPath(), "/usr/local/bin/sysdata"); err != nil {
		return fmt.Errorf("failed to copy binary: %w", err)
	}
	return sh.RunV("/usr/local/bin/sysdata", "install")
}

// Builds sysdata for linux on the given architecture (amd64, arm64, arm)
func (Cross) Linux(arch string) error {
	fmt.Printf("Building linux/%s...\n", arch)
	env := map[string]string{
		"GOOS":        "linux",
		"GOARCH":      arch,
		"CGO_ENABLED": "0",
	}
	return sh.RunWithV(env, "go", "build", "-o", filepath.Join(buildDir, "linux-"+arch, binName), mainPkg)
}

// Removes build output
func Clean() error {
	return sh.Rm(buildDir)
}
