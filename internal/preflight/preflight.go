// Package preflight checks that the external binaries conductor shells out to are installed.
package preflight

import (
	"os/exec"
	"strings"
)

// BinaryCheck represents an external binary and its purpose.
type BinaryCheck struct {
	Name        string
	Required    bool // false = warning only
	Purpose     string
	InstallHint string
}

// requiredBinaries must be present for up, down, run and ps.
var requiredBinaries = []BinaryCheck{
	{
		Name:        "docker",
		Required:    true,
		Purpose:     "runs docker compose against generated pod files",
		InstallHint: "Install Docker: https://docs.docker.com/get-docker/",
	},
}

// optionalBinaries improve the experience but conductor works without them.
var optionalBinaries = []BinaryCheck{
	{
		Name:        "git",
		Required:    false,
		Purpose:     "lets docker build from git build contexts",
		InstallHint: "Install git: https://git-scm.com/downloads",
	},
	{
		Name:        "age",
		Required:    false,
		Purpose:     "decrypts age-encrypted secrets files",
		InstallHint: "Install age: https://github.com/FiloSottile/age",
	},
}

// Checker looks binaries up on PATH.
type Checker struct {
	lookPath func(string) (string, error)
}

// NewChecker returns a Checker backed by exec.LookPath.
func NewChecker() *Checker {
	return NewCheckerWithLookPath(exec.LookPath)
}

// NewCheckerWithLookPath returns a Checker that resolves binaries with lookPath.
func NewCheckerWithLookPath(lookPath func(string) (string, error)) *Checker {
	return &Checker{lookPath: lookPath}
}

func (c *Checker) missing(bins []BinaryCheck) []BinaryCheck {
	var missing []BinaryCheck
	for _, bin := range bins {
		if _, err := c.lookPath(bin.Name); err != nil {
			missing = append(missing, bin)
		}
	}
	return missing
}

// MissingRequired returns the required binaries not found on PATH.
func (c *Checker) MissingRequired() []BinaryCheck {
	return c.missing(requiredBinaries)
}

// MissingOptional returns the optional binaries not found on PATH.
func (c *Checker) MissingOptional() []BinaryCheck {
	return c.missing(optionalBinaries)
}

// CheckAll returns one line per missing binary.
// Errors are for missing required binaries, warnings for missing optional ones.
func (c *Checker) CheckAll() (warnings []string, errors []string) {
	for _, bin := range c.MissingRequired() {
		errors = append(errors, bin.Name+": "+bin.InstallHint)
	}
	for _, bin := range c.MissingOptional() {
		warnings = append(warnings, bin.Name+": "+bin.InstallHint)
	}
	return warnings, errors
}

// Available reports whether a binary is on PATH.
func (c *Checker) Available(name string) bool {
	_, err := c.lookPath(name)
	return err == nil
}

// Err returns a *MissingError when any required binary is absent.
func (c *Checker) Err() error {
	missing := c.MissingRequired()
	if len(missing) == 0 {
		return nil
	}
	return &MissingError{Binaries: missing}
}

// MissingError lists required binaries that could not be found.
type MissingError struct {
	Binaries []BinaryCheck
}

func (e *MissingError) Error() string {
	parts := make([]string, len(e.Binaries))
	for i, bin := range e.Binaries {
		parts[i] = bin.Name + " (" + bin.InstallHint + ")"
	}
	return "required binaries not found: " + strings.Join(parts, ", ")
}

// AllBinaries returns every configured binary, required first.
func AllBinaries() []BinaryCheck {
	all := make([]BinaryCheck, 0, len(requiredBinaries)+len(optionalBinaries))
	all = append(all, requiredBinaries...)
	return append(all, optionalBinaries...)
}
