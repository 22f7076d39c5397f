// Package deps verifies that external programs are available in PATH.
package deps

import (
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Checker verifies that required dependencies are available.
type Checker struct {
	dependencies []string
	lookPath     func(string) (string, error)
}

// NewChecker creates a new dependency checker with the given dependencies.
func NewChecker(deps ...string) *Checker {
	return &Checker{dependencies: deps, lookPath: exec.LookPath}
}

// CheckAll verifies all dependencies are available.
// Returns an error listing all missing dependencies.
func (c *Checker) CheckAll() error {
	var missing []string
	for _, dep := range c.dependencies {
		if _, err := c.lookPath(dep); err != nil {
			missing = append(missing, dep)
		}
	}

	if len(missing) > 0 {
		return &MissingDepsError{Dependencies: missing}
	}
	return nil
}

// CheckAndLog checks all dependencies and logs the result of each.
// Returns error if any dependency is missing.
func (c *Checker) CheckAndLog(log *slog.Logger) error {
	for _, dep := range c.dependencies {
		if path, err := c.lookPath(dep); err == nil {
			log.Debug("dependency found", "name", dep, "path", path)
		} else {
			log.Error("dependency not found in PATH", "name", dep)
		}
	}
	return c.CheckAll()
}

// MissingDepsError is returned when required dependencies are missing.
type MissingDepsError struct {
	Dependencies []string
}

func (e *MissingDepsError) Error() string {
	return fmt.Sprintf("missing dependencies: %s", strings.Join(e.Dependencies, ", "))
}
