package gan

import (
	"fmt"

	"github.com/pkg/errors"
)

// AlreadyBuiltError reports a second build attempt on a network that a
// session already built. The first structure is left untouched; the caller
// may keep using it.
type AlreadyBuiltError struct {
	Network string
}

func (e *AlreadyBuiltError) Error() string {
	return fmt.Sprintf("gan: %s has already been built", e.Network)
}

// AlreadyCompiledError reports a second compile attempt on a model that a
// session already compiled.
type AlreadyCompiledError struct {
	Network string
}

func (e *AlreadyCompiledError) Error() string {
	return fmt.Sprintf("gan: %s has already been compiled", e.Network)
}

// ConfigurationError reports invalid session configuration or datasets that
// do not match it. It is raised before any training step executes.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "gan: " + e.Reason
}

// PrerequisiteNotMetError reports an operation invoked before the build and
// compile steps it depends on.
type PrerequisiteNotMetError struct {
	Missing string
}

func (e *PrerequisiteNotMetError) Error() string {
	return fmt.Sprintf("gan: prerequisite not met: %s", e.Missing)
}

// IsAlreadyBuilt reports whether err is, or wraps, an AlreadyBuiltError.
func IsAlreadyBuilt(err error) bool {
	var target *AlreadyBuiltError
	return errors.As(err, &target)
}

// IsAlreadyCompiled reports whether err is, or wraps, an AlreadyCompiledError.
func IsAlreadyCompiled(err error) bool {
	var target *AlreadyCompiledError
	return errors.As(err, &target)
}

// IsConfiguration reports whether err is, or wraps, a ConfigurationError.
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsPrerequisiteNotMet reports whether err is, or wraps, a
// PrerequisiteNotMetError.
func IsPrerequisiteNotMet(err error) bool {
	var target *PrerequisiteNotMetError
	return errors.As(err, &target)
}
