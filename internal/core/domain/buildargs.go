package domain

import (
	"sort"
	"strings"
)

// BuildArgs is the argument set handed to the container build: version pins
// for the dependency stack, the GPU architecture list, and the interpreter
// version. Together with the recipe bytes it determines the cache key.
type BuildArgs struct {
	PythonVersion string            `yaml:"python"`
	Architectures []string          `yaml:"architectures"`
	Pins          map[string]string `yaml:"pins"`
}

// Canonical returns a deterministic serialization of the argument set.
// Map keys are sorted and every field is NUL-framed so that distinct
// argument sets cannot collide by concatenation.
func (a BuildArgs) Canonical() string {
	var b strings.Builder

	b.WriteString("python=")
	b.WriteString(a.PythonVersion)
	b.WriteByte(0)

	archs := make([]string, len(a.Architectures))
	copy(archs, a.Architectures)
	sort.Strings(archs)
	for _, arch := range archs {
		b.WriteString("arch=")
		b.WriteString(arch)
		b.WriteByte(0)
	}

	pins := make([]string, 0, len(a.Pins))
	for name := range a.Pins {
		pins = append(pins, name)
	}
	sort.Strings(pins)
	for _, name := range pins {
		b.WriteString("pin=")
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(a.Pins[name])
		b.WriteByte(0)
	}

	return b.String()
}
