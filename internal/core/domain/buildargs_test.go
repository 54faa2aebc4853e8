package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rocmforge/wheelhouse/internal/core/domain"
)

func TestBuildArgs_Canonical_Deterministic(t *testing.T) {
	a := domain.BuildArgs{
		PythonVersion: "3.12",
		Architectures: []string{"gfx942", "gfx1100"},
		Pins:          map[string]string{"torch": "2.9.0", "triton": "3.2.0"},
	}
	b := domain.BuildArgs{
		PythonVersion: "3.12",
		Architectures: []string{"gfx1100", "gfx942"},
		Pins:          map[string]string{"triton": "3.2.0", "torch": "2.9.0"},
	}

	// Ordering of the architecture list and map iteration must not leak into
	// the serialization.
	require.Equal(t, a.Canonical(), b.Canonical())
}

func TestBuildArgs_Canonical_Distinguishes(t *testing.T) {
	base := domain.BuildArgs{PythonVersion: "3.12", Pins: map[string]string{"torch": "2.9.0"}}

	changedPin := domain.BuildArgs{PythonVersion: "3.12", Pins: map[string]string{"torch": "2.9.1"}}
	require.NotEqual(t, base.Canonical(), changedPin.Canonical())

	changedPython := domain.BuildArgs{PythonVersion: "3.13", Pins: map[string]string{"torch": "2.9.0"}}
	require.NotEqual(t, base.Canonical(), changedPython.Canonical())

	extraArch := base
	extraArch.Architectures = []string{"gfx942"}
	require.NotEqual(t, base.Canonical(), extraArch.Canonical())
}
