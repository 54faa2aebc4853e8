package pin_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/rocmforge/wheelhouse/internal/core/domain"
	"github.com/rocmforge/wheelhouse/internal/core/ports/mocks"
	"github.com/rocmforge/wheelhouse/internal/pin"
)

func newPinner(t *testing.T) *pin.Pinner {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	return pin.New(logger)
}

func setup(t *testing.T, wheels []string, requirements string) (string, string) {
	t.Helper()
	installDir := t.TempDir()
	for _, w := range wheels {
		require.NoError(t, os.WriteFile(filepath.Join(installDir, w), []byte("x"), 0o644))
	}
	reqPath := filepath.Join(t.TempDir(), "requirements.txt")
	require.NoError(t, os.WriteFile(reqPath, []byte(requirements), 0o644))
	return installDir, reqPath
}

func TestPin_ReplacesLooseConstraint(t *testing.T) {
	installDir, reqPath := setup(t,
		[]string{"torch-2.9.0a0+git1c57644-cp312-cp312-linux_x86_64.whl"},
		"# core deps\ntorch>=2.5.0\nnumpy\n",
	)

	report, err := newPinner(t).Pin(installDir, reqPath)
	require.NoError(t, err)
	require.Len(t, report.Pinned, 1)
	require.Equal(t, "torch", report.Pinned[0].Name)
	require.Equal(t, "2.9.0a0+git1c57644", report.Pinned[0].Version)
	require.True(t, report.Pinned[0].Replaced)

	data, err := os.ReadFile(reqPath)
	require.NoError(t, err)
	require.Equal(t,
		"torch==2.9.0a0+git1c57644\n# core deps\n# pinned by wheelhouse: torch>=2.5.0\nnumpy\n",
		string(data),
	)
}

func TestPin_MultipleVersionsKeepsGreatest(t *testing.T) {
	installDir, reqPath := setup(t,
		[]string{
			"torch-2.8.0-cp312-cp312-linux_x86_64.whl",
			"torch-2.9.0a0+git1c57644-cp312-cp312-linux_x86_64.whl",
		},
		"torch>=2.5.0\n",
	)

	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).Times(1)

	report, err := pin.New(logger).Pin(installDir, reqPath)
	require.NoError(t, err)
	require.Len(t, report.Pinned, 1)
	require.Equal(t, "2.9.0a0+git1c57644", report.Pinned[0].Version)
}

func TestPin_InsertsWhenAbsent(t *testing.T) {
	installDir, reqPath := setup(t,
		[]string{"flash_attn-2.6.0-cp312-cp312-linux_x86_64.whl"},
		"numpy\n",
	)

	report, err := newPinner(t).Pin(installDir, reqPath)
	require.NoError(t, err)
	require.Len(t, report.Pinned, 1)
	require.False(t, report.Pinned[0].Replaced)

	data, err := os.ReadFile(reqPath)
	require.NoError(t, err)
	require.Equal(t, "flash-attn==2.6.0\nnumpy\n", string(data))
}

func TestPin_Idempotent(t *testing.T) {
	installDir, reqPath := setup(t,
		[]string{
			"torch-2.9.0a0+git1c57644-cp312-cp312-linux_x86_64.whl",
			"flash_attn-2.6.0-cp312-cp312-linux_x86_64.whl",
		},
		"torch>=2.5.0\n\n# comment stays\nnumpy==2.1.0\n",
	)
	p := newPinner(t)

	_, err := p.Pin(installDir, reqPath)
	require.NoError(t, err)
	once, err := os.ReadFile(reqPath)
	require.NoError(t, err)

	_, err = p.Pin(installDir, reqPath)
	require.NoError(t, err)
	twice, err := os.ReadFile(reqPath)
	require.NoError(t, err)

	require.Equal(t, string(once), string(twice))
}

func TestPin_UnmatchedAndUnparseableSkipped(t *testing.T) {
	installDir, reqPath := setup(t,
		[]string{
			"numpy-2.1.0-cp312-cp312-linux_x86_64.whl", // not in the mapping table
			"rocm-build-env.tar",                       // not a package archive
			"torch-nightly.whl",                        // mapped prefix, bad grammar
		},
		"numpy\n",
	)

	report, err := newPinner(t).Pin(installDir, reqPath)
	require.NoError(t, err)
	require.Empty(t, report.Pinned)
	require.Equal(t, []string{"torch-nightly.whl"}, report.Skipped)

	data, err := os.ReadFile(reqPath)
	require.NoError(t, err)
	require.Equal(t, "numpy\n", string(data))
}

func TestPin_MissingRequirementsFatal(t *testing.T) {
	installDir := t.TempDir()
	_, err := newPinner(t).Pin(installDir, filepath.Join(t.TempDir(), "requirements.txt"))
	require.Error(t, err)
	require.True(t, errors.Is(err, os.ErrNotExist))
	require.ErrorContains(t, err, domain.ErrRequirementsNotFound.Error())
}

func TestPin_MarkerAndExtrasLinesMatchByNormalizedName(t *testing.T) {
	installDir, reqPath := setup(t,
		[]string{"flash_attn-2.6.0-cp312-cp312-linux_x86_64.whl"},
		"flash_attn>=2.0; platform_system == \"Linux\"\n",
	)

	_, err := newPinner(t).Pin(installDir, reqPath)
	require.NoError(t, err)

	data, err := os.ReadFile(reqPath)
	require.NoError(t, err)
	require.Equal(t,
		"flash-attn==2.6.0\n# pinned by wheelhouse: flash_attn>=2.0; platform_system == \"Linux\"\n",
		string(data),
	)
}
