package organize_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/rocmforge/wheelhouse/internal/core/domain"
	"github.com/rocmforge/wheelhouse/internal/core/ports/mocks"
	"github.com/rocmforge/wheelhouse/internal/organize"
)

func newOrganizer(t *testing.T) *organize.Organizer {
	t.Helper()
	logger := mocks.NewMockLogger(gomock.NewController(t))
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	return organize.New(logger)
}

func writeSized(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", size)), 0o644))
}

func TestOrganizePartitionsBySize(t *testing.T) {
	artifactsDir := t.TempDir()
	outputDir := t.TempDir()

	// nested layout, the way CI artifact downloads unpack
	writeSized(t, filepath.Join(artifactsDir, "gfx942", "torch-2.9.0a0+git1c57644-cp312-cp312-linux_x86_64.whl"), 2048)
	writeSized(t, filepath.Join(artifactsDir, "gfx942", "aiter-0.1.4-py3-none-any.whl"), 100)
	writeSized(t, filepath.Join(artifactsDir, "notes.txt"), 5000)

	report, err := newOrganizer(t).Organize(artifactsDir, outputDir, 1024)
	require.NoError(t, err)

	require.Equal(t, []string{"torch-2.9.0a0+git1c57644-cp312-cp312-linux_x86_64.whl"}, report.Large)
	require.Equal(t, []string{"aiter-0.1.4-py3-none-any.whl"}, report.Small)
	require.Equal(t, int64(2048), report.LargeBytes)
	require.Equal(t, int64(100), report.SmallBytes)

	// large wheel only in packages-large
	_, err = os.Stat(filepath.Join(outputDir, "packages-large", "torch-2.9.0a0+git1c57644-cp312-cp312-linux_x86_64.whl"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(outputDir, "packages", "torch-2.9.0a0+git1c57644-cp312-cp312-linux_x86_64.whl"))
	require.True(t, os.IsNotExist(err))

	// small wheel in both packages-small and the serving root
	_, err = os.Stat(filepath.Join(outputDir, "packages-small", "aiter-0.1.4-py3-none-any.whl"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(outputDir, "packages", "aiter-0.1.4-py3-none-any.whl"))
	require.NoError(t, err)

	// non-wheel artifacts are ignored entirely
	_, err = os.Stat(filepath.Join(outputDir, "packages-large", "notes.txt"))
	require.True(t, os.IsNotExist(err))
}

func TestOrganizeExactLimitIsSmall(t *testing.T) {
	artifactsDir := t.TempDir()
	outputDir := t.TempDir()
	writeSized(t, filepath.Join(artifactsDir, "aiter-0.1.4-py3-none-any.whl"), 1024)

	report, err := newOrganizer(t).Organize(artifactsDir, outputDir, 1024)
	require.NoError(t, err)
	require.Empty(t, report.Large)
	require.Len(t, report.Small, 1)
}

func TestOrganizeNoWheelsIsFatal(t *testing.T) {
	artifactsDir := t.TempDir()
	writeSized(t, filepath.Join(artifactsDir, "image.tar"), 10)

	_, err := newOrganizer(t).Organize(artifactsDir, t.TempDir(), organize.DefaultSizeLimit)
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrNoArchivesFound))
}

func TestOrganizeMissingArtifactsDir(t *testing.T) {
	_, err := newOrganizer(t).Organize(filepath.Join(t.TempDir(), "absent"), t.TempDir(), organize.DefaultSizeLimit)
	require.Error(t, err)
	require.ErrorContains(t, err, domain.ErrWheelsDirRead.Error())
}
