package publish

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/rocmforge/wheelhouse/internal/core/domain"
	"github.com/rocmforge/wheelhouse/internal/core/ports/mocks"
)

func TestDestinations(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "feature branch build",
			opts: Options{Namespace: "v2", Commit: "abc123", Branch: "feature/foo"},
			want: []string{"v2/abc123"},
		},
		{
			name: "main branch build",
			opts: Options{Namespace: "v2", Commit: "abc123", Branch: "main"},
			want: []string{"v2/abc123", "v2/nightly"},
		},
		{
			name: "release from main",
			opts: Options{Namespace: "v2", Commit: "abc123", Branch: "main", Release: true, Version: "2.9.0"},
			want: []string{"v2/abc123", "v2/nightly", "v2/2.9.0"},
		},
		{
			name: "release off a tag branch",
			opts: Options{Namespace: "v2", Commit: "abc123", Branch: "release/2.9", Release: true, Version: "2.9.0"},
			want: []string{"v2/abc123", "v2/2.9.0"},
		},
		{
			name: "release without version falls back to commit only",
			opts: Options{Namespace: "v2", Commit: "abc123", Branch: "hotfix", Release: true},
			want: []string{"v2/abc123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.opts.Destinations())
		})
	}
}

func setupDirs(t *testing.T) (string, string) {
	t.Helper()
	wheelsDir := t.TempDir()
	indexDir := t.TempDir()

	require.NoError(t, os.WriteFile(
		filepath.Join(wheelsDir, "torch-2.9.0a0+git1c57644-cp312-cp312-linux_x86_64.whl"),
		[]byte("wheel"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(indexDir, "index.html"), []byte("root"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(indexDir, "rocm-7.0", "torch"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(indexDir, "rocm-7.0", "torch", "index.html"), []byte("pkg"), 0o644))

	return wheelsDir, indexDir
}

// collectKeys returns a mock store recording every put key, accepting all.
func collectKeys(t *testing.T) (*mocks.MockObjectStore, *[]string) {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockObjectStore(ctrl)

	var mu sync.Mutex
	keys := &[]string{}
	store.EXPECT().
		PutFile(gomock.Any(), "wheels-bucket", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, key, _ string) error {
			mu.Lock()
			defer mu.Unlock()
			*keys = append(*keys, key)
			return nil
		}).
		AnyTimes()

	return store, keys
}

func quietLogger(t *testing.T) *mocks.MockLogger {
	t.Helper()
	logger := mocks.NewMockLogger(gomock.NewController(t))
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	return logger
}

func TestUploadCommitScopeOnly(t *testing.T) {
	wheelsDir, indexDir := setupDirs(t)
	store, keys := collectKeys(t)

	up := New(store, quietLogger(t))
	opts := Options{
		Bucket:    "wheels-bucket",
		Namespace: "v2",
		Commit:    "abc123",
		Branch:    "feature/foo",
	}
	require.NoError(t, up.Upload(context.Background(), wheelsDir, indexDir, opts))

	sort.Strings(*keys)
	require.Equal(t, []string{
		"v2/abc123/index.html",
		"v2/abc123/rocm-7.0/torch/index.html",
		"v2/abc123/torch-2.9.0a0+git1c57644-cp312-cp312-linux_x86_64.whl",
	}, *keys)
}

func TestUploadMirrorsToNightlyOnMain(t *testing.T) {
	wheelsDir, indexDir := setupDirs(t)
	store, keys := collectKeys(t)

	up := New(store, quietLogger(t))
	opts := Options{
		Bucket:    "wheels-bucket",
		Namespace: "v2",
		Commit:    "abc123",
		Branch:    "main",
	}
	require.NoError(t, up.Upload(context.Background(), wheelsDir, indexDir, opts))

	require.Len(t, *keys, 6)
	nightly := 0
	for _, key := range *keys {
		switch {
		case len(key) > len("v2/nightly/") && key[:len("v2/nightly/")] == "v2/nightly/":
			nightly++
		default:
			require.Contains(t, key, "v2/abc123/")
		}
	}
	require.Equal(t, 3, nightly)
}

func TestUploadFailureIsFatal(t *testing.T) {
	wheelsDir, indexDir := setupDirs(t)

	ctrl := gomock.NewController(t)
	store := mocks.NewMockObjectStore(ctrl)
	store.EXPECT().
		PutFile(gomock.Any(), "wheels-bucket", "v2/abc123/index.html", gomock.Any()).
		Return(os.ErrPermission)
	store.EXPECT().
		PutFile(gomock.Any(), "wheels-bucket", gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()

	up := New(store, quietLogger(t))
	opts := Options{
		Bucket:    "wheels-bucket",
		Namespace: "v2",
		Commit:    "abc123",
		Branch:    "feature/foo",
	}
	err := up.Upload(context.Background(), wheelsDir, indexDir, opts)
	require.Error(t, err)
	require.ErrorContains(t, err, domain.ErrUploadIncomplete.Error())
}

func TestUploadMissingWheelsDir(t *testing.T) {
	_, indexDir := setupDirs(t)
	store, _ := collectKeys(t)

	up := New(store, quietLogger(t))
	opts := Options{Bucket: "wheels-bucket", Namespace: "v2", Commit: "abc123"}
	err := up.Upload(context.Background(), filepath.Join(t.TempDir(), "absent"), indexDir, opts)
	require.Error(t, err)
	require.ErrorContains(t, err, domain.ErrWheelsDirRead.Error())
}
