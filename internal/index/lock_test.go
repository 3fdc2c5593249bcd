package index_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcindex/fcindex/internal/index"
	"github.com/fcindex/fcindex/internal/lifecycle"
)

// TestInit_TimesOutWhenDirectoryLockHeld exercises the
// fcerrors.Retry-backed poll loop in tryLockWithTimeout: a directory lock
// held by another flock.Flock handle must cause Init to fail within
// roughly the configured timeout, not hang or succeed.
func TestInit_TimesOutWhenDirectoryLockHeld(t *testing.T) {
	dir := t.TempDir()

	holder := flock.New(filepath.Join(dir, ".fcindex.lock"))
	ok, err := holder.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer func() { _ = holder.Unlock() }()

	index.Configure(lifecycle.Settings{LockTimeoutMillis: 100})

	start := time.Now()
	err = index.Init(dir)
	elapsed := time.Since(start)

	assert.Error(t, err)
	assert.Less(t, elapsed, 2*time.Second, "Init should give up close to the configured timeout")
}
