package dataset

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))
	return path
}

func TestStore_CachesTable(t *testing.T) {
	store := NewStore(writeSample(t), slog.New(slog.NewTextHandler(os.Stdout, nil)))

	first, err := store.Table(context.Background())
	require.NoError(t, err)

	// Remove the file; the cached table must still be served.
	require.NoError(t, os.Remove(store.Path()))

	second, err := store.Table(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second, "second call must return the cached table")
}

func TestStore_MissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent.csv"), slog.New(slog.NewTextHandler(os.Stdout, nil)))

	_, err := store.Table(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStore_LoadObserver(t *testing.T) {
	store := NewStore(writeSample(t), slog.New(slog.NewTextHandler(os.Stdout, nil)))

	var calls int
	var observedRows int
	store.SetLoadObserver(func(rows int, duration time.Duration, err error) {
		calls++
		observedRows = rows
		assert.NoError(t, err)
	})

	table, err := store.Table(context.Background())
	require.NoError(t, err)

	// The cached path must not re-notify.
	_, err = store.Table(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, len(table.Rows), observedRows)
}

func TestStore_ConcurrentFirstLoad(t *testing.T) {
	store := NewStore(writeSample(t), slog.New(slog.NewTextHandler(os.Stdout, nil)))

	const callers = 16
	tables := make([]*Table, callers)
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			table, err := store.Table(context.Background())
			assert.NoError(t, err)
			tables[i] = table
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		assert.Same(t, tables[0], tables[i])
	}
}
