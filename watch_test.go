/*
 * Copyright (c) 2023.
 * all right reserved by gnodux<gnodux@gmail.com>
 */

package sqlmark

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch(t *testing.T) {
	delay := WatchDelay
	WatchDelay = 20 * time.Millisecond
	defer func() { WatchDelay = delay }()

	dir := t.TempDir()
	file := filepath.Join(dir, "value.sql")
	require.NoError(t, os.WriteFile(file, []byte("SELECT 1 AS v"), 0o644))

	m := NewDBManager("watch")
	m.SetTemplateFS(os.DirFS(dir), "*.sql")
	db, err := m.Open(DefaultName, "sqlite", ":memory:")
	require.NoError(t, err)
	defer m.Shutdown()

	v := 0
	require.NoError(t, db.GetEx(&v, "value.sql"))
	assert.Equal(t, 1, v)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, m.Watch(ctx, dir))

	require.NoError(t, os.WriteFile(file, []byte("SELECT 2 AS v"), 0o644))
	assert.Eventually(t, func() bool {
		v := 0
		return db.GetEx(&v, "value.sql") == nil && v == 2
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatchMissingDir(t *testing.T) {
	m := NewDBManager("watch")
	err := m.Watch(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
