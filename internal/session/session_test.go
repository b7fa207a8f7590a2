package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/schollz/cadence/internal/interp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	ip := interp.New(nil)
	require.Empty(t, ip.Load(`tempo 130
play "C4 D4" loop
volume 0.6`))

	snap := Capture(ip)
	assert.Equal(t, 130.0, snap.Tempo)

	dir := t.TempDir()
	path := filepath.Join(dir, "session.json.gz")
	require.NoError(t, Save(path, snap))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, snap.Source, loaded.Source)
	assert.Equal(t, snap.Tempo, loaded.Tempo)
	assert.Equal(t, snap.Volumes, loaded.Volumes)
}

func TestRestoreReappliesSourceAndVolumes(t *testing.T) {
	ip := interp.New(nil)
	require.Empty(t, ip.Load(`tempo 100
play "C4" loop`))
	ip.ApplyTrackVolume(1, 0.25)
	snap := Capture(ip)

	fresh := interp.New(nil)
	errs := Restore(fresh, snap)
	require.Empty(t, errs)
	assert.Equal(t, 100.0, fresh.Tempo())

	vols := fresh.TrackVolumes()
	require.Len(t, vols, 1)
	assert.Equal(t, 0.25, vols[0].Volume)
}

func TestAutoSaverDebouncesWrites(t *testing.T) {
	ip := interp.New(nil)
	require.Empty(t, ip.Load(`play "C4" loop`))

	dir := t.TempDir()
	path := filepath.Join(dir, "auto.json.gz")
	saver := NewAutoSaver(path)
	saver.DebounceInterval = 0 // fire immediately for the test

	saver.Touch(ip)
	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, time.Second, 5*time.Millisecond)
}
