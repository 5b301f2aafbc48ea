package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func addRecording(t *testing.T, store *Store, title string, tags ...string) *Recording {
	t.Helper()
	rec, err := store.Add(&Recording{
		Title:      title,
		Tags:       tags,
		SampleRate: 44100,
	}, []byte("RIFF-fake-audio-bytes"))
	require.NoError(t, err)
	return rec
}

func TestAddAndGet(t *testing.T) {
	store := newTestStore(t)
	rec := addRecording(t, store, "Pilot Episode", "intro")

	require.NotEmpty(t, rec.ID)
	require.Equal(t, int64(21), rec.SizeBytes)
	require.InDelta(t, 21.0/(44100*2), rec.Duration, 1e-9)
	require.False(t, rec.RecordedAt.IsZero())
	require.False(t, rec.Synced())

	got, err := store.Get(rec.ID)
	require.NoError(t, err)
	require.Equal(t, "Pilot Episode", got.Title)

	audio, err := store.Audio(rec.ID)
	require.NoError(t, err)
	require.Equal(t, []byte("RIFF-fake-audio-bytes"), audio)
}

func TestAddValidation(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Add(&Recording{}, []byte("x"))
	require.ErrorContains(t, err, "title")

	_, err = store.Add(&Recording{Title: "t"}, nil)
	require.ErrorContains(t, err, "no audio")
}

func TestListFiltersAndSearch(t *testing.T) {
	store := newTestStore(t)
	a := addRecording(t, store, "Morning Show", "news")
	b := addRecording(t, store, "Tech Talk", "golang")
	require.NoError(t, store.SetDriveFiles(a.ID, "drive-audio-1", ""))

	require.Len(t, store.List(FilterAll, ""), 2)

	synced := store.List(FilterSynced, "")
	require.Len(t, synced, 1)
	require.Equal(t, a.ID, synced[0].ID)

	local := store.List(FilterLocal, "")
	require.Len(t, local, 1)
	require.Equal(t, b.ID, local[0].ID)

	// Search is case-insensitive across title and tags.
	require.Len(t, store.List(FilterAll, "TECH"), 1)
	require.Len(t, store.List(FilterAll, "golang"), 1)
	require.Empty(t, store.List(FilterAll, "jazz"))
}

func TestDeleteLeavesDriveCopyAlone(t *testing.T) {
	store := newTestStore(t)
	rec := addRecording(t, store, "Removable")
	require.NoError(t, store.SetDriveFiles(rec.ID, "drive-1", "notes-1"))

	require.NoError(t, store.Delete(rec.ID))
	_, err := store.Get(rec.ID)
	require.Error(t, err)
	require.Error(t, store.Delete(rec.ID))
}

func TestStats(t *testing.T) {
	store := newTestStore(t)
	a := addRecording(t, store, "One")
	addRecording(t, store, "Two")
	require.NoError(t, store.SetDriveFiles(a.ID, "drive-1", ""))

	stats := store.Stats()
	require.Equal(t, 2, stats.Total)
	require.Equal(t, 1, stats.Synced)
	require.Equal(t, 1, stats.LocalOnly)
	require.Equal(t, int64(42), stats.TotalBytes)
}

func TestStagingSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	rec := addRecording(t, store, "Persistent")

	reopened, err := NewStore(dir)
	require.NoError(t, err)

	got, err := reopened.Get(rec.ID)
	require.NoError(t, err)
	require.Equal(t, "Persistent", got.Title)

	audio, err := reopened.Audio(rec.ID)
	require.NoError(t, err)
	require.Equal(t, []byte("RIFF-fake-audio-bytes"), audio)
}

func TestLoadStagedSkipsCorruptMetadata(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0644))

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.Empty(t, store.List(FilterAll, ""))
}

func TestExportMetadata(t *testing.T) {
	store := newTestStore(t)
	addRecording(t, store, "One")
	addRecording(t, store, "Two")

	exported := store.ExportMetadata()
	require.Len(t, exported, 2)
}
