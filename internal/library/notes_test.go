package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNotesDocument(t *testing.T) {
	rec := &Recording{
		Title:         "Pilot",
		EpisodeNumber: "1",
		Season:        "2",
		Description:   "The first one.",
		Notes:         "Remember to thank the guests.",
		Tags:          []string{"intro", "studio"},
		SampleRate:    44100,
		Duration:      61.5,
		RecordedAt:    time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
	}

	doc := NotesDocument(rec)
	require.Contains(t, doc, "Episode: Pilot\n")
	require.Contains(t, doc, "Episode Number: 1\n")
	require.Contains(t, doc, "Season: 2\n")
	require.Contains(t, doc, "Recorded: 2026-03-14 10:30:00\n")
	require.Contains(t, doc, "Duration: 61.5s\n")
	require.Contains(t, doc, "Quality: 44100 Hz\n")
	require.Contains(t, doc, "Description:\nThe first one.\n")
	require.Contains(t, doc, "Show Notes:\nRemember to thank the guests.\n")
	require.Contains(t, doc, "Tags: intro, studio\n")
}

func TestNotesDocumentFallbacks(t *testing.T) {
	doc := NotesDocument(&Recording{Title: "Bare"})
	require.Contains(t, doc, "Episode Number: N/A\n")
	require.Contains(t, doc, "Season: N/A\n")
	require.Contains(t, doc, "Description:\nN/A\n")
	require.Contains(t, doc, "Tags: N/A\n")
}
