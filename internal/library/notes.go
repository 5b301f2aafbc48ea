package library

import (
	"fmt"
	"strings"
)

// NotesDocument renders the plain-text notes file uploaded alongside a
// recording's audio.
func NotesDocument(rec *Recording) string {
	orNA := func(s string) string {
		if s == "" {
			return "N/A"
		}
		return s
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Episode: %s\n", rec.Title)
	fmt.Fprintf(&b, "Episode Number: %s\n", orNA(rec.EpisodeNumber))
	fmt.Fprintf(&b, "Season: %s\n", orNA(rec.Season))
	fmt.Fprintf(&b, "Recorded: %s\n", rec.RecordedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Duration: %.1fs\n", rec.Duration)
	fmt.Fprintf(&b, "Quality: %d Hz\n", rec.SampleRate)
	fmt.Fprintf(&b, "\nDescription:\n%s\n", orNA(rec.Description))
	fmt.Fprintf(&b, "\nShow Notes:\n%s\n", orNA(rec.Notes))
	fmt.Fprintf(&b, "\nTags: %s\n", orNA(strings.Join(rec.Tags, ", ")))
	return b.String()
}
