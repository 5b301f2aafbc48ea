package drive

import (
	"context"
	"fmt"
)

// Studio folder names under the root folder.
const (
	FolderAudio       = "Audio Recordings"
	FolderNotes       = "Episode Notes"
	FolderTranscripts = "Transcripts"
	FolderDrafts      = "Drafts"
)

// subfolders in display order.
var subfolders = []string{FolderAudio, FolderNotes, FolderTranscripts, FolderDrafts}

// Layout maps studio folder names to Drive folder IDs. The root folder is
// stored under "root".
type Layout map[string]string

// EnsureStudioLayout creates the studio folder tree when missing and returns
// the name→ID mapping. Calling it repeatedly is safe: existing folders are
// reused.
func EnsureStudioLayout(ctx context.Context, c *Client, rootName string) (Layout, error) {
	rootID, err := c.EnsureFolder(ctx, rootName, "")
	if err != nil {
		return nil, fmt.Errorf("ensure root folder: %w", err)
	}

	layout := Layout{"root": rootID}
	for _, name := range subfolders {
		id, err := c.EnsureFolder(ctx, name, rootID)
		if err != nil {
			return nil, fmt.Errorf("ensure subfolder %q: %w", name, err)
		}
		layout[name] = id
	}
	return layout, nil
}
