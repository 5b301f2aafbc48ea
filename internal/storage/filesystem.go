package storage

import (
	"os"
	"path/filepath"
	"strings"
)

type FileEntry struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size,omitempty"`
}

var audioExtensions = map[string]bool{
	".wav": true, ".mp3": true, ".flac": true, ".m4a": true, ".ogg": true,
}

var notesExtensions = map[string]bool{
	".txt": true, ".md": true, ".json": true,
}

func IsAudioFile(name string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(name))]
}

func IsNotesFile(name string) bool {
	return notesExtensions[strings.ToLower(filepath.Ext(name))]
}

// ListDirectory lists a directory under basePath. Relative paths escaping
// the base are rejected.
func ListDirectory(basePath, relativePath string) ([]*FileEntry, error) {
	fullPath := filepath.Join(basePath, relativePath)

	// Prevent path traversal
	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return nil, err
	}
	absFull, err := filepath.Abs(fullPath)
	if err != nil {
		return nil, err
	}
	if absFull != absBase && !strings.HasPrefix(absFull, absBase+string(os.PathSeparator)) {
		return nil, os.ErrPermission
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, err
	}

	var result []*FileEntry
	for _, entry := range entries {
		// Skip hidden files
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		fe := &FileEntry{
			Name:  entry.Name(),
			Path:  filepath.Join(relativePath, entry.Name()),
			IsDir: entry.IsDir(),
		}
		if !entry.IsDir() {
			fe.Size = info.Size()
		}
		result = append(result, fe)
	}
	return result, nil
}
