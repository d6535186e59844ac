// Package deck turns a directory of documents into a pager data source and
// keeps the pager in step with the directory as files come and go.
package deck

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Akashdeep-Patra/zed-page-view/internal/ui/views"
)

// ErrNotDir is returned when the deck path is not a directory.
var ErrNotDir = errors.New("deck: not a directory")

// DefaultExtensions are the file extensions a deck picks up when none are
// configured.
var DefaultExtensions = []string{".md", ".markdown", ".txt"}

// Entry is one file of the deck.
type Entry struct {
	Name    string     `json:"name"`
	Path    string     `json:"path"`
	Kind    views.Kind `json:"kind"`
	Size    int64      `json:"size"`
	ModTime time.Time  `json:"mod_time"`
}

// KindOf picks the page kind for a file name.
func KindOf(name string) views.Kind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown", ".mdown", ".mkd":
		return views.KindMarkdown
	}
	return views.KindText
}

// Matches reports whether name belongs in a deck with the given extensions.
// Hidden files never do.
func Matches(name string, exts []string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	for _, e := range exts {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// Scan lists the matching files directly inside dir, ordered by name.
func Scan(dir string, exts []string) ([]Entry, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("deck: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDir, dir)
	}
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("deck: read %s: %w", dir, err)
	}

	// ReadDir sorts by file name, which is the deck order.
	entries := make([]Entry, 0, len(dirents))
	for _, de := range dirents {
		if de.IsDir() || !Matches(de.Name(), exts) {
			continue
		}
		fi, err := de.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		entries = append(entries, Entry{
			Name:    de.Name(),
			Path:    filepath.Join(dir, de.Name()),
			Kind:    KindOf(de.Name()),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
	}
	return entries, nil
}

// Diff is the edit script that turns one scan into the next, in the
// numbering the pager's batch edits expect: Deleted in the old numbering,
// Inserted and Reloaded in the new one.
type Diff struct {
	Deleted  []int `json:"deleted,omitempty"`
	Inserted []int `json:"inserted,omitempty"`
	Reloaded []int `json:"reloaded,omitempty"`
}

// Empty reports whether nothing changed.
func (d Diff) Empty() bool {
	return len(d.Deleted) == 0 && len(d.Inserted) == 0 && len(d.Reloaded) == 0
}

func (d Diff) String() string {
	return fmt.Sprintf("+%d -%d ~%d", len(d.Inserted), len(d.Deleted), len(d.Reloaded))
}

// Compare diffs two name-ordered scans. A file whose size or modification
// time changed is reloaded in place.
func Compare(old, next []Entry) Diff {
	var d Diff
	i, j := 0, 0
	for i < len(old) || j < len(next) {
		switch {
		case j == len(next) || (i < len(old) && old[i].Name < next[j].Name):
			d.Deleted = append(d.Deleted, i)
			i++
		case i == len(old) || next[j].Name < old[i].Name:
			d.Inserted = append(d.Inserted, j)
			j++
		default:
			if old[i].Size != next[j].Size || !old[i].ModTime.Equal(next[j].ModTime) {
				d.Reloaded = append(d.Reloaded, j)
			}
			i++
			j++
		}
	}
	return d
}
