// Package gallery lists previously captured images and stores analysis
// responses next to them.
package gallery

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cloudfx/visioncam/internal/device"
)

// maxTokenDigits caps the numeric filename token so the parsed value cannot
// overflow; longer tokens sort as 0.
const maxTokenDigits = 9

// imageExtensions are the capture formats the browser lists.
var imageExtensions = []string{".jpg", ".jpeg"}

// Browser cyclically navigates the stored images. Callers must not operate
// on an empty gallery; List is checked before entering browse mode.
type Browser struct {
	storage *device.Storage
	files   []string
	index   int
}

// NewBrowser creates a browser over the storage root.
func NewBrowser(storage *device.Storage) *Browser {
	return &Browser{storage: storage}
}

// List refreshes and returns the image filenames, ordered by the numeric
// token embedded in each name so img_10 sorts after img_2. The cursor is
// reset to the newest (last) image.
func (b *Browser) List() ([]string, error) {
	names, err := b.storage.ListDir()
	if err != nil {
		return nil, fmt.Errorf("list gallery: %w", err)
	}

	var files []string
	for _, name := range names {
		if isImage(name) {
			files = append(files, name)
		}
	}
	sort.SliceStable(files, func(i, j int) bool {
		return numericToken(files[i]) < numericToken(files[j])
	})

	b.files = files
	if len(files) > 0 {
		b.index = len(files) - 1
	} else {
		b.index = 0
	}
	return files, nil
}

// Len returns the number of listed images.
func (b *Browser) Len() int {
	return len(b.files)
}

// Current returns the image at the cursor.
func (b *Browser) Current() string {
	return b.files[b.index]
}

// Next advances the cursor, wrapping past the end.
func (b *Browser) Next() string {
	b.index = (b.index + 1) % len(b.files)
	return b.files[b.index]
}

// Previous moves the cursor back, wrapping past the start.
func (b *Browser) Previous() string {
	b.index = (b.index - 1 + len(b.files)) % len(b.files)
	return b.files[b.index]
}

// Position returns the 1-based cursor position for the status line.
func (b *Browser) Position() (int, int) {
	return b.index + 1, len(b.files)
}

func isImage(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// numericToken extracts the digits of a filename as its sort key. Names with
// no digits, or with more than maxTokenDigits of them, sort as 0.
func numericToken(name string) int {
	var digits strings.Builder
	for _, r := range name {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	s := digits.String()
	if s == "" || len(s) > maxTokenDigits {
		return 0
	}
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
