package gallery

import (
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cloudfx/visioncam/internal/device"
)

// companionPrefixLen is how much of the image stem is kept before the prompt
// label infix, so companions group next to their source image.
const companionPrefixLen = 8

// illegalFilenameChars cannot appear in FAT filenames and are stripped from
// the label.
const illegalFilenameChars = `?*:/\"<>|`

// ResponseStore writes a successful analysis next to its source image. A
// failed save is logged and swallowed: the response already on screen must
// never be lost to a storage hiccup.
type ResponseStore struct {
	storage *device.Storage
	log     zerolog.Logger
}

// NewResponseStore creates a store writing through storage.
func NewResponseStore(storage *device.Storage, log zerolog.Logger) *ResponseStore {
	return &ResponseStore{
		storage: storage,
		log:     log.With().Str("component", "gallery").Logger(),
	}
}

// Save writes responseText to the companion file derived from imagePath and
// promptLabel, and reports whether the write succeeded. The derivation is
// deterministic, so saving the same inputs twice targets the same file.
func (s *ResponseStore) Save(imagePath, responseText, promptLabel string) bool {
	name := CompanionName(imagePath, promptLabel)
	if name == "" {
		s.log.Warn().Str("image", imagePath).Msg("cannot derive companion filename")
		return false
	}

	if err := s.storage.WriteFile(name, []byte(responseText)); err != nil {
		s.log.Warn().Err(err).Str("file", name).Msg("response save failed")
		return false
	}

	s.log.Info().Str("file", name).Int("chars", len(responseText)).Msg("response saved")
	return true
}

// CompanionName derives the response filename: the first companionPrefixLen
// characters of the image stem, the sanitized prompt label as an infix, and
// a .txt extension.
func CompanionName(imagePath, promptLabel string) string {
	base := filepath.Base(imagePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." {
		return ""
	}
	if len(stem) > companionPrefixLen {
		stem = stem[:companionPrefixLen]
	}

	label := sanitizeLabel(promptLabel)
	if label == "" {
		return stem + ".txt"
	}
	return stem + "_" + label + ".txt"
}

// sanitizeLabel strips filesystem-illegal characters and whitespace from a
// prompt label.
func sanitizeLabel(label string) string {
	var b strings.Builder
	for _, r := range label {
		if strings.ContainsRune(illegalFilenameChars, r) || r == ' ' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
