package synthesis

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// AudioFilename derives the download filename from a sermon title:
// lower-cased, whitespace/punctuation runs collapsed to single hyphens,
// leading/trailing hyphens trimmed, with a fixed "-audio" suffix and the
// encoding's extension. "Grace & Peace" becomes "grace-peace-audio.wav".
func AudioFilename(title, ext string) string {
	slug := nonAlphanumeric.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "sermon"
	}
	return slug + "-audio." + ext
}
