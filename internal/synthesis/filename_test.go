package synthesis

import "testing"

func TestAudioFilename(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Grace & Peace", "grace-peace-audio.wav"},
		{"The Prodigal Son", "the-prodigal-son-audio.wav"},
		{"  Hope!  ", "hope-audio.wav"},
		{"Psalm 23", "psalm-23-audio.wav"},
		{"???", "sermon-audio.wav"},
		{"", "sermon-audio.wav"},
	}

	for _, c := range cases {
		if got := AudioFilename(c.title, "wav"); got != c.want {
			t.Errorf("AudioFilename(%q): expected %q, got %q", c.title, c.want, got)
		}
	}
}
