package curate

import (
	"testing"

	"github.com/desertthunder/meloday/internal/models"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "HELLO World", "hello world"},
		{"collapses whitespace", "  a   b  ", "a b"},
		{"curly quotes", "Don’t Stop", "don't stop"},
		{"fullwidth characters", "ＡＢＣ", "abc"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.input); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStripVersionMarkers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"feat and radio edit", "Song (feat. X) - Radio Edit", "song"},
		{"bracketed feat", "Song [feat. Somebody]", "song"},
		{"remaster tag", "Blue Monday (2016 Remaster)", "blue monday"},
		{"dash remix suffix", "Voyager - Extended Remix", "voyager"},
		{"plain title untouched", "Plainsong", "plainsong"},
		{"bare keyword", "Midnight Acoustic", "midnight"},
		{"empty parens cleaned", "Song ()", "song"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripVersionMarkers(tt.input); got != tt.want {
				t.Errorf("StripVersionMarkers(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCanonicalArtist(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"feat clause removed", "Artist feat. Guest", "Artist"},
		{"featuring clause removed", "Artist featuring Guest", "Artist"},
		{"ft clause removed", "Artist ft. Guest", "Artist"},
		{"no clause", "Artist", "Artist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalArtist(tt.input); got != tt.want {
				t.Errorf("CanonicalArtist(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPrimaryArtistOf(t *testing.T) {
	tests := []struct {
		name  string
		track models.Track
		want  string
	}{
		{
			"performer field preferred",
			models.Track{Artist: "Real Artist", OriginalTitle: "Credit", ArtistTitle: "Record"},
			"Real Artist",
		},
		{
			"various artists falls back to track credit",
			models.Track{Title: "Song", Artist: "Various Artists", OriginalTitle: "Credited Artist"},
			"Credited Artist",
		},
		{
			"credit identical to title skipped",
			models.Track{Title: "Song", Artist: "Various Artists", OriginalTitle: "song", ArtistTitle: "Record Artist"},
			"Record Artist",
		},
		{
			"all fields empty",
			models.Track{},
			"unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PrimaryArtistOf(tt.track); got != tt.want {
				t.Errorf("PrimaryArtistOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKeyOfMatchesAcrossVariants(t *testing.T) {
	a := models.Track{ID: "1", Title: "Song (feat. X) - Radio Edit", Artist: "Artist"}
	b := models.Track{ID: "2", Title: "Song", Artist: "Artist"}

	if KeyOf(a) != KeyOf(b) {
		t.Errorf("expected matching keys, got %v and %v", KeyOf(a), KeyOf(b))
	}
}

func TestKeyOfDistinguishesArtists(t *testing.T) {
	a := models.Track{ID: "1", Title: "Song", Artist: "Artist A"}
	b := models.Track{ID: "2", Title: "Song", Artist: "Artist B"}

	if KeyOf(a) == KeyOf(b) {
		t.Error("expected different keys for different artists")
	}
}
