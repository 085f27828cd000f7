package curate

import (
	"regexp"
	"sort"
	"strings"

	"github.com/desertthunder/meloday/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// versionKeywords mark release variants that should collapse onto the base
// recording when deduplicating ("Song (Radio Edit)" == "Song").
var versionKeywords = []string{
	"extended", "deluxe", "remaster", "remastered", "live", "acoustic", "edit",
	"version", "anniversary", "special edition", "radio edit", "album version",
	"original mix", "remix", "mix", "dub", "instrumental", "karaoke", "cover",
	"rework", "re-edit", "bootleg", "vip", "session", "alternate", "take",
	"mix cut", "cut", "dj mix",
}

// featuringPatterns strip featured-artist clauses and trailing dash-suffixed
// mix/edit qualifiers from track titles.
var featuringPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\(feat\.?[^)]*\)`),
	regexp.MustCompile(`(?i)\[feat\.?[^\]]*\]`),
	regexp.MustCompile(`(?i)\(ft\.?[^)]*\)`),
	regexp.MustCompile(`(?i)\[ft\.?[^\]]*\]`),
	regexp.MustCompile(`(?i)\bfeat\.?\s+\w+`),
	regexp.MustCompile(`(?i)\bfeaturing\s+\w+`),
	regexp.MustCompile(`(?i)\bft\.?\s+\w+`),
	regexp.MustCompile(`(?i) - .*mix$`),
	regexp.MustCompile(`(?i) - .*dub$`),
	regexp.MustCompile(`(?i) - .*remix$`),
	regexp.MustCompile(`(?i) - .*edit$`),
	regexp.MustCompile(`(?i) - .*version$`),
}

// keywordAlternation builds a regex alternation over versionKeywords, longest
// first so "radio edit" wins over "edit", with spaces matching any whitespace.
func keywordAlternation() string {
	kws := append([]string(nil), versionKeywords...)
	sort.Slice(kws, func(i, j int) bool { return len(kws[i]) > len(kws[j]) })

	parts := make([]string, len(kws))
	for i, kw := range kws {
		parts[i] = strings.ReplaceAll(regexp.QuoteMeta(kw), " ", `\s+`)
	}
	return strings.Join(parts, "|")
}

var (
	kwAlt            = keywordAlternation()
	parenKeywordRe   = regexp.MustCompile(`(?i)\(\s*[^)]*(?:` + kwAlt + `)[^)]*\)\s*`)
	bracketKeywordRe = regexp.MustCompile(`(?i)\[\s*[^\]]*(?:` + kwAlt + `)[^\]]*\]\s*`)
	bareKeywordRe    = regexp.MustCompile(`(?i)\b(?:` + kwAlt + `)\b`)

	emptyParensRe   = regexp.MustCompile(`\(\s*\)`)
	emptyBracketsRe = regexp.MustCompile(`\[\s*\]`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
	trailingSepRe   = regexp.MustCompile(`[\s-]+$`)

	featClauseRe = regexp.MustCompile(`(?i)\s*(?:feat\.?|ft\.?|featuring)\s+.*$`)
)

// punctReplacer unifies visually-equivalent punctuation (curly quotes, dash
// variants) before comparison.
var punctReplacer = strings.NewReplacer(
	"’", "'", "‘", "'",
	"–", "-", "—", "-", "‐", "-",
)

var caseFolder = cases.Fold()

// NormalizeText Unicode-normalizes, unifies punctuation, case-folds and
// collapses whitespace so free-text metadata becomes comparable.
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}

	s = norm.NFKC.String(s)
	s = punctReplacer.Replace(s)
	s = caseFolder.String(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// StripVersionMarkers reduces a track title to its base recording title:
// featured-artist clauses, dash-suffixed mix/edit qualifiers, bracketed spans
// containing version keywords and bare version keywords are all removed.
func StripVersionMarkers(title string) string {
	clean := strings.ToLower(strings.TrimSpace(title))

	for _, re := range featuringPatterns {
		clean = strings.TrimSpace(re.ReplaceAllString(clean, ""))
	}

	clean = parenKeywordRe.ReplaceAllString(clean, " ")
	clean = bracketKeywordRe.ReplaceAllString(clean, " ")
	clean = bareKeywordRe.ReplaceAllString(clean, " ")

	clean = emptyParensRe.ReplaceAllString(clean, "")
	clean = emptyBracketsRe.ReplaceAllString(clean, "")
	clean = strings.TrimSpace(whitespaceRe.ReplaceAllString(clean, " "))
	clean = trailingSepRe.ReplaceAllString(clean, "")

	return clean
}

// CanonicalArtist strips a trailing "feat./ft./featuring ..." clause from an
// artist string, leaving the primary artist portion.
func CanonicalArtist(name string) string {
	if name == "" {
		return ""
	}

	s := featClauseRe.ReplaceAllString(strings.TrimSpace(name), "")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// isVariousArtists reports whether a name is a Various Artists placeholder.
func isVariousArtists(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "various artists", "various":
		return true
	}
	return false
}

// PrimaryArtistOf resolves the best-effort track artist name.
//
// Catalogs represent compilation albums in a few ways: sometimes the performer
// field holds the real artist, sometimes it reads "Various Artists" and the
// real artist sits in the per-track credit. The chain prefers a non-VA
// performer field, then the per-track credit (unless it merely repeats the
// title), then the artist record title, then whatever performer field exists.
func PrimaryArtistOf(t models.Track) string {
	if gp := strings.TrimSpace(t.Artist); gp != "" && !isVariousArtists(gp) {
		return gp
	}

	if ot := strings.TrimSpace(t.OriginalTitle); ot != "" && !isVariousArtists(ot) {
		if !strings.EqualFold(ot, strings.TrimSpace(t.Title)) {
			return ot
		}
	}

	if at := strings.TrimSpace(t.ArtistTitle); at != "" && !isVariousArtists(at) {
		return at
	}

	if gp := strings.TrimSpace(t.Artist); gp != "" {
		return gp
	}
	return "unknown"
}

// Key is the canonical (title, artist) identity of a recording across
// releases. Used only for grouping; never persisted.
type Key struct {
	Title  string
	Artist string
}

// KeyOf derives the canonical key for a track.
func KeyOf(t models.Track) Key {
	return Key{
		Title:  NormalizeText(StripVersionMarkers(t.Title)),
		Artist: NormalizeText(CanonicalArtist(PrimaryArtistOf(t))),
	}
}

// ArtistKeyOf returns the normalized primary artist used for diversity caps
// and same-artist adjacency penalties.
func ArtistKeyOf(t models.Track) string {
	return NormalizeText(CanonicalArtist(PrimaryArtistOf(t)))
}
