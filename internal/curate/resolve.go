package curate

import (
	"regexp"
	"strings"

	"github.com/desertthunder/meloday/internal/models"
)

// compilationTitleRe catches compilation/soundtrack phrasing in album titles
// when the catalog supplies no usable subtype.
var compilationTitleRe = regexp.MustCompile(`(?i)\b(` +
	`soundtrack|ost|o\.s\.t\.|` +
	`original\s+(?:motion\s+picture\s+)?soundtrack|` +
	`motion\s+picture\s+soundtrack|` +
	`music\s+from\s+the\s+(?:motion\s+picture|film)|` +
	`various\s+artists|` +
	`greatest\s+hits|best\s+of|` +
	`anthology|compilation|` +
	`triple\s*j` +
	`)\b`)

var liveTitleRe = regexp.MustCompile(`(?i)\blive\b|unplugged|concert`)

var plainVariantRe = regexp.MustCompile(`(?i)\b(original\s+mix|album\s+version|single\s+version)\b`)

// isStudioAlbum classifies a track's release. Compilations, soundtracks and
// live recordings are non-studio; unclassifiable releases default to studio.
func isStudioAlbum(t models.Track) bool {
	subtype := strings.ToLower(t.AlbumSubtype)
	if subtype != "" {
		// Subtype strings vary across server versions, so check broadly.
		if strings.Contains(subtype, "compilation") || strings.Contains(subtype, "soundtrack") {
			return false
		}
		if strings.Contains(subtype, "live") || strings.Contains(subtype, "ep") ||
			strings.Contains(subtype, "single") || strings.Contains(subtype, "remix") {
			return false
		}
		if strings.Contains(subtype, "album") || strings.Contains(subtype, "studio") {
			return true
		}
	}

	if compilationTitleRe.MatchString(t.Album) {
		return false
	}
	if liveTitleRe.MatchString(t.Album) {
		return false
	}

	return true
}

func isCompilationLike(t models.Track) bool {
	subtype := strings.ToLower(t.AlbumSubtype)
	if strings.Contains(subtype, "compilation") || strings.Contains(subtype, "soundtrack") {
		return true
	}
	return compilationTitleRe.MatchString(t.Album)
}

func isLiveLike(t models.Track) bool {
	if strings.Contains(strings.ToLower(t.AlbumSubtype), "live") {
		return true
	}
	return liveTitleRe.MatchString(t.Album)
}

// titleVariantRank orders title variants, lower is better: 0 for a title that
// is already its own base form, 1 for explicit "original mix"/"album version"
// tags, 2 for everything else.
func titleVariantRank(t models.Track) int {
	raw := strings.ToLower(strings.TrimSpace(t.Title))
	cleaned := strings.ToLower(strings.TrimSpace(StripVersionMarkers(t.Title)))

	if raw == cleaned {
		return 0
	}
	if plainVariantRe.MatchString(raw) {
		return 1
	}
	return 2
}

// remixAlbumPenalty is 1 for remix releases (albums/EPs titled "Remix"/"Remixes"
// or a remix subtype), 0 otherwise. Lower is better.
func remixAlbumPenalty(t models.Track) int {
	if strings.Contains(strings.ToLower(t.Album), "remix") {
		return 1
	}
	if strings.Contains(strings.ToLower(t.AlbumSubtype), "remix") {
		return 1
	}
	return 0
}

// resolveRule orders two duplicate tracks. pick returns the preferred track
// and true when the rule discriminates between them.
type resolveRule struct {
	name string
	pick func(a, b models.Track) (models.Track, bool)
}

// resolveRules is the tie-break chain applied in order; the first
// discriminating rule wins. The ordering is part of the contract.
var resolveRules = []resolveRule{
	{"studio release", func(a, b models.Track) (models.Track, bool) {
		aStudio, bStudio := isStudioAlbum(a), isStudioAlbum(b)
		if aStudio == bStudio {
			return a, false
		}
		if aStudio {
			return a, true
		}
		return b, true
	}},
	{"plain title variant", func(a, b models.Track) (models.Track, bool) {
		aRank, bRank := titleVariantRank(a), titleVariantRank(b)
		if aRank == bRank {
			return a, false
		}
		if aRank < bRank {
			return a, true
		}
		return b, true
	}},
	{"non-remix release", func(a, b models.Track) (models.Track, bool) {
		aPen, bPen := remixAlbumPenalty(a), remixAlbumPenalty(b)
		if aPen == bPen {
			return a, false
		}
		if aPen < bPen {
			return a, true
		}
		return b, true
	}},
	{"compilation over live", func(a, b models.Track) (models.Track, bool) {
		aComp, bComp := isCompilationLike(a), isCompilationLike(b)
		aLive, bLive := isLiveLike(a), isLiveLike(b)

		// Head-to-head: a compilation copy beats a live copy.
		if aComp && bLive && !bComp && !aLive {
			return a, true
		}
		if bComp && aLive && !aComp && !bLive {
			return b, true
		}

		if aLive != bLive {
			if aLive {
				return b, true
			}
			return a, true
		}
		return a, false
	}},
	{"album artist matches performer", func(a, b models.Track) (models.Track, bool) {
		aArtist := NormalizeText(CanonicalArtist(PrimaryArtistOf(a)))
		bArtist := NormalizeText(CanonicalArtist(PrimaryArtistOf(b)))
		aAlbum := NormalizeText(CanonicalArtist(a.AlbumArtist))
		bAlbum := NormalizeText(CanonicalArtist(b.AlbumArtist))

		aMatch := aAlbum != "" && aAlbum == aArtist
		bMatch := bAlbum != "" && bAlbum == bArtist
		if aMatch == bMatch {
			return a, false
		}
		if aMatch {
			return a, true
		}
		return b, true
	}},
	{"non-various-artists release", func(a, b models.Track) (models.Track, bool) {
		aVA, bVA := isVariousArtists(a.AlbumArtist), isVariousArtists(b.AlbumArtist)
		if aVA == bVA {
			return a, false
		}
		if aVA {
			return b, true
		}
		return a, true
	}},
	{"higher user rating", func(a, b models.Track) (models.Track, bool) {
		switch {
		case a.Rating != nil && b.Rating != nil:
			if *a.Rating == *b.Rating {
				return a, false
			}
			if *a.Rating > *b.Rating {
				return a, true
			}
			return b, true
		case a.Rating != nil:
			return a, true
		case b.Rating != nil:
			return b, true
		}
		return a, false
	}},
}

// betterCopy chooses which duplicate track entry to keep. The fallback keeps
// the first-seen copy.
func betterCopy(a, b models.Track) models.Track {
	for _, rule := range resolveRules {
		if winner, ok := rule.pick(a, b); ok {
			return winner
		}
	}
	return a
}

// ResolveDuplicates collapses tracks sharing a canonical key down to their
// best copy, preserving the first-seen order of keys. Tracks missing an ID or
// title are skipped without affecting the rest.
func ResolveDuplicates(tracks []models.Track) []models.Track {
	bestByKey := make(map[Key]models.Track, len(tracks))
	var keyOrder []Key

	for _, track := range tracks {
		if track.ID == "" || track.Title == "" {
			continue
		}

		key := KeyOf(track)
		if existing, ok := bestByKey[key]; ok {
			bestByKey[key] = betterCopy(existing, track)
		} else {
			bestByKey[key] = track
			keyOrder = append(keyOrder, key)
		}
	}

	resolved := make([]models.Track, 0, len(keyOrder))
	for _, key := range keyOrder {
		resolved = append(resolved, bestByKey[key])
	}
	return resolved
}
