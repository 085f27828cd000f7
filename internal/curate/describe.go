package curate

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/meloday/internal/models"
)

const defaultDescriptor = "Vibrant"

// MoodMap maps a mood label to descriptor words used in playlist titles.
type MoodMap map[string][]string

// LoadMoodMap reads the descriptor dictionary from a JSON file. Any load or
// parse failure degrades to an empty map so naming still works.
func LoadMoodMap(path string, logger *log.Logger) MoodMap {
	data, err := os.ReadFile(path)
	if err != nil {
		if logger != nil {
			logger.Warn("mood map unavailable", "path", path, "error", err)
		}
		return MoodMap{}
	}

	var m MoodMap
	if err := json.Unmarshal(data, &m); err != nil {
		if logger != nil {
			logger.Warn("mood map unreadable", "path", path, "error", err)
		}
		return MoodMap{}
	}
	return m
}

// Descriptor picks a descriptor word for the mood, defaulting to "Vibrant"
// when the mood has no entry.
func (m MoodMap) Descriptor(mood string, rng *rand.Rand) string {
	choices := m[mood]
	if len(choices) == 0 {
		return defaultDescriptor
	}
	if rng != nil {
		return choices[rng.Intn(len(choices))]
	}
	return choices[rand.Intn(len(choices))]
}

// rankedLabels orders labels by frequency, breaking count ties by first
// appearance so the result is stable.
func rankedLabels(tracks []models.Track, pick func(models.Track) []string) []string {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	var order []string

	for _, track := range tracks {
		for _, label := range pick(track) {
			if _, ok := counts[label]; !ok {
				firstSeen[label] = len(order)
				order = append(order, label)
			}
			counts[label]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return firstSeen[order[i]] < firstSeen[order[j]]
	})
	return order
}

// Describe names a curated run from its dominant moods and genres. The title
// leads with the top mood and genre; the description highlights up to six
// secondary styles.
func Describe(period, periodPhrase string, tracks []models.Track, moods MoodMap, now time.Time, rng *rand.Rand) (title, description string) {
	dayName := now.Weekday().String()

	genres := rankedLabels(tracks, func(t models.Track) []string { return t.Genres })
	moodLabels := rankedLabels(tracks, func(t models.Track) []string { return t.Moods })

	topGenre := "Eclectic"
	if len(genres) > 0 {
		topGenre = genres[0]
	}
	topMood := "Vibes"
	if len(moodLabels) > 0 {
		topMood = moodLabels[0]
	}
	secondMood := ""
	if len(moodLabels) > 1 {
		secondMood = moodLabels[1]
	}

	descriptor := moods.Descriptor(secondMood, rng)
	title = fmt.Sprintf("Meloday for %s %s %s %s %s", topMood, descriptor, topGenre, dayName, period)

	styles := highlightStyles(genres, moodLabels, topGenre, topMood)

	lead := fmt.Sprintf("You listened to %s and %s tracks on %s %s.", topGenre, topMood, dayName, periodPhrase)
	if secondMood != "" {
		lead = fmt.Sprintf("You listened to %s and %s tracks on %s %s.", topMood, topGenre, dayName, periodPhrase)
	}

	switch len(styles) {
	case 0:
		description = lead
	case 1:
		description = fmt.Sprintf("%s Here's some %s tracks as well.", lead, styles[0])
	default:
		description = fmt.Sprintf("%s Here's some %s, and %s tracks as well.",
			lead, strings.Join(styles[:len(styles)-1], ", "), styles[len(styles)-1])
	}
	return title, description
}

// highlightStyles collects up to six secondary genres and moods, skipping
// the headline pair and deduplicating while preserving rank order.
func highlightStyles(genres, moods []string, topGenre, topMood string) []string {
	const maxStyles = 6

	seen := map[string]bool{topGenre: true, topMood: true}
	var styles []string

	add := func(labels []string) {
		for _, label := range labels {
			if len(styles) >= maxStyles {
				return
			}
			if seen[label] {
				continue
			}
			seen[label] = true
			styles = append(styles, label)
		}
	}

	if len(genres) > 3 {
		add(genres[:3])
	} else {
		add(genres)
	}
	if len(moods) > 3 {
		add(moods[:3])
	} else {
		add(moods)
	}
	add(genres)
	add(moods)

	return styles
}
