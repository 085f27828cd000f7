package curate

import (
	"strings"
	"time"

	"github.com/desertthunder/meloday/internal/models"
	"github.com/desertthunder/meloday/internal/shared"
)

// lowRatingCeiling marks a track as disliked when any of its track, album or
// artist ratings sits at or below it (ratings run 0 to 10).
const lowRatingCeiling = 4.0

// Schedule maps hours of the day to named listening periods.
type Schedule struct {
	periods []shared.PeriodConfig
}

func NewSchedule(periods []shared.PeriodConfig) *Schedule {
	return &Schedule{periods: periods}
}

// PeriodFor names the period covering hour, falling back to the last
// configured period for uncovered hours.
func (s *Schedule) PeriodFor(hour int) string {
	for _, p := range s.periods {
		for _, h := range p.Hours {
			if h == hour {
				return p.Name
			}
		}
	}

	if len(s.periods) > 0 {
		return s.periods[len(s.periods)-1].Name
	}
	return "Late Night"
}

// HoursFor lists the hours belonging to the named period.
func (s *Schedule) HoursFor(period string) []int {
	for _, p := range s.periods {
		if p.Name == period {
			return p.Hours
		}
	}
	return nil
}

// Phrase is the human phrasing configured for the period, used in playlist
// descriptions.
func (s *Schedule) Phrase(period string) string {
	for _, p := range s.periods {
		if p.Name == period {
			return p.Phrase
		}
	}
	return ""
}

// Periods lists the configured period names in order.
func (s *Schedule) Periods() []string {
	names := make([]string, 0, len(s.periods))
	for _, p := range s.periods {
		names = append(names, p.Name)
	}
	return names
}

// InWindow reports whether now falls inside the configured seasonal window.
// Windows may cross the year boundary (start December, end January). An
// invalid window falls back to December 1 through December 25.
func InWindow(w shared.WindowConfig, now time.Time) bool {
	startMonth, startDay := w.StartMonth, w.StartDay
	endMonth, endDay := w.EndMonth, w.EndDay

	if !validMonthDay(startMonth, startDay) || !validMonthDay(endMonth, endDay) {
		startMonth, startDay = 12, 1
		endMonth, endDay = 12, 25
	}

	cur := int(now.Month())*100 + now.Day()
	start := startMonth*100 + startDay
	end := endMonth*100 + endDay

	if start <= end {
		return cur >= start && cur <= end
	}
	// Crossing the year boundary, e.g. Dec 1 through Jan 6.
	return cur >= start || cur <= end
}

func validMonthDay(month, day int) bool {
	return month >= 1 && month <= 12 && day >= 1 && day <= 31
}

// FilterExcluded drops tracks carrying the exclusion label on the track,
// album or artist, or belonging to the named collection. Empty label and
// collection disable the respective check.
func FilterExcluded(tracks []models.Track, label, collection string) []models.Track {
	if label == "" && collection == "" {
		return tracks
	}

	kept := make([]models.Track, 0, len(tracks))
	for _, track := range tracks {
		if label != "" && (hasLabel(track.Labels, label) || hasLabel(track.AlbumLabels, label)) {
			continue
		}
		if collection != "" && hasLabel(track.Collections, collection) {
			continue
		}
		kept = append(kept, track)
	}
	return kept
}

func hasLabel(labels []string, want string) bool {
	for _, l := range labels {
		if strings.EqualFold(strings.TrimSpace(l), want) {
			return true
		}
	}
	return false
}

// FilterRecentlyPlayed drops tracks whose last play is at or after cutoff.
// Tracks that were never played always pass.
func FilterRecentlyPlayed(tracks []models.Track, cutoff time.Time) []models.Track {
	kept := make([]models.Track, 0, len(tracks))
	for _, track := range tracks {
		if track.LastPlayedAt != nil && !track.LastPlayedAt.Before(cutoff) {
			continue
		}
		kept = append(kept, track)
	}
	return kept
}

// FilterLowRated drops tracks the listener has marked down: any of the
// track, album or artist ratings at or below the ceiling. Unrated tracks
// always pass.
func FilterLowRated(tracks []models.Track) []models.Track {
	kept := make([]models.Track, 0, len(tracks))
	for _, track := range tracks {
		if isLowRated(track.Rating) || isLowRated(track.AlbumRating) || isLowRated(track.ArtistRating) {
			continue
		}
		kept = append(kept, track)
	}
	return kept
}

func isLowRated(rating *float64) bool {
	return rating != nil && *rating <= lowRatingCeiling
}
