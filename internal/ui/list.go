package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/meloday/internal/models"
)

var (
	_ list.Item = periodItem{}
	_ list.Item = trackItem{}
)

// periodItem wraps a schedule period to implement [list.Item].
type periodItem struct {
	name   string
	phrase string
	hours  []int
}

func (i periodItem) FilterValue() string { return i.name }
func (i periodItem) Title() string       { return i.name }
func (i periodItem) Description() string {
	desc := fmt.Sprintf("%d hours", len(i.hours))
	if i.phrase != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.phrase)
	}
	return desc
}

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Title }
func (i trackItem) Title() string       { return i.track.Title }
func (i trackItem) Description() string {
	desc := i.track.Artist
	if i.track.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album)
	}
	if genre := i.track.PrimaryGenre(); genre != "Unknown" {
		desc = fmt.Sprintf("%s • %s", desc, strings.TrimSpace(genre))
	}
	return desc
}
