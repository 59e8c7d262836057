package models

import "fmt"

// Status of an anime's broadcast.
type Status string

const (
	StatusInProgress Status = "in-progress"
	StatusFinished   Status = "finished"
	StatusAnnounced  Status = "announced"
	StatusPaused     Status = "paused"
)

// DefaultStatus is what a new draft starts with.
const DefaultStatus = StatusInProgress

// Statuses lists every accepted value in display order.
var Statuses = []Status{StatusInProgress, StatusFinished, StatusAnnounced, StatusPaused}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Label is the human readable form shown in views.
func (s Status) Label() string {
	switch s {
	case StatusInProgress:
		return "In progress"
	case StatusFinished:
		return "Finished"
	case StatusAnnounced:
		return "Announced"
	case StatusPaused:
		return "Paused"
	default:
		return string(s)
	}
}

// animes collection
type Anime struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	ImageURL     string   `json:"imageUrl"`
	Synopsis     string   `json:"synopsis"`
	Genres       []string `json:"genres"`
	Rating       float64  `json:"rating"`
	SeasonCount  int      `json:"seasonCount"`
	EpisodeCount int      `json:"episodeCount"`
	Status       Status   `json:"status"`
	ReleaseYear  int      `json:"releaseYear"`
	Studio       string   `json:"studio"`
}

// Clone returns a copy that shares no slice memory with a.
func (a Anime) Clone() Anime {
	if a.Genres != nil {
		a.Genres = append([]string(nil), a.Genres...)
	}
	return a
}

// HasGenre reports exact membership of g in a.Genres.
func (a Anime) HasGenre(g string) bool {
	for _, v := range a.Genres {
		if v == g {
			return true
		}
	}
	return false
}

// Draft is a form submission before validation. A nil field was not provided.
type Draft struct {
	Title        *string  `json:"title,omitempty"`
	ImageURL     *string  `json:"imageUrl,omitempty"`
	Synopsis     *string  `json:"synopsis,omitempty"`
	Genres       []string `json:"genres,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	SeasonCount  *int     `json:"seasonCount,omitempty"`
	EpisodeCount *int     `json:"episodeCount,omitempty"`
	Status       *Status  `json:"status,omitempty"`
	ReleaseYear  *int     `json:"releaseYear,omitempty"`
	Studio       *string  `json:"studio,omitempty"`
}

// DraftFrom fills a draft from a stored record, used to prefill the edit form.
func DraftFrom(a Anime) Draft {
	a = a.Clone()
	return Draft{
		Title:        &a.Title,
		ImageURL:     &a.ImageURL,
		Synopsis:     &a.Synopsis,
		Genres:       a.Genres,
		Rating:       &a.Rating,
		SeasonCount:  &a.SeasonCount,
		EpisodeCount: &a.EpisodeCount,
		Status:       &a.Status,
		ReleaseYear:  &a.ReleaseYear,
		Studio:       &a.Studio,
	}
}

// ChangeEvent is published by the mock API after every successful mutation.
type ChangeEvent struct {
	Action    string `json:"action"` // created, updated, deleted
	AnimeID   string `json:"anime_id"`
	Title     string `json:"title,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func (e ChangeEvent) String() string {
	return fmt.Sprintf("%s %s %q", e.Action, e.AnimeID, e.Title)
}
