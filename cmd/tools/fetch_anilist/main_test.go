package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"animemanager/internal/validate"
	"animemanager/pkg/models"
)

func TestMapStatus(t *testing.T) {
	assert.Equal(t, models.StatusInProgress, mapStatus("RELEASING"))
	assert.Equal(t, models.StatusFinished, mapStatus("FINISHED"))
	assert.Equal(t, models.StatusAnnounced, mapStatus("NOT_YET_RELEASED"))
	assert.Equal(t, models.StatusPaused, mapStatus("HIATUS"))
}

func TestCleanDesc(t *testing.T) {
	assert.Equal(t, "Line one\nLine two &", cleanDesc("<i>Line one</i><br>Line two &amp;"))
}

func TestToAnimeProducesValidRecord(t *testing.T) {
	var m media
	m.Title.Romaji = "Shingeki no Kyojin"
	m.Title.English = "Attack on Titan"
	m.Status = "FINISHED"
	m.CoverImage.Large = "https://s4.anilist.co/file/aot.jpg"
	score, eps, year := 85, 25, 2013
	m.AverageScore, m.Episodes, m.SeasonYear = &score, &eps, &year

	a := toAnime(m)
	assert.Equal(t, "Attack on Titan", a.Title)
	assert.Equal(t, 8.5, a.Rating)
	assert.Equal(t, 25, a.EpisodeCount)
	assert.Equal(t, 2013, a.ReleaseYear)
	assert.Equal(t, []string{"Action"}, a.Genres)
	assert.Equal(t, "Unknown", a.Studio)

	errs := validate.Default().Validate(models.DraftFrom(a))
	assert.True(t, errs.OK(), errs)
}
