package web

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"animemanager/internal/validate"
	"animemanager/pkg/models"
)

// GenreOptions are the checkboxes offered on the create and edit forms.
var GenreOptions = []string{
	"Action", "Adventure", "Comedy", "Drama", "Fantasy", "Horror", "Mecha", "Music",
	"Mystery", "Psychological", "Romance", "School", "Sci-Fi", "Slice of Life",
	"Sports", "Supernatural", "Thriller",
}

var textFields = []string{"title", "imageUrl", "synopsis", "studio"}

var numberFields = []string{"rating", "seasonCount", "episodeCount", "releaseYear"}

type formView struct {
	Heading      string
	Action       string
	Cancel       string
	Submit       string
	Values       map[string]string
	Genres       []string
	GenreOptions []string
	Statuses     []models.Status
	Errors       validate.Errors
	MaxYear      int
}

func newFormView(values map[string]string, genres []string, errs validate.Errors) formView {
	if errs == nil {
		errs = validate.Errors{}
	}
	opts := slices.Clone(GenreOptions)
	for _, g := range genres {
		if !slices.Contains(opts, g) {
			opts = append(opts, g)
		}
	}
	return formView{
		Values:       values,
		Genres:       genres,
		GenreOptions: opts,
		Statuses:     models.Statuses,
		Errors:       errs,
		MaxYear:      time.Now().Year() + 1,
	}
}

// blankValues are the create form's starting values.
func blankValues() map[string]string {
	return map[string]string{
		"status":       string(models.DefaultStatus),
		"rating":       "0",
		"seasonCount":  "1",
		"episodeCount": "1",
		"releaseYear":  strconv.Itoa(time.Now().Year()),
	}
}

func valuesFrom(a models.Anime) map[string]string {
	return map[string]string{
		"title":        a.Title,
		"imageUrl":     a.ImageURL,
		"synopsis":     a.Synopsis,
		"rating":       strconv.FormatFloat(a.Rating, 'f', -1, 64),
		"seasonCount":  strconv.Itoa(a.SeasonCount),
		"episodeCount": strconv.Itoa(a.EpisodeCount),
		"status":       string(a.Status),
		"releaseYear":  strconv.Itoa(a.ReleaseYear),
		"studio":       a.Studio,
	}
}

// readForm collects the posted fields as entered and the draft they describe. A
// number that does not parse is left nil so the validator reports it.
func readForm(c *gin.Context) (map[string]string, []string, models.Draft) {
	values := map[string]string{}
	for _, k := range append(append([]string{"status"}, textFields...), numberFields...) {
		values[k] = c.PostForm(k)
	}
	genres := c.PostFormArray("genres")

	var d models.Draft
	d.Title = text(c, "title")
	d.ImageURL = text(c, "imageUrl")
	d.Synopsis = text(c, "synopsis")
	d.Studio = text(c, "studio")
	d.Genres = genres
	d.Rating = float(values["rating"])
	d.SeasonCount = integer(values["seasonCount"])
	d.EpisodeCount = integer(values["episodeCount"])
	d.ReleaseYear = integer(values["releaseYear"])
	if s := strings.TrimSpace(values["status"]); s != "" {
		st := models.Status(s)
		d.Status = &st
	}
	return values, genres, d
}

func text(c *gin.Context, key string) *string {
	v, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	return &v
}

func float(s string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &f
}

func integer(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}
