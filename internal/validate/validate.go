// Package validate checks form drafts against the anime field constraints.
package validate

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"animemanager/pkg/models"
)

const (
	MinReleaseYear = 1950
	MinRating      = 0.0
	MaxRating      = 10.0
	// StrictSynopsisLen is the synopsis minimum applied when editing.
	StrictSynopsisLen = 20
)

var imageURLPattern = regexp.MustCompile(`^https?://.+\..+`)

// Errors maps a field's JSON name to its message. Empty means the draft is acceptable.
type Errors map[string]string

func (e Errors) OK() bool { return len(e) == 0 }

// Fields returns the failing field names in form order.
func (e Errors) Fields() []string {
	var out []string
	for _, f := range FieldOrder {
		if _, ok := e[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// FieldOrder is the order fields appear on the form.
var FieldOrder = []string{
	"title", "imageUrl", "synopsis", "genres", "rating", "seasonCount",
	"episodeCount", "status", "releaseYear", "studio",
}

type Validator struct {
	// Now supplies the current year bound; nil means time.Now.
	Now func() time.Time
	// MinSynopsis is the minimum synopsis length in characters once non-empty.
	MinSynopsis int
}

// Default is used by the create form.
func Default() Validator { return Validator{} }

// Strict is used by the edit form.
func Strict() Validator { return Validator{MinSynopsis: StrictSynopsisLen} }

func (v Validator) maxYear() int {
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	return now().Year() + 1
}

// Validate reports every field of d that breaks its constraint. d is not modified.
func (v Validator) Validate(d models.Draft) Errors {
	errs := Errors{}

	if blank(d.Title) {
		errs["title"] = "Title is required"
	}

	switch {
	case blank(d.ImageURL):
		errs["imageUrl"] = "Image URL is required"
	case !imageURLPattern.MatchString(strings.TrimSpace(*d.ImageURL)):
		errs["imageUrl"] = "Must be a valid URL (http:// or https://)"
	}

	switch {
	case blank(d.Synopsis):
		errs["synopsis"] = "Synopsis is required"
	case v.MinSynopsis > 0 && utf8.RuneCountInString(strings.TrimSpace(*d.Synopsis)) < v.MinSynopsis:
		errs["synopsis"] = fmt.Sprintf("Synopsis must be at least %d characters", v.MinSynopsis)
	}

	if len(cleanGenres(d.Genres)) == 0 {
		errs["genres"] = "Select at least one genre"
	}

	if d.Rating == nil || *d.Rating < MinRating || *d.Rating > MaxRating || math.IsNaN(*d.Rating) {
		errs["rating"] = "Rating must be between 0 and 10"
	}

	if d.SeasonCount == nil || *d.SeasonCount < 1 {
		errs["seasonCount"] = "Must have at least 1 season"
	}

	if d.EpisodeCount == nil || *d.EpisodeCount < 1 {
		errs["episodeCount"] = "Must have at least 1 episode"
	}

	if d.Status != nil && !d.Status.Valid() {
		errs["status"] = "Unknown status"
	}

	if maxYear := v.maxYear(); d.ReleaseYear == nil || *d.ReleaseYear < MinReleaseYear || *d.ReleaseYear > maxYear {
		errs["releaseYear"] = fmt.Sprintf("Year must be between %d and %d", MinReleaseYear, maxYear)
	}

	if blank(d.Studio) {
		errs["studio"] = "Studio is required"
	}

	return errs
}

// Approve validates d and, when it passes, converts it to a record ready to submit.
// Text fields are trimmed, genres de-duplicated keeping first occurrence, and a
// missing status becomes models.DefaultStatus.
func (v Validator) Approve(d models.Draft) (models.Anime, Errors) {
	if errs := v.Validate(d); !errs.OK() {
		return models.Anime{}, errs
	}
	status := models.DefaultStatus
	if d.Status != nil {
		status = *d.Status
	}
	return models.Anime{
		Title:        strings.TrimSpace(*d.Title),
		ImageURL:     strings.TrimSpace(*d.ImageURL),
		Synopsis:     strings.TrimSpace(*d.Synopsis),
		Genres:       cleanGenres(d.Genres),
		Rating:       *d.Rating,
		SeasonCount:  *d.SeasonCount,
		EpisodeCount: *d.EpisodeCount,
		Status:       status,
		ReleaseYear:  *d.ReleaseYear,
		Studio:       strings.TrimSpace(*d.Studio),
	}, Errors{}
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func cleanGenres(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, g := range in {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}
