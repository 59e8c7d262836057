package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"html"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"animemanager/pkg/models"
)

const endpoint = "https://graphql.anilist.co"

var tagRe = regexp.MustCompile(`<[^>]+>`)

type gqlReq struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type media struct {
	Title struct {
		Romaji  string `json:"romaji"`
		English string `json:"english"`
		Native  string `json:"native"`
	} `json:"title"`
	Genres       []string `json:"genres"`
	Status       string   `json:"status"`
	Episodes     *int     `json:"episodes"`
	Description  *string  `json:"description"`
	AverageScore *int     `json:"averageScore"`
	SeasonYear   *int     `json:"seasonYear"`
	StartDate    struct {
		Year *int `json:"year"`
	} `json:"startDate"`
	CoverImage struct {
		Large string `json:"large"`
	} `json:"coverImage"`
	Studios struct {
		Nodes []struct {
			Name string `json:"name"`
		} `json:"nodes"`
	} `json:"studios"`
}

type gqlResp struct {
	Data struct {
		Page struct {
			Media []media `json:"media"`
		} `json:"Page"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

const query = `
query ($page: Int, $perPage: Int) {
  Page(page: $page, perPage: $perPage) {
    media(type: ANIME, sort: POPULARITY_DESC) {
      title { romaji english native }
      genres
      status
      episodes
      description
      averageScore
      seasonYear
      startDate { year }
      coverImage { large }
      studios(isMain: true) { nodes { name } }
    }
  }
}`

func pickTitle(tRomaji, tEnglish, tNative string) string {
	if strings.TrimSpace(tEnglish) != "" {
		return tEnglish
	}
	if strings.TrimSpace(tRomaji) != "" {
		return tRomaji
	}
	return tNative
}

func mapStatus(anilist string) models.Status {
	switch anilist {
	case "FINISHED", "CANCELLED":
		return models.StatusFinished
	case "NOT_YET_RELEASED":
		return models.StatusAnnounced
	case "HIATUS":
		return models.StatusPaused
	default:
		return models.StatusInProgress
	}
}

func cleanDesc(s string) string {
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, "<br>", "\n")
	s = strings.ReplaceAll(s, "<br/>", "\n")
	s = strings.ReplaceAll(s, "<br />", "\n")
	s = tagRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > 500 {
		s = string(r[:500]) + "..."
	}
	return s
}

// toAnime fills the gaps AniList leaves so every seeded record is valid.
func toAnime(m media) models.Anime {
	a := models.Anime{
		Title:        pickTitle(m.Title.Romaji, m.Title.English, m.Title.Native),
		ImageURL:     m.CoverImage.Large,
		Genres:       m.Genres,
		Status:       mapStatus(m.Status),
		SeasonCount:  1,
		EpisodeCount: 1,
		ReleaseYear:  time.Now().Year(),
		Studio:       "Unknown",
		Synopsis:     "No synopsis available.",
	}
	if m.Description != nil {
		if d := cleanDesc(*m.Description); d != "" {
			a.Synopsis = d
		}
	}
	if m.AverageScore != nil {
		a.Rating = float64(*m.AverageScore) / 10
	}
	if m.Episodes != nil && *m.Episodes > 0 {
		a.EpisodeCount = *m.Episodes
	}
	switch {
	case m.SeasonYear != nil:
		a.ReleaseYear = *m.SeasonYear
	case m.StartDate.Year != nil:
		a.ReleaseYear = *m.StartDate.Year
	}
	if len(m.Studios.Nodes) > 0 && strings.TrimSpace(m.Studios.Nodes[0].Name) != "" {
		a.Studio = m.Studios.Nodes[0].Name
	}
	if len(a.Genres) == 0 {
		a.Genres = []string{"Action"}
	}
	return a
}

func main() {
	outPath := flag.String("out", "data/animes.json", "output json path")
	n := flag.Int("n", 40, "number of anime to fetch")
	page := flag.Int("page", 1, "page number")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "fetch_anilist"})

	b, _ := json.Marshal(gqlReq{
		Query:     query,
		Variables: map[string]any{"page": *page, "perPage": *n},
	})
	resp, err := http.Post(endpoint, "application/json", bytes.NewReader(b))
	if err != nil {
		logger.Fatal("request", "err", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		logger.Fatal("anilist http status", "status", resp.Status, "body", string(raw))
	}

	var parsed gqlResp
	if err := json.Unmarshal(raw, &parsed); err != nil {
		logger.Fatal("decode", "err", err)
	}
	if len(parsed.Errors) > 0 {
		logger.Fatal("anilist gql error", "msg", parsed.Errors[0].Message)
	}

	out := make([]models.Anime, 0, len(parsed.Data.Page.Media))
	for _, m := range parsed.Data.Page.Media {
		a := toAnime(m)
		if a.ImageURL == "" {
			logger.Warn("skipping anime without cover", "title", a.Title)
			continue
		}
		out = append(out, a)
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		logger.Fatal("create output dir", "err", err)
	}
	j, _ := json.MarshalIndent(out, "", "  ")
	if err := os.WriteFile(*outPath, j, 0o644); err != nil {
		logger.Fatal("write", "err", err)
	}

	fmt.Printf("Wrote %d anime -> %s\n", len(out), *outPath)
}
