package zipfile

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/liliang-cn/bibmatch/pkg/config"
)

// flexString accepts a JSON string, number, or array of strings, all
// normalized to a single space-joined string.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexString(n.String())
		return nil
	}
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*f = flexString(strings.Join(arr, " "))
		return nil
	}
	*f = ""
	return nil
}

// flexYears accepts a JSON number or an array of numbers.
type flexYears []int

func (f *flexYears) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexYears{n}
		return nil
	}
	var arr []int
	if err := json.Unmarshal(data, &arr); err == nil {
		*f = flexYears(arr)
		return nil
	}
	*f = nil
	return nil
}

type editionV1 struct {
	PlaceOfPublication flexString `json:"place_of_publication"`
	YearOfPublication  flexString `json:"year_of_publication"`
}

type cardV1 struct {
	Title    string      `json:"title"`
	Author   string      `json:"author"`
	Editions []editionV1 `json:"editions"`
}

type editionV2 struct {
	PlaceOfPublication flexString `json:"place_of_publication"`
	YearOfPublication  flexYears  `json:"year_of_publication"`
	YearCompactString  string     `json:"year_of_publication_compact_string"`
	EditionStatement   string     `json:"edition_statement"`
}

type cardV2 struct {
	Title           string      `json:"title"`
	Author          string      `json:"author"`
	PublicationType string      `json:"publication_type"`
	IsReferenceCard bool        `json:"is_reference_card"`
	SerialTitles    []string    `json:"serial_titles"`
	Editions        []editionV2 `json:"editions"`
}

// decodeCard parses content as a single object of type T, falling back to
// a one-element array of T.
func decodeCard[T any](content string) (T, error) {
	var card T
	if err := json.Unmarshal([]byte(content), &card); err == nil {
		return card, nil
	}
	var arr []T
	if err := json.Unmarshal([]byte(content), &arr); err != nil {
		return card, err
	}
	if len(arr) != 1 {
		return card, fmt.Errorf("expected a single record, got %d", len(arr))
	}
	return arr[0], nil
}

func expandCardV1(name, content string) ([]JsonRecord, error) {
	card, err := decodeCard[cardV1](content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON file %s: %w", name, err)
	}
	if len(card.Editions) == 0 {
		return []JsonRecord{{
			Edition: NoEditionSentinel,
			Title:   card.Title,
			Author:  card.Author,
		}}, nil
	}
	records := make([]JsonRecord, 0, len(card.Editions))
	for idx, edition := range card.Editions {
		records = append(records, JsonRecord{
			Edition:  idx,
			Title:    card.Title,
			Author:   card.Author,
			Location: string(edition.PlaceOfPublication),
			Year:     string(edition.YearOfPublication),
		})
	}
	return records, nil
}

func expandCardV2(cfg *config.Config, name, content string) ([]JsonRecord, error) {
	card, err := decodeCard[cardV2](content)
	if err != nil {
		// Schema v2 recovers invalid JSON as a sentinel record so the rest
		// of the batch still runs.
		log.Warn().Str("card", name).Err(err).Msg("invalid JSON, emitting sentinel record")
		return []JsonRecord{{Edition: InvalidJSONSentinel}}, nil
	}

	title := card.Title
	if cfg.Options.AddSerialToTitle && len(card.SerialTitles) > 0 {
		title = appendToTitle(title, strings.Join(card.SerialTitles, " "))
	}
	publicationType := card.PublicationType
	if card.IsReferenceCard {
		publicationType = "cross-reference"
	}

	if len(card.Editions) == 0 {
		return []JsonRecord{{
			Edition:         NoEditionSentinel,
			Title:           title,
			Author:          card.Author,
			PublicationType: publicationType,
		}}, nil
	}

	records := make([]JsonRecord, 0, len(card.Editions))
	for idx, edition := range card.Editions {
		editionTitle := title
		if cfg.Options.AddEditionToTitle && edition.EditionStatement != "" {
			editionTitle = appendToTitle(editionTitle, edition.EditionStatement)
		}
		years := declaredYears(&edition)
		records = append(records, JsonRecord{
			Edition:         idx,
			Title:           editionTitle,
			Author:          card.Author,
			Location:        string(edition.PlaceOfPublication),
			Year:            lowestYear(years),
			PublicationType: publicationType,
			AllowedYears:    years,
		})
	}
	return records, nil
}

func appendToTitle(title, extra string) string {
	if title == "" {
		return extra
	}
	return title + " " + extra
}

// declaredYears collects an edition's years from the year field and the
// compact range string, deduplicated and sorted.
func declaredYears(edition *editionV2) []int {
	seen := make(map[int]bool)
	var years []int
	add := func(y int) {
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	for _, y := range edition.YearOfPublication {
		add(y)
	}
	for _, y := range ParseYearRanges(edition.YearCompactString) {
		add(y)
	}
	sort.Ints(years)
	return years
}

// lowestYear returns the lowest non-zero declared year as a string, or ""
// when there is none.
func lowestYear(years []int) string {
	for _, y := range years { // sorted ascending
		if y != 0 {
			return strconv.Itoa(y)
		}
	}
	return ""
}
