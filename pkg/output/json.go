package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/liliang-cn/bibmatch/pkg/config"
	"github.com/liliang-cn/bibmatch/pkg/matcher"
)

type jsonRowNormal struct {
	Card           string  `json:"card"`
	EditionIdx     int     `json:"edition_idx"`
	Title          string  `json:"title"`
	Author         string  `json:"author"`
	Location       string  `json:"location"`
	Year           string  `json:"year"`
	MatchStat      string  `json:"match_stat"`
	ID             string  `json:"id"`
	Similarity     float64 `json:"similarity"`
	ZScore         float64 `json:"zscore"`
	SourceTitle    *string `json:"source_title,omitempty"`
	SourceAuthor   *string `json:"source_author,omitempty"`
	SourceLocation *string `json:"source_location,omitempty"`
	SourceYear     *string `json:"source_year,omitempty"`
}

type jsonRowEmpty struct {
	Card       string `json:"card"`
	EditionIdx int    `json:"edition_idx"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Location   string `json:"location"`
	Year       string `json:"year"`
	MatchStat  string `json:"match_stat"`
}

type jsonRowExtended struct {
	Box            string  `json:"box"`
	Card           string  `json:"card"`
	CardID         string  `json:"card_ID"`
	MatchObjectID  string  `json:"match_object_ID"`
	CardType       string  `json:"card_type"`
	MatchedID      string  `json:"matched_ID"`
	JSON           string  `json:"json"`
	EditionIdx     int     `json:"edition_idx"`
	Title          string  `json:"title"`
	Author         string  `json:"author"`
	Location       string  `json:"location"`
	Year           string  `json:"year"`
	MatchStat      string  `json:"match_stat"`
	ID             string  `json:"id"`
	Similarity     float64 `json:"similarity"`
	ZScore         float64 `json:"zscore"`
	SourceTitle    *string `json:"source_title,omitempty"`
	SourceAuthor   *string `json:"source_author,omitempty"`
	SourceLocation *string `json:"source_location,omitempty"`
	SourceYear     *string `json:"source_year,omitempty"`

	OriginalSimilarity   float64 `json:"original_similarity"`
	OverlapScore         float64 `json:"overlap_score"`
	AdjustedOverlapScore float64 `json:"adjusted_overlap_score"`
	JaroWinklerScore     float64 `json:"jaro_winkler_score"`
}

// translatePublicationType maps the card's publication type to its Swedish
// catalog term for the extended output.
func translatePublicationType(publicationType string) string {
	switch publicationType {
	case "monographic-component-part":
		return "Bidrag"
	case "multi-volume":
		return "Flerbandsverk"
	case "periodical":
		return "Seriell resurs"
	case "offprint":
		return "Särtryck"
	case "facsimile":
		return "Faksimil"
	case "cross-reference":
		return "Hänvisning"
	case "monograph":
		return "Monografi"
	default:
		return publicationType
	}
}

func writeJSON(cfg *config.Config, path string, records []matcher.OutputRecord) error {
	var rows []any
	for i := range records {
		if cfg.Options.ExtendedOutput {
			rows = append(rows, buildExtendedRows(cfg, &records[i])...)
		} else {
			rows = append(rows, buildNormalRows(cfg, &records[i])...)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create file: %w", err)
	}
	defer func() { _ = f.Close() }()
	w := bufio.NewWriter(f)
	defer func() { _ = w.Flush() }()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(rows)
}

func emptyRow(card string, record *matcher.OutputRecord) jsonRowEmpty {
	return jsonRowEmpty{
		Card:       card,
		EditionIdx: record.Record.Edition,
		Title:      record.Record.Title,
		Author:     record.Record.Author,
		Location:   record.Record.Location,
		Year:       record.Record.Year,
		MatchStat:  record.Stats.Display(),
	}
}

func buildNormalRows(cfg *config.Config, record *matcher.OutputRecord) []any {
	if len(record.Top) == 0 {
		return []any{emptyRow(record.Card, record)}
	}
	rows := make([]any, 0, len(record.Top))
	for i := range record.Top {
		candidate := &record.Top[i]
		row := jsonRowNormal{
			Card:       record.Card,
			EditionIdx: record.Record.Edition,
			Title:      record.Record.Title,
			Author:     record.Record.Author,
			Location:   record.Record.Location,
			Year:       record.Record.Year,
			MatchStat:  record.Stats.Display(),
			ID:         candidate.ID,
			Similarity: float64(candidate.Similarity),
			ZScore:     float64(candidate.ZScore),
		}
		fillSourceFields(cfg, candidate, &row.SourceTitle, &row.SourceAuthor, &row.SourceLocation, &row.SourceYear)
		rows = append(rows, row)
	}
	return rows
}

// buildExtendedRows decomposes the card name "003_00153.json" into box
// "003" and card "00153" and carries the original similarity, the overlap
// scores, and the title Jaro-Winkler score.
func buildExtendedRows(cfg *config.Config, record *matcher.OutputRecord) []any {
	parts := strings.SplitN(record.Card, "_", 2)
	boxName := parts[0]
	cardName := ""
	if len(parts) > 1 {
		cardName = strings.TrimSuffix(parts[1], ".json")
	}
	cardID := fmt.Sprintf("%s_%s", boxName, cardName)
	matchObjectID := fmt.Sprintf("%s_%s_%d", boxName, cardName, record.Record.Edition)
	cardType := translatePublicationType(record.Record.PublicationType)

	if len(record.Top) == 0 {
		return []any{emptyRow(cardName, record)}
	}
	rows := make([]any, 0, len(record.Top))
	for i := range record.Top {
		candidate := &record.Top[i]
		matchedID := candidate.ID
		if idx := strings.LastIndex(matchedID, "/"); idx >= 0 {
			matchedID = matchedID[idx+1:]
		}
		row := jsonRowExtended{
			Box:                  boxName,
			Card:                 cardName,
			CardID:               cardID,
			MatchObjectID:        matchObjectID,
			CardType:             cardType,
			MatchedID:            matchedID,
			JSON:                 record.Card,
			EditionIdx:           record.Record.Edition,
			Title:                record.Record.Title,
			Author:               record.Record.Author,
			Location:             record.Record.Location,
			Year:                 record.Record.Year,
			MatchStat:            record.Stats.Display(),
			ID:                   candidate.ID,
			Similarity:           float64(candidate.Similarity),
			ZScore:               float64(candidate.ZScore),
			OriginalSimilarity:   float64(candidate.OriginalSimilarity),
			OverlapScore:         float64(candidate.OverlapScore),
			AdjustedOverlapScore: float64(candidate.AdjustedOverlapScore),
			JaroWinklerScore:     float64(candidate.JaroWinklerScore),
		}
		fillSourceFields(cfg, candidate, &row.SourceTitle, &row.SourceAuthor, &row.SourceLocation, &row.SourceYear)
		rows = append(rows, row)
	}
	return rows
}

func fillSourceFields(cfg *config.Config, candidate *matcher.MatchCandidate, title, author, location, year **string) {
	if !cfg.Options.IncludeSourceData || candidate.SourceRecord == nil {
		return
	}
	sr := candidate.SourceRecord
	*title = &sr.Title
	*author = &sr.Author
	*location = &sr.Location
	*year = &sr.Year
}
