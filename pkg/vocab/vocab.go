// Package vocab builds and stores the per-field token vocabulary of a
// reference corpus, with document frequencies and precomputed IDF values.
//
// The vocabulary has one part per field (author, title, location, year,
// all). Token indices are global across parts: a token's position in Words
// is its index in every part it occurs in. Index 0 is reserved for the
// unknown token.
package vocab

import (
	"context"
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/liliang-cn/bibmatch/pkg/config"
	"github.com/liliang-cn/bibmatch/pkg/corpus"
	"github.com/liliang-cn/bibmatch/pkg/tokenizer"
)

// PartType distinguishes n-gram fields from the single-token year field.
type PartType string

const (
	// PartNgram tokenizes with 2/3-gram sliding windows.
	PartNgram PartType = "ngram"
	// PartYear admits only 4-digit year tokens.
	PartYear PartType = "year"
)

// Fields lists the vocabulary parts in their canonical order.
var Fields = []string{"author", "title", "location", "year", "all"}

// partTypeOf maps a field name to its part type.
func partTypeOf(field string) PartType {
	if field == "year" {
		return PartYear
	}
	return PartNgram
}

// TokenInfo is a token's global word index and its document frequency
// within one part.
type TokenInfo struct {
	Index    uint32
	DocCount uint32
}

// Part is the vocabulary of a single field.
type Part struct {
	Type   PartType
	Tokens map[string]TokenInfo
	// IDF is indexed by global word index, log10(total_docs/df), zero for
	// tokens never seen in this part.
	IDF []float64
}

// Vocab is the full corpus vocabulary.
type Vocab struct {
	Source    string
	TotalDocs uint32
	Words     []string
	Parts     map[string]*Part
}

// New returns an empty vocabulary with the unknown token reserved at
// index 0 in every part.
func New(source string) *Vocab {
	v := &Vocab{
		Source: source,
		Words:  []string{tokenizer.UnknownToken},
		Parts:  make(map[string]*Part, len(Fields)),
	}
	for _, field := range Fields {
		v.Parts[field] = newPart(partTypeOf(field))
	}
	return v
}

func newPart(t PartType) *Part {
	return &Part{
		Type:   t,
		Tokens: map[string]TokenInfo{tokenizer.UnknownToken: {Index: 0, DocCount: 0}},
	}
}

// Tokenize runs the part's tokenizer over the given field text.
func (p *Part) Tokenize(text string) map[string]int {
	if p.Type == PartYear {
		return tokenizer.TokenizeYear(text)
	}
	return tokenizer.TokenizeString(text)
}

// Builder accumulates records into a vocabulary.
type Builder struct {
	v         *Vocab
	wordIndex map[string]uint32
}

// NewBuilder starts a fresh vocabulary for the given source label.
func NewBuilder(source string) *Builder {
	return &Builder{
		v:         New(source),
		wordIndex: map[string]uint32{tokenizer.UnknownToken: 0},
	}
}

// Add updates document frequencies for every field of one record. Each
// distinct token counts at most once per record and part.
func (b *Builder) Add(r *corpus.Record) {
	b.addPart("author", r.Author)
	b.addPart("title", r.Title)
	b.addPart("location", r.Location)
	b.addPart("year", r.Year)
	b.addPart("all", r.Combined())
	b.v.TotalDocs++
}

// Finish computes IDF values and returns the vocabulary. The builder must
// not be reused afterwards.
func (b *Builder) Finish() *Vocab {
	b.v.computeIDF()
	return b.v
}

func (b *Builder) addPart(field, text string) {
	part := b.v.Parts[field]
	tokens := part.Tokenize(text)
	// First-sight index assignment must not depend on map iteration order,
	// or rebuilding the same corpus would shuffle the word list.
	ordered := make([]string, 0, len(tokens))
	for token := range tokens {
		ordered = append(ordered, token)
	}
	sort.Strings(ordered)
	for _, token := range ordered {
		index, ok := b.wordIndex[token]
		if !ok {
			index = uint32(len(b.v.Words))
			b.v.Words = append(b.v.Words, token)
			b.wordIndex[token] = index
		}
		info, ok := part.Tokens[token]
		if !ok {
			info = TokenInfo{Index: index}
		}
		info.DocCount++
		part.Tokens[token] = info
	}
}

// Build scans the corpus source once and returns the finished vocabulary
// with IDF values computed.
func Build(ctx context.Context, cfg *config.Config, client *corpus.Client) (*Vocab, error) {
	b := NewBuilder(cfg.Options.OutputSourceName)
	_, err := client.ForEach(ctx, cfg.Source, func(r *corpus.Record) error {
		b.Add(r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	v := b.Finish()
	log.Info().
		Uint32("total_docs", v.TotalDocs).
		Int("words", len(v.Words)).
		Str("source", v.Source).
		Msg("vocab built")
	return v, nil
}

// computeIDF fills each part's dense IDF slice from its document counts.
func (v *Vocab) computeIDF() {
	for _, part := range v.Parts {
		part.IDF = calculateIDF(len(v.Words), v.TotalDocs, part.Tokens)
	}
}

func calculateIDF(vocabSize int, totalDocs uint32, tokens map[string]TokenInfo) []float64 {
	idf := make([]float64, vocabSize)
	for _, info := range tokens {
		idf[info.Index] = singleIDF(totalDocs, info.DocCount)
	}
	return idf
}

func singleIDF(totalDocs, docCount uint32) float64 {
	if docCount == 0 {
		return 0
	}
	return math.Log10(float64(totalDocs) / float64(docCount))
}

// LogStats prints a summary of the built vocabulary.
func (v *Vocab) LogStats() {
	ev := log.Info().
		Uint32("total_docs", v.TotalDocs).
		Int("words", len(v.Words))
	for _, field := range Fields {
		ev = ev.Int(field+"_tokens", len(v.Parts[field].Tokens))
	}
	ev.Msg("vocab stats")
}
