// Package zipfile reads a batch of candidate records from a zip archive or
// a directory of JSON card files, expanding each card into one record per
// edition.
package zipfile

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/liliang-cn/bibmatch/pkg/config"
)

// Edition sentinels for cards that cannot be matched.
const (
	// NoEditionSentinel marks a card that declared no editions.
	NoEditionSentinel = 9999999
	// InvalidJSONSentinel marks a card whose JSON could not be parsed
	// (schema v2 only; schema v1 treats that as fatal).
	InvalidJSONSentinel = 9999998
)

// JsonRecord is one candidate edition ready for matching.
type JsonRecord struct {
	Edition         int
	Title           string
	Author          string
	Location        string
	Year            string
	PublicationType string // not used for matching
	AllowedYears    []int  // schema v2 only
}

// CardRecord pairs a record with the card file it came from.
type CardRecord struct {
	Card   string
	Record JsonRecord
}

// ReadInput reads a zip archive or directory and returns the optional
// prompt plus all candidate records in deterministic card order.
func ReadInput(cfg *config.Config, path string) (string, []CardRecord, error) {
	var contents map[string]string
	var err error
	switch {
	case strings.HasSuffix(path, ".zip"):
		contents, err = readZip(path)
	case IsDirectory(path):
		contents, err = readDirectory(path)
	default:
		return "", nil, fmt.Errorf("input must be a zip file or a directory: %s", path)
	}
	if err != nil {
		return "", nil, err
	}
	return expandContents(cfg, contents)
}

// IsDirectory reports whether path exists and is a directory.
func IsDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func readZip(path string) (map[string]string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip file %s: %w", path, err)
	}
	defer func() { _ = archive.Close() }()

	contents := make(map[string]string)
	for _, file := range archive.File {
		if file.FileInfo().IsDir() {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s from zip: %w", file.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s from zip: %w", file.Name, err)
		}
		contents[file.Name] = string(data)
	}
	return contents, nil
}

func readDirectory(path string) (map[string]string, error) {
	contents := make(map[string]string)
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		contents[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
	}
	return contents, nil
}

// expandContents walks the name -> content map in lexicographic order,
// picking out the prompt and expanding every JSON card.
func expandContents(cfg *config.Config, contents map[string]string) (string, []CardRecord, error) {
	names := make([]string, 0, len(contents))
	for name := range contents {
		names = append(names, name)
	}
	sort.Strings(names)

	var prompt string
	var records []CardRecord
	for _, name := range names {
		if strings.HasPrefix(name, "__MACOSX") || strings.HasPrefix(name, ".DS_Store") {
			continue
		}
		if strings.HasSuffix(name, ".prompt") {
			prompt = contents[name]
			continue
		}
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		expanded, err := expandCard(cfg, name, contents[name])
		if err != nil {
			return "", nil, err
		}
		for _, record := range expanded {
			records = append(records, CardRecord{Card: name, Record: record})
		}
	}
	return prompt, records, nil
}

func expandCard(cfg *config.Config, name, content string) ([]JsonRecord, error) {
	if cfg.Options.JSONSchemaVersion >= 2 {
		return expandCardV2(cfg, name, content)
	}
	return expandCardV1(name, content)
}
