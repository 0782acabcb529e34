package output

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/liliang-cn/bibmatch/pkg/config"
	"github.com/liliang-cn/bibmatch/pkg/matcher"
)

// writeCSV writes tab-separated rows with a header line.
func writeCSV(cfg *config.Config, path string, records []matcher.OutputRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create file: %w", err)
	}
	defer func() { _ = f.Close() }()
	w := bufio.NewWriter(f)
	defer func() { _ = w.Flush() }()

	if _, err := fmt.Fprintln(w, strings.Join(buildHeaders(cfg), "\t")); err != nil {
		return err
	}
	for _, row := range buildRows(cfg, records) {
		cells := make([]string, len(row))
		for i, cell := range row {
			if cell.Numeric {
				cells[i] = strconv.FormatFloat(cell.Num, 'g', -1, 64)
			} else {
				cells[i] = cell.Str
			}
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	return nil
}
