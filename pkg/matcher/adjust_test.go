package matcher

import (
	"math"
	"testing"

	"github.com/liliang-cn/bibmatch/pkg/config"
)

func TestOverlapScoreAdjustMonotone(t *testing.T) {
	prev := float32(-1)
	for x := float32(0); x <= 1.0001; x += 0.01 {
		y := overlapScoreAdjust(x)
		if y < prev {
			t.Fatalf("adjustment not monotone at x=%v: %v < %v", x, y, prev)
		}
		if y < 0 || y > 1 {
			t.Fatalf("adjustment out of [0,1] at x=%v: %v", x, y)
		}
		prev = y
	}
}

func TestOverlapScoreAdjustEndpoints(t *testing.T) {
	if got := overlapScoreAdjust(0); got >= 0.07 {
		t.Errorf("f(0) should stay below 0.07, got %v", got)
	}
	if got := overlapScoreAdjust(1); got < 0.99 || got > 1 {
		t.Errorf("f(1) should be in [0.99, 1], got %v", got)
	}
	if got := overlapScoreAdjust(-0.5); got != 0 {
		t.Errorf("negative input should clamp to 0, got %v", got)
	}
}

func overlapConfig(threshold int) *config.Config {
	cfg := &config.Config{Options: config.NewOptions()}
	cfg.Options.OverlapAdjustment = &threshold
	return cfg
}

func TestOverlapScoreIdenticalTitles(t *testing.T) {
	cfg := overlapConfig(5)
	got := overlapScore(cfg, "Introduction to Algorithms", "Introduction to Algorithms")
	if math.Abs(float64(got-1)) > 1e-6 {
		t.Errorf("identical titles should overlap fully, got %v", got)
	}
}

func TestOverlapScoreNoCommonSubstrings(t *testing.T) {
	cfg := overlapConfig(5)
	if got := overlapScore(cfg, "aaaaaaa", "zzzzzzz"); got != 0 {
		t.Errorf("disjoint titles should score 0, got %v", got)
	}
}

func TestOverlapScoreEmptyInput(t *testing.T) {
	cfg := overlapConfig(5)
	// Threshold shrinks to the input length; a zero-length input means a
	// zero threshold, which leaves the similarity untouched.
	if got := overlapScore(cfg, "anything", ""); got != 1 {
		t.Errorf("empty input title should score 1, got %v", got)
	}
}

func TestOverlapScoreThresholdFilters(t *testing.T) {
	cfg := overlapConfig(50)
	// The shared substring is shorter than the (input-clamped) threshold of
	// len("abcde xyz") bytes, so nothing is retained.
	got := overlapScore(cfg, "abcde", "abcde xyz")
	if got != 0 {
		t.Errorf("short overlaps should be filtered, got %v", got)
	}
}

func TestJaroWinkler(t *testing.T) {
	cases := []struct {
		a, b string
		want float64
		tol  float64
	}{
		{"martha", "martha", 1, 0},
		{"", "abc", 0, 0},
		{"abc", "", 0, 0},
		{"martha", "marhta", 0.9611, 0.0001},
		{"dwayne", "duane", 0.8400, 0.0001},
	}
	for _, tc := range cases {
		got := float64(jaroWinkler(tc.a, tc.b))
		if math.Abs(got-tc.want) > tc.tol {
			t.Errorf("jaroWinkler(%q, %q): expected %v, got %v", tc.a, tc.b, tc.want, got)
		}
	}
}

func TestTruncateToByteLength(t *testing.T) {
	cases := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"läkare", 2, "l"}, // ä is two bytes; cutting mid-rune backs up
		{"läkare", 3, "lä"},
		{"abc", 0, ""},
	}
	for _, tc := range cases {
		if got := truncateToByteLength(tc.in, tc.maxLen); got != tc.want {
			t.Errorf("truncate(%q, %d): expected %q, got %q", tc.in, tc.maxLen, tc.want, got)
		}
	}
}

func TestSwapAuthor(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Lastname, Firstname", "Firstname Lastname"},
		{"Single", "Single"},
		{"A, B, C", "A, B, C"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := swapAuthor(tc.in); got != tc.want {
			t.Errorf("swapAuthor(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestCombineTitleAndAuthor(t *testing.T) {
	cases := []struct{ title, author, want string }{
		{"The title.  ", "Lastname, Firstname", "The title / Firstname Lastname"},
		{"", "Author", "Author"},
		{"Title", "", "Title"},
		{"", "", ""},
		{"Title!?", "A", "Title / A"},
	}
	for _, tc := range cases {
		if got := combineTitleAndAuthor(tc.title, tc.author); got != tc.want {
			t.Errorf("combine(%q, %q): expected %q, got %q", tc.title, tc.author, tc.want, got)
		}
	}
}
