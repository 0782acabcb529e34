// Package overlap finds the maximal common substrings of two strings with
// a suffix automaton; building it and scanning the second string take time
// linear in the combined length.
package overlap

import (
	"sort"
	"strings"
)

// suffixAutomaton is the canonical online construction over rune sequences.
type suffixAutomaton struct {
	next []map[rune]int // transitions
	link []int          // suffix links
	len  []int          // max length recognized by state
	last int
}

func newSuffixAutomaton(capacity int) *suffixAutomaton {
	sa := &suffixAutomaton{
		next: make([]map[rune]int, 0, 2*capacity),
		link: make([]int, 0, 2*capacity),
		len:  make([]int, 0, 2*capacity),
	}
	sa.next = append(sa.next, map[rune]int{})
	sa.link = append(sa.link, -1)
	sa.len = append(sa.len, 0)
	return sa
}

func (sa *suffixAutomaton) addRune(c rune) {
	cur := len(sa.next)
	sa.next = append(sa.next, map[rune]int{})
	sa.len = append(sa.len, sa.len[sa.last]+1)
	sa.link = append(sa.link, 0)

	p := sa.last
	for p != -1 {
		if _, ok := sa.next[p][c]; ok {
			break
		}
		sa.next[p][c] = cur
		p = sa.link[p]
	}

	if p == -1 {
		sa.link[cur] = 0
	} else {
		q := sa.next[p][c]
		if sa.len[p]+1 == sa.len[q] {
			sa.link[cur] = q
		} else {
			// clone q
			clone := len(sa.next)
			cloned := make(map[rune]int, len(sa.next[q]))
			for r, to := range sa.next[q] {
				cloned[r] = to
			}
			sa.next = append(sa.next, cloned)
			sa.len = append(sa.len, sa.len[p]+1)
			sa.link = append(sa.link, sa.link[q])

			for p != -1 && sa.next[p][c] == q {
				sa.next[p][c] = clone
				p = sa.link[p]
			}
			sa.link[q] = clone
			sa.link[cur] = clone
		}
	}
	sa.last = cur
}

func build(s string) *suffixAutomaton {
	runes := []rune(s)
	sa := newSuffixAutomaton(len(runes))
	for _, c := range runes {
		sa.addRune(c)
	}
	return sa
}

// MaximalOverlaps returns all maximal common substrings of a and b, sorted
// by decreasing byte length with ties broken lexicographically. No returned
// substring is contained in another returned substring.
func MaximalOverlaps(a, b string) []string {
	sa := build(a)
	bRunes := []rune(b)

	// Scan b through the automaton, keeping the longest match ending at
	// each position.
	v := 0
	l := 0
	candidates := make(map[string]bool)
	for i, c := range bRunes {
		if to, ok := sa.next[v][c]; ok {
			v = to
			l++
		} else {
			for v != 0 {
				if _, ok := sa.next[v][c]; ok {
					break
				}
				v = sa.link[v]
			}
			if to, ok := sa.next[v][c]; ok {
				l = sa.len[v] + 1
				v = to
			} else {
				v = 0
				l = 0
			}
		}
		if l > 0 {
			start := i + 1 - l
			candidates[string(bRunes[start:i+1])] = true
		}
	}

	list := make([]string, 0, len(candidates))
	for s := range candidates {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool {
		if len(list[i]) != len(list[j]) {
			return len(list[i]) > len(list[j])
		}
		return list[i] < list[j]
	})

	// Drop any candidate contained in an already-kept longer one.
	filtered := make([]string, 0, len(list))
outer:
	for _, s := range list {
		for _, kept := range filtered {
			if strings.Contains(kept, s) {
				continue outer
			}
		}
		filtered = append(filtered, s)
	}
	return filtered
}
