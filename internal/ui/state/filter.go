package state

import (
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Match scores, lower is better.
const (
	scoreExact  = 0
	scorePrefix = 1
	scoreSubstr = 2
	scoreFuzzy  = 3
	noMatch     = -1
)

// SetFilter replaces the filter text and moves the filter cursor to pos.
// The list cursor jumps to the best match while a filter is set, and returns
// to where it was once the filter is cleared.
func (l *List) SetFilter(query string, pos int) {
	wasActive := strings.TrimSpace(l.Filter) != ""
	terms := strings.Fields(query)

	l.Filter = query
	l.FilterCursor = clamp(pos, 0, len([]rune(query)))
	if len(terms) > 0 && !wasActive {
		l.LastCursor = l.Cursor
	}
	l.applyFilter()

	switch {
	case len(terms) > 0:
		if idx := BestMatchIndex(l.Items, query); idx >= 0 {
			l.Cursor = idx
		}
	case wasActive:
		if l.LastCursor >= 0 && l.LastCursor < len(l.Items) {
			l.Cursor = l.LastCursor
		}
		l.LastCursor = -1
	}
}

func (l *List) applyFilter() {
	l.Items = FilterItems(l.Full, l.Filter)
	if len(l.Items) == 0 {
		l.Cursor = 0
		l.ViewportOffset = 0
		return
	}
	l.Cursor = clamp(l.Cursor, 0, len(l.Items)-1)
	if l.ViewportOffset > len(l.Items)-1 {
		l.ViewportOffset = 0
	}
}

// FilterCursorPos returns the rune offset of the filter cursor.
func (l *List) FilterCursorPos() int {
	return clamp(l.FilterCursor, 0, len([]rune(l.Filter)))
}

// FilterEdit is one editing step on a list's filter line.
type FilterEdit int

const (
	EditInsert FilterEdit = iota
	EditBackspace
	EditDeleteWord
	EditClear
	EditHome
	EditEnd
	EditLeft
	EditRight
	EditWordLeft
	EditWordRight
)

func (e FilterEdit) String() string {
	switch e {
	case EditInsert:
		return "insert"
	case EditBackspace:
		return "backspace"
	case EditDeleteWord:
		return "delete_word"
	case EditClear:
		return "clear"
	case EditHome:
		return "home"
	case EditEnd:
		return "end"
	case EditLeft:
		return "left"
	case EditRight:
		return "right"
	case EditWordLeft:
		return "word_left"
	case EditWordRight:
		return "word_right"
	}
	return "unknown"
}

// ChangesText reports whether the edit may rewrite the filter text, as
// opposed to only moving the filter cursor.
func (e FilterEdit) ChangesText() bool {
	switch e {
	case EditInsert, EditBackspace, EditDeleteWord, EditClear:
		return true
	}
	return false
}

// EditFilter applies e at the filter cursor; text is only used by
// EditInsert. It reports whether the filter text or cursor changed.
func (l *List) EditFilter(e FilterEdit, text string) bool {
	runes := []rune(l.Filter)
	pos := l.FilterCursorPos()
	next, nextPos := editRunes(runes, pos, e, text)
	if string(next) != l.Filter {
		l.SetFilter(string(next), nextPos)
		return true
	}
	if nextPos != pos {
		l.FilterCursor = nextPos
		return true
	}
	return false
}

func editRunes(runes []rune, pos int, e FilterEdit, text string) ([]rune, int) {
	splice := func(from, to int, insert []rune) ([]rune, int) {
		out := make([]rune, 0, len(runes)-(to-from)+len(insert))
		out = append(out, runes[:from]...)
		out = append(out, insert...)
		out = append(out, runes[to:]...)
		return out, from + len(insert)
	}
	switch e {
	case EditInsert:
		return splice(pos, pos, []rune(text))
	case EditBackspace:
		if pos > 0 {
			return splice(pos-1, pos, nil)
		}
	case EditDeleteWord:
		return splice(wordStart(runes, pos), pos, nil)
	case EditClear:
		return nil, 0
	case EditHome:
		return runes, 0
	case EditEnd:
		return runes, len(runes)
	case EditLeft:
		if pos > 0 {
			return runes, pos - 1
		}
	case EditRight:
		if pos < len(runes) {
			return runes, pos + 1
		}
	case EditWordLeft:
		return runes, wordStart(runes, pos)
	case EditWordRight:
		return runes, wordEnd(runes, pos)
	}
	return runes, pos
}

// wordStart finds the start of the word before pos, skipping spaces first.
func wordStart(runes []rune, pos int) int {
	i := pos
	for i > 0 && unicode.IsSpace(runes[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(runes[i-1]) {
		i--
	}
	return i
}

// wordEnd finds the start of the next word after pos.
func wordEnd(runes []rune, pos int) int {
	i := pos
	for i < len(runes) && !unicode.IsSpace(runes[i]) {
		i++
	}
	for i < len(runes) && unicode.IsSpace(runes[i]) {
		i++
	}
	return i
}

// FilterItems keeps the items that match every whitespace-separated term of
// query, in their original order. A term matches an item when it matches
// any of its search keys: the label, the ID or a keyword.
func FilterItems(items []Item, query string) []Item {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return CloneItems(items)
	}
	filtered := make([]Item, 0, len(items))
	for _, item := range items {
		if itemScore(item, terms) != noMatch {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// BestMatchIndex returns the index of the item that matches query most
// closely, preferring earlier items on ties. Typing "8" on the backups list
// lands on backup #8 even when other labels contain an 8. It returns 0 when
// nothing matches and -1 for an empty list.
func BestMatchIndex(items []Item, query string) int {
	if len(items) == 0 {
		return -1
	}
	terms := strings.Fields(query)
	best, bestScore := 0, noMatch
	for i, item := range items {
		s := itemScore(item, terms)
		if s == noMatch {
			continue
		}
		if bestScore == noMatch || s < bestScore {
			best, bestScore = i, s
		}
	}
	return best
}

// itemScore sums the best score of each term over the item's keys.
func itemScore(item Item, terms []string) int {
	keys := item.searchKeys()
	total := 0
	for _, term := range terms {
		best := noMatch
		for _, key := range keys {
			s := termScore(term, key)
			if s != noMatch && (best == noMatch || s < best) {
				best = s
			}
		}
		if best == noMatch {
			return noMatch
		}
		total += best
	}
	return total
}

func termScore(term, key string) int {
	t := strings.ToLower(term)
	k := strings.ToLower(strings.TrimSpace(key))
	switch {
	case k == t:
		return scoreExact
	case strings.HasPrefix(k, t):
		return scorePrefix
	case strings.Contains(k, t):
		return scoreSubstr
	}
	if d := fuzzy.RankMatchNormalizedFold(term, key); d >= 0 {
		return scoreFuzzy + d
	}
	return noMatch
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
