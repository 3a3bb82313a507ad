// Package classify implements the advisory, keyword-level clause classifier
// described for the batched-parallel import engine. It is a single
// character-level pass, quote-aware, that recognizes a fixed set of
// top-level clause keywords as whole words. It never backtracks and never
// substring-matches keywords embedded inside identifiers, labels, or string
// literals.
package classify

import (
	"strings"

	"github.com/memgraph/mgconsole/internal/query"
)

// followState tracks a keyword that has completed its first word and is
// waiting on a specific follower word to complete a multi-word token. Any
// other word observed while in a follow state resets to none.
type followState int

const (
	stateNone followState = iota
	stateDetach
	stateCreate
	stateDrop
	stateStorage
)

// Statement scans text and returns the traits observed anywhere in its
// body, ignoring content inside quotes. It runs in O(len(text)) with no
// regular expressions or backtracking.
func Statement(text string) query.QueryInfo {
	var info query.QueryInfo
	var quote byte
	var escape bool
	var state followState
	var lastNonSpace byte
	wordStart := -1
	var wordPrecededBy byte

	isWhitespace := func(c byte) bool {
		return c == ' ' || c == '\t' || c == '\n' || c == '\r'
	}

	// finish completes one scanned word. Multi-word forms (CREATE INDEX,
	// DETACH DELETE, DROP INDEX, STORAGE MODE) are a local anchored match,
	// not a substring search: the first word must complete at a whitespace
	// boundary, and the follower word must immediately follow that
	// whitespace — anything else (an identifier joined by punctuation, an
	// underscore, a digit, a comment dash) resets to stateNone instead of
	// entering or completing the follow state.
	finish := func(word string, precededBy, terminatedBy byte) {
		word = strings.ToLower(word)

		matched := false
		switch state {
		case stateDetach:
			if word == "delete" {
				info.HasDetachDelete = true
				matched = true
			}
		case stateCreate:
			if word == "index" {
				info.HasCreateIndex = true
				matched = true
			}
		case stateDrop:
			if word == "index" {
				info.HasDropIndex = true
				matched = true
			}
		case stateStorage:
			if word == "mode" {
				info.HasStorageMode = true
				matched = true
			}
		}
		state = stateNone
		if matched {
			return
		}

		whitespaceTerminated := isWhitespace(terminatedBy)
		switch word {
		case "create":
			info.HasCreate = true
			if whitespaceTerminated {
				state = stateCreate
			}
		case "match":
			info.HasMatch = true
		case "merge":
			info.HasMerge = true
		case "detach":
			if whitespaceTerminated {
				state = stateDetach
			}
		case "drop":
			if whitespaceTerminated {
				state = stateDrop
			}
		case "storage":
			if whitespaceTerminated {
				state = stateStorage
			}
		case "remove":
			if precededBy == ')' {
				info.HasRemove = true
			}
		}
	}

	for i := 0; i < len(text); i++ {
		c := text[i]

		if quote != 0 {
			if c == '\\' {
				escape = !escape
				continue
			}
			if !escape && c == quote {
				quote = 0
			}
			escape = false
			continue
		}

		if c == '\'' || c == '"' {
			if wordStart >= 0 {
				finish(text[wordStart:i], wordPrecededBy, c)
				wordStart = -1
			}
			state = stateNone
			quote = c
			lastNonSpace = c
			continue
		}

		isLetter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if isLetter {
			if wordStart < 0 {
				wordStart = i
				wordPrecededBy = lastNonSpace
			}
		} else if wordStart >= 0 {
			finish(text[wordStart:i], wordPrecededBy, c)
			wordStart = -1
		} else if !isWhitespace(c) {
			state = stateNone
		}

		if !isWhitespace(c) {
			lastNonSpace = c
		}
	}
	if wordStart >= 0 {
		finish(text[wordStart:], wordPrecededBy, 0)
	}

	return info
}
