// Package source implements StatementSource, the lazy Query stream the
// batch builder pulls from. The core behavior reads UTF-8 lines from an
// io.Reader (normally stdin or a file); the expansion sources adapt the
// same tokenizer/classifier pipeline to S3, MinIO, and filesystem-watch
// origins so the batch builder never special-cases where bytes come from.
package source

import (
	"bufio"
	"context"
	"io"

	"github.com/memgraph/mgconsole/internal/classify"
	"github.com/memgraph/mgconsole/internal/query"
	"github.com/memgraph/mgconsole/internal/tokenize"
)

// StatementSource yields Query values one at a time. Next returns io.EOF
// once the underlying stream is exhausted; any other error is fatal.
type StatementSource interface {
	Next(ctx context.Context) (*query.Query, error)
}

// lineSource drives the tokenizer/classifier pipeline over any function
// that yields successive input lines. It is the shared core every
// StatementSource implementation in this package is built on.
type lineSource struct {
	nextLine func() (string, bool, error)

	tok     *tokenize.Tokenizer
	pending []string
	line    int
	index   uint64
	closed  bool
}

func newLineSource(nextLine func() (string, bool, error)) *lineSource {
	return &lineSource{tok: tokenize.New(), nextLine: nextLine}
}

func (s *lineSource) Next(ctx context.Context) (*query.Query, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(s.pending) > 0 {
			text := s.pending[0]
			s.pending = s.pending[1:]
			if text == "" {
				// Adjacent terminators ("; ;") or a leading ";" yield an
				// empty statement; skip it rather than send it downstream.
				continue
			}
			line := s.line
			idx := s.index
			s.index++
			info := classify.Statement(text)
			return &query.Query{Text: text, Line: line, Index: idx, Info: &info}, nil
		}
		if s.closed {
			return nil, io.EOF
		}

		text, ok, err := s.nextLine()
		if err != nil {
			return nil, err
		}
		if !ok {
			s.closed = true
			if err := s.tok.Close(); err != nil {
				return nil, err
			}
			continue
		}
		s.line++
		s.pending = s.tok.FeedLine(text)
	}
}

// NewStdin returns the core StatementSource: line tokenizer plus classifier
// over an io.Reader, normally os.Stdin or an opened file.
func NewStdin(r io.Reader) StatementSource {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return newLineSource(func() (string, bool, error) {
		if scanner.Scan() {
			return scanner.Text(), true, nil
		}
		return "", false, scanner.Err()
	})
}

// NewLines returns a StatementSource over a pre-split slice of lines,
// useful for feeding a concatenated multi-object byte stream (S3/MinIO)
// through the same pipeline as NewStdin.
func NewLines(lines []string) StatementSource {
	i := 0
	return newLineSource(func() (string, bool, error) {
		if i >= len(lines) {
			return "", false, nil
		}
		line := lines[i]
		i++
		return line, true, nil
	})
}
