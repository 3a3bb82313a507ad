package source

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// NewWatch feeds *.cypher and *.cql files dropped into dir to the tokenizer
// as they arrive, for long-running "drop a file, it gets imported"
// pipelines. Files already present in dir when the watch starts are
// processed first, in name order, exactly like a directory listing would
// be; files created afterward are picked up via fsnotify in arrival order.
func NewWatch(ctx context.Context, dir string) (StatementSource, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("source: creating watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("source: watching %s: %w", dir, err)
	}

	existing, err := importCandidates(dir)
	if err != nil {
		watcher.Close()
		return nil, err
	}

	fileIdx := 0
	var scanner *bufio.Scanner
	pendingNames := existing

	return newLineSource(func() (string, bool, error) {
		for {
			if scanner != nil {
				if scanner.Scan() {
					return scanner.Text(), true, nil
				}
				if err := scanner.Err(); err != nil {
					return "", false, fmt.Errorf("source: reading %s: %w", pendingNames[fileIdx-1], err)
				}
				scanner = nil
			}
			if fileIdx < len(pendingNames) {
				path := pendingNames[fileIdx]
				fileIdx++
				f, err := os.Open(path)
				if err != nil {
					return "", false, fmt.Errorf("source: opening %s: %w", path, err)
				}
				scanner = bufio.NewScanner(f)
				scanner.Buffer(make([]byte, 64*1024), 1024*1024)
				continue
			}

			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return "", false, nil
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !isImportCandidate(ev.Name) {
					continue
				}
				pendingNames = append(pendingNames, ev.Name)
			case err, ok := <-watcher.Errors:
				if !ok {
					return "", false, nil
				}
				return "", false, fmt.Errorf("source: watch error: %w", err)
			case <-ctx.Done():
				watcher.Close()
				return "", false, ctx.Err()
			}
		}
	}), nil
}

func isImportCandidate(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".cypher" || ext == ".cql"
}

func importCandidates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("source: reading %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !isImportCandidate(e.Name()) {
			continue
		}
		names = append(names, filepath.Join(dir, e.Name()))
	}
	sort.Strings(names)
	return names, nil
}
