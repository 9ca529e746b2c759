package moderation

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// LoadStemsFile reads a bad-word stem list: one stem per line, blank lines
// and #-comments skipped.
func LoadStemsFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wordlist: %w", err)
	}
	defer file.Close()

	var stems []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		stems = append(stems, strings.ToLower(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read wordlist: %w", err)
	}
	return stems, nil
}

// WordlistWatcher reloads the hard-gate stem list when the backing file
// changes. Moderation vocabulary is operational config and may be tuned
// without a restart, unlike the startup-frozen FAQ table.
type WordlistWatcher struct {
	path   string
	filter *ToxicityFilter
	logger *slog.Logger
}

func NewWordlistWatcher(path string, filter *ToxicityFilter, logger *slog.Logger) *WordlistWatcher {
	return &WordlistWatcher{path: path, filter: filter, logger: logger}
}

func (w *WordlistWatcher) Name() string {
	return "wordlist-watcher"
}

// Start loads the list once, then watches the containing directory (editors
// replace files rather than write in place) until the context ends.
func (w *WordlistWatcher) Start(ctx context.Context) error {
	if w.reload() {
		w.logger.Info("wordlist loaded", "path", w.path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch wordlist dir: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if w.reload() {
				w.logger.Info("wordlist reloaded", "path", w.path)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("wordlist watch failed", "error", err)
		}
	}
}

func (w *WordlistWatcher) reload() bool {
	stems, err := LoadStemsFile(w.path)
	if err != nil {
		w.logger.Error("wordlist load failed", "error", err, "path", w.path)
		return false
	}
	if len(stems) == 0 {
		w.logger.Warn("wordlist is empty, keeping previous stems", "path", w.path)
		return false
	}
	w.filter.SetBadStems(stems)
	return true
}
