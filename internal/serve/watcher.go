package serve

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ContentWatcher monitors the content tree and signals rebuilds. Rapid event
// bursts (editor save sequences, bulk copies) collapse into one trigger.
type ContentWatcher struct {
	root         string
	outputDir    string
	watcher      *fsnotify.Watcher
	triggerChan  chan string
	stopChan     chan struct{}
	debounceTime time.Duration
}

// NewContentWatcher watches root and every subdirectory, excluding the
// output directory and hidden directories.
func NewContentWatcher(root, outputDir string) (*ContentWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("resolve content root: %w", err)
	}

	cw := &ContentWatcher{
		root:         absRoot,
		outputDir:    outputDir,
		watcher:      watcher,
		triggerChan:  make(chan string, 1),
		stopChan:     make(chan struct{}),
		debounceTime: 300 * time.Millisecond,
	}
	if err := cw.addTree(absRoot); err != nil {
		watcher.Close()
		return nil, err
	}
	return cw, nil
}

func (cw *ContentWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if cw.excluded(path) {
			return filepath.SkipDir
		}
		if err := cw.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (cw *ContentWatcher) excluded(path string) bool {
	base := filepath.Base(path)
	if path != cw.root && strings.HasPrefix(base, ".") {
		return true
	}
	abs, err := filepath.Abs(cw.outputDir)
	if err == nil && path == abs {
		return true
	}
	return false
}

// Triggers returns the channel that fires once per debounced change burst.
// The value is the path of the last event in the burst.
func (cw *ContentWatcher) Triggers() <-chan string {
	return cw.triggerChan
}

// Start begins watching. It returns immediately; events flow on Triggers().
func (cw *ContentWatcher) Start(ctx context.Context) {
	slog.Info("Watching content tree", "root", cw.root)
	go cw.watchLoop(ctx)
}

// Stop stops the watcher and releases its resources.
func (cw *ContentWatcher) Stop() {
	close(cw.stopChan)
	_ = cw.watcher.Close()
}

func (cw *ContentWatcher) watchLoop(ctx context.Context) {
	var (
		timer   *time.Timer
		timerCh <-chan time.Time
		last    string
	)
	for {
		select {
		case <-ctx.Done():
			return
		case <-cw.stopChan:
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if !cw.relevant(event) {
				continue
			}
			// New directories need to join the watch set or changes
			// inside them are invisible.
			if event.Op&fsnotify.Create != 0 {
				if err := cw.addTree(event.Name); err != nil {
					slog.Debug("Could not extend watch set", "path", event.Name, "error", err)
				}
			}
			last = event.Name
			if timer == nil {
				timer = time.NewTimer(cw.debounceTime)
				timerCh = timer.C
			} else {
				timer.Reset(cw.debounceTime)
			}
		case <-timerCh:
			timer = nil
			timerCh = nil
			select {
			case cw.triggerChan <- last:
			default:
			}
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", "error", err)
		}
	}
}

func (cw *ContentWatcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	// Ignore our own output.
	abs, err := filepath.Abs(cw.outputDir)
	if err == nil && strings.HasPrefix(event.Name, abs+string(filepath.Separator)) {
		return false
	}
	return true
}
