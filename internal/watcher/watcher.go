// Package watcher monitors the incoming asset directory and queues
// registration tasks for media files dropped into it.
package watcher

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/shotline/shotline/internal/models"
)

// Enqueuer queues an asset registration for a discovered file.
type Enqueuer interface {
	EnqueueAsset(path string, kind models.EntryKind) error
}

// Watcher monitors the incoming directory tree for dropped media files.
type Watcher struct {
	root     string
	enqueuer Enqueuer
	watcher  *fsnotify.Watcher
	quiet    time.Duration
	mu       sync.Mutex
	watched  map[string]bool
	debounce map[string]*time.Timer
	stop     chan struct{}
}

func New(root string, enqueuer Enqueuer) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		root:     root,
		enqueuer: enqueuer,
		watcher:  fw,
		quiet:    1 * time.Second,
		watched:  make(map[string]bool),
		debounce: make(map[string]*time.Timer),
		stop:     make(chan struct{}),
	}, nil
}

// Start begins watching the incoming directory and processes events.
func (w *Watcher) Start() error {
	if err := w.addRecursive(w.root); err != nil {
		return err
	}
	go w.eventLoop()
	log.Printf("[watcher] watching %s for incoming assets", w.root)
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.stop)
	w.watcher.Close()
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip inaccessible dirs
		}
		if info.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				return nil
			}
			w.mu.Lock()
			w.watched[path] = true
			w.mu.Unlock()
		}
		return nil
	})
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[watcher] error: %v", err)
		case <-w.stop:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Skip hidden files and in-progress copies
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, ".tmp") ||
		strings.HasSuffix(base, ".part") {
		return
	}

	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Write) {
		return
	}

	// New subdirectories join the watch set
	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		w.mu.Lock()
		if !w.watched[event.Name] {
			w.watcher.Add(event.Name)
			w.watched[event.Name] = true
		}
		w.mu.Unlock()
		return
	}

	kind, ok := classify(filepath.Ext(event.Name))
	if !ok {
		return
	}

	// Debounce: large files fire a burst of writes while copying; register
	// once the burst has gone quiet.
	w.mu.Lock()
	if timer, ok := w.debounce[event.Name]; ok {
		timer.Stop()
	}
	eventName := event.Name
	w.debounce[eventName] = time.AfterFunc(w.quiet, func() {
		w.mu.Lock()
		delete(w.debounce, eventName)
		w.mu.Unlock()

		if err := w.enqueuer.EnqueueAsset(eventName, kind); err != nil {
			log.Printf("[watcher] error queueing asset %s: %v", eventName, err)
		}
	})
	w.mu.Unlock()
}

// classify maps a file extension to the asset kind it registers as.
func classify(ext string) (models.EntryKind, bool) {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tiff":
		return models.EntryKindImage, true
	case ".mp4", ".mkv", ".mov", ".m4v", ".webm", ".avi":
		return models.EntryKindVideo, true
	}
	return "", false
}
