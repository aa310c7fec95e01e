package watcher

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/shotline/shotline/internal/models"
)

type recordingEnqueuer struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingEnqueuer) EnqueueAsset(path string, kind models.EntryKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, path)
	return nil
}

func (r *recordingEnqueuer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func TestHandleEvent_DebounceCoalescesBursts(t *testing.T) {
	rec := &recordingEnqueuer{}
	w, err := New(t.TempDir(), rec)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.watcher.Close()
	w.quiet = 20 * time.Millisecond

	// A file being copied in fires a burst of write events; only one
	// registration may come out of it.
	path := filepath.Join(w.root, "frame_0001.png")
	for i := 0; i < 5; i++ {
		w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})
	}

	deadline := time.Now().Add(2 * time.Second)
	for rec.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(5 * w.quiet)
	if got := rec.count(); got != 1 {
		t.Fatalf("enqueues = %d, want 1 (burst must coalesce)", got)
	}
	if rec.calls[0] != path {
		t.Errorf("enqueued path = %q, want %q", rec.calls[0], path)
	}

	// A fresh burst after the quiet window registers again.
	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})
	deadline = time.Now().Add(2 * time.Second)
	for rec.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := rec.count(); got != 2 {
		t.Errorf("enqueues = %d, want 2 after second burst", got)
	}
}

func TestHandleEvent_SkipsNonMediaAndPartials(t *testing.T) {
	rec := &recordingEnqueuer{}
	w, err := New(t.TempDir(), rec)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.watcher.Close()
	w.quiet = 10 * time.Millisecond

	for _, name := range []string{".hidden.png", "copy.png.tmp", "movie.mkv.part", "notes.txt"} {
		w.handleEvent(fsnotify.Event{Name: filepath.Join(w.root, name), Op: fsnotify.Create})
	}

	time.Sleep(10 * w.quiet)
	if got := rec.count(); got != 0 {
		t.Errorf("enqueues = %d, want 0 for hidden/partial/non-media files: %v", got, rec.calls)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		ext    string
		kind   models.EntryKind
		wantOK bool
	}{
		{".png", models.EntryKindImage, true},
		{".JPG", models.EntryKindImage, true},
		{".webp", models.EntryKindImage, true},
		{".mp4", models.EntryKindVideo, true},
		{".MOV", models.EntryKindVideo, true},
		{".txt", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		kind, ok := classify(tt.ext)
		if ok != tt.wantOK || kind != tt.kind {
			t.Errorf("classify(%q) = (%q, %v), want (%q, %v)", tt.ext, kind, ok, tt.kind, tt.wantOK)
		}
	}
}
