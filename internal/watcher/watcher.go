package watcher

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mahirjain10/image-dimension-converter/internal/preview"
	"github.com/mahirjain10/image-dimension-converter/internal/types"
)

// Resizer runs one resize request.
type Resizer interface {
	Resize(req types.ResizeRequest) (*types.Report, error)
}

// Event is the outcome of processing one changed file
type Event struct {
	Path   string
	Report *types.Report
	Err    error
}

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".tif": true, ".tiff": true, ".ico": true, ".webp": true,
}

// Watcher resizes images as they appear or change in a directory. Files are
// processed one at a time in the order their debounce timers fire.
type Watcher struct {
	dir       string
	template  types.ResizeRequest
	resizer   Resizer
	previewer *preview.Previewer
	debounce  time.Duration

	watcher *fsnotify.Watcher
	pending chan string
	events  chan Event
	done    chan struct{}

	mu     sync.Mutex
	timers map[string]*time.Timer
	wg     sync.WaitGroup
	once   sync.Once
}

// NewWatcher prepares a watcher for dir. template supplies everything but the
// input path of each request; its output directory must not be dir itself.
// previewer may be nil.
func NewWatcher(dir string, template types.ResizeRequest, resizer Resizer, previewer *preview.Previewer, debounce time.Duration) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat watch dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	absOut, err := filepath.Abs(template.OutputDir)
	if err != nil {
		return nil, err
	}
	if absDir == absOut {
		return nil, fmt.Errorf("output folder must differ from the watched folder %s", dir)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		dir:       dir,
		template:  template,
		resizer:   resizer,
		previewer: previewer,
		debounce:  debounce,
		watcher:   fsWatcher,
		pending:   make(chan string, 64),
		events:    make(chan Event, 64),
		done:      make(chan struct{}),
		timers:    make(map[string]*time.Timer),
	}, nil
}

// Start begins watching. Events are delivered on Events until Stop.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch folder %s: %w", w.dir, err)
	}
	log.Printf("Watching folder: %s", w.dir)

	w.wg.Add(2)
	go w.processEvents()
	go w.work()
	return nil
}

func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop closes the fsnotify watcher, waits for the file in progress and then
// closes the event channel.
func (w *Watcher) Stop() error {
	var err error
	w.once.Do(func() {
		err = w.watcher.Close()
		close(w.done)

		w.mu.Lock()
		for name, timer := range w.timers {
			timer.Stop()
			delete(w.timers, name)
		}
		w.mu.Unlock()

		w.wg.Wait()
		close(w.events)
	})
	return err
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !IsImage(event.Name) {
				continue
			}
			w.schedule(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Watcher error: %v", err)
		}
	}
}

// schedule (re)starts the debounce timer for name.
func (w *Watcher) schedule(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, exists := w.timers[name]; exists {
		timer.Stop()
	}
	w.timers[name] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, name)
		w.mu.Unlock()

		select {
		case w.pending <- name:
		case <-w.done:
		}
	})
}

func (w *Watcher) work() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case name := <-w.pending:
			event := w.handle(name)
			select {
			case w.events <- event:
			case <-w.done:
				return
			}
		}
	}
}

func (w *Watcher) handle(name string) Event {
	if w.previewer != nil {
		if entry, cached, err := w.previewer.Load(name); err == nil {
			suffix := ""
			if cached {
				suffix = " (cached)"
			}
			log.Printf("Image loaded: %s %s%s", filepath.Base(name), entry.Dimensions(), suffix)
		}
	}

	req := w.template
	req.InputPath = name
	req.Sizes = append([]int(nil), w.template.Sizes...)

	report, err := w.resizer.Resize(req)
	if err != nil {
		log.Printf("Conversion failed for %s: %v", name, err)
	}
	return Event{Path: name, Report: report, Err: err}
}

// IsImage reports whether name has an extension the watcher reacts to.
// Hidden files are ignored.
func IsImage(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return imageExtensions[strings.ToLower(filepath.Ext(base))]
}
