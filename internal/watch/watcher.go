// Package watch regenerates the dashboard when the input workbook changes.
// It monitors one directory for new or modified spreadsheets and calls a
// handler once the changes settle.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a change is handled.
const DefaultDebounce = 500

// Config holds the watcher configuration.
type Config struct {
	Dir      string `json:"dir"`
	Output   string `json:"output,omitempty"`
	Debounce int    `json:"debounceMs"` // Milliseconds to wait before processing
}

// Event records one handled (or skipped) change.
type Event struct {
	Time      time.Time `json:"time"`
	Path      string    `json:"path"`
	Operation string    `json:"operation"`
	Status    string    `json:"status"` // "processed", "error"
	Error     string    `json:"error,omitempty"`
}

// Handler is called with the last changed candidate once the debounce expires.
type Handler func(path string) error

// Filter reports whether a base file name is a candidate input.
type Filter func(name string) bool

// Watcher monitors a directory and triggers the handler on input changes.
type Watcher struct {
	Config  Config
	Logger  *log.Logger
	Events  []Event
	Handler Handler
	Filter  Filter

	mu      sync.Mutex
	run     sync.Mutex // held while the handler runs; rebuilds never overlap
	watcher *fsnotify.Watcher
	timer   *time.Timer
	pending fsnotify.Event
}

// Status represents the current watcher status.
type Status struct {
	Running    bool   `json:"running"`
	Dir        string `json:"dir"`
	EventCount int    `json:"eventCount"`
	LastStatus string `json:"lastStatus,omitempty"`
}

// New creates a new Watcher with the given configuration.
func New(config Config, filter Filter) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not create file watcher: %w", err)
	}

	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	if config.Dir == "" {
		config.Dir = "."
	}

	return &Watcher{
		Config:  config,
		Logger:  log.New(os.Stderr, "[watch] ", log.LstdFlags),
		Filter:  filter,
		watcher: fsw,
	}, nil
}

// Start begins watching the directory. It blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	absDir, err := filepath.Abs(w.Config.Dir)
	if err != nil {
		return fmt.Errorf("could not resolve %s: %w", w.Config.Dir, err)
	}
	if err := w.watcher.Add(absDir); err != nil {
		w.watcher.Close()
		return fmt.Errorf("could not watch %s: %w", absDir, err)
	}

	w.Logger.Printf("Watching %s (debounce %dms)", absDir, w.Config.Debounce)

	for {
		select {
		case <-ctx.Done():
			w.Logger.Println("Stopping watcher")
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return w.watcher.Close()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.Logger.Printf("Error: %v", err)
		}
	}
}

// Relevant reports whether an fsnotify event should trigger a rebuild.
func (w *Watcher) Relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	if w.Config.Output != "" && name == filepath.Base(w.Config.Output) {
		return false
	}
	if w.Filter != nil && !w.Filter(name) {
		return false
	}
	return true
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !w.Relevant(event) {
		return
	}

	// One timer for the whole directory: a burst of saves rebuilds once.
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = event
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(time.Duration(w.Config.Debounce)*time.Millisecond, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	event := w.pending
	w.mu.Unlock()

	w.process(event.Name, event.Op.String())
}

func (w *Watcher) process(path, operation string) {
	w.run.Lock()
	defer w.run.Unlock()

	evt := Event{
		Time:      time.Now(),
		Path:      path,
		Operation: operation,
		Status:    "processed",
	}

	if w.Handler != nil {
		if err := w.Handler(path); err != nil {
			evt.Status = "error"
			evt.Error = err.Error()
			w.Logger.Printf("Error processing %s: %v", path, err)
		} else {
			w.Logger.Printf("Processed %s", path)
		}
	} else {
		w.Logger.Printf("Changed %s [no handler]", path)
	}

	w.mu.Lock()
	w.Events = append(w.Events, evt)
	w.mu.Unlock()
}

// GetStatus returns the current watcher status.
func (w *Watcher) GetStatus() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := Status{
		Running:    true,
		Dir:        w.Config.Dir,
		EventCount: len(w.Events),
	}
	if n := len(w.Events); n > 0 {
		s.LastStatus = w.Events[n-1].Status
	}
	return s
}

// GetEvents returns all recorded events.
func (w *Watcher) GetEvents() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	events := make([]Event, len(w.Events))
	copy(events, w.Events)
	return events
}

const (
	pidFile   = "watch.pid"
	stateFile = "watch.json"
)

// WritePIDFile writes the current process ID to the PID file in the given directory.
func WritePIDFile(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	path := filepath.Join(dir, pidFile)
	return os.WriteFile(path, []byte(fmt.Sprintf("%d", os.Getpid())), 0644)
}

// ReadPIDFile reads the PID from the PID file.
func ReadPIDFile(dir string) (int, error) {
	path := filepath.Join(dir, pidFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var pid int
	if _, err := fmt.Sscanf(string(data), "%d", &pid); err != nil {
		return 0, fmt.Errorf("invalid PID file: %w", err)
	}
	return pid, nil
}

// RemovePIDFile removes the PID file.
func RemovePIDFile(dir string) error {
	return os.Remove(filepath.Join(dir, pidFile))
}

// SaveConfig writes the running watcher's config so `watch status` can show it.
func SaveConfig(dir string, config Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, stateFile), data, 0644)
}

// LoadConfig reads the watcher config saved by SaveConfig.
func LoadConfig(dir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, stateFile))
	if err != nil {
		return nil, err
	}
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("invalid watch config: %w", err)
	}
	return &config, nil
}

// DefaultStateDir returns where the PID and state files live.
func DefaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".salesdash"
	}
	return filepath.Join(home, ".salesdash")
}
