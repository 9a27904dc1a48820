package intakekit

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

// DefaultSettleDelay is how long a dropped file must stay quiet before it
// is offered to the session.
const DefaultSettleDelay = 500 * time.Millisecond

// DropFolderConfig configures filesystem intake for a session.
type DropFolderConfig struct {
	// Dir is the watched directory. Required.
	Dir string

	// Pattern filters file names with a glob ("*.csv", "report-??.pdf").
	// Empty accepts every file.
	Pattern string

	// Recursive also watches subdirectories, including ones created while
	// watching.
	Recursive bool

	// SettleDelay is how long a file must receive no further writes before
	// it is offered. Writers streaming a large file emit many write
	// events; intake waits for the last one. Defaults to
	// DefaultSettleDelay.
	SettleDelay time.Duration

	// ScanExisting offers files already present when the watch starts.
	ScanExisting bool

	// RemoveAccepted deletes a file from the folder once it was accepted.
	RemoveAccepted bool

	// Logger receives intake traces and warnings. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// DropFolder feeds a session from a watched directory. Every settled file
// that matches the pattern is offered as a single-file batch; rejections
// are logged and the watch continues.
type DropFolder struct {
	cfg     DropFolderConfig
	session *Session
	g       glob.Glob
	logger  *slog.Logger

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	done    chan struct{}

	mu      sync.Mutex
	pending map[string]*time.Timer
	started bool
	closed  bool
}

// NewDropFolder creates a drop folder bound to the session. Watching does
// not begin until Start.
func NewDropFolder(cfg DropFolderConfig, session *Session) (*DropFolder, error) {
	if session == nil {
		return nil, errors.New("drop folder requires a session")
	}
	if cfg.Dir == "" {
		return nil, errors.New("drop folder requires a directory")
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}

	d := &DropFolder{
		cfg:     cfg,
		session: session,
		logger:  cfg.Logger,
		done:    make(chan struct{}),
		pending: make(map[string]*time.Timer),
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if cfg.Pattern != "" && cfg.Pattern != "*" {
		g, err := glob.Compile(cfg.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile drop pattern %q: %w", cfg.Pattern, err)
		}
		d.g = g
	}
	return d, nil
}

// Start begins watching. The watch runs until ctx is cancelled or Close is
// called. When ScanExisting is set, files already in the folder are
// offered before the first event is processed.
func (d *DropFolder) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return errors.New("drop folder closed")
	}
	if d.started {
		d.mu.Unlock()
		return errors.New("drop folder already started")
	}
	d.started = true
	d.mu.Unlock()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		d.startFailed()
		return fmt.Errorf("watch %s: %w", d.cfg.Dir, err)
	}
	if err := watcher.Add(d.cfg.Dir); err != nil {
		watcher.Close()
		d.startFailed()
		return fmt.Errorf("watch %s: %w", d.cfg.Dir, err)
	}
	if d.cfg.Recursive {
		filepath.WalkDir(d.cfg.Dir, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if entry.IsDir() && path != d.cfg.Dir {
				if werr := watcher.Add(path); werr != nil {
					d.logger.Warn("drop folder cannot watch subdirectory",
						"path", path, "error", werr)
				}
			}
			return nil
		})
	}
	d.watcher = watcher

	ctx, d.cancel = context.WithCancel(ctx)

	if d.cfg.ScanExisting {
		d.scan(ctx)
	}

	go d.loop(ctx)
	return nil
}

// startFailed rolls back the started flag so Close does not wait for a
// loop that never ran.
func (d *DropFolder) startFailed() {
	d.mu.Lock()
	d.started = false
	d.mu.Unlock()
}

// Close stops the watch and waits for the event loop to drain. It is safe
// to call Close multiple times.
func (d *DropFolder) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	for _, t := range d.pending {
		t.Stop()
	}
	d.pending = nil
	started := d.started
	d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
	}
	if started {
		<-d.done
	}
	return nil
}

func (d *DropFolder) loop(ctx context.Context) {
	defer close(d.done)
	defer d.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			d.handleEvent(ctx, event)
		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.logger.Warn("drop folder watch error", "dir", d.cfg.Dir, "error", err)
		}
	}
}

func (d *DropFolder) handleEvent(ctx context.Context, event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if d.cfg.Recursive && event.Op&fsnotify.Create != 0 {
			if werr := d.watcher.Add(event.Name); werr != nil {
				d.logger.Warn("drop folder cannot watch subdirectory",
					"path", event.Name, "error", werr)
			}
		}
		return
	}

	if !d.matches(filepath.Base(event.Name)) {
		return
	}
	d.arm(ctx, event.Name)
}

// arm starts or extends the settle timer for a path. The file is offered
// once it has been quiet for the configured delay.
func (d *DropFolder) arm(ctx context.Context, path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if t, ok := d.pending[path]; ok {
		t.Reset(d.cfg.SettleDelay)
		return
	}
	d.pending[path] = time.AfterFunc(d.cfg.SettleDelay, func() {
		d.mu.Lock()
		if d.closed {
			d.mu.Unlock()
			return
		}
		delete(d.pending, path)
		d.mu.Unlock()
		d.offer(ctx, path)
	})
}

func (d *DropFolder) matches(name string) bool {
	return d.g == nil || d.g.Match(name)
}

// scan offers the files already present in the folder.
func (d *DropFolder) scan(ctx context.Context) {
	filepath.WalkDir(d.cfg.Dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() {
			if path != d.cfg.Dir && !d.cfg.Recursive {
				return fs.SkipDir
			}
			return nil
		}
		if d.matches(entry.Name()) {
			d.offer(ctx, path)
		}
		return nil
	})
}

// offer pushes one settled file into the session as a single-file batch.
// Violations are logged, never fatal: the folder keeps watching.
func (d *DropFolder) offer(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}

	h, err := NewPathHandle(path)
	if err != nil {
		d.logger.Warn("drop folder skipping file", "path", path, "error", err)
		return
	}

	res, err := d.session.Add(ctx, h)
	if err != nil {
		d.logger.Warn("drop folder file rejected",
			"session", d.session.Name(), "path", path, "error", err)
		return
	}

	for _, e := range res.Accepted {
		d.logger.Info("drop folder accepted file",
			"session", d.session.Name(), "file", e.Name(), "tracking_id", e.TrackingID)
		if d.cfg.RemoveAccepted {
			if rerr := os.Remove(path); rerr != nil {
				d.logger.Warn("drop folder could not remove accepted file",
					"path", path, "error", rerr)
			}
		}
	}
}

// DropFolderConfig converts the environment config into a drop folder
// config.
func (c *Config) DropFolderConfig() DropFolderConfig {
	return DropFolderConfig{
		Dir:            c.DropFolder,
		Pattern:        c.DropPattern,
		Recursive:      c.DropRecursive,
		SettleDelay:    time.Duration(c.DropSettleMS) * time.Millisecond,
		ScanExisting:   c.DropScanOnInit,
		RemoveAccepted: c.DropRemoveAccepted,
	}
}
