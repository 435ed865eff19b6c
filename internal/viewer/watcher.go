package viewer

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"hexview/renderer"
)

// ShaderWatcher reports writes to shader sources under a directory. Events
// arrive on a goroutine; Changed hands the cleaned paths to the GL thread.
type ShaderWatcher struct {
	Changed <-chan string

	watcher *fsnotify.Watcher
	changed chan string
	log     *zap.Logger
	done    chan struct{}
}

// IsShaderFile reports whether path has a shader source extension.
func IsShaderFile(path string) bool {
	switch filepath.Ext(path) {
	case ".vs", ".fs", ".vert", ".frag", ".glsl":
		return true
	}
	return false
}

func WatchShaders(root string, log *zap.Logger) (*ShaderWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(root); err != nil {
		w.Close()
		return nil, err
	}
	changed := make(chan string, 16)
	sw := &ShaderWatcher{
		Changed: changed,
		watcher: w,
		changed: changed,
		log:     log,
		done:    make(chan struct{}),
	}
	go sw.run()
	return sw, nil
}

func (sw *ShaderWatcher) run() {
	defer close(sw.done)
	for {
		select {
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !IsShaderFile(event.Name) {
				continue
			}
			select {
			case sw.changed <- filepath.Clean(event.Name):
			default:
				// The frame loop is behind; it reloads on the next event.
				sw.log.Debug("Dropped shader change", zap.String("path", event.Name))
			}
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.log.Warn("Shader watcher error", zap.Error(err))
		}
	}
}

// Close stops the watcher goroutine.
func (sw *ShaderWatcher) Close() error {
	err := sw.watcher.Close()
	<-sw.done
	return err
}

// ProgramSet indexes file-backed programs by source path.
type ProgramSet struct {
	byFile map[string][]*renderer.Program
	log    *zap.Logger
}

func NewProgramSet(log *zap.Logger) *ProgramSet {
	return &ProgramSet{byFile: make(map[string][]*renderer.Program), log: log}
}

func (s *ProgramSet) Add(p *renderer.Program) {
	for _, f := range p.Files() {
		f = filepath.Clean(f)
		s.byFile[f] = append(s.byFile[f], p)
	}
}

// Reload rebuilds every program that reads path and returns how many were
// rebuilt. Programs that fail keep running their previous version.
func (s *ProgramSet) Reload(path string) int {
	n := 0
	for _, p := range s.byFile[filepath.Clean(path)] {
		if err := p.ReloadFiles(); err != nil {
			continue
		}
		n++
	}
	return n
}

// Drain reloads for every path waiting on changed without blocking.
func (s *ProgramSet) Drain(changed <-chan string) int {
	n := 0
	for {
		select {
		case path := <-changed:
			s.log.Info("Shader source changed", zap.String("path", path))
			n += s.Reload(path)
		default:
			return n
		}
	}
}
