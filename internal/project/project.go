package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"framepress/internal/config"
	"framepress/internal/sequence"
)

// LockName is the single-writer lock file inside each project directory.
const LockName = "framepress.lock"

// Project is a directory holding retained frame PNGs, the sequence database,
// and the writer lock.
type Project struct {
	Name string
	Dir  string

	lockPath string
	lock     *flock.Flock
}

// Resolve locates the project directory under the configured projects root,
// creating it when create is set.
func Resolve(cfg *config.Config, name string, create bool) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("project name required")
	}
	if strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("project name %q must not contain path separators", name)
	}

	root, err := config.ExpandPath(cfg.Paths.ProjectsDir)
	if err != nil {
		return nil, fmt.Errorf("expand projects dir: %w", err)
	}
	dir := filepath.Join(root, name)
	info, statErr := os.Stat(dir)
	switch {
	case statErr == nil:
		if !info.IsDir() {
			return nil, fmt.Errorf("project path %s is not a directory", dir)
		}
	case os.IsNotExist(statErr):
		if !create {
			return nil, fmt.Errorf("project %q not found under %s", name, root)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create project dir: %w", err)
		}
	default:
		return nil, fmt.Errorf("stat project dir: %w", statErr)
	}

	lockPath := filepath.Join(dir, LockName)
	return &Project{
		Name:     name,
		Dir:      dir,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Lock takes the project's writer lock without blocking. A held lock means
// another extract or compose run owns the project.
func (p *Project) Lock() error {
	ok, err := p.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire project lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("project %q is locked by another framepress run", p.Name)
	}
	return nil
}

// Unlock releases the writer lock.
func (p *Project) Unlock() error {
	return p.lock.Unlock()
}

// OpenStore opens the project's sequence database.
func (p *Project) OpenStore() (*sequence.Store, error) {
	return sequence.Open(p.Dir)
}

// FramePath returns the absolute path of a frame file inside the project.
func (p *Project) FramePath(name string) string {
	return filepath.Join(p.Dir, name)
}

// FramePaths maps frames to their absolute file paths in order.
func (p *Project) FramePaths(frames []sequence.Frame) []string {
	paths := make([]string, len(frames))
	for i, frame := range frames {
		paths[i] = p.FramePath(frame.Name)
	}
	return paths
}
