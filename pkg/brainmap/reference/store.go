// Package reference builds and holds the ordered set of reference composites
// that test images are compared against.
package reference

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"gonum.org/v1/gonum/mat"

	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/imaging"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/wavelet"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/logger"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/utils"
)

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}

// Entry is one reference image and its composite. Index is 1-based in
// filename order and is what a classification reports as matched frame.
type Entry struct {
	Index     int
	Name      string
	Composite *mat.Dense
}

// Load decomposes every png or bmp file in dir, sorted by filename. Files that
// fail to decode or decompose are logged and skipped.
func Load(dir string, log Logger) ([]Entry, error) {
	if log == nil {
		log = logger.Discard()
	}

	names, err := utils.ListFiles(dir, imaging.IsReferenceFile)
	if err != nil {
		return nil, fmt.Errorf("reading reference directory: %w", err)
	}

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)

		img, err := imaging.Load(path)
		if err != nil {
			log.Warnf("skipping reference %s: %v", name, err)
			continue
		}
		composite, err := wavelet.Composite(img)
		if err != nil {
			log.Warnf("skipping reference %s: %v", name, err)
			continue
		}

		entries = append(entries, Entry{
			Index:     len(entries) + 1,
			Name:      name,
			Composite: composite,
		})
		log.Debugf("loaded reference %d: %s", len(entries), name)
	}

	log.Infof("Loaded %d reference patterns from %s", len(entries), dir)
	return entries, nil
}

// Store publishes an immutable reference snapshot. Readers never block;
// writers build a complete set first and swap it in with one pointer store.
type Store struct {
	snapshot atomic.Pointer[[]Entry]
	mu       sync.Mutex
	log      Logger
}

func NewStore(log Logger) *Store {
	if log == nil {
		log = logger.Discard()
	}
	return &Store{log: log}
}

// Entries returns the current snapshot. The slice must not be modified.
func (s *Store) Entries() []Entry {
	p := s.snapshot.Load()
	if p == nil {
		return nil
	}
	return *p
}

func (s *Store) Len() int {
	return len(s.Entries())
}

// Loaded reports whether any snapshot has been published, even an empty one.
func (s *Store) Loaded() bool {
	return s.snapshot.Load() != nil
}

// EnsureLoaded loads dir on first use only.
func (s *Store) EnsureLoaded(dir string) (int, error) {
	if p := s.snapshot.Load(); p != nil {
		return len(*p), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.snapshot.Load(); p != nil {
		return len(*p), nil
	}
	return s.loadLocked(dir)
}

// Reload rebuilds the set from dir and replaces the current one. On error
// the previous snapshot stays published.
func (s *Store) Reload(dir string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(dir)
}

// Replace publishes entries as the new snapshot, renumbering them in order.
func (s *Store) Replace(entries []Entry) int {
	next := make([]Entry, len(entries))
	for i, e := range entries {
		e.Index = i + 1
		next[i] = e
	}

	s.mu.Lock()
	s.snapshot.Store(&next)
	s.mu.Unlock()
	return len(next)
}

func (s *Store) loadLocked(dir string) (int, error) {
	entries, err := Load(dir, s.log)
	if err != nil {
		return 0, err
	}
	s.snapshot.Store(&entries)
	return len(entries), nil
}
