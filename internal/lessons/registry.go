package lessons

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrUnknownLesson = errors.New("lessons: unknown lesson")
	ErrInvalidLesson = errors.New("lessons: invalid lesson")
)

// Registry maps lesson IDs to their definitions. It is safe for concurrent
// use so that remote hosts can share one catalog across sessions.
type Registry struct {
	mu      sync.RWMutex
	lessons map[string]*Lesson
}

func NewRegistry() *Registry {
	return &Registry{lessons: make(map[string]*Lesson)}
}

// Default returns a registry holding the built-in lessons.
func Default() *Registry {
	r := NewRegistry()
	for _, l := range Builtin() {
		if err := r.Register(l); err != nil {
			panic(err)
		}
	}
	return r
}

// Register validates l and stores it, replacing any lesson with the same ID.
func (r *Registry) Register(l *Lesson) error {
	if err := l.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.lessons[l.ID] = l
	r.mu.Unlock()
	return nil
}

func (r *Registry) Get(id string) (*Lesson, error) {
	r.mu.RLock()
	l, ok := r.lessons[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLesson, id)
	}
	return l, nil
}

// List returns all lessons sorted by ID.
func (r *Registry) List() []*Lesson {
	r.mu.RLock()
	out := make([]*Lesson, 0, len(r.lessons))
	for _, l := range r.lessons {
		out = append(out, l)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) IDs() []string {
	ls := r.List()
	ids := make([]string, len(ls))
	for i, l := range ls {
		ids[i] = l.ID
	}
	return ids
}
