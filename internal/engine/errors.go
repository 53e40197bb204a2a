package engine

import (
	"errors"
	"fmt"

	"github.com/san-kum/pointerquest/internal/lessons"
	"github.com/san-kum/pointerquest/internal/scene"
)

var (
	// ErrUnknownScenario indicates a scenario ID the lesson does not declare.
	ErrUnknownScenario = errors.New("engine: unknown scenario")

	// ErrUnknownLanguage indicates a language outside the supported set.
	ErrUnknownLanguage = errors.New("engine: unknown language")

	// ErrUnknownLesson indicates a lesson ID missing from the registry.
	ErrUnknownLesson = lessons.ErrUnknownLesson

	// ErrInvalidGraph indicates the scene graph holds an unrenderable node.
	ErrInvalidGraph = scene.ErrInvalidGraph

	// ErrInvalidRun indicates a headless run with a bad duration or rate.
	ErrInvalidRun = errors.New("engine: invalid run configuration")
)

// FrameError wraps an error with the frame it was detected on.
type FrameError struct {
	Frame    uint64
	Time     float64
	Scenario string
	Wrapped  error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d (%s, t=%.3fs): %v", e.Frame, e.Scenario, e.Time, e.Wrapped)
}

func (e *FrameError) Unwrap() error {
	return e.Wrapped
}
