// Package viz renders a running lesson in the terminal.
//
// [App] is a Bubble Tea program: a lesson picker that mounts an
// [engine.Instance] per opened lesson and hands it to a [Model]. The model
// ticks at a fixed rate, projects the scene graph through a [Camera] onto a
// braille [Canvas], and lists every published reading next to it.
//
// # Key Bindings
//
//	Space  - Start/pause
//	Tab    - Next scenario (Shift+Tab previous, 1-9 direct)
//	L      - Switch language
//	+/-    - Speed up / slow down
//	R      - Reset elapsed time
//	[ ]    - Choose the graphed metric
//	X/Y/Z  - Rotate the camera
//	T      - Cycle color themes
//	?      - Full help
//	Esc    - Back to the lesson list
package viz
