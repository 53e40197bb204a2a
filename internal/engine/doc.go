// Package engine mounts a lesson and drives it frame by frame.
//
// An [Instance] ties together the pieces of a running lesson:
//
//   - a [clock.Clock] that turns wall deltas into simulated seconds
//   - a [metrics.Generator] evaluating the scenario's formulas
//   - a [scene.Binder] and the [scene.Graph] it mutates
//
// Each host (terminal, SSH session, WebSocket connection) mounts its own
// instance and calls [Instance.Frame] once per rendered frame.
//
// # Example
//
//	l, _ := lessons.Default().Get("smart_pointers")
//	inst, _ := engine.New(l, engine.Options{})
//	inst.Start()
//	st := inst.Frame(16 * time.Millisecond)
//
// # Thread Safety
//
// Instance is NOT thread-safe. Hosts that receive input on other goroutines
// must forward it to the goroutine that calls Frame. [RunAll] drives many
// independent instances in parallel.
package engine
