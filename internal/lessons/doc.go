// Package lessons holds the static lesson catalog consumed by the engine.
//
// A [Lesson] owns a closed set of [Scenario] values. Each scenario declares
// its metrics as bounded trigonometric formulas ([Formula]) and may override
// the lesson's visual [Layout]. The catalog is read-only once registered:
//
//   - [Default]: registry preloaded with the built-in lessons
//   - [LoadFile]: YAML catalogs that add or replace lessons
//   - [Lesson.Validate]: structural checks run on every registration
package lessons
