// Package scenario defines the immutable document model for a branching
// visual-novel scenario: scenes, the command vocabulary, condition
// expressions and typed scalar values.
//
// Documents are produced by a loader adapter, checked once with Validate,
// and then treated as read-only by the runtime.
package scenario
