// Package state holds the runtime-visible value types shared between the
// engine, persistence adapters and transports: execution status, cursor,
// events, effect descriptors and snapshots.
package state
