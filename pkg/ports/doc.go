/*
Package ports defines the driven ports (interfaces) for the engine.

These interfaces decouple the core logic from external implementations,
allowing the engine to work with various document sources and snapshot
backends.

# Key Interfaces

  - DocumentLoader: loads a scenario Document (e.g., from YAML or Memory).
  - SnapshotStore: persists and loads runtime Snapshots under save slots.
*/
package ports
