/*
Package session implements save slot management and persistence
orchestration.

It provides high-level abstractions for handling concurrent access to
save slots, serializing writers per slot over a snapshot store so a
save never interleaves with a load or delete of the same slot.
*/
package session
