// Package task implements the asynchronous job core: a bounded in-memory
// registry of task records, a per-type handler registry, and a FIFO queue
// drained by a single worker goroutine.
//
// Callers register a task, enqueue its id, and poll the registry for
// status. Handlers report progress and their terminal outcome through
// Registry.Update; the worker's recover guard converts handler crashes
// into failed tasks without stopping the loop.
//
// The registry retains at most MaxTasks records. When capacity is reached,
// an eviction pass keeps the KeepNewest records ranked by UpdatedAt and
// discards the rest, regardless of status.
package task
