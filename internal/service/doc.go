// Package service contains the application use cases: registration and
// login, user administration, task mutation and comments.
//
// Every protected operation takes the caller's authz.Identity explicitly and
// asks authz.Evaluate for a decision before touching the stores. Role gates
// are checked first; ownership and assignee rules are checked once the target
// has been loaded.
//
// Task updates use optimistic concurrency. The caller submits the version it
// last read and the store applies the write only if that version is still
// current, so a lost race surfaces as store.ErrVersionConflict instead of a
// silent overwrite. Successful task writes are announced on an
// events.Publisher after the store call returns.
package service
