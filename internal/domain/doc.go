// Package domain contains the core business entities of the task tracker:
// users and their roles, tasks and comments, together with the validation
// rules that hold regardless of how the entities are stored or transported.
package domain
