// Package api is the HTTP and websocket adapter of the task board. Handlers
// decode and validate requests, take the caller identity bound by the auth
// middleware, delegate to the services, and write the JSON envelope. Errors
// from lower layers are mapped to status codes and safe messages in one
// place (errors.go).
package api
