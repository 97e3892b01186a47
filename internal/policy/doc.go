// Package policy decides who may touch which project or task and which status
// values are legal. Everything here is pure: callers load the entities first
// (so an unknown id is reported as not found before any access decision) and
// pass them in.
package policy
