// Package queue holds the in-memory list of work items waiting for
// synthesis. Items are consumed strictly in the order they were added.
package queue
