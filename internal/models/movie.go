// Package models defines data structures shared by the storage layer, the HTTP API and the CLI.
package models

// Movie is one row of the movies table.
type Movie struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
