// Package models defines the data exchanged with the toilet tracker API and
// the view state derived from it.
package models
