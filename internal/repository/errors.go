// Package repository defines the record store contract used by the
// reservation engine and its interchangeable backends (in-memory, CSV file
// and MySQL).  The sentinel values below let the engine tell a store-level
// refusal apart from an infrastructure failure.
package repository

import "errors"

// ErrConflict is returned when a write would leave two active records on
// the same (resource, date, slot).  Only stores that enforce the
// exclusivity key themselves (MySQL) produce it.  The engine translates it
// into a booking conflict.
var ErrConflict = errors.New("conflict")

// ErrRowNotFound is returned by UpdateRows when one of the addressed rows
// does not exist.  Nothing is written in that case.
var ErrRowNotFound = errors.New("row not found")
