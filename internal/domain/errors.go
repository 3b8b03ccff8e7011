package domain

import "errors"

var (
	// ErrEmptyTable is returned when a source produced no rows at all.
	ErrEmptyTable = errors.New("empty table")

	// ErrMissingColumn is returned when a required column is absent from a table.
	ErrMissingColumn = errors.New("missing column")

	// ErrNoStations is returned when the station page contained no station rows.
	ErrNoStations = errors.New("no stations found")
)
