// Package domain models Czech Police traffic-accident data as published for the
// IZV course (https://ehw.fit.vutbr.cz/izv/).
//
// # Data Source
//
// Accident statistics come as a zip archive of yearly and monthly exports. Each member
// is named "<period>_<dataset>.xls" where dataset is "nehody" (accidents),
// "nasledky" (consequences, one row per involved person) or "lokalita" (locations).
// Despite the extension the members are HTML documents encoded in Windows-1250 that
// hold a single <table>; a few newer exports are genuine OOXML workbooks.
//
// # Column Conventions
//
// Columns keep their police form codes:
//
//	p1   accident identifier (unique per accident, duplicated rows are corrupt)
//	p2a  date, "dd.mm.yyyy"
//	p2b  time, "hhmm" as an integer; 2560 and above mean unknown
//	p4a  administrative region id (see [RegionCodes])
//	p6   accident kind, p7 collision kind
//	p8a  animal involved (0 none, 1..12 wild, 13..22 domestic)
//	p10  main cause, p11 alcohol (>= 4 means alcohol confirmed)
//	p16  road surface state, p19 visibility, p28 road direction, p36 road type
//	d, e S-JTSK coordinates (EPSG:5514), occasionally swapped in the source
//
// Missing categorical values are stored as [NoCode].
//
// # Record Identity
//
// Rows are keyed by p1. The source contains a small number of identifiers exported
// more than once with conflicting contents; parsing drops every copy of such rows
// rather than guessing which one is right.
package domain
