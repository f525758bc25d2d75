// Package events turns the engine events workbook into the events history.
//
// The workbook has one summary sheet listing every unit with its alert
// counts and one sheet per unit named after it; the last eight characters
// of a unit sheet name are the asset serial. Each unit sheet is cleaned
// with the events denylist, tagged with its asset and merged into the
// prior events history, which is then deduplicated on whole rows.
package events
