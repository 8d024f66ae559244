// Package roster normalizes the raw staff, partner and branch tables into
// typed lookup structures. It fails soft on unmatched names (collected as
// diagnostics) and fails hard only when the staff block itself cannot be
// located.
package roster

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jakechorley/duty-planner/pkg/core/model"
)

// Geometry describes where the interesting columns live in the raw staff
// sheet. All indices are 0-based into the raw value rows.
type Geometry struct {
	// HeaderRows is the number of rows above the staff block
	HeaderRows int
	// NameCol is the staff name column
	NameCol int
	// DayStartCol is the column of day 1
	DayStartCol int
	// BalanceCol is the running point-balance column
	BalanceCol int
	// StatusCol is the status/notes column
	StatusCol int
}

// DefaultGeometry mirrors the production sheet layout
func DefaultGeometry() Geometry {
	return Geometry{HeaderRows: 2, NameCol: 1, DayStartCol: 5, BalanceCol: 43, StatusCol: 44}
}

// femaleMarker is the substring in a roster name that flags gender
const femaleMarker = "(F)"

// Roster is the normalized staff index for one planning run
type Roster struct {
	Staff       []*model.StaffRecord
	Diagnostics []model.Diagnostic

	byKey map[string]*model.StaffRecord
}

// ByKey returns the staff record for a normalized key, nil if absent
func (r *Roster) ByKey(key string) *model.StaffRecord {
	return r.byKey[key]
}

// Branches groups staff by branch. Staff with no branch match are omitted:
// they take no part in branch-balance rules.
func (r *Roster) Branches() map[string][]*model.StaffRecord {
	branches := make(map[string][]*model.StaffRecord)
	for _, s := range r.Staff {
		if s.Branch != "" {
			branches[s.Branch] = append(branches[s.Branch], s)
		}
	}
	return branches
}

// Pairs returns each partner pair once, in roster row order
func (r *Roster) Pairs() [][2]*model.StaffRecord {
	var pairs [][2]*model.StaffRecord
	for _, s := range r.Staff {
		if s.PartnerKey == "" {
			continue
		}
		partner := r.byKey[s.PartnerKey]
		if partner == nil || partner.Row < s.Row {
			continue // reported on first encounter, emitted once
		}
		pairs = append(pairs, [2]*model.StaffRecord{s, partner})
	}
	return pairs
}

// Key normalizes a raw name into the lookup key used everywhere downstream
func Key(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Build scans the raw tables and assembles the roster index.
//
// staffRows is the full staff/availability sheet; partnerRows the
// partner/designation table (two name+designation column pairs per row);
// branchRows the name+branch table. Secondary-table names that match no
// roster row are collected as diagnostics, never fatal.
func Build(staffRows [][]string, partnerRows [][]string, branchRows [][]string, geo Geometry) (*Roster, error) {
	start, end, err := findStaffBlock(staffRows, geo)
	if err != nil {
		return nil, err
	}

	r := &Roster{byKey: make(map[string]*model.StaffRecord)}

	for i := start; i <= end; i++ {
		row := staffRows[i]
		name := strings.TrimSpace(cell(row, geo.NameCol))
		record := &model.StaffRecord{
			Row:     i - start,
			Name:    name,
			Key:     Key(name),
			Female:  strings.Contains(strings.ToUpper(name), femaleMarker),
			Status:  model.ParseStatus(cell(row, geo.StatusCol)),
			Balance: parseBalance(cell(row, geo.BalanceCol)),
		}
		r.Staff = append(r.Staff, record)
		r.byKey[record.Key] = record
	}

	r.applyPartnerTable(partnerRows)
	r.applyBranchTable(branchRows)
	r.propagatePartnerExclusion()

	return r, nil
}

// findStaffBlock locates the contiguous run of staff rows: everything from
// the first row after the header up to (excluding) the first blank name.
func findStaffBlock(rows [][]string, geo Geometry) (int, int, error) {
	if geo.HeaderRows >= len(rows) {
		return 0, 0, model.ErrStaffBlockNotFound
	}

	end := -1
	for i := geo.HeaderRows; i < len(rows); i++ {
		name := strings.TrimSpace(cell(rows[i], geo.NameCol))
		if name == "" || strings.EqualFold(name, "nan") {
			break
		}
		end = i
	}
	if end < geo.HeaderRows {
		return 0, 0, model.ErrStaffBlockNotFound
	}
	return geo.HeaderRows, end, nil
}

// applyPartnerTable reads partner pairs and driver designations. Each table
// row holds two (name, designation) column pairs; the two names form a
// reciprocal partner pair when both exist in the roster.
func (r *Roster) applyPartnerTable(rows [][]string) {
	for i, row := range rows {
		if i == 0 {
			continue // header
		}

		var matched []*model.StaffRecord
		for _, cols := range [][2]int{{1, 2}, {3, 4}} {
			name := strings.TrimSpace(cell(row, cols[0]))
			if name == "" || strings.EqualFold(name, "nan") {
				continue
			}
			record := r.byKey[Key(name)]
			if record == nil {
				r.Diagnostics = append(r.Diagnostics, model.Diagnostic{
					Kind:    model.DiagUnmatchedName,
					Subject: name,
					Detail:  fmt.Sprintf("partner table row %d", i),
				})
				continue
			}
			record.Driver = strings.EqualFold(strings.TrimSpace(cell(row, cols[1])), "DRIVER")
			matched = append(matched, record)
		}

		if len(matched) == 2 {
			matched[0].PartnerKey = matched[1].Key
			matched[1].PartnerKey = matched[0].Key
		}
	}
}

// applyBranchTable reads branch membership with best-effort name matching
func (r *Roster) applyBranchTable(rows [][]string) {
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		name := strings.TrimSpace(cell(row, 1))
		branch := strings.ToUpper(strings.TrimSpace(cell(row, 2)))
		if name == "" || branch == "" {
			continue
		}
		record := r.byKey[Key(name)]
		if record == nil {
			r.Diagnostics = append(r.Diagnostics, model.Diagnostic{
				Kind:    model.DiagUnmatchedName,
				Subject: name,
				Detail:  fmt.Sprintf("branch table row %d", i),
			})
			continue
		}
		record.Branch = branch
	}
}

// propagatePartnerExclusion tags the partner of an SBF-excluded staff member
// as PARTNER-excluded, unless that partner is already excluded in their own
// right.
func (r *Roster) propagatePartnerExclusion() {
	for _, s := range r.Staff {
		if !s.Status.Has(model.StatusSBF) || s.PartnerKey == "" {
			continue
		}
		partner := r.byKey[s.PartnerKey]
		if partner != nil && !partner.Status.Excluded() {
			partner.Status = partner.Status.WithKind(model.StatusPartner)
		}
	}
}

// ParseAvailability reads the per-day cell markers for the staff block.
// The result is indexed [staff row][day-1] and sized to numDays.
func ParseAvailability(staffRows [][]string, geo Geometry, numDays int) ([][]model.CellMark, error) {
	start, end, err := findStaffBlock(staffRows, geo)
	if err != nil {
		return nil, err
	}

	marks := make([][]model.CellMark, 0, end-start+1)
	for i := start; i <= end; i++ {
		row := make([]model.CellMark, numDays)
		for d := 0; d < numDays; d++ {
			row[d] = model.ParseCellMark(cell(staffRows[i], geo.DayStartCol+d))
		}
		marks = append(marks, row)
	}
	return marks, nil
}

// cell returns the trimmed cell at the given column, "" when out of range
func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// parseBalance converts a balance cell to a float, treating text and blanks
// as zero the way the sheet always has.
func parseBalance(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}
