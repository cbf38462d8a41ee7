// Package csvio reads and writes the roster-intake and usage/grades CSV formats.
//
// Columns are located by header name, so extra or reordered columns are accepted.
// Unparseable cells fall back to the column default and produce a warning.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/types"
)

// Column headers, written verbatim on export.
var (
	RosterHeader = []string{ //nolint:gochecknoglobals // wire format
		"first_name", "last_name", "position_group", "position", "class_year", "height_inches",
		"weight_lbs", "status", "role", "depth_rank", "replacement_risk", "external_ref",
	}
	UsageHeader = []string{ //nolint:gochecknoglobals // wire format
		"external_ref", "games_played", "snaps", "snaps_offense", "snaps_defense", "snaps_st",
		"leverage_snaps", "overall_grade",
	}
)

var (
	rosterRequired = []string{"position"}     //nolint:gochecknoglobals // wire format
	usageRequired  = []string{"external_ref"} //nolint:gochecknoglobals // wire format
)

// Result is the parsed content of one file plus per-line warnings.
type Result struct {
	Relations model.Relations
	Warnings  []string
}

// row reads cells by header name.
type row struct {
	record []string
	index  map[string]int
	line   int
	warn   *[]string
}

func (r row) get(key string) string {
	pos, ok := r.index[key]
	if !ok || pos >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[pos])
}

func (r row) int(key string, def int) int {
	v := r.get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*r.warn = append(*r.warn, fmt.Sprintf("line %d: invalid %s %q, using %d", r.line, key, v, def))
		return def
	}
	return n
}

func (r row) float(key string, def float64) float64 {
	v := r.get(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*r.warn = append(*r.warn, fmt.Sprintf("line %d: invalid %s %q, using %v", r.line, key, v, def))
		return def
	}
	return f
}

// ReadRoster parses a roster-intake file. Player ids are the external_ref, or a fresh
// uuid when the row has none.
func ReadRoster(in io.Reader) (Result, error) {
	var res Result
	err := readRows(in, rosterRequired, &res.Warnings, func(r row) {
		ref := r.get("external_ref")
		id := ref
		if id == "" {
			id = uuid.NewString()
		}
		position := strings.ToUpper(r.get("position"))
		if position == "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: missing position, row skipped", r.line))
			return
		}
		group := strings.ToUpper(r.get("position_group"))
		if group == "" {
			group = position
		}
		res.Relations.Players = append(res.Relations.Players, model.Player{
			ID:            id,
			FirstName:     r.get("first_name"),
			LastName:      r.get("last_name"),
			Position:      position,
			PositionGroup: group,
			ClassYear:     strings.ToUpper(r.get("class_year")),
			HeightInches:  r.int("height_inches", 0),
			WeightLbs:     r.int("weight_lbs", 0),
			Status:        r.get("status"),
			ExternalRef:   ref,
		})
		res.Relations.Roles = append(res.Relations.Roles, model.RoleAssignment{
			PlayerID:        id,
			Role:            types.ParseRole(r.get("role")),
			ReplacementRisk: types.ParseReplacementRisk(r.get("replacement_risk")),
			DepthRank:       r.int("depth_rank", 0),
		})
	})
	return res, err
}

// ReadUsage parses a usage/grades file. refs maps external_ref to player id;
// rows with an unknown ref are skipped with a warning. A nil refs uses the ref as the id.
func ReadUsage(in io.Reader, refs map[string]string) (Result, error) {
	var res Result
	err := readRows(in, usageRequired, &res.Warnings, func(r row) {
		ref := r.get("external_ref")
		if ref == "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: missing external_ref, row skipped", r.line))
			return
		}
		id := ref
		if refs != nil {
			var ok bool
			if id, ok = refs[ref]; !ok {
				res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: unknown external_ref %q, row skipped", r.line, ref))
				return
			}
		}
		res.Relations.Usage = append(res.Relations.Usage, model.SeasonUsage{
			PlayerID:      id,
			GamesPlayed:   r.int("games_played", 0),
			Snaps:         r.int("snaps", 0),
			SnapsOffense:  r.int("snaps_offense", 0),
			SnapsDefense:  r.int("snaps_defense", 0),
			SnapsST:       r.int("snaps_st", 0),
			LeverageSnaps: r.int("leverage_snaps", 0),
		})
		res.Relations.Grades = append(res.Relations.Grades, model.Grade{
			PlayerID:     id,
			OverallGrade: r.float("overall_grade", model.DefaultOverallGrade),
		})
	})
	return res, err
}

// RefIndex maps every player's external_ref, and its id, to the player id.
func RefIndex(rel model.Relations) map[string]string {
	out := make(map[string]string, len(rel.Players)*2)
	for _, p := range rel.Players {
		out[p.ID] = p.ID
		if p.ExternalRef != "" {
			out[p.ExternalRef] = p.ID
		}
	}
	return out
}

func readRows(in io.Reader, required []string, warnings *[]string, fn func(row)) error {
	reader := csv.NewReader(in)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return ErrEmpty
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	index := mapHeaders(header)
	if missing := missingHeaders(required, index); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingHeader, strings.Join(missing, ", "))
	}

	line := 1
	for {
		line++
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			*warnings = append(*warnings, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		if blank(record) {
			continue
		}
		fn(row{record: record, index: index, line: line, warn: warnings})
	}
}

func mapHeaders(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		index[key] = i
	}
	return index
}

func missingHeaders(required []string, index map[string]int) []string {
	var missing []string
	for _, key := range required {
		if _, ok := index[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

func blank(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// WriteRoster writes the players and roles of rel in the roster-intake format.
func WriteRoster(out io.Writer, rel model.Relations) error {
	w := csv.NewWriter(out)
	if err := w.Write(RosterHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range rel.Players {
		role := rel.RoleFor(p.ID)
		ref := p.ExternalRef
		if ref == "" {
			ref = p.ID
		}
		rec := []string{
			p.FirstName, p.LastName, p.PositionGroup, p.Position, p.ClassYear,
			itoa(p.HeightInches), itoa(p.WeightLbs), p.Status, string(role.Role),
			itoa(role.DepthRank), string(role.ReplacementRisk), ref,
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write %s: %w", p.ID, err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteUsage writes the usage and grades of rel in the usage/grades format.
func WriteUsage(out io.Writer, rel model.Relations) error {
	w := csv.NewWriter(out)
	if err := w.Write(UsageHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range rel.Players {
		u := rel.UsageFor(p.ID)
		ref := p.ExternalRef
		if ref == "" {
			ref = p.ID
		}
		rec := []string{
			ref, strconv.Itoa(u.GamesPlayed), strconv.Itoa(u.Snaps), strconv.Itoa(u.SnapsOffense),
			strconv.Itoa(u.SnapsDefense), strconv.Itoa(u.SnapsST), strconv.Itoa(u.LeverageSnaps),
			strconv.FormatFloat(rel.GradeFor(p.ID).OverallGrade, 'f', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write %s: %w", p.ID, err)
		}
	}
	w.Flush()
	return w.Error()
}

// itoa leaves optional zero-valued columns blank.
func itoa(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
