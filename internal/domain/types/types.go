// Package types contains the enumerations shared across the roster engines.
package types

import "strings"

// Role is a player's depth-chart role.
type Role string

// Known roles.
const (
	RoleStarter       Role = "STARTER"
	RoleRotation      Role = "ROTATION"
	RoleBackup        Role = "BACKUP"
	RoleDepth         Role = "DEPTH"
	RoleDevelopmental Role = "DEVELOPMENTAL"
)

// ParseRole normalizes a role code. "BACKUP/DEPTH" and unknown values map to DEPTH.
func ParseRole(s string) Role {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "STARTER":
		return RoleStarter
	case "ROTATION":
		return RoleRotation
	case "BACKUP":
		return RoleBackup
	case "DEVELOPMENTAL", "DEV":
		return RoleDevelopmental
	default:
		return RoleDepth
	}
}

// Floored reports whether the role is protected by the rotation floor guardrail.
func (r Role) Floored() bool {
	return r == RoleStarter || r == RoleRotation
}

// Depth reports whether the role is a non-contributing depth role.
func (r Role) Depth() bool {
	return r == RoleBackup || r == RoleDepth || r == RoleDevelopmental
}

// ReplacementRisk grades how hard a player is to replace.
type ReplacementRisk string

// Known replacement risks.
const (
	RiskLow  ReplacementRisk = "LOW"
	RiskMed  ReplacementRisk = "MED"
	RiskHigh ReplacementRisk = "HIGH"
)

// ParseReplacementRisk is case-insensitive; unrecognized input is MED.
func ParseReplacementRisk(s string) ReplacementRisk {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOW":
		return RiskLow
	case "HIGH":
		return RiskHigh
	default:
		return RiskMed
	}
}

// RiskColor buckets a player's composite risk score.
type RiskColor string

// Risk colors.
const (
	ColorGreen  RiskColor = "GREEN"
	ColorYellow RiskColor = "YELLOW"
	ColorRed    RiskColor = "RED"
)

// ParseRiskColor defaults to GREEN.
func ParseRiskColor(s string) RiskColor {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RED":
		return ColorRed
	case "YELLOW":
		return ColorYellow
	default:
		return ColorGreen
	}
}

// GuardrailStatus is the advisory budget status.
type GuardrailStatus string

// Guardrail statuses, ordered by severity.
const (
	StatusWithin GuardrailStatus = "within"
	StatusNear   GuardrailStatus = "near"
	StatusOver   GuardrailStatus = "over"
)

// Worse returns the more severe of two statuses.
func (s GuardrailStatus) Worse(o GuardrailStatus) GuardrailStatus {
	if severity(o) > severity(s) {
		return o
	}
	return s
}

func severity(s GuardrailStatus) int {
	switch s {
	case StatusOver:
		return 2
	case StatusNear:
		return 1
	default:
		return 0
	}
}

// ChangeType classifies a diff row.
type ChangeType string

// Diff change types.
const (
	ChangeAdded   ChangeType = "ADDED"
	ChangeRemoved ChangeType = "REMOVED"
	ChangeChanged ChangeType = "CHANGED"
)

// Verdict is the recommendation of a what-if report.
type Verdict string

// Verdicts.
const (
	VerdictProceed Verdict = "PROCEED"
	VerdictCaution Verdict = "CAUTION"
	VerdictBlock   Verdict = "BLOCK"
)

// DepartureReason explains why a player leaves the roster in a forecast.
type DepartureReason string

// Departure reasons.
const (
	ReasonGraduation DepartureReason = "GRADUATION"
	ReasonTransfer   DepartureReason = "TRANSFER"
)
