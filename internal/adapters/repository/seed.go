package repository

import (
	"math"
	"strings"

	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/types"
)

// seedSnapsBase is the snap count treated as a 100% share in the demo roster.
const seedSnapsBase = 850

type seedRow struct {
	id, first, last, position, group, class string
	gradYear                                int
	snaps, leverage, games                  int
	grade                                   float64
	role                                    types.Role
	risk                                    types.ReplacementRisk
	depthRank                               int
	band                                    string
	cost                                    float64
	injury, transfer, academics             float64
}

// demoRoster is a fictional 24-player roster spanning every position group.
var demoRoster = []seedRow{ //nolint:gochecknoglobals // static demo data
	{"qb1", "Cole", "Brennan", "QB", "QB", "SR", 2026, 820, 190, 12, 86, types.RoleStarter, types.RiskHigh, 1, "A", 850_000, 20, 25, 10},
	{"qb2", "Devin", "Marsh", "QB", "QB", "SO", 2028, 90, 10, 4, 64, types.RoleBackup, types.RiskHigh, 2, "D", 60_000, 10, 55, 15},
	{"rb1", "Tyrell", "Young", "RB", "RB", "JR", 2027, 520, 110, 12, 79, types.RoleStarter, types.RiskMed, 1, "B", 320_000, 45, 30, 20},
	{"rb2", "Andre", "Pike", "RB", "RB", "FR", 2029, 180, 30, 9, 66, types.RoleRotation, types.RiskLow, 2, "D", 70_000, 15, 20, 10},
	{"wr1", "Malik", "Ford", "WR", "WR", "JR", 2027, 760, 170, 12, 83, types.RoleStarter, types.RiskMed, 1, "B", 450_000, 25, 60, 15},
	{"wr2", "Jordan", "Vance", "WR", "WR", "SR", 2026, 610, 120, 12, 74, types.RoleRotation, types.RiskMed, 2, "C", 180_000, 30, 35, 20},
	{"wr3", "Eli", "Sanders", "WR", "WR", "SO", 2028, 240, 40, 10, 68, types.RoleBackup, types.RiskLow, 3, "D", 45_000, 10, 70, 30},
	{"te1", "Grant", "Holloway", "TE", "TE", "SR", 2026, 540, 100, 12, 72, types.RoleStarter, types.RiskMed, 1, "C", 160_000, 35, 20, 10},
	{"ol1", "Nate", "Okafor", "OT", "OL", "SR", 2026, 830, 185, 12, 80, types.RoleStarter, types.RiskHigh, 1, "B", 400_000, 20, 15, 10},
	{"ol2", "Luis", "Ortega", "OG", "OL", "JR", 2027, 815, 180, 12, 75, types.RoleStarter, types.RiskMed, 2, "C", 200_000, 25, 20, 10},
	{"ol3", "Sam", "Whitaker", "C", "OL", "JR", 2027, 825, 182, 12, 77, types.RoleStarter, types.RiskHigh, 3, "C", 220_000, 15, 15, 5},
	{"ol4", "Ben", "Kowalski", "OG", "OL", "SR", 2026, 130, 15, 10, 72, types.RoleDepth, types.RiskLow, 4, "D", 55_000, 20, 25, 15},
	{"ol5", "Trey", "Dunn", "OT", "OL", "FR", 2029, 85, 8, 5, 60, types.RoleDepth, types.RiskLow, 5, "E", 15_000, 10, 40, 20},
	{"dl1", "Darius", "Webb", "EDGE", "DL", "SR", 2026, 700, 160, 12, 84, types.RoleStarter, types.RiskHigh, 1, "B", 420_000, 30, 40, 10},
	{"dl2", "Isaiah", "Grant", "DT", "DL", "JR", 2027, 640, 140, 12, 78, types.RoleStarter, types.RiskMed, 2, "C", 200_000, 40, 25, 15},
	{"dl3", "Kobe", "Lang", "EDGE", "DL", "SO", 2028, 350, 60, 11, 70, types.RoleRotation, types.RiskMed, 3, "D", 80_000, 20, 45, 25},
	{"dl4", "Reggie", "Fontaine", "DT", "DL", "FR", 2029, 150, 20, 8, 62, types.RoleDevelopmental, types.RiskLow, 4, "E", 20_000, 15, 30, 40},
	{"lb1", "Caleb", "Rhodes", "LB", "LB", "SR", 2026, 720, 150, 12, 81, types.RoleStarter, types.RiskMed, 1, "B", 300_000, 35, 20, 10},
	{"lb2", "Owen", "Price", "LB", "LB", "JR", 2027, 480, 90, 12, 71, types.RoleRotation, types.RiskLow, 2, "C", 140_000, 25, 30, 20},
	{"db1", "Jaylen", "Brooks", "CB", "DB", "JR", 2027, 780, 175, 12, 85, types.RoleStarter, types.RiskHigh, 1, "A", 650_000, 20, 65, 10},
	{"db2", "Xavier", "Lowe", "CB", "DB", "SO", 2028, 560, 110, 12, 73, types.RoleRotation, types.RiskMed, 2, "C", 150_000, 55, 90, 60},
	{"db3", "Rashad", "Hill", "S", "DB", "SR", 2026, 740, 150, 12, 76, types.RoleStarter, types.RiskMed, 3, "C", 190_000, 40, 25, 10},
	{"st1", "Connor", "Blake", "K", "ST", "JR", 2027, 120, 60, 12, 80, types.RoleStarter, types.RiskLow, 1, "D", 60_000, 5, 10, 5},
	{"st2", "Ethan", "Marlow", "P", "ST", "SR", 2026, 110, 40, 12, 74, types.RoleStarter, types.RiskLow, 1, "E", 20_000, 5, 10, 5},
}

// DemoRelations returns the relation view of the demo roster.
func DemoRelations() model.Relations {
	rel := model.Relations{}
	for _, r := range demoRoster {
		rel.Players = append(rel.Players, model.Player{
			ID:            r.id,
			FirstName:     r.first,
			LastName:      r.last,
			Position:      r.position,
			PositionGroup: r.group,
			ClassYear:     r.class,
			GradYear:      r.gradYear,
			Status:        "ACTIVE",
			ExternalRef:   strings.ToUpper(r.id),
		})
		u := model.SeasonUsage{PlayerID: r.id, GamesPlayed: r.games, Snaps: r.snaps, LeverageSnaps: r.leverage}
		switch r.group {
		case "QB", "RB", "WR", "TE", "OL":
			u.SnapsOffense = r.snaps
		case "ST":
			u.SnapsST = r.snaps
		default:
			u.SnapsDefense = r.snaps
		}
		rel.Usage = append(rel.Usage, u)
		rel.Grades = append(rel.Grades, model.Grade{PlayerID: r.id, OverallGrade: r.grade})
		rel.Roles = append(rel.Roles, model.RoleAssignment{
			PlayerID:        r.id,
			Role:            r.role,
			ReplacementRisk: r.risk,
			DepthRank:       r.depthRank,
		})
	}
	return rel
}

// DemoRoster returns the budget/forecast view of the demo roster. Risk score and color
// are left for the caller to derive from its configured weights.
func DemoRoster() []model.RosterPlayer {
	out := make([]model.RosterPlayer, 0, len(demoRoster))
	for _, r := range demoRoster {
		out = append(out, model.RosterPlayer{
			ID:                   r.id,
			Name:                 r.first + " " + r.last,
			Position:             r.position,
			PositionGroup:        r.group,
			Year:                 r.class,
			GradYear:             r.gradYear,
			EligibilityRemaining: eligibility(r.class),
			NILBand:              r.band,
			EstimatedCost:        r.cost,
			Role:                 r.role,
			SnapsShare:           math.Round(float64(r.snaps) / seedSnapsBase * 100),
			PerformanceGrade:     r.grade,
			Risk:                 model.RiskProfile{Injury: r.injury, Transfer: r.transfer, Academics: r.academics},
		})
	}
	return out
}

func eligibility(class string) int {
	switch class {
	case "FR":
		return 4
	case "SO":
		return 3
	case "JR":
		return 2
	default:
		return 1
	}
}
