package engine

import (
	"regexp"
	"strings"

	"github.com/khushi6simplex/js2analytics-sub000/models"
)

// Roles issued by the identity provider. Any other role is unrestricted.
const (
	RoleState    = "jsstate"
	RoleDistrict = "jsdistrict"
	RoleTaluka   = "jstaluka"
)

var allLevels = []models.Level{models.LevelDivision, models.LevelDistrict, models.LevelTaluka}

// ResolveScope derives what role may see and change from structured
// constraints. Missing constraints leave that level unlocked; it never fails.
func ResolveScope(idx *Index, role string, constraints []models.Constraint) models.Scope {
	scope := models.Scope{Role: role}
	district := constraintValue(constraints, models.LevelDistrict)
	taluka := constraintValue(constraints, models.LevelTaluka)

	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleDistrict:
		scope.Editable = []models.Level{models.LevelTaluka}
		if district != "" {
			scope.LockedDistrict = district
			scope.LockedDivision = idx.DivisionOf(district)
		}
	case RoleTaluka:
		scope.Editable = []models.Level{}
		if district != "" {
			scope.LockedDistrict = district
			scope.LockedDivision = idx.DivisionOf(district)
			if taluka != "" {
				scope.LockedTaluka = taluka
			}
		}
	default:
		scope.Editable = append([]models.Level(nil), allLevels...)
	}
	return scope
}

var (
	districtExpr = regexp.MustCompile(`district='([^']+)'`)
	talukaExpr   = regexp.MustCompile(`taluka='([^']+)'`)
)

// ParseConstraints turns the raw jurisdiction filter handed over by the
// session layer into constraints. It accepts a filter expression string such
// as "district='Nashik' AND taluka='Sinnar'" or a decoded JSON object such as
// {"district": "Nashik"}. Unrecognised input yields no constraints.
func ParseConstraints(raw any) []models.Constraint {
	out := make([]models.Constraint, 0, 2)
	switch v := raw.(type) {
	case string:
		if m := districtExpr.FindStringSubmatch(v); m != nil {
			out = append(out, models.Constraint{Level: models.LevelDistrict, Value: strings.TrimSpace(m[1])})
		}
		if m := talukaExpr.FindStringSubmatch(v); m != nil {
			out = append(out, models.Constraint{Level: models.LevelTaluka, Value: strings.TrimSpace(m[1])})
		}
	case map[string]any:
		for _, level := range []models.Level{models.LevelDistrict, models.LevelTaluka} {
			if s, ok := v[string(level)].(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, models.Constraint{Level: level, Value: strings.TrimSpace(s)})
			}
		}
		for _, key := range []string{"filter", "cql", "expression"} {
			if s, ok := v[key].(string); ok {
				out = append(out, ParseConstraints(s)...)
			}
		}
	case []any:
		for _, item := range v {
			out = append(out, ParseConstraints(item)...)
		}
	case []models.Constraint:
		out = append(out, v...)
	}
	return out
}

func constraintValue(constraints []models.Constraint, level models.Level) string {
	for _, c := range constraints {
		if c.Level == level && c.Value != "" {
			return c.Value
		}
	}
	return ""
}
