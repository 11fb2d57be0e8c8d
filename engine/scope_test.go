package engine

import (
	"reflect"
	"testing"

	"github.com/khushi6simplex/js2analytics-sub000/models"
)

func TestResolveScopeTalukaLock(t *testing.T) {
	constraints := ParseConstraints("district='Nashik' AND taluka='Sinnar'")
	scope := ResolveScope(testIndex(), RoleTaluka, constraints)

	if scope.LockedDistrict != "Nashik" {
		t.Errorf("expected locked district Nashik, got %q", scope.LockedDistrict)
	}
	if scope.LockedTaluka != "Sinnar" {
		t.Errorf("expected locked taluka Sinnar, got %q", scope.LockedTaluka)
	}
	if scope.LockedDivision != "Nashik" {
		t.Errorf("expected division resolved from district, got %q", scope.LockedDivision)
	}
	if scope.Editable == nil || len(scope.Editable) != 0 {
		t.Errorf("expected no editable levels, got %#v", scope.Editable)
	}
}

func TestResolveScopeByRole(t *testing.T) {
	tests := []struct {
		name         string
		role         string
		raw          any
		wantDistrict string
		wantTaluka   string
		wantEditable []models.Level
	}{
		{"state", RoleState, "", "", "", allLevels},
		{"admin", "admin", "district='Pune'", "", "", allLevels},
		{"district", RoleDistrict, "district='Pune'", "Pune", "", []models.Level{models.LevelTaluka}},
		{"district object", RoleDistrict, map[string]any{"district": "Satara"}, "Satara", "", []models.Level{models.LevelTaluka}},
		{"district no match", RoleDistrict, "state='MH'", "", "", []models.Level{models.LevelTaluka}},
		{"taluka malformed", RoleTaluka, "district=Pune", "", "", []models.Level{}},
		{"taluka nil", RoleTaluka, nil, "", "", []models.Level{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope := ResolveScope(testIndex(), tt.role, ParseConstraints(tt.raw))
			if scope.LockedDistrict != tt.wantDistrict {
				t.Errorf("district: expected %q, got %q", tt.wantDistrict, scope.LockedDistrict)
			}
			if scope.LockedTaluka != tt.wantTaluka {
				t.Errorf("taluka: expected %q, got %q", tt.wantTaluka, scope.LockedTaluka)
			}
			if !reflect.DeepEqual(scope.Editable, tt.wantEditable) {
				t.Errorf("editable: expected %v, got %v", tt.wantEditable, scope.Editable)
			}
		})
	}
}

func TestScopeApplyPinsLockedLevels(t *testing.T) {
	scope := ResolveScope(testIndex(), RoleDistrict, ParseConstraints("district='Satara'"))

	sel := scope.Apply(models.Selection{Division: "Nashik", District: "Dhule", Taluka: "Wai"})
	want := models.Selection{Division: "Pune", District: "Satara", Taluka: "Wai"}
	if sel != want {
		t.Errorf("expected %+v, got %+v", want, sel)
	}

	locked := ResolveScope(testIndex(), RoleTaluka, ParseConstraints("district='Satara' AND taluka='Wai'"))
	if got := locked.Apply(models.Selection{District: "Pune", Taluka: "Haveli"}); got.Taluka != "Wai" || got.District != "Satara" {
		t.Errorf("expected taluka role selection to stay pinned, got %+v", got)
	}

	open := ResolveScope(testIndex(), RoleState, nil)
	if got := open.Apply(models.Selection{Taluka: "Haveli"}); got.Taluka != "" {
		t.Errorf("expected taluka without district to be ignored, got %+v", got)
	}
}

func TestParseConstraintsFilterKey(t *testing.T) {
	got := ParseConstraints(map[string]any{"filter": "district='Pune' AND taluka='Haveli'"})
	want := []models.Constraint{
		{Level: models.LevelDistrict, Value: "Pune"},
		{Level: models.LevelTaluka, Value: "Haveli"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
