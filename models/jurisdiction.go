package models

// Level is one tier of the administrative hierarchy.
type Level string

const (
	LevelState    Level = "state"
	LevelDivision Level = "division"
	LevelDistrict Level = "district"
	LevelTaluka   Level = "taluka"
	LevelVillage  Level = "village"
)

// Property returns the feature property that carries this level's name.
func (l Level) Property() string {
	switch l {
	case LevelDivision:
		return PropDivision
	case LevelDistrict:
		return PropDistrict
	case LevelTaluka:
		return PropTaluka
	case LevelVillage:
		return PropVillage
	}
	return ""
}

// Division is one entry of the static reference table.
type Division struct {
	Name      string   `json:"name" yaml:"name"`
	Districts []string `json:"districts" yaml:"districts"`
}

// ReferenceTable maps divisions to their districts. Order is significant:
// it drives row order in division and statewide reports.
type ReferenceTable struct {
	Divisions []Division `json:"divisions" yaml:"divisions"`
}

// DefaultReferenceTable is the Maharashtra revenue division layout used when
// no reference file is configured.
func DefaultReferenceTable() ReferenceTable {
	return ReferenceTable{Divisions: []Division{
		{Name: "Amravati", Districts: []string{"Akola", "Amravati", "Buldhana", "Washim", "Yavatmal"}},
		{Name: "Aurangabad", Districts: []string{"Aurangabad", "Beed", "Hingoli", "Jalna", "Latur", "Nanded", "Osmanabad", "Parbhani"}},
		{Name: "Konkan", Districts: []string{"Mumbai City", "Mumbai Suburban", "Palghar", "Raigad", "Ratnagiri", "Sindhudurg", "Thane"}},
		{Name: "Nagpur", Districts: []string{"Bhandara", "Chandrapur", "Gadchiroli", "Gondia", "Nagpur", "Wardha"}},
		{Name: "Nashik", Districts: []string{"Ahmednagar", "Dhule", "Jalgaon", "Nandurbar", "Nashik"}},
		{Name: "Pune", Districts: []string{"Kolhapur", "Pune", "Sangli", "Satara", "Solapur"}},
	}}
}

// Selection is the jurisdiction picker state. Use the Select methods to
// change it so that lower levels are cleared consistently.
type Selection struct {
	Division string `json:"division,omitempty"`
	District string `json:"district,omitempty"`
	Taluka   string `json:"taluka,omitempty"`
}

// SelectDivision sets the division and clears district and taluka.
func (s *Selection) SelectDivision(division string) {
	s.Division = division
	s.District = ""
	s.Taluka = ""
}

// SelectDistrict sets the district and clears taluka.
func (s *Selection) SelectDistrict(district string) {
	s.District = district
	s.Taluka = ""
}

// SelectTaluka is a no-op unless a district is selected.
func (s *Selection) SelectTaluka(taluka string) {
	if s.District == "" {
		return
	}
	s.Taluka = taluka
}

func (s *Selection) Reset() {
	*s = Selection{}
}

// Deepest returns the lowest selected level, LevelState when nothing is set.
func (s Selection) Deepest() Level {
	switch {
	case s.Taluka != "":
		return LevelTaluka
	case s.District != "":
		return LevelDistrict
	case s.Division != "":
		return LevelDivision
	}
	return LevelState
}

// Constraint is a structured jurisdiction filter handed over by the session
// layer, e.g. {district, "Pune"}.
type Constraint struct {
	Level Level  `json:"level"`
	Value string `json:"value"`
}

// Scope is what a role is allowed to see and change.
type Scope struct {
	Role           string  `json:"role"`
	LockedDivision string  `json:"lockedDivision,omitempty"`
	LockedDistrict string  `json:"lockedDistrict,omitempty"`
	LockedTaluka   string  `json:"lockedTaluka,omitempty"`
	Editable       []Level `json:"editableLevels"`
}

// CanEdit reports whether the picker for level accepts user interaction.
func (sc Scope) CanEdit(level Level) bool {
	for _, l := range sc.Editable {
		if l == level {
			return true
		}
	}
	return false
}

// Apply builds the effective selection: requested levels are applied in
// order through the Select methods, edits to non-editable levels are dropped,
// and locked levels always win.
func (sc Scope) Apply(requested Selection) Selection {
	var sel Selection
	if sc.LockedDivision != "" {
		sel.SelectDivision(sc.LockedDivision)
	} else if requested.Division != "" && sc.CanEdit(LevelDivision) {
		sel.SelectDivision(requested.Division)
	}

	if sc.LockedDistrict != "" {
		sel.SelectDistrict(sc.LockedDistrict)
	} else if requested.District != "" && sc.CanEdit(LevelDistrict) {
		sel.SelectDistrict(requested.District)
	}

	if sc.LockedTaluka != "" {
		sel.SelectTaluka(sc.LockedTaluka)
	} else if requested.Taluka != "" && sc.CanEdit(LevelTaluka) {
		sel.SelectTaluka(requested.Taluka)
	}
	return sel
}
