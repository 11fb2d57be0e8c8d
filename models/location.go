package models

// LocationHierarchy is the set of picker lists for every jurisdiction level,
// paired with the current selection and what the caller may change.
type LocationHierarchy struct {
	Divisions []string  `json:"divisions"`
	Districts []string  `json:"districts"`
	Talukas   []string  `json:"talukas"`
	Villages  []string  `json:"villages"`
	Selected  Selection `json:"selected"`
	Editable  []Level   `json:"editableLevels"`
}
