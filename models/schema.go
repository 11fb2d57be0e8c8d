package models

// Property keys shared by every feature collection the dashboard reads.
const (
	PropDivision = "division"
	PropDistrict = "district"
	PropTaluka   = "taluka"
	PropVillage  = "village"

	PropVillageID = "villageid"
	PropSubPlanID = "subplanid"
	PropWorkID    = "workid"
)

const (
	UnknownDivision = "Unknown Division"
	UnknownDistrict = "Unknown District"
	UnknownTaluka   = "Unknown Taluka"
	UnknownVillage  = "Unknown Village"
)

type PropertyKind string

const (
	KindString PropertyKind = "string"
	KindNumber PropertyKind = "number"
	KindDate   PropertyKind = "date"
	KindBool   PropertyKind = "bool"
	KindID     PropertyKind = "id"
)

// PropertySpec documents the expected scalar type of a property and the
// value substituted when a feature does not carry it.
type PropertySpec struct {
	Kind        PropertyKind
	Placeholder string
}

type PropertySchema map[string]PropertySpec

// Placeholder returns the substitute text for a missing key. Numeric, date,
// bool and unknown keys have an empty placeholder; numeric readers use 0.
func (s PropertySchema) Placeholder(key string) string {
	if spec, ok := s[key]; ok {
		return spec.Placeholder
	}
	return ""
}

// Kind returns the declared kind of key, KindString when undeclared.
func (s PropertySchema) Kind(key string) PropertyKind {
	if spec, ok := s[key]; ok {
		return spec.Kind
	}
	return KindString
}

// Schema covers the project-village, water-budget, sub-plan, work and
// attachment collections.
var Schema = PropertySchema{
	PropDivision: {Kind: KindString, Placeholder: UnknownDivision},
	PropDistrict: {Kind: KindString, Placeholder: UnknownDistrict},
	PropTaluka:   {Kind: KindString, Placeholder: UnknownTaluka},
	PropVillage:  {Kind: KindString, Placeholder: UnknownVillage},

	PropVillageID: {Kind: KindID},
	PropSubPlanID: {Kind: KindID},
	PropWorkID:    {Kind: KindID},

	"wbstatus":        {Kind: KindString},
	"wbtcm":           {Kind: KindNumber},
	"area":            {Kind: KindNumber},
	"estimatedcost":   {Kind: KindNumber},
	"expenditure":     {Kind: KindNumber},
	"workstartdate":   {Kind: KindDate},
	"workenddate":     {Kind: KindDate},
	"iscompleted":     {Kind: KindBool},
	"isapproved":      {Kind: KindBool},
	"isdeleted":       {Kind: KindBool},
	"attachmenttype":  {Kind: KindString},
	"attachmentcount": {Kind: KindNumber},
}
