package reports

import (
	"fmt"

	"github.com/khushi6simplex/js2analytics-sub000/engine"
	"github.com/khushi6simplex/js2analytics-sub000/export"
	"github.com/khushi6simplex/js2analytics-sub000/models"
)

// Binding names the catalogue expects the store to provide.
const (
	SetVillages     = "villages"
	SetWaterBudgets = "waterbudgets"
	SetSubPlans     = "subplans"
	SetWorks        = "works"
	SetAttachments  = "attachments"
)

// Catalogue is an ordered, name-addressable set of reports.
type Catalogue struct {
	reports []Report
	byName  map[string]int
}

// NewCatalogue indexes reports by name. Names must be unique.
func NewCatalogue(reports ...Report) (*Catalogue, error) {
	c := &Catalogue{byName: make(map[string]int, len(reports))}
	for _, r := range reports {
		if _, dup := c.byName[r.Name]; dup {
			return nil, fmt.Errorf("duplicate report %q", r.Name)
		}
		c.byName[r.Name] = len(c.reports)
		c.reports = append(c.reports, r)
	}
	return c, nil
}

// Get looks a report up by name.
func (c *Catalogue) Get(name string) (Report, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Report{}, false
	}
	return c.reports[i], true
}

// List returns the reports in registration order.
func (c *Catalogue) List() []Report {
	return append([]Report(nil), c.reports...)
}

// Bindings returns every feature set any report needs, first-seen order.
func (c *Catalogue) Bindings() []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range c.reports {
		for _, s := range r.Sources {
			if !seen[s] {
				seen[s] = true
				names = append(names, s)
			}
		}
	}
	return names
}

// villageJoin copies jurisdiction labels from the village master by
// village id.
var villageJoin = engine.Join{
	Key:    models.PropVillageID,
	Lookup: SetVillages,
	Copy:   []string{models.PropVillage, models.PropTaluka, models.PropDistrict},
}

// subPlanJoin resolves works to villages through their sub-plan.
var subPlanJoin = engine.Join{
	Key:       models.PropSubPlanID,
	Via:       SetSubPlans,
	ViaValue:  models.PropVillageID,
	Lookup:    SetVillages,
	LookupKey: models.PropVillageID,
	Copy:      []string{models.PropVillage, models.PropTaluka, models.PropDistrict},
}

func integer(title, key string) export.Column {
	return export.Column{Title: title, DataKey: key, Format: export.FormatInteger}
}

func completion(title, prefix string) export.Column {
	return export.Group(title,
		integer("Total", prefix+"Total"),
		integer("Completed", prefix+"Completed"),
		integer("Incomplete", prefix+"Incomplete"),
	)
}

// Default returns the built-in report catalogue.
func Default() *Catalogue {
	c, err := NewCatalogue(
		Report{
			Name:    "village-summary",
			Title:   "Project Village Summary",
			Sources: []string{SetVillages},
			Primary: SetVillages,
			Spec: engine.Spec{
				Metrics: []engine.Metric{
					engine.Count("villages", nil),
					engine.Geotagged("geotagged"),
					engine.Sum("area", "area"),
				},
				Derived: []engine.Derived{{Name: "geotaggedPercent", Numerator: "geotagged", Denominator: "villages"}},
				Mode:    engine.ModeDrilldown,
			},
			Columns: []export.Column{
				integer("Villages", "villages"),
				integer("Geotagged", "geotagged"),
				{Title: "Geotagged %", DataKey: "geotaggedPercent", Format: export.FormatPercent},
				{Title: "Area", DataKey: "area", Format: export.FormatArea},
			},
			Chart: []string{"villages", "geotagged"},
		},
		Report{
			Name:    "water-budget",
			Title:   "Water Budget Status",
			Sources: []string{SetWaterBudgets, SetVillages},
			Primary: SetWaterBudgets,
			Joins:   []engine.Join{villageJoin},
			Spec: engine.Spec{
				Metrics: append(engine.Pair("wb", "wbstatus", nil),
					engine.Distinct("villages", models.PropVillage),
					engine.Sum("wbtcm", "wbtcm"),
				),
				Derived: []engine.Derived{{Name: "wbPercent", Numerator: "wbCompleted", Denominator: "wbTotal"}},
				Mode:    engine.ModeDrilldown,
			},
			Columns: []export.Column{
				integer("Villages", "villages"),
				completion("Water Budget", "wb"),
				{Title: "Completed %", DataKey: "wbPercent", Format: export.FormatPercent},
				{Title: "Water Budget", DataKey: "wbtcm", Format: export.FormatVolume},
			},
			Chart: []string{"wbCompleted", "wbIncomplete"},
		},
		Report{
			Name:    "work-progress",
			Title:   "Work Progress",
			Sources: []string{SetWorks},
			Primary: SetWorks,
			Spec: engine.Spec{
				Metrics: append([]engine.Metric{
					engine.Count("worksCount", nil),
					engine.Truthy("worksStarted", "workstartdate"),
					engine.Sum("estimatedCost", "estimatedcost"),
					engine.Sum("expenditure", "expenditure"),
				}, engine.Pair("completion", "iscompleted", nil)...),
				Derived: []engine.Derived{{Name: "expenditurePercent", Numerator: "expenditure", Denominator: "estimatedCost"}},
				Mode:    engine.ModeDrilldown,
			},
			Columns: []export.Column{
				integer("Works", "worksCount"),
				integer("Started", "worksStarted"),
				completion("Completion", "completion"),
				{Title: "Estimated Cost", DataKey: "estimatedCost", Format: export.FormatAmount},
				{Title: "Expenditure", DataKey: "expenditure", Format: export.FormatAmount},
				{Title: "Expenditure %", DataKey: "expenditurePercent", Format: export.FormatPercent},
			},
			Chart: []string{"worksCount", "worksStarted"},
		},
		Report{
			Name:    "subplan-works",
			Title:   "Sub-Plan Works",
			Sources: []string{SetWorks, SetSubPlans, SetVillages},
			Primary: SetWorks,
			Joins:   []engine.Join{subPlanJoin},
			Spec: engine.Spec{
				Metrics: append([]engine.Metric{
					engine.Count("worksCount", nil),
					engine.Distinct("villagesTouched", models.PropVillage),
					engine.Sum("estimatedCost", "estimatedcost"),
				}, engine.Pair("approval", "isapproved", nil)...),
				Mode: engine.ModeDrilldown,
			},
			Columns: []export.Column{
				integer("Works", "worksCount"),
				integer("Villages", "villagesTouched"),
				completion("Approval", "approval"),
				{Title: "Estimated Cost", DataKey: "estimatedCost", Format: export.FormatAmount},
			},
			Chart: []string{"approvalCompleted", "approvalIncomplete"},
		},
		Report{
			Name:    "attachments",
			Title:   "Work Attachments",
			Sources: []string{SetAttachments, SetWorks},
			Primary: SetAttachments,
			Joins: []engine.Join{{
				Key:    models.PropWorkID,
				Lookup: SetWorks,
				Copy:   []string{models.PropVillage, models.PropTaluka, models.PropDistrict},
			}},
			Spec: engine.Spec{
				Metrics: []engine.Metric{
					engine.Count("attachments", nil),
					engine.Count("photos", map[string]string{"attachmenttype": "photo"}),
					engine.Count("documents", map[string]string{"attachmenttype": "document"}),
					engine.Geotagged("geotagged"),
					engine.Distinct("works", models.PropWorkID),
				},
				Derived: []engine.Derived{{Name: "geotaggedPercent", Numerator: "geotagged", Denominator: "attachments"}},
				Mode:    engine.ModeDrilldown,
			},
			Columns: []export.Column{
				integer("Works", "works"),
				export.Group("Attachments",
					integer("Total", "attachments"),
					integer("Photos", "photos"),
					integer("Documents", "documents"),
				),
				integer("Geotagged", "geotagged"),
				{Title: "Geotagged %", DataKey: "geotaggedPercent", Format: export.FormatPercent},
			},
		},
		Report{
			Name:    "division-summary",
			Title:   "Division-wise Summary",
			Sources: []string{SetWorks},
			Primary: SetWorks,
			Spec: engine.Spec{
				Metrics: append([]engine.Metric{
					engine.Count("worksCount", nil),
					engine.Distinct("villagesTouched", models.PropVillage),
					engine.Sum("estimatedCost", "estimatedcost"),
					engine.Sum("expenditure", "expenditure"),
				}, engine.Pair("completion", "iscompleted", nil)...),
				Mode: engine.ModeStatewide,
			},
			Columns: []export.Column{
				integer("Works", "worksCount"),
				integer("Villages", "villagesTouched"),
				completion("Completion", "completion"),
				{Title: "Estimated Cost", DataKey: "estimatedCost", Format: export.FormatAmount},
				{Title: "Expenditure", DataKey: "expenditure", Format: export.FormatAmount},
			},
			Chart: []string{"completionCompleted", "completionIncomplete"},
		},
	)
	if err != nil {
		panic(err)
	}
	return c
}
