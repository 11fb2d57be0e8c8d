package engine

import (
	"testing"

	"github.com/khushi6simplex/js2analytics-sub000/models"
)

func testIndex() *Index {
	return NewIndex(models.ReferenceTable{Divisions: []models.Division{
		{Name: "Pune", Districts: []string{"Pune", "Satara", "Sangli"}},
		{Name: "Nashik", Districts: []string{"Nashik", "Dhule"}},
	}})
}

func feature(props map[string]any) models.Feature {
	return models.NewFeature(props)
}

var worksSpec = Spec{
	Metrics: []Metric{
		Count("worksCount", nil),
		Truthy("worksStarted", "workstartdate"),
		Sum("estimatedCost", "estimatedcost"),
		Distinct("villagesTouched", "village"),
	},
	Mode: ModeDrilldown,
}

func TestSummarizeDistrictScenario(t *testing.T) {
	features := []models.Feature{
		feature(map[string]any{"district": "Pune", "taluka": "Haveli", "workstartdate": "2020-01-01"}),
		feature(map[string]any{"district": "Pune", "taluka": "Haveli"}),
	}
	var sel models.Selection
	sel.SelectDistrict("Pune")

	res := Summarize(testIndex(), features, sel, worksSpec)

	if res.Granularity != models.GranularityDistrict {
		t.Fatalf("expected granularity %q, got %q", models.GranularityDistrict, res.Granularity)
	}
	if len(res.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(res.Rows))
	}
	row := res.Rows[0]
	if row.Taluka != "Haveli" {
		t.Errorf("expected taluka Haveli, got %q", row.Taluka)
	}
	if got := row.Value("worksCount"); got != 2 {
		t.Errorf("expected worksCount=2, got %v", got)
	}
	if got := row.Value("worksStarted"); got != 1 {
		t.Errorf("expected worksStarted=1, got %v", got)
	}
	if row.Division != "Pune" {
		t.Errorf("expected division resolved to Pune, got %q", row.Division)
	}
}

func TestSummarizeDivisionIncludesEmptyDistricts(t *testing.T) {
	features := []models.Feature{
		feature(map[string]any{"district": "Satara", "taluka": "Wai", "estimatedcost": 1200.5}),
		feature(map[string]any{"district": "Satara", "taluka": "Wai", "estimatedcost": "99.25"}),
		feature(map[string]any{"district": "Nashik", "taluka": "Sinnar"}),
	}
	var sel models.Selection
	sel.SelectDivision("Pune")

	res := Summarize(testIndex(), features, sel, worksSpec)

	want := []string{"Pune", "Satara", "Sangli"}
	if len(res.Rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(res.Rows))
	}
	for i, district := range want {
		if res.Rows[i].District != district {
			t.Errorf("row %d: expected %q, got %q", i, district, res.Rows[i].District)
		}
	}
	if got := res.Rows[0].Value("worksCount"); got != 0 {
		t.Errorf("expected Pune to be present with zero works, got %v", got)
	}
	if got := res.Rows[1].Value("estimatedCost"); got != 1299.75 {
		t.Errorf("expected exact unrounded cost 1299.75, got %v", got)
	}
	if res.Total == nil || res.Total.Value("worksCount") != 2 {
		t.Errorf("expected grand total of 2 works, got %+v", res.Total)
	}
}

func TestSummarizeTalukaSingleRow(t *testing.T) {
	features := []models.Feature{
		feature(map[string]any{"district": "Pune", "taluka": "Haveli", "village": "Wagholi"}),
		feature(map[string]any{"district": "Pune", "taluka": "Haveli", "village": "Lohegaon"}),
		feature(map[string]any{"district": "Pune", "taluka": "Mulshi", "village": "Paud"}),
	}
	var sel models.Selection
	sel.SelectDistrict("Pune")
	sel.SelectTaluka("Haveli")

	res := Summarize(testIndex(), features, sel, worksSpec)

	if res.Granularity != models.GranularitySingle || len(res.Rows) != 1 {
		t.Fatalf("expected one single-taluka row, got %s with %d rows", res.Granularity, len(res.Rows))
	}
	if got := res.Rows[0].Value("villagesTouched"); got != 2 {
		t.Errorf("expected 2 distinct villages, got %v", got)
	}
}

func TestSummarizeDrilldownWithoutSelection(t *testing.T) {
	features := []models.Feature{feature(map[string]any{"district": "Pune"})}
	res := Summarize(testIndex(), features, models.Selection{}, worksSpec)
	if res.Granularity != models.GranularityNone || len(res.Rows) != 0 {
		t.Fatalf("expected no rows, got %s with %d rows", res.Granularity, len(res.Rows))
	}
}

func TestDistinctSkipsMissingValues(t *testing.T) {
	features := []models.Feature{
		feature(map[string]any{"district": "Pune", "taluka": "Haveli"}),
		feature(map[string]any{"district": "Pune", "taluka": "Haveli", "village": "  "}),
		feature(map[string]any{"district": "Pune", "taluka": "Mulshi", "village": "Paud"}),
	}
	var sel models.Selection
	sel.SelectDistrict("Pune")

	res := Summarize(testIndex(), features, sel, worksSpec)

	if len(res.Rows) != 2 {
		t.Fatalf("expected two taluka rows, got %d", len(res.Rows))
	}
	if got := res.Rows[0].Value("villagesTouched"); got != 0 {
		t.Errorf("expected features without a village to touch none, got %v", got)
	}
	if got := res.Total.Value("villagesTouched"); got != 1 {
		t.Errorf("expected one village in the total, got %v", got)
	}
}

func TestSummarizeStatewideInterleavesSubtotals(t *testing.T) {
	features := []models.Feature{
		feature(map[string]any{"district": "Pune", "taluka": "Haveli"}),
		feature(map[string]any{"district": "Dhule", "taluka": "Sakri"}),
		feature(map[string]any{"district": "Dhule", "taluka": "Shirpur"}),
		feature(map[string]any{"district": "Goa", "taluka": "Tiswadi"}),
	}
	spec := worksSpec
	spec.Mode = ModeStatewide

	res := Summarize(testIndex(), features, models.Selection{}, spec)

	wantKinds := []models.RowKind{
		models.RowData, models.RowData, models.RowData, models.RowSubtotal,
		models.RowData, models.RowData, models.RowSubtotal,
		models.RowData, models.RowSubtotal,
	}
	if len(res.Rows) != len(wantKinds) {
		t.Fatalf("expected %d rows, got %d", len(wantKinds), len(res.Rows))
	}
	for i, kind := range wantKinds {
		if res.Rows[i].Kind != kind {
			t.Errorf("row %d (%s): expected kind %s, got %s", i, res.Rows[i].Key, kind, res.Rows[i].Kind)
		}
	}
	if res.Rows[3].Value("worksCount") != 1 || res.Rows[6].Value("worksCount") != 2 {
		t.Errorf("unexpected subtotals: %v / %v", res.Rows[3].Values, res.Rows[6].Values)
	}
	if res.Rows[7].Division != models.UnknownDivision || res.Rows[7].District != "Goa" {
		t.Errorf("expected Goa under Unknown Division, got %+v", res.Rows[7])
	}
	if res.Total.Value("worksCount") != 4 {
		t.Errorf("expected grand total 4 (subtotals excluded), got %v", res.Total.Value("worksCount"))
	}
}

func TestSummarizeMissingPropertiesUsePlaceholders(t *testing.T) {
	features := []models.Feature{
		feature(map[string]any{"district": "Pune"}),
		feature(map[string]any{"district": "Pune", "taluka": ""}),
		feature(map[string]any{"district": "Pune", "taluka": "Haveli"}),
	}
	var sel models.Selection
	sel.SelectDistrict("Pune")

	res := Summarize(testIndex(), features, sel, worksSpec)

	if len(res.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(res.Rows))
	}
	if res.Rows[0].Taluka != models.UnknownTaluka || res.Rows[0].Value("worksCount") != 2 {
		t.Errorf("expected unknown taluka row with 2 works, got %+v", res.Rows[0])
	}
	if res.Total.Value("worksCount") != 3 {
		t.Errorf("expected no record dropped, got total %v", res.Total.Value("worksCount"))
	}
}

func TestPairMetricsSumToTotal(t *testing.T) {
	spec := Spec{Metrics: Pair("wb", "wbstatus", nil), Mode: ModeStatewide}
	features := []models.Feature{
		feature(map[string]any{"district": "Pune", "wbstatus": "Completed"}),
		feature(map[string]any{"district": "Pune", "wbstatus": ""}),
		feature(map[string]any{"district": "Pune"}),
		feature(map[string]any{"district": "Satara", "wbstatus": true}),
	}
	res := Summarize(testIndex(), features, models.Selection{}, spec)
	rows := append(res.Rows, *res.Total)
	for _, r := range rows {
		if r.Value("wbCompleted")+r.Value("wbIncomplete") != r.Value("wbTotal") {
			t.Errorf("%s: %v + %v != %v", r.Key, r.Value("wbCompleted"), r.Value("wbIncomplete"), r.Value("wbTotal"))
		}
	}
	if res.Total.Value("wbCompleted") != 2 || res.Total.Value("wbIncomplete") != 2 {
		t.Errorf("unexpected totals %v", res.Total.Values)
	}
}

func TestDerivedPercentRecomputedOnTotals(t *testing.T) {
	spec := Spec{
		Metrics: Pair("wb", "wbstatus", nil),
		Derived: []Derived{{Name: "wbPercent", Numerator: "wbCompleted", Denominator: "wbTotal"}},
		Mode:    ModeDrilldown,
	}
	features := []models.Feature{
		feature(map[string]any{"district": "Pune", "wbstatus": "done"}),
		feature(map[string]any{"district": "Satara", "wbstatus": "done"}),
		feature(map[string]any{"district": "Satara"}),
		feature(map[string]any{"district": "Satara"}),
		feature(map[string]any{"district": "Satara"}),
	}
	var sel models.Selection
	sel.SelectDivision("Pune")
	res := Summarize(testIndex(), features, sel, spec)

	if got := res.Rows[0].Value("wbPercent"); got != 100 {
		t.Errorf("expected 100%% for Pune, got %v", got)
	}
	if got := res.Total.Value("wbPercent"); got != 40 {
		t.Errorf("expected 40%% overall (not a sum of percentages), got %v", got)
	}
	if got := res.Rows[2].Value("wbPercent"); got != 0 {
		t.Errorf("expected 0%% for empty district, got %v", got)
	}
}

func TestMatchRestrictsMetric(t *testing.T) {
	m := Count("ccts", map[string]string{"worktype": "CCT"})
	features := []models.Feature{
		feature(map[string]any{"worktype": "CCT"}),
		feature(map[string]any{"worktype": "cct "}),
		feature(map[string]any{"worktype": "Farm Pond"}),
	}
	if got := m.Reduce(features); got != 2 {
		t.Errorf("expected 2, got %v", got)
	}
}

func TestPaginateTotals(t *testing.T) {
	features := []models.Feature{
		feature(map[string]any{"district": "Pune"}),
		feature(map[string]any{"district": "Satara"}),
		feature(map[string]any{"district": "Satara"}),
		feature(map[string]any{"district": "Sangli"}),
	}
	var sel models.Selection
	sel.SelectDivision("Pune")
	res := Summarize(testIndex(), features, sel, worksSpec)

	page := Paginate(res, worksSpec, 1, 2)
	if len(page.Rows) != 2 || page.TotalRows != 3 {
		t.Fatalf("expected 2 of 3 rows, got %d of %d", len(page.Rows), page.TotalRows)
	}
	if page.PageTotal.Value("worksCount") != 3 {
		t.Errorf("expected page total 3, got %v", page.PageTotal.Value("worksCount"))
	}
	if page.GrandTotal.Value("worksCount") != 4 {
		t.Errorf("expected grand total 4, got %v", page.GrandTotal.Value("worksCount"))
	}

	last := Paginate(res, worksSpec, 9, 2)
	if last.Number != 2 || len(last.Rows) != 1 {
		t.Errorf("expected clamp to page 2 with 1 row, got page %d with %d rows", last.Number, len(last.Rows))
	}
}

func TestBuildChartSkipsTotals(t *testing.T) {
	features := []models.Feature{
		feature(map[string]any{"district": "Pune", "taluka": "Haveli"}),
		feature(map[string]any{"district": "Dhule", "taluka": "Sakri"}),
	}
	spec := worksSpec
	spec.Mode = ModeStatewide
	res := Summarize(testIndex(), features, models.Selection{}, spec)

	chart := BuildChart(res, []string{"worksCount"}, "Works")
	if len(chart.Labels) != 5 {
		t.Fatalf("expected 5 district labels, got %v", chart.Labels)
	}
	if len(chart.Series) != 1 || len(chart.Series[0].Values) != 5 {
		t.Fatalf("unexpected series %+v", chart.Series)
	}
	if chart.XAxis != "District" {
		t.Errorf("expected District axis, got %q", chart.XAxis)
	}
}
