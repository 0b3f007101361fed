package facore

import "sort"

// Metric selects which per-compound value the combined matrix carries.
type Metric int

const (
	MetricPercentage Metric = iota
	MetricArea
)

// CombinedResult is the cross-sample matrix: one row per compound seen in
// at least one sample, one column per sample, 0.0 where a compound is
// absent from a sample.
type CombinedResult struct {
	Compounds []string                      `json:"compounds"`
	Samples   []string                      `json:"samples"`
	Values    map[string]map[string]float64 `json:"values"`
}

// Combine merges independent sample results into one matrix. Rows follow
// reference table order restricted to compounds present somewhere; names
// outside the table (stale results from an edited table) sort after, in
// first-seen order.
func Combine(results []SampleResult, table *ReferenceTable, metric Metric) CombinedResult {
	out := CombinedResult{
		Samples: make([]string, 0, len(results)),
		Values:  make(map[string]map[string]float64),
	}

	present := make(map[string]bool)
	var extra []string
	for _, r := range results {
		out.Samples = append(out.Samples, r.SampleID)
		for _, name := range compoundNames(r) {
			if present[name] {
				continue
			}
			present[name] = true
			if _, ok := table.Find(name); !ok {
				extra = append(extra, name)
			}
		}
	}

	for _, e := range table.All() {
		if present[e.Name] {
			out.Compounds = append(out.Compounds, e.Name)
		}
	}
	out.Compounds = append(out.Compounds, extra...)

	for _, name := range out.Compounds {
		row := make(map[string]float64, len(results))
		for _, r := range results {
			v := 0.0
			if stat, ok := r.Compounds[name]; ok {
				switch metric {
				case MetricArea:
					v = stat.TotalArea
				default:
					v = stat.Percentage
				}
			}
			row[r.SampleID] = v
		}
		out.Values[name] = row
	}
	return out
}

// compoundNames returns the sample's compound names deterministically:
// the ordered names first, then any map keys the order list missed.
// Map keys carry no arrival order, so the leftovers sort lexically;
// first-seen order is only preserved for names the Order list covers.
func compoundNames(r SampleResult) []string {
	names := make([]string, 0, len(r.Compounds))
	seen := make(map[string]bool, len(r.Compounds))
	for _, name := range r.Order {
		if _, ok := r.Compounds[name]; ok && !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range r.Compounds {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}
