// Package validate checks generated dashboards and rule files: every PromQL
// expression must parse and reference only known metrics.
package validate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/prometheus/prometheus/model/labels"
	"github.com/prometheus/prometheus/promql/parser"

	"github.com/donaldgifford/storefront/tools/dashgen/rules"
)

// histogramSuffixes are the series suffixes a histogram metric exposes.
var histogramSuffixes = []string{"_bucket", "_sum", "_count"}

// counterFuncs are the functions a counter should be wrapped in.
var counterFuncs = map[string]bool{
	"rate":     true,
	"irate":    true,
	"increase": true,
}

// Result collects validation findings. Errors fail generation; warnings
// are reported only.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether no errors were found.
func (r Result) Ok() bool {
	return len(r.Errors) == 0
}

func (r *Result) merge(prefix string, other Result) {
	for _, e := range other.Errors {
		r.Errors = append(r.Errors, prefix+": "+e)
	}
	for _, w := range other.Warnings {
		r.Warnings = append(r.Warnings, prefix+": "+w)
	}
}

// Expr parses a PromQL expression and checks its metric references.
func Expr(expr string, known map[string]bool) Result {
	var res Result

	node, err := parser.ParseExpr(expr)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("parse %q: %v", expr, err))
		return res
	}

	//nolint:errcheck // the inspector never returns an error
	parser.Inspect(node, func(n parser.Node, path []parser.Node) error {
		vs, ok := n.(*parser.VectorSelector)
		if !ok {
			return nil
		}
		name := selectorName(vs)
		if name == "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("selector %s has no metric name", vs))
			return nil
		}
		if !isKnown(name, known) {
			res.Errors = append(res.Errors, fmt.Sprintf("unknown metric %q", name))
		}
		if strings.HasSuffix(name, "_total") && !insideCounterFunc(path) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("counter %q used without rate or increase", name))
		}
		return nil
	})

	return res
}

func selectorName(vs *parser.VectorSelector) string {
	if vs.Name != "" {
		return vs.Name
	}
	for _, m := range vs.LabelMatchers {
		if m.Name == labels.MetricName && m.Type == labels.MatchEqual {
			return m.Value
		}
	}
	return ""
}

func isKnown(name string, known map[string]bool) bool {
	if known[name] {
		return true
	}
	for _, suffix := range histogramSuffixes {
		if base, ok := strings.CutSuffix(name, suffix); ok && known[base] {
			return true
		}
	}
	return false
}

func insideCounterFunc(path []parser.Node) bool {
	for _, n := range path {
		if call, ok := n.(*parser.Call); ok && counterFuncs[call.Func.Name] {
			return true
		}
	}
	return false
}

// jsonPanel is the subset of the dashboard model the validator walks.
type jsonPanel struct {
	Title   string `json:"title"`
	Targets []struct {
		Expr string `json:"expr"`
	} `json:"targets"`
	Panels []jsonPanel `json:"panels"`
}

// Dashboard validates every query target of every panel, including panels
// nested in rows.
func Dashboard(d dashboard.Dashboard, known map[string]bool) Result {
	var res Result

	data, err := json.Marshal(d)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("marshaling dashboard: %v", err))
		return res
	}
	var model struct {
		Panels []jsonPanel `json:"panels"`
	}
	if err := json.Unmarshal(data, &model); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("decoding dashboard: %v", err))
		return res
	}

	var walk func(panels []jsonPanel)
	walk = func(panels []jsonPanel) {
		for _, p := range panels {
			for _, t := range p.Targets {
				if t.Expr == "" {
					res.Warnings = append(res.Warnings, fmt.Sprintf("panel %q: empty target", p.Title))
					continue
				}
				res.merge("panel "+strconv.Quote(p.Title), Expr(t.Expr, known))
			}
			walk(p.Panels)
		}
	}
	walk(model.Panels)

	return res
}

// Rules validates the expressions of a PrometheusRule and the metadata its
// alerts need for routing.
func Rules(cr rules.PrometheusRule, known map[string]bool) Result {
	var res Result

	for _, g := range cr.Spec.Groups {
		for _, r := range g.Rules {
			prefix := g.Name + "/" + r.Name()

			switch {
			case r.Name() == "":
				res.Errors = append(res.Errors, prefix+": rule has neither record nor alert")
			case r.Record != "" && r.Alert != "":
				res.Errors = append(res.Errors, prefix+": rule sets both record and alert")
			case !r.IsAlert() && !strings.Contains(r.Record, ":"):
				res.Warnings = append(res.Warnings, prefix+": recording rule name should follow level:metric:operation")
			case r.IsAlert() && r.Labels["severity"] == "":
				res.Errors = append(res.Errors, prefix+": alert missing severity label")
			case r.IsAlert() && r.Annotations["summary"] == "":
				res.Errors = append(res.Errors, prefix+": alert missing summary annotation")
			}

			res.merge(prefix, Expr(r.Expr, known))
		}
	}
	return res
}
