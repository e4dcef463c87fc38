// Package rules builds the storefront's Prometheus recording and alert rules
// as Prometheus Operator PrometheusRule resources.
package rules

const (
	apiVersion = "monitoring.coreos.com/v1"
	kind       = "PrometheusRule"

	// ruleSelectorLabel is the label the Prometheus instance selects rule
	// resources by.
	ruleSelectorLabel = "system-rules-prometheus"
)

// PrometheusRule is the resource written to deploy/prometheus.
type PrometheusRule struct {
	APIVersion string                 `yaml:"apiVersion"`
	Kind       string                 `yaml:"kind"`
	Metadata   PrometheusRuleMetadata `yaml:"metadata"`
	Spec       PrometheusRuleSpec     `yaml:"spec"`
}

// PrometheusRuleMetadata names the resource.
type PrometheusRuleMetadata struct {
	Name   string            `yaml:"name"`
	Labels map[string]string `yaml:"labels,omitempty"`
}

// PrometheusRuleSpec holds the rule groups.
type PrometheusRuleSpec struct {
	Groups []RuleGroup `yaml:"groups"`
}

// RuleGroup is evaluated as a unit at Interval (the Prometheus default when
// empty).
type RuleGroup struct {
	Name     string `yaml:"name"`
	Interval string `yaml:"interval,omitempty"`
	Rules    []Rule `yaml:"rules"`
}

// Rule sets exactly one of Record or Alert.
type Rule struct {
	Record      string            `yaml:"record,omitempty"`
	Alert       string            `yaml:"alert,omitempty"`
	Expr        string            `yaml:"expr"`
	For         string            `yaml:"for,omitempty"`
	Labels      map[string]string `yaml:"labels,omitempty"`
	Annotations map[string]string `yaml:"annotations,omitempty"`
}

// NewPrometheusRule returns a resource named name carrying groups and the
// selector label.
func NewPrometheusRule(name string, groups ...RuleGroup) PrometheusRule {
	return PrometheusRule{
		APIVersion: apiVersion,
		Kind:       kind,
		Metadata: PrometheusRuleMetadata{
			Name:   name,
			Labels: map[string]string{"prometheus": ruleSelectorLabel},
		},
		Spec: PrometheusRuleSpec{Groups: groups},
	}
}

// IsAlert reports whether r is an alerting rule.
func (r Rule) IsAlert() bool { return r.Alert != "" }

// Name returns the alert name or the recorded series name.
func (r Rule) Name() string {
	if r.IsAlert() {
		return r.Alert
	}
	return r.Record
}

// Rules returns every rule across groups, in order.
func (cr PrometheusRule) Rules() []Rule {
	var out []Rule
	for _, g := range cr.Spec.Groups {
		out = append(out, g.Rules...)
	}
	return out
}
