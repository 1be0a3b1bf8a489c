// Package metrics counts what one conversion run did. The counters live
// in their own registry and are only written out when asked for, in the
// node_exporter textfile format.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"tb2imapfilter/internal/filter"
	"tb2imapfilter/internal/imapfilter"
	"tb2imapfilter/internal/sieve"
	"tb2imapfilter/internal/thunderbird"
)

const namespace = "tb2imapfilter"

type Run struct {
	Registry *prometheus.Registry

	// RulesParsed counts rules read from all filter files
	RulesParsed prometheus.Counter

	// RulesRendered counts rules present in the generated output
	RulesRendered prometheus.Counter

	// RulesSkipped counts rules left out, by reason
	RulesSkipped *prometheus.CounterVec

	// Remotes is the number of accounts declared in the output
	Remotes prometheus.Gauge
}

func NewRun() *Run {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Run{
		Registry: reg,
		RulesParsed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rules_parsed_total",
			Help:      "Total number of filter rules read from the profile",
		}),
		RulesRendered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rules_rendered_total",
			Help:      "Total number of rules written to the generated script",
		}),
		RulesSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rules_skipped_total",
			Help:      "Total number of rules left out of the generated script",
		}, []string{"reason"}),
		Remotes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "remotes",
			Help:      "Number of IMAP accounts declared in the generated script",
		}),
	}
}

// RecordSkips counts each skip under a coarse reason label.
func (r *Run) RecordSkips(skips []thunderbird.Skip) {
	for _, s := range skips {
		r.RulesSkipped.WithLabelValues(SkipReason(s.Reason)).Inc()
	}
}

// SkipReason maps a skip error to a low-cardinality label value.
func SkipReason(err error) string {
	switch {
	case errors.Is(err, filter.ErrUnsupportedCondition):
		return "condition"
	case errors.Is(err, thunderbird.ErrUnsupportedActionValue):
		return "action_value"
	case errors.Is(err, thunderbird.ErrRuleDisabled):
		return "disabled"
	case errors.Is(err, thunderbird.ErrNoActions):
		return "no_actions"
	case errors.Is(err, imapfilter.ErrUnsupportedAction), errors.Is(err, sieve.ErrUnsupportedAction):
		return "action"
	default:
		return "other"
	}
}

// WriteTextfile writes every metric of the run to path atomically.
func (r *Run) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.Registry)
}
