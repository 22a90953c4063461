// Package models defines the data exchanged with the computation engine
// and shown by the presentation layers.
package models

import (
	"fmt"

	"github.com/bobmcallan/vire-backtest/internal/common"
)

// MetricKey names one numeric field of a metric bundle.
type MetricKey string

const (
	MetricCAGR         MetricKey = "cagr"
	MetricVolatility   MetricKey = "volatility"
	MetricMDD          MetricKey = "mdd"
	MetricSharpeRatio  MetricKey = "sharpe_ratio"
	MetricSortinoRatio MetricKey = "sortino_ratio"
	MetricBeta         MetricKey = "beta"
	MetricAlpha        MetricKey = "alpha"
)

// MetricKeys lists metrics in display order.
var MetricKeys = []MetricKey{
	MetricCAGR, MetricVolatility, MetricMDD, MetricSharpeRatio, MetricSortinoRatio, MetricBeta, MetricAlpha,
}

var metricLabels = map[MetricKey]string{
	MetricCAGR:         "CAGR",
	MetricVolatility:   "Volatility",
	MetricMDD:          "Max Drawdown",
	MetricSharpeRatio:  "Sharpe",
	MetricSortinoRatio: "Sortino",
	MetricBeta:         "Beta",
	MetricAlpha:        "Alpha",
}

// ParseMetricKey validates a metric key supplied by a caller.
func ParseMetricKey(s string) (MetricKey, error) {
	k := MetricKey(s)
	if _, ok := metricLabels[k]; !ok {
		return "", fmt.Errorf("unknown metric %q", s)
	}
	return k, nil
}

// Label is the column heading for the metric.
func (k MetricKey) Label() string {
	if l, ok := metricLabels[k]; ok {
		return l
	}
	return string(k)
}

// LowerIsBetter reports whether smaller values rank first (drawdown and volatility).
func (k MetricKey) LowerIsBetter() bool {
	return k == MetricMDD || k == MetricVolatility
}

// IsPercent reports whether the metric is a fraction displayed as a percentage.
func (k MetricKey) IsPercent() bool {
	switch k {
	case MetricCAGR, MetricVolatility, MetricMDD, MetricAlpha:
		return true
	}
	return false
}

// Format renders v for display, N/A when missing or non-finite.
func (k MetricKey) Format(v *float64) string {
	if k.IsPercent() {
		return common.FormatPct(v)
	}
	return common.FormatRatio(v)
}

// Metrics is the engine's metric bundle. Beta and alpha are null when no
// benchmark history was available; sharpe and sortino may be non-finite.
type Metrics struct {
	CAGR         *float64 `json:"cagr"`
	Volatility   *float64 `json:"volatility"`
	MDD          *float64 `json:"mdd"`
	SharpeRatio  *float64 `json:"sharpe_ratio"`
	SortinoRatio *float64 `json:"sortino_ratio"`
	Beta         *float64 `json:"beta"`
	Alpha        *float64 `json:"alpha"`
}

// Value returns the field named by key, nil when absent.
func (m Metrics) Value(key MetricKey) *float64 {
	switch key {
	case MetricCAGR:
		return m.CAGR
	case MetricVolatility:
		return m.Volatility
	case MetricMDD:
		return m.MDD
	case MetricSharpeRatio:
		return m.SharpeRatio
	case MetricSortinoRatio:
		return m.SortinoRatio
	case MetricBeta:
		return m.Beta
	case MetricAlpha:
		return m.Alpha
	}
	return nil
}
