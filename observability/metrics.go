package observability

import (
	"math"
	"math/big"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// evaluatorMetrics instruments the evaluate/apply pipeline: per-tag
// outcomes, the classified rejection kinds Evaluate returns, and the
// defensive invariant violations an Apply-time panic would surface.
type evaluatorMetrics struct {
	operations          *prometheus.CounterVec
	rejections          *prometheus.CounterVec
	invariantViolations *prometheus.CounterVec
}

// feePipelineMetrics instruments the fee pipeline's charge/accrual steps.
type feePipelineMetrics struct {
	feesChargedCore     *prometheus.CounterVec
	coinSecondsConsumed prometheus.Counter
	cashbackDeposited   prometheus.Counter
	feePoolBalance      *prometheus.GaugeVec
}

var (
	evaluatorMetricsOnce sync.Once
	evaluatorRegistry    *evaluatorMetrics

	feePipelineMetricsOnce sync.Once
	feePipelineRegistry    *feePipelineMetrics
)

// Evaluator returns the lazily-initialised evaluator metrics registry.
func Evaluator() *evaluatorMetrics {
	evaluatorMetricsOnce.Do(func() {
		evaluatorRegistry = &evaluatorMetrics{
			operations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "dposledger",
				Subsystem: "evaluator",
				Name:      "operations_total",
				Help:      "Total operations run through StartEvaluate, segmented by tag and outcome.",
			}, []string{"tag", "outcome"}),
			rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "dposledger",
				Subsystem: "evaluator",
				Name:      "rejections_total",
				Help:      "Evaluate-time rejections segmented by tag and classified error kind.",
			}, []string{"tag", "kind"}),
			invariantViolations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "dposledger",
				Subsystem: "evaluator",
				Name:      "invariant_violations_total",
				Help:      "Defensive invariant checks that fired inside Apply, segmented by check name. Any non-zero value is a programmer bug.",
			}, []string{"check"}),
		}
		prometheus.MustRegister(
			evaluatorRegistry.operations,
			evaluatorRegistry.rejections,
			evaluatorRegistry.invariantViolations,
		)
	})
	return evaluatorRegistry
}

// RecordOperation records the outcome of one StartEvaluate call for tag. An
// empty kind records "accepted"; a non-empty kind records "rejected" and
// also increments the rejections counter keyed by kind.
func (m *evaluatorMetrics) RecordOperation(tag string, kind string) {
	if m == nil {
		return
	}
	tag = labelOrUnknown(tag)
	if kind == "" {
		m.operations.WithLabelValues(tag, "accepted").Inc()
		return
	}
	m.operations.WithLabelValues(tag, "rejected").Inc()
	m.rejections.WithLabelValues(tag, kind).Inc()
}

// RecordInvariantViolation increments the invariant-violation counter for
// check. StartEvaluate passes the violating error's Kind, so every
// Apply-time violation it records shares one label (KindInvariantViolation).
func (m *evaluatorMetrics) RecordInvariantViolation(check string) {
	if m == nil {
		return
	}
	m.invariantViolations.WithLabelValues(labelOrUnknown(check)).Inc()
}

// FeePipeline returns the lazily-initialised fee pipeline metrics registry.
func FeePipeline() *feePipelineMetrics {
	feePipelineMetricsOnce.Do(func() {
		feePipelineRegistry = &feePipelineMetrics{
			feesChargedCore: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "dposledger",
				Subsystem: "fee_pipeline",
				Name:      "fees_charged_core_total",
				Help:      "Core-equivalent fee amount charged via PayFee/PayFeePreSplitNetwork, segmented by declared fee asset.",
			}, []string{"asset"}),
			coinSecondsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "dposledger",
				Subsystem: "fee_pipeline",
				Name:      "coin_seconds_consumed_total",
				Help:      "Cumulative coin-seconds consumed to cover fee shortfalls.",
			}),
			cashbackDeposited: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "dposledger",
				Subsystem: "fee_pipeline",
				Name:      "cashback_deposited_core_total",
				Help:      "Cumulative core-asset amount folded into cashback vesting deposits.",
			}),
			feePoolBalance: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: "dposledger",
				Subsystem: "fee_pipeline",
				Name:      "fee_pool_balance",
				Help:      "Last observed fee_pool balance for an asset, in core-asset units.",
			}, []string{"asset"}),
		}
		prometheus.MustRegister(
			feePipelineRegistry.feesChargedCore,
			feePipelineRegistry.coinSecondsConsumed,
			feePipelineRegistry.cashbackDeposited,
			feePipelineRegistry.feePoolBalance,
		)
	})
	return feePipelineRegistry
}

// RecordFeeCharged records the core-equivalent amount charged for a fee
// declared in asset.
func (m *feePipelineMetrics) RecordFeeCharged(asset string, coreEquivalent *big.Int) {
	if m == nil {
		return
	}
	m.feesChargedCore.WithLabelValues(labelOrUnknown(asset)).Add(bigToFloat(coreEquivalent))
}

// RecordCoinSecondsConsumed adds amount to the cumulative coin-seconds
// consumption counter.
func (m *feePipelineMetrics) RecordCoinSecondsConsumed(amount *big.Int) {
	if m == nil {
		return
	}
	m.coinSecondsConsumed.Add(bigToFloat(amount))
}

// RecordCashbackDeposited adds amount to the cumulative cashback-deposited
// counter.
func (m *feePipelineMetrics) RecordCashbackDeposited(amount *big.Int) {
	if m == nil {
		return
	}
	m.cashbackDeposited.Add(bigToFloat(amount))
}

// SetFeePoolBalance records asset's current fee_pool reading.
func (m *feePipelineMetrics) SetFeePoolBalance(asset string, balance *big.Int) {
	if m == nil {
		return
	}
	m.feePoolBalance.WithLabelValues(labelOrUnknown(asset)).Set(bigToFloat(balance))
}

func labelOrUnknown(label string) string {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return "unknown"
	}
	return strings.ToUpper(trimmed)
}

func bigToFloat(value *big.Int) float64 {
	if value == nil {
		return 0
	}
	floatVal, acc := new(big.Float).SetInt(value).Float64()
	if acc != big.Exact {
		if math.IsNaN(floatVal) || math.IsInf(floatVal, 0) {
			return 0
		}
	}
	return floatVal
}
