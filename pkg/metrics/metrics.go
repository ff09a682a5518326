// Package metrics 提供基于Prometheus的业务指标收集
//
// 核心概念：
// 1. Counter（计数器）：只增不减的累计值（如状态流转次数、库存变动次数）
// 2. Gauge（仪表盘）：可增可减的瞬时值（如在途调拨单数量）
// 3. Histogram（直方图）：观测值的分布（如状态流转耗时，自动计算P50/P90/P99）
//
// 指标设计：
//   - requisition_transitions_total{transition, outcome}
//     申领单状态流转次数（approve/reject/deliver/cancel_dispatch，成功/失败）
//   - stock_movements_total{kind, location}
//     库存台账写入次数（add/subtract/set，warehouse/facility）
//   - transition_duration_seconds{transition}
//     单次状态流转（含事务）的耗时分布
//
// 使用示例：
//
//	defer metrics.ObserveTransition("approve", time.Now())
//	...
//	metrics.RecordTransition("approve", err == nil)
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// requisitionTransitions 申领单状态流转计数
	requisitionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medsupply",
			Name:      "requisition_transitions_total",
			Help:      "申领单状态流转次数（按流转类型与结果区分）",
		},
		[]string{"transition", "outcome"},
	)

	// stockMovements 库存台账写入计数
	stockMovements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medsupply",
			Name:      "stock_movements_total",
			Help:      "库存台账写入次数（按变动类型与库存层级区分）",
		},
		[]string{"kind", "location"},
	)

	// dispatchesInTransit 在途调拨单数量
	dispatchesInTransit = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "medsupply",
			Name:      "dispatches_in_transit",
			Help:      "当前状态为in_transit的调拨单数量",
		},
	)

	// transitionDuration 状态流转耗时分布
	transitionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "medsupply",
			Name:      "transition_duration_seconds",
			Help:      "申领单状态流转耗时（含数据库事务）",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"transition"},
	)
)

// RecordTransition 记录一次状态流转结果
func RecordTransition(transition string, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	requisitionTransitions.WithLabelValues(transition, outcome).Inc()
}

// RecordStockMovement 记录一次库存台账写入
// location: "warehouse"（中心仓库）或 "facility"（机构库存）
func RecordStockMovement(kind, location string) {
	stockMovements.WithLabelValues(kind, location).Inc()
}

// IncDispatchesInTransit 调拨单发出（in_transit +1）
func IncDispatchesInTransit() {
	dispatchesInTransit.Inc()
}

// DecDispatchesInTransit 调拨单送达或取消（in_transit -1）
func DecDispatchesInTransit() {
	dispatchesInTransit.Dec()
}

// ObserveTransition 记录一次状态流转耗时
// 用法：defer metrics.ObserveTransition("approve", time.Now())
func ObserveTransition(transition string, start time.Time) {
	transitionDuration.WithLabelValues(transition).Observe(time.Since(start).Seconds())
}
