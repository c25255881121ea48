package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/binpoll/binpoll-settler/config"
)

const (
	// Chain monitor
	MetricSavedBlock = "saved_block"
	MetricSavedPoll  = "saved_poll"
	MetricMonitorErr = "monitor_error_count"
	// Vote recorder
	MetricRecordedVotes = "recorded_votes"
	MetricRejectedVotes = "rejected_votes"
	// Settlement scheduler
	MetricSettledPolls      = "settled_polls"
	MetricLastSettledPoll   = "last_settled_poll"
	MetricSchedulerDuration = "scheduler_duration"
	MetricSchedulerErr      = "scheduler_error_count"
	MetricStuckPolls        = "stuck_polls"
	// Payout submitter
	MetricPayoutsSubmitted = "payouts_submitted"
	MetricPayoutsConfirmed = "payouts_confirmed"
	MetricSubmitterErr     = "submitter_error_count"
	// Auditor
	MetricAuditMismatches = "audit_mismatches"
	MetricAuditErr        = "auditor_error_count"
)

type MetricService struct {
	MetricsMap map[string]prometheus.Metric
	cfg        *config.Config
}

func NewMetricService(config *config.Config) *MetricService {
	ms := make(map[string]prometheus.Metric, 0)

	// Chain monitor
	savedBlockMetric := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricSavedBlock,
		Help: "Latest scanned block height saved in database",
	})
	ms[MetricSavedBlock] = savedBlockMetric
	prometheus.MustRegister(savedBlockMetric)

	savedPollMetric := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricSavedPoll,
		Help: "Latest mirrored pollId saved in database",
	})
	ms[MetricSavedPoll] = savedPollMetric
	prometheus.MustRegister(savedPollMetric)

	monitorErrMetric := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricMonitorErr,
		Help: "Chain monitor error count",
	})
	ms[MetricMonitorErr] = monitorErrMetric
	prometheus.MustRegister(monitorErrMetric)

	// Vote recorder
	recordedVotesMetric := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricRecordedVotes,
		Help: "Votes accepted by the recorder",
	})
	ms[MetricRecordedVotes] = recordedVotesMetric
	prometheus.MustRegister(recordedVotesMetric)

	rejectedVotesMetric := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricRejectedVotes,
		Help: "Votes rejected by the recorder",
	})
	ms[MetricRejectedVotes] = rejectedVotesMetric
	prometheus.MustRegister(rejectedVotesMetric)

	// Settlement scheduler
	settledPollsMetric := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricSettledPolls,
		Help: "Polls settled by the scheduler",
	})
	ms[MetricSettledPolls] = settledPollsMetric
	prometheus.MustRegister(settledPollsMetric)

	lastSettledPollMetric := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricLastSettledPoll,
		Help: "PollId of the most recently settled poll",
	})
	ms[MetricLastSettledPoll] = lastSettledPollMetric
	prometheus.MustRegister(lastSettledPollMetric)

	schedulerDurationMetric := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: MetricSchedulerDuration,
		Help: "Duration of one settlement scheduler tick",
	})
	ms[MetricSchedulerDuration] = schedulerDurationMetric
	prometheus.MustRegister(schedulerDurationMetric)

	schedulerErrMetric := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricSchedulerErr,
		Help: "Settlement scheduler error count",
	})
	ms[MetricSchedulerErr] = schedulerErrMetric
	prometheus.MustRegister(schedulerErrMetric)

	stuckPollsMetric := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricStuckPolls,
		Help: "Ended polls still unsettled past the stuck threshold",
	})
	ms[MetricStuckPolls] = stuckPollsMetric
	prometheus.MustRegister(stuckPollsMetric)

	// Payout submitter
	payoutsSubmittedMetric := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricPayoutsSubmitted,
		Help: "Payout transactions submitted",
	})
	ms[MetricPayoutsSubmitted] = payoutsSubmittedMetric
	prometheus.MustRegister(payoutsSubmittedMetric)

	payoutsConfirmedMetric := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricPayoutsConfirmed,
		Help: "Payout transactions confirmed on chain",
	})
	ms[MetricPayoutsConfirmed] = payoutsConfirmedMetric
	prometheus.MustRegister(payoutsConfirmedMetric)

	submitterErrMetric := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricSubmitterErr,
		Help: "Payout submitter error count",
	})
	ms[MetricSubmitterErr] = submitterErrMetric
	prometheus.MustRegister(submitterErrMetric)

	// Auditor
	auditMismatchMetric := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricAuditMismatches,
		Help: "Fund conservation mismatches found by the auditor",
	})
	ms[MetricAuditMismatches] = auditMismatchMetric
	prometheus.MustRegister(auditMismatchMetric)

	auditErrMetric := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricAuditErr,
		Help: "Auditor error count",
	})
	ms[MetricAuditErr] = auditErrMetric
	prometheus.MustRegister(auditErrMetric)

	return &MetricService{
		MetricsMap: ms,
		cfg:        config,
	}
}

func (m *MetricService) Start() {
	http.Handle("/metrics", promhttp.Handler())
	err := http.ListenAndServe(fmt.Sprintf(":%d", m.cfg.MetricsConfig.Port), nil)
	if err != nil {
		panic(err)
	}
}

// Chain monitor
func (m *MetricService) SetSavedBlock(height uint64) {
	m.MetricsMap[MetricSavedBlock].(prometheus.Gauge).Set(float64(height))
}

func (m *MetricService) SetSavedPoll(pollId uint64) {
	m.MetricsMap[MetricSavedPoll].(prometheus.Gauge).Set(float64(pollId))
}

func (m *MetricService) IncMonitorErr() {
	m.MetricsMap[MetricMonitorErr].(prometheus.Counter).Inc()
}

// Vote recorder
func (m *MetricService) IncRecordedVote() {
	m.MetricsMap[MetricRecordedVotes].(prometheus.Counter).Inc()
}

func (m *MetricService) IncRejectedVote() {
	m.MetricsMap[MetricRejectedVotes].(prometheus.Counter).Inc()
}

// Settlement scheduler
func (m *MetricService) IncSettledPoll() {
	m.MetricsMap[MetricSettledPolls].(prometheus.Counter).Inc()
}

func (m *MetricService) SetLastSettledPoll(pollId uint64) {
	m.MetricsMap[MetricLastSettledPoll].(prometheus.Gauge).Set(float64(pollId))
}

func (m *MetricService) SetSchedulerDuration(duration time.Duration) {
	m.MetricsMap[MetricSchedulerDuration].(prometheus.Histogram).Observe(duration.Seconds())
}

func (m *MetricService) IncSchedulerErr() {
	m.MetricsMap[MetricSchedulerErr].(prometheus.Counter).Inc()
}

func (m *MetricService) SetStuckPolls(count int64) {
	m.MetricsMap[MetricStuckPolls].(prometheus.Gauge).Set(float64(count))
}

// Payout submitter
func (m *MetricService) IncPayoutSubmitted() {
	m.MetricsMap[MetricPayoutsSubmitted].(prometheus.Counter).Inc()
}

func (m *MetricService) IncPayoutConfirmed() {
	m.MetricsMap[MetricPayoutsConfirmed].(prometheus.Counter).Inc()
}

func (m *MetricService) IncSubmitterErr() {
	m.MetricsMap[MetricSubmitterErr].(prometheus.Counter).Inc()
}

// Auditor
func (m *MetricService) IncAuditMismatch() {
	m.MetricsMap[MetricAuditMismatches].(prometheus.Counter).Inc()
}

func (m *MetricService) IncAuditErr() {
	m.MetricsMap[MetricAuditErr].(prometheus.Counter).Inc()
}
