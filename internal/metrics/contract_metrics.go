package metrics

import (
	"github.com/Dhoini/licensing-backend/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Payment kinds used as metric labels
const (
	PaymentKindFull       = "full"
	PaymentKindInstalment = "instalment"
)

// ContractMetrics records contract and payment activity
type ContractMetrics interface {
	IncContractCreated()
	IncContractFulfilled()
	IncPaymentRecorded(kind string)
	ObservePaymentAmount(amount float64, kind string)
}

type contractMetrics struct {
	log                *logger.Logger
	contractsCreated   prometheus.Counter
	contractsFulfilled prometheus.Counter
	paymentsRecorded   *prometheus.CounterVec
	paymentAmount      *prometheus.HistogramVec
}

// NewContractMetrics creates new contract metrics on the given registry
func NewContractMetrics(registry *prometheus.Registry, log *logger.Logger) ContractMetrics {
	contractsCreated := promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "contracts_created_total",
			Help: "The total number of created contracts",
		},
	)

	contractsFulfilled := promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "contracts_fulfilled_total",
			Help: "The total number of contracts whose full price was collected",
		},
	)

	paymentsRecorded := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "contract_payments_total",
			Help: "The total number of recorded payments by kind",
		},
		[]string{"kind"},
	)

	paymentAmount := promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contract_payment_amount",
			Help:    "Payment amounts distribution",
			Buckets: prometheus.ExponentialBuckets(10, 10, 5), // 10, 100, 1000, 10000, 100000
		},
		[]string{"kind"},
	)

	return &contractMetrics{
		log:                log,
		contractsCreated:   contractsCreated,
		contractsFulfilled: contractsFulfilled,
		paymentsRecorded:   paymentsRecorded,
		paymentAmount:      paymentAmount,
	}
}

// IncContractCreated increments the created contracts counter
func (m *contractMetrics) IncContractCreated() {
	m.contractsCreated.Inc()
}

// IncContractFulfilled increments the fulfilled contracts counter
func (m *contractMetrics) IncContractFulfilled() {
	m.contractsFulfilled.Inc()
}

// IncPaymentRecorded increments the payments counter for a kind
func (m *contractMetrics) IncPaymentRecorded(kind string) {
	m.paymentsRecorded.WithLabelValues(kind).Inc()
}

// ObservePaymentAmount records a payment amount
func (m *contractMetrics) ObservePaymentAmount(amount float64, kind string) {
	m.paymentAmount.WithLabelValues(kind).Observe(amount)
}
