// Package metrics регистрирует счётчики Prometheus для операций
// планировщика сессий и кредитного журнала.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionsBooked количество успешно забронированных сессий.
	SessionsBooked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skillswap_sessions_booked_total",
		Help: "Total number of sessions booked.",
	})

	// SessionsCompleted количество завершённых сессий.
	SessionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skillswap_sessions_completed_total",
		Help: "Total number of sessions completed.",
	})

	// SessionsCancelled количество отменённых сессий.
	SessionsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skillswap_sessions_cancelled_total",
		Help: "Total number of sessions cancelled.",
	})

	// TransactionsRecorded количество записей журнала кредитов по видам.
	TransactionsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_credit_transactions_total",
		Help: "Total number of credit transactions recorded, by kind.",
	}, []string{"kind"})
)
