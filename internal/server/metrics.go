package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "duitbot_messages_total",
		Help: "Inbound webhook messages by dispatched command.",
	}, []string{"command"})

	deferredErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "duitbot_deferred_errors_total",
		Help: "Deferred ledger operations that failed.",
	})

	sendErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "duitbot_send_errors_total",
		Help: "Proactive message sends that failed.",
	})
)
