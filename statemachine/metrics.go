package statemachine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric definitions. Machines with the same name share series.
var (
	// hooksTotal counts lifecycle hooks delivered, by machine, hook and state.
	hooksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statemachine_hooks_total",
		Help: "Total number of lifecycle hooks delivered by machine, hook, and state",
	}, []string{"machine", "hook", "state"})

	// transitionsTotal counts stack changes applied, by kind.
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statemachine_transitions_total",
		Help: "Total number of applied stack transitions by machine and kind",
	}, []string{"machine", "kind"})

	// droppedRequestsTotal counts stack changes ignored because the machine was not running.
	droppedRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statemachine_dropped_requests_total",
		Help: "Total number of stack transitions ignored because the machine was not running",
	}, []string{"machine", "kind"})

	// eventsTotal counts events delivered to the active state.
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statemachine_events_total",
		Help: "Total number of events delivered to the active state by machine and event",
	}, []string{"machine", "event"})

	// stackDepth is the stack depth after the last change.
	stackDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "statemachine_stack_depth",
		Help: "Number of frames on the state stack after the last change",
	}, []string{"machine"})

	// handlerDuration tracks time spent inside Update and Trigger of the active state.
	handlerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "statemachine_handler_duration_seconds",
		Help:    "Duration of Update and Trigger calls on the active state",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"machine", "handler"})
)
