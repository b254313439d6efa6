package metrics

import "github.com/prometheus/client_golang/prometheus"

// register adds the collector to the default registry so it shows up on
// /metrics. A collector already registered under the same descriptor is
// reused, so repeated container builds stay safe.
func register[C prometheus.Collector](c C) C {
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(C)
		}
		panic(err)
	}
	return c
}

// NewNotificationsSentTotal returns a Prometheus counter for courier notifications delivered
func NewNotificationsSentTotal() prometheus.Counter {
	return register(prometheus.NewCounter(prometheus.CounterOpts{
		Name: "courier_notifications_sent_total",
		Help: "Total number of courier notifications delivered",
	}))
}

// NewNotificationsFailedTotal returns a Prometheus counter for courier notification send failures
func NewNotificationsFailedTotal() prometheus.Counter {
	return register(prometheus.NewCounter(prometheus.CounterOpts{
		Name: "courier_notifications_failed_total",
		Help: "Total number of courier notification send failures",
	}))
}

// NewAcceptConflictsTotal returns a Prometheus counter for lost acceptance races
func NewAcceptConflictsTotal() prometheus.Counter {
	return register(prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_accept_conflicts_total",
		Help: "Total number of accept attempts that lost the acceptance race",
	}))
}

// NewDispatchSubmittedTotal returns a Prometheus counter for tasks submitted to the dispatch loop
func NewDispatchSubmittedTotal() prometheus.Counter {
	return register(prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_tasks_submitted_total",
		Help: "Total number of tasks submitted to the dispatch loop",
	}))
}

// NewDispatchTimeoutsTotal returns a Prometheus counter for dispatch waits that exceeded their bound
func NewDispatchTimeoutsTotal() prometheus.Counter {
	return register(prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_wait_timeouts_total",
		Help: "Total number of dispatch result waits that timed out",
	}))
}

// NewDispatchQueueDepth returns a Prometheus gauge for the dispatch loop queue depth
func NewDispatchQueueDepth() prometheus.Gauge {
	return register(prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dispatch_queue_depth",
		Help: "Current number of tasks waiting in the dispatch loop queue",
	}))
}
