// Logic related to stats handling: reporting live counts such as
// session and broadcast totals over expvar and Prometheus.
// The expvar updates happen in a separate go routine to avoid
// locking on main logic routines.

package main

import (
	"expvar"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/isomorphiccat/kemotown/server/logs"
)

var (
	liveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kemotown_live_sessions",
		Help: "Number of open live-stream connections.",
	})
	liveBroadcasts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kemotown_live_broadcasts_total",
		Help: "Number of broadcasts routed through the hub.",
	})
	activitiesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kemotown_activities_created_total",
		Help: "Number of activities persisted.",
	})
	inboxDeliveries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kemotown_inbox_deliveries_total",
		Help: "Number of notification records fanned out.",
	})
	permissionDenials = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kemotown_permission_denials_total",
		Help: "Number of denied permission checks.",
	})
)

type varUpdate struct {
	// Name of the variable to update.
	varname string
	// Integer value to publish.
	count int64
	// Treat the count as an increment as opposite to the final value.
	inc bool
}

// Initialize stats reporting through expvar and Prometheus.
func statsInit(mux *http.ServeMux, path string) {
	if path == "" || path == "-" {
		return
	}

	mux.Handle(path, expvar.Handler())
	mux.Handle("/metrics", promhttp.Handler())
	globals.statsUpdate = make(chan *varUpdate, 1024)

	start := time.Now()
	expvar.Publish("Uptime", expvar.Func(func() any {
		return time.Since(start).Seconds()
	}))
	expvar.Publish("NumGoroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	statsRegisterInt("LiveSessionsTotal")
	statsRegisterInt("LiveBroadcastsTotal")
	statsRegisterInt("ActivitiesCreatedTotal")
	statsRegisterInt("InboxDeliveriesTotal")

	go statsUpdater()

	logs.Info.Printf("stats: variables exposed at '%s', prometheus at '/metrics'", path)
}

// Register integer variable. Don't check for initialization.
func statsRegisterInt(name string) {
	expvar.Publish(name, new(expvar.Int))
}

// Async publish int variable.
func statsSet(name string, val int64) {
	if globals.statsUpdate != nil {
		select {
		case globals.statsUpdate <- &varUpdate{name, val, false}:
		default:
		}
	}
}

// Async publish an increment (decrement) to int variable.
func statsInc(name string, val int) {
	if globals.statsUpdate != nil {
		select {
		case globals.statsUpdate <- &varUpdate{name, int64(val), true}:
		default:
		}
	}
}

// Stop publishing stats.
func statsShutdown() {
	if globals.statsUpdate != nil {
		globals.statsUpdate <- nil
	}
}

// The go routine which actually publishes stats updates.
func statsUpdater() {
	for upd := range globals.statsUpdate {
		if upd == nil {
			globals.statsUpdate = nil
			// Don't care to close the channel.
			break
		}

		// Handle var update
		if ev := expvar.Get(upd.varname); ev != nil {
			// Intentional panic if the ev is not *expvar.Int.
			intvar := ev.(*expvar.Int)
			if upd.inc {
				intvar.Add(upd.count)
			} else {
				intvar.Set(upd.count)
			}
		} else {
			panic("stats: update to unknown variable " + upd.varname)
		}
	}

	logs.Info.Println("stats: shutdown")
}
