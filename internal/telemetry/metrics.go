package telemetry

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yelpcamp_sessions_created_total",
		Help: "Sessions created for first-time or expired clients.",
	})

	SessionsTouched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yelpcamp_sessions_touched_total",
		Help: "Session touch operations on request load.",
	})

	LoginsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yelpcamp_logins_completed_total",
		Help: "Federated logins that resolved to a principal.",
	})

	LoginsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yelpcamp_logins_rejected_total",
		Help: "Federated logins rejected before a principal was bound.",
	}, []string{"reason"})
)

// Handler exposes the metrics endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
