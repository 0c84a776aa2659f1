package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// InitMetrics builds the Prometheus HTTP instrumentation for the service.
// Each call uses its own registry so servers created side by side (tests)
// never collide on collector registration.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return fiberprometheus.NewWithRegistry(registry, serviceName, "http", "", nil)
}

// MetricsMiddleware records request counts, durations and in-flight requests.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
