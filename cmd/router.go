package main

import (
	"net/http"

	"github.com/angeloszaimis/status-checker/internal/metrics"
)

func setupRouter(metricsCollector *metrics.Collector) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/metrics", metricsCollector.Handler())
	mux.Handle("/metrics/prometheus", metricsCollector.PrometheusHandler())

	return mux
}
