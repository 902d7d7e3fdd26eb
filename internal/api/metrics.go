/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shakespeare/internal/llm"
)

// Metrics owns a private registry so several servers can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	requests     *prometheus.CounterVec
	requestTime  *prometheus.HistogramVec
	generations  *prometheus.CounterVec
	upstream     *prometheus.CounterVec
	upstreamTime *prometheus.HistogramVec
	renders      *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shakespeare_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		requestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shakespeare_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"route"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shakespeare_generations_total",
			Help: "Script generations by outcome.",
		}, []string{"outcome"}),
		upstream: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shakespeare_upstream_calls_total",
			Help: "Search and model calls by step and outcome.",
		}, []string{"step", "outcome"}),
		upstreamTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shakespeare_upstream_duration_seconds",
			Help:    "Duration of search and model calls.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}, []string{"step"}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shakespeare_pdf_renders_total",
			Help: "PDF renders by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.requestTime, m.generations, m.upstream, m.upstreamTime, m.renders,
	)
	return m
}

// ObserveStep has the signature of generate.Step.
func (m *Metrics) ObserveStep(step string, d time.Duration, err error) {
	outcome := "ok"
	var apiErr *llm.APIError
	switch {
	case err == nil:
	case errors.As(err, &apiErr) && apiErr.Unauthorized():
		outcome = "unauthorized"
	default:
		outcome = "error"
	}
	m.upstream.WithLabelValues(step, outcome).Inc()
	m.upstreamTime.WithLabelValues(step).Observe(d.Seconds())
}

func (m *Metrics) observeGeneration(code string) {
	if code == "" {
		code = "ok"
	}
	m.generations.WithLabelValues(code).Inc()
}

func (m *Metrics) observeRender(err error) {
	if err != nil {
		m.renders.WithLabelValues("error").Inc()
		return
	}
	m.renders.WithLabelValues("ok").Inc()
}

func (m *Metrics) observeRequest(method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, http.StatusText(status)).Inc()
	m.requestTime.WithLabelValues(route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Gatherer exposes the registry for tests and embedding.
func (m *Metrics) Gatherer() prometheus.Gatherer { return m.registry }
