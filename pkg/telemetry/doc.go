// Package telemetry provides history observers that export navigation
// activity as Prometheus metrics and OpenTelemetry spans.
//
//	reg := prometheus.NewRegistry()
//	h := history.New(m, backend,
//	    history.WithObserver(telemetry.NewMetrics(telemetry.WithRegistry(reg))),
//	    history.WithObserver(telemetry.NewTracing()),
//	)
package telemetry
