/*
Package observability exports validation activity as Prometheus metrics.

Metrics are fed through validator hooks, so any Validator built with
validator.WithHooks(m.Hooks()) reports into the registry m was created with:

	m := observability.NewMetrics(prometheus.DefaultRegisterer)
	v := validator.New(validator.WithHooks(m.Hooks()))
*/
package observability
