// Package metrics records sync engine metrics.
//
// Components take a Recorder and default to NoopRecorder, so metrics are
// optional everywhere. PrometheusRecorder backs the interface with
// client_golang collectors and HTTPHandler/Serve expose them when a
// metrics address is configured.
package metrics
