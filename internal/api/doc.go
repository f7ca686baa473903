// Package api hosts the HTTP server, middleware, and REST handlers. Notable
// routes:
//   - GET /healthz / readyz for Kubernetes probes.
//   - GET /metrics for Prometheus scraping.
//   - POST /v1/reports runs the pipeline synchronously and returns the report.
//   - GET /v1/reports/{report_id} returns a recently produced report.
package api
