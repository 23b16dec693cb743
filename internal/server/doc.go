/*
Package server exposes a live pipeline over HTTP.

The pipeline is started with RunForever when the server starts and killed
when it shuts down. Submissions go straight onto the entry queue:

	POST /process/:data   enqueue one item
	GET  /output          drain the results produced so far
	GET  /stages          describe the pipeline
	GET  /health          liveness and current run id
	GET  /metrics         Prometheus metrics, when enabled
*/
package server
