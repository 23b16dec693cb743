/*
Package monitoring exports pipeline and HTTP metrics to Prometheus.

Metrics implements automator.Observer, so one collector can be handed to an
automator (or a chain) and to the gin router at the same time:

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	qa := automator.New("service", automator.WithObserver(metrics))
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
