// Package telemetry exports Prometheus metrics for pipelines and training.
package telemetry

import (
	"fmt"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SamplesTransformed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dn3",
		Name:      "samples_transformed_total",
		Help:      "Samples passed through a transform pipeline.",
	})
	TransformErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dn3",
		Name:      "transform_errors_total",
		Help:      "Samples rejected by a transform pipeline.",
	})
	BatchesAugmented = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dn3",
		Name:      "batches_augmented_total",
		Help:      "Batches passed through a batch-level transform such as mixup.",
	})
	TrainingLoss = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "dn3",
		Name:      "training_loss",
		Help:      "Mean training loss of the last completed epoch.",
	})
)

// Expose serves /metrics on port in the background. Listen errors are
// logged.
func Expose(port int) {
	go func() {
		if err := serve(fmt.Sprintf(":%d", port)); err != nil {
			log.Printf("metrics endpoint on :%d stopped: %v", port, err)
		}
	}()
}

func serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
