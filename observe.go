package vecscope

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/vecscope/internal/metrics"
)

// registerMetrics registers the executor collectors on reg. Collectors that
// are already registered there are reused.
func registerMetrics(reg prometheus.Registerer) error {
	for _, c := range metrics.ExecutorCollectors() {
		if err := registerOrReuse(reg, c); err != nil {
			return err
		}
	}
	return nil
}

func registerOrReuse(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if are.ExistingCollector != c {
				return fmt.Errorf("vecscope: metric already registered by another collector: %T", are.ExistingCollector)
			}
			return nil
		}
		return fmt.Errorf("vecscope: register metric: %w", err)
	}
	return nil
}
