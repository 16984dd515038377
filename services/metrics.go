package services

import (
	"context"
	"time"

	"storefront-service/common/logger"

	"go.uber.org/zap"
)

// MetricsRecorder is the subset of the CloudWatch metrics client the services use.
type MetricsRecorder interface {
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
	RecordValue(ctx context.Context, metricName string, value float64, dimensions map[string]string) error
}

// recordCount sends a counter without blocking the caller.
func recordCount(m MetricsRecorder, name string, dims map[string]string) {
	if m == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.RecordCount(ctx, name, dims); err != nil {
			logger.Log.Debug("metric not recorded", zap.String("metric", name), zap.Error(err))
		}
	}()
}

func recordValue(m MetricsRecorder, name string, value float64, dims map[string]string) {
	if m == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.RecordValue(ctx, name, value, dims); err != nil {
			logger.Log.Debug("metric not recorded", zap.String("metric", name), zap.Error(err))
		}
	}()
}
