package engine

import (
	"time"

	"github.com/viant/approvalflow/model"
	"github.com/viant/approvalflow/service/assignee"
	"github.com/viant/approvalflow/service/lock"
	"github.com/viant/approvalflow/service/messaging"
	"go.uber.org/zap"
)

// Option configures the engine
type Option func(*Service)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLocker sets the per request locker
func WithLocker(locker lock.Locker) Option {
	return func(s *Service) {
		s.locker = locker
	}
}

// WithResolver sets the assignee resolver
func WithResolver(resolver *assignee.Resolver) Option {
	return func(s *Service) {
		s.resolver = resolver
	}
}

// WithFormValidation toggles form data validation at creation
func WithFormValidation(flag bool) Option {
	return func(s *Service) {
		s.validateForm = flag
	}
}

// WithPublisher sets the event publisher
func WithPublisher(publisher messaging.Publisher[model.Event]) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

// WithMetrics sets the metrics collector
func WithMetrics(metrics *Metrics) Option {
	return func(s *Service) {
		s.metrics = metrics
	}
}

// WithRetry sets how many times a conflicting save is re-applied and the
// initial backoff interval
func WithRetry(maxRetries int, interval time.Duration) Option {
	return func(s *Service) {
		s.maxRetries = maxRetries
		s.retryInterval = interval
	}
}
