package exchange

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"go-currency-converter/domain"
	"go-currency-converter/ratestore"
)

// Metrics collectors recorded by the instrumenting service
type Metrics struct {
	Requests   *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
	TablePairs *prometheus.GaugeVec
}

// NewMetrics registers the converter collectors with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "converter",
				Name:      "requests_total",
				Help:      "Service calls by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		Duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "converter",
				Name:      "request_duration_seconds",
				Help:      "Service call latency",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"method"},
		),
		TablePairs: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "converter",
				Name:      "rate_table_pairs",
				Help:      "Pairs in the active rate table",
			},
			[]string{"kind"},
		),
	}
}

// instrumentingService decorates an exchange.Service with prometheus metrics
type instrumentingService struct {
	metrics *Metrics
	next    Service
}

// NewInstrumentingService returns a new instance of an instrumenting Service
func NewInstrumentingService(metrics *Metrics, s Service) Service {
	return &instrumentingService{
		metrics: metrics,
		next:    s,
	}
}

func (s *instrumentingService) observe(method string, begin time.Time, err error) {
	s.metrics.Requests.WithLabelValues(method, outcome(err)).Inc()
	s.metrics.Duration.WithLabelValues(method).Observe(time.Since(begin).Seconds())
}

func (s *instrumentingService) ClearConfiguration(ctx context.Context) {
	defer s.observe("clear_configuration", time.Now(), nil)
	s.next.ClearConfiguration(ctx)
	s.metrics.TablePairs.WithLabelValues("direct").Set(0)
	s.metrics.TablePairs.WithLabelValues("derived").Set(0)
}

func (s *instrumentingService) UpdateConfiguration(ctx context.Context, quotes []domain.Quote) (table *ratestore.Table, err error) {
	defer func(begin time.Time) {
		s.observe("update_configuration", begin, err)
		if table != nil {
			s.metrics.TablePairs.WithLabelValues("direct").Set(float64(table.Direct))
			s.metrics.TablePairs.WithLabelValues("derived").Set(float64(table.Derived()))
		}
	}(time.Now())
	return s.next.UpdateConfiguration(ctx, quotes)
}

func (s *instrumentingService) Convert(ctx context.Context, amount domain.Amount, from domain.Currency, to domain.Currency) (ex domain.Exchanged, err error) {
	defer func(begin time.Time) {
		s.observe("convert", begin, err)
	}(time.Now())
	return s.next.Convert(ctx, amount, from, to)
}

func (s *instrumentingService) Rates(ctx context.Context) (table *ratestore.Table, err error) {
	defer func(begin time.Time) {
		s.observe("rates", begin, err)
	}(time.Now())
	return s.next.Rates(ctx)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case domain.IsValidation(err):
		return "invalid"
	case errors.Is(err, domain.ErrRateNotFound):
		return "not_found"
	default:
		return "error"
	}
}
