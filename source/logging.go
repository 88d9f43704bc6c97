package source

import (
	"context"
	"time"

	"github.com/go-kit/log"

	"go-currency-converter/domain"
)

// loggingSource decorates a Source with logging
type loggingSource struct {
	next   Source
	logger log.Logger
}

// NewLoggingSource return a new logging source
func NewLoggingSource(logger log.Logger, s Source) Source {
	return &loggingSource{
		next:   s,
		logger: logger,
	}
}

func (s *loggingSource) Quotes(ctx context.Context) (quotes []domain.Quote, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "quotes",
			"quotes", len(quotes),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Quotes(ctx)
}
