package analysis

import (
	"context"
	"time"

	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/pkg/models"
)

type timeoutExtractor struct {
	inner   TextExtractor
	timeout time.Duration
}

// WithTimeout bounds each extraction with its own deadline so a single stuck
// photo cannot hold a batch open indefinitely.
func WithTimeout(e TextExtractor, timeout time.Duration) TextExtractor {
	if timeout <= 0 {
		return e
	}
	return &timeoutExtractor{inner: e, timeout: timeout}
}

func (t *timeoutExtractor) ExtractText(ctx context.Context, res models.ImageResource) (models.TextExtraction, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.ExtractText(ctx, res)
}
