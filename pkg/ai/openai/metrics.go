package openai

import (
	"context"
	"math"

	"meridian/pkg/ai"

	"golang.org/x/sync/semaphore"
)

type semaphoreLock struct {
	sem *semaphore.Weighted
}

func newSemaphoreLock(n int64) *semaphoreLock {
	return &semaphoreLock{sem: semaphore.NewWeighted(n)}
}

func (l *semaphoreLock) Acquire(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

func (l *semaphoreLock) Release() {
	l.sem.Release(1)
}

// ResetMetrics clears all accumulated token and timing metrics to zero.
func (c *Client) ResetMetrics() {
	c.metricsLock.Lock()
	c.metrics = ai.ModelMetrics{}
	c.metricsLock.Unlock()
}

// GetMetrics returns the accumulated token usage and timing metrics since the last reset.
func (c *Client) GetMetrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	return c.metrics
}

func (c *Client) modifyMetrics(m ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics.InputTokens += m.InputTokens
	c.metrics.OutputTokens += m.OutputTokens
	c.metrics.TotalTokens += m.TotalTokens
	c.metrics.DurationMs += m.DurationMs

	if c.metrics.DurationMs > 0 {
		tokensPerSecond := (float64(c.metrics.TotalTokens) * 1000.0) / float64(c.metrics.DurationMs)
		c.metrics.TokenPerSecond = float32(math.Round(tokensPerSecond*100) / 100)
	}
}
