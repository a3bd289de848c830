package embed

import (
	"context"
	"fmt"
	"time"
)

// BatchProgress reports embedding progress for real-time feedback.
type BatchProgress struct {
	BatchIndex      int // Current batch number (1-indexed)
	TotalBatches    int // Total number of batches
	ProcessedChunks int // Number of chunks processed so far
	TotalChunks     int // Total number of chunks to process
}

// retryBackoff is the exponential backoff schedule for ProviderError
// retries: up to 3 retries after the first attempt (4 attempts in all),
// waiting 200ms, 400ms, 800ms before each retry.
var retryBackoff = []time.Duration{200 * time.Millisecond, 400 * time.Millisecond, 800 * time.Millisecond}

// embedWithRetry calls provider.Embed, retrying on error per retryBackoff
// before surfacing a ProviderError-shaped failure to the caller.
func embedWithRetry(ctx context.Context, provider Provider, texts []string) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= len(retryBackoff); attempt++ {
		vecs, err := provider.Embed(ctx, texts)
		if err == nil {
			return vecs, nil
		}
		lastErr = err

		if attempt == len(retryBackoff) {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryBackoff[attempt]):
		}
	}
	return nil, fmt.Errorf("embed: provider failed after %d attempts: %w", len(retryBackoff)+1, lastErr)
}

// EmbedBounded embeds texts as a bounded fan-out of concurrent batch calls:
// a semaphore of size maxInFlight gates how many Embed calls are in flight
// at once. There is no shared mutable buffer; each task returns its
// vectors and the coordinator assembles the batch.
func EmbedBounded(
	ctx context.Context,
	provider Provider,
	texts []string,
	batchSize int,
	maxInFlight int,
	progressCh chan<- BatchProgress,
) ([][]float32, error) {
	total := len(texts)
	if total == 0 {
		return [][]float32{}, nil
	}
	if batchSize <= 0 {
		batchSize = total
	}
	if maxInFlight <= 0 {
		maxInFlight = 1
	}

	numBatches := (total + batchSize - 1) / batchSize
	results := make([][]float32, total)
	errs := make([]error, numBatches)

	sem := make(chan struct{}, maxInFlight)
	done := make(chan int, numBatches)

	for b := 0; b < numBatches; b++ {
		start := b * batchSize
		end := start + batchSize
		if end > total {
			end = total
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		go func(batchIdx, start, end int) {
			defer func() { <-sem }()

			vecs, err := embedWithRetry(ctx, provider, texts[start:end])
			if err != nil {
				errs[batchIdx] = fmt.Errorf("batch %d/%d failed: %w", batchIdx+1, numBatches, err)
				done <- batchIdx
				return
			}
			for i, v := range vecs {
				results[start+i] = v
			}
			done <- batchIdx
		}(b, start, end)
	}

	processed := 0
	for i := 0; i < numBatches; i++ {
		batchIdx := <-done
		if errs[batchIdx] != nil {
			return nil, errs[batchIdx]
		}
		size := batchSize
		if rest := total - batchIdx*batchSize; rest < size {
			size = rest
		}
		processed += size
		if progressCh != nil {
			progressCh <- BatchProgress{
				BatchIndex:      batchIdx + 1,
				TotalBatches:    numBatches,
				ProcessedChunks: processed,
				TotalChunks:     total,
			}
		}
	}

	return results, nil
}
