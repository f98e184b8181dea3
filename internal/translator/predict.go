package translator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// OfflineBatchSize is the chunk size used by PredictOffline.
const OfflineBatchSize = 32

// Predict translates inputs as a single padded batch. Results come back in
// input order. Nothing is computed until the first call to Stream.Next.
func (t *Translator) Predict(ctx context.Context, inputs []string) *Stream {
	order := make([]int, len(inputs))
	for i := range order {
		order[i] = i
	}
	var batches [][]int
	if len(order) > 0 {
		batches = [][]int{order}
	}
	return newStream(ctx, t.runBatch, inputs, batches)
}

// PredictOffline translates inputs in chunks of OfflineBatchSize after a
// stable sort by length (in characters). Each chunk is encoded, generated and
// decoded before the next one starts.
//
// Results are streamed in length-sorted order, not input order. Every Result
// carries the input Index so callers can restore the original order.
func (t *Translator) PredictOffline(ctx context.Context, inputs []string) *Stream {
	return newStream(ctx, t.runBatch, inputs, offlineBatches(inputs, OfflineBatchSize))
}

// offlineBatches returns input indexes sorted by length and split into chunks.
func offlineBatches(inputs []string, size int) [][]int {
	order := make([]int, len(inputs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return utf8.RuneCountInString(inputs[order[a]]) < utf8.RuneCountInString(inputs[order[b]])
	})
	var batches [][]int
	for len(order) > 0 {
		n := min(size, len(order))
		batches = append(batches, order[:n:n])
		order = order[n:]
	}
	return batches
}

// runBatch performs encode -> generate -> decode for one batch.
func (t *Translator) runBatch(ctx context.Context, texts []string) ([]string, error) {
	start := time.Now()
	ids, err := t.tok.EncodeBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	gen, err := t.model.Generate(ctx, ids, t.control)
	if err != nil {
		return nil, err
	}
	out, err := t.tok.DecodeBatch(ctx, gen, true)
	if err != nil {
		return nil, err
	}
	if len(out) != len(texts) {
		return nil, fmt.Errorf("decode returned %d outputs for %d inputs", len(out), len(texts))
	}
	for i := range out {
		out[i] = strings.TrimSpace(out[i])
	}
	dur := time.Since(start)
	t.log.Debug().Int("size", len(texts)).Dur("dur", dur).Msg("batch generated")
	if t.onBatch != nil {
		t.onBatch(len(texts), dur)
	}
	return out, nil
}
