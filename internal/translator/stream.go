package translator

import (
	"context"
	"iter"
)

// Result is one translated input.
type Result struct {
	// Index is the position of the source sentence in the caller's input slice.
	Index int
	Text  string
}

type batchFunc func(ctx context.Context, texts []string) ([]string, error)

// Stream is a lazy, single-pass sequence of results. Each batch is computed
// when the previous one has been consumed. A failure ends the stream; results
// of the failed batch are never yielded.
//
//	s := tr.Predict(ctx, inputs)
//	for s.Next() {
//		r := s.Result()
//		...
//	}
//	if err := s.Err(); err != nil { ... }
type Stream struct {
	ctx     context.Context
	run     batchFunc
	inputs  []string
	batches [][]int
	next    int

	buf []Result
	cur Result
	err error
}

func newStream(ctx context.Context, run batchFunc, inputs []string, batches [][]int) *Stream {
	return &Stream{ctx: ctx, run: run, inputs: inputs, batches: batches}
}

// Next advances to the next result, running the next batch when needed.
func (s *Stream) Next() bool {
	for len(s.buf) == 0 {
		if s.err != nil || s.next >= len(s.batches) {
			return false
		}
		if err := s.ctx.Err(); err != nil {
			s.err = err
			return false
		}
		batch := s.batches[s.next]
		s.next++
		texts := make([]string, len(batch))
		for i, idx := range batch {
			texts[i] = s.inputs[idx]
		}
		out, err := s.run(s.ctx, texts)
		if err != nil {
			s.err = err
			return false
		}
		s.buf = make([]Result, len(batch))
		for i, idx := range batch {
			s.buf[i] = Result{Index: idx, Text: out[i]}
		}
	}
	s.cur = s.buf[0]
	s.buf = s.buf[1:]
	return true
}

// Result returns the current result. Valid after Next returned true.
func (s *Stream) Result() Result { return s.cur }

// Err returns the error that ended the stream, if any.
func (s *Stream) Err() error { return s.err }

// All adapts the stream to a range-over-func sequence. The error, if any, is
// yielded once as the last element.
func (s *Stream) All() iter.Seq2[Result, error] {
	return func(yield func(Result, error) bool) {
		for s.Next() {
			if !yield(s.Result(), nil) {
				return
			}
		}
		if s.err != nil {
			yield(Result{}, s.err)
		}
	}
}

// Collect drains the stream.
func (s *Stream) Collect() ([]Result, error) {
	var out []Result
	for s.Next() {
		out = append(out, s.Result())
	}
	return out, s.err
}

// Texts drains the stream and returns the texts in stream order.
func (s *Stream) Texts() ([]string, error) {
	rs, err := s.Collect()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Text
	}
	return out, nil
}
