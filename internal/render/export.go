package render

import (
	"context"
	"errors"

	"github.com/san-kum/heatwire/internal/heat"
)

// Export renders every stride-th snapshot of history, always including the
// last one, and closes enc. Snapshots are read strictly by ascending index.
func Export(ctx context.Context, history heat.History, r *Renderer, enc Encoder, stride int) (int, error) {
	if stride < 1 {
		stride = 1
	}
	frames := 0
	for _, k := range FrameIndices(history.Len(), stride) {
		if err := ctx.Err(); err != nil {
			return frames, errors.Join(err, enc.Close())
		}
		img, err := r.Frame(k, history[k])
		if err != nil {
			return frames, errors.Join(err, enc.Close())
		}
		if err := enc.AddFrame(img); err != nil {
			return frames, errors.Join(err, enc.Close())
		}
		frames++
	}
	return frames, enc.Close()
}

// FrameIndices lists 0, stride, 2*stride, ... plus n-1 if it was skipped.
func FrameIndices(n, stride int) []int {
	if n <= 0 {
		return nil
	}
	if stride < 1 {
		stride = 1
	}
	idx := make([]int, 0, n/stride+2)
	for k := 0; k < n; k += stride {
		idx = append(idx, k)
	}
	if idx[len(idx)-1] != n-1 {
		idx = append(idx, n-1)
	}
	return idx
}
