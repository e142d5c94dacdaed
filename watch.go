package launchtree

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/launchtree/internal/frontend"
	"github.com/aretw0/launchtree/pkg/serializer"
)

// Update is one result delivered by Watch.
type Update struct {
	Analysis *Analysis `json:"analysis,omitempty"`
	// Diff lists the changes since the previous successful analysis.
	// It is nil for the first one.
	Diff *serializer.Diff `json:"diff,omitempty"`
	Err  error            `json:"-"`
}

// Watch analyzes invocation, then re-analyzes it every time one of the launch files
// it read changes, calling fn with each result. It returns when ctx is done, or with
// an error when nothing can be watched.
func (a *Analyzer) Watch(ctx context.Context, invocation string, debounce time.Duration, fn func(Update)) error {
	var prev *serializer.Node
	var sources []string
	for {
		res, err := a.Analyze(ctx, invocation)
		if ctx.Err() != nil {
			return nil
		}
		u := Update{Analysis: res, Err: err}
		if err == nil {
			if prev != nil {
				u.Diff = serializer.Compare(prev, &res.Tree)
			}
			prev = &res.Tree
			sources = sources[:0]
			for _, s := range res.Sources {
				sources = append(sources, s.Path)
			}
		}
		fn(u)

		if len(sources) == 0 {
			return errors.New("watch: no launch files to watch")
		}
		if err := waitChange(ctx, sources, debounce); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func waitChange(ctx context.Context, paths []string, debounce time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loader := frontend.NewLoader(frontend.WithDebounce(debounce))
	loader.Track(paths...)
	changes, err := loader.Watch(ctx)
	if err != nil {
		return err
	}
	select {
	case <-ctx.Done():
	case <-changes:
	}
	return nil
}
