package kieli

import (
	"context"
	"sync"
)

// parallelThreshold is the minimum batch size worth fanning out.
const parallelThreshold = 4

// translateParallel translates paragraphs with a bounded worker pool,
// preserving input order. The first failure cancels the remaining work
// and fails the whole batch, so the all-or-nothing contract holds: no
// partial result ever escapes.
func (t *Translator) translateParallel(ctx context.Context, paragraphs []string, sourceLang, targetLang string) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := t.parallelism
	if workers > len(paragraphs) {
		workers = len(paragraphs)
	}

	translations := make([]string, len(paragraphs))
	indexes := make(chan int)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				out, err := t.provider.Translate(ctx, paragraphs[i], sourceLang, targetLang)
				if err != nil {
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
					return
				}
				translations[i] = out
			}
		}()
	}

	for i := range paragraphs {
		select {
		case indexes <- i:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(indexes)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return translations, nil
}
