package aggregate

import (
	"sync"
	"time"

	"github.com/hamed0406/uptimeboard/internal/domain"
)

// Input is one target together with its full sample history.
type Input struct {
	Target  domain.Target
	Samples []domain.Sample
}

// All aggregates every input against the same reference time using at most
// workers goroutines. Results keep the input order.
func All(inputs []Input, now time.Time, cfg Config, workers int) []domain.Summary {
	out := make([]domain.Summary, len(inputs))
	if len(inputs) == 0 {
		return out
	}
	if workers < 1 {
		workers = 1
	}
	cfg = cfg.Normalize()

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := range inputs {
		sem <- struct{}{}
		wg.Add(1)
		go func(i int) {
			defer func() { <-sem }()
			defer wg.Done()
			out[i] = Aggregate(inputs[i].Target, inputs[i].Samples, now, cfg)
		}(i)
	}
	wg.Wait()
	return out
}
