package vcbanner

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// Summary collects the result of each region in configured order
type Summary struct {
	Results  []Result
	Prepared *Prepared
}

func (s *Summary) filter(f func(Result) bool) []Result {
	var results []Result
	for _, r := range s.Results {
		if f(r) {
			results = append(results, r)
		}
	}
	return results
}

// Built returns the regions that were built
func (s *Summary) Built() []Result {
	return s.filter(func(r Result) bool { return r.Err == nil })
}

// Skipped returns the regions that had no template
func (s *Summary) Skipped() []Result {
	return s.filter(func(r Result) bool { return r.Skipped() })
}

// Failed returns the regions that could not be built
func (s *Summary) Failed() []Result {
	return s.filter(func(r Result) bool { return r.Err != nil && !r.Skipped() })
}

// Err returns the errors of any failed regions joined together
func (s *Summary) Err() error {
	var errs []error
	for _, r := range s.Failed() {
		errs = append(errs, r.Err)
	}
	return errors.Join(errs...)
}

type job struct {
	index  int
	region Region
}

func (p *Patcher) jobs(ctx context.Context) <-chan job {
	out := make(chan job)
	go func() {
		defer close(out)
		for i, r := range p.config.Regions {
			select {
			case out <- job{i, r}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Build prepares the input once and then builds every configured region
// using a bounded pool of workers. A region failing doesn't stop the
// others; only a failure to prepare the input or ctx being cancelled
// returns an error.
func (p *Patcher) Build(ctx context.Context, in Input) (*Summary, error) {
	prepared, err := p.Prepare(in)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Results:  make([]Result, len(p.config.Regions)),
		Prepared: prepared,
	}

	workers := p.config.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	g := new(errgroup.Group)
	g.SetLimit(workers)

	for j := range p.jobs(ctx) {
		j := j
		g.Go(func() error {
			summary.Results[j.index] = p.BuildRegion(ctx, j.region, prepared)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}

	if err := ctx.Err(); err != nil {
		for i, r := range p.config.Regions {
			if summary.Results[i].Region.Code == "" {
				summary.Results[i] = Result{Region: r, Err: &RegionError{Region: r.Code, Err: err}}
			}
		}
		return summary, err
	}

	return summary, nil
}
