package datasets

import (
	"context"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Completion is the result of loading one source. Exactly one of the table
// fields is populated, matching Kind.
type Completion struct {
	Kind      Kind
	Location  string
	Report    ParseReport
	Err       error
	Centroids []Centroid
	Emissions []CountryEmissions
	Disasters []DisasterRecord
	Suffering SufferingTable
}

// Decode parses r as the table for kind.
func Decode(kind Kind, r io.Reader) Completion {
	c := Completion{Kind: kind}
	switch kind {
	case KindCentroids:
		c.Centroids, c.Report, c.Err = ParseCentroids(r)
	case KindEmissions:
		c.Emissions, c.Report, c.Err = ParseEmissions(r)
	case KindDisasters:
		c.Disasters, c.Report, c.Err = ParseDisasters(r)
	case KindSuffering:
		c.Suffering, c.Report, c.Err = ParseSuffering(r)
	}
	return c
}

type Source struct {
	Kind     Kind
	Location string
}

// Opener opens a dataset location for reading.
type Opener interface {
	Open(ctx context.Context, location, label string) (io.ReadCloser, error)
}

type Loader struct {
	opener Opener
}

func NewLoader(opener Opener) *Loader {
	return &Loader{opener: opener}
}

// Load fetches every source concurrently and sends one Completion per
// source, in whatever order they finish. The channel is closed once all
// sources have reported or ctx is cancelled.
func (l *Loader) Load(ctx context.Context, sources []Source) <-chan Completion {
	out := make(chan Completion, len(sources))
	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			c := l.loadOne(ctx, src)
			select {
			case out <- c:
			case <-ctx.Done():
			}
		}(src)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

func (l *Loader) loadOne(ctx context.Context, src Source) Completion {
	rc, err := l.opener.Open(ctx, src.Location, src.Kind.String())
	if err != nil {
		return Completion{Kind: src.Kind, Location: src.Location, Err: err}
	}
	defer func() {
		if err := rc.Close(); err != nil {
			zap.S().Warnw("error closing dataset", "dataset", src.Kind.String(), "error", err)
		}
	}()

	c := Decode(src.Kind, rc)
	c.Location = src.Location
	return c
}
