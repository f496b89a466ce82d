package vectorstore

import (
	"context"
	"time"

	"github.com/rhuss/docsim/pkg/observability"
)

// Instrument wraps a Backend so every call is recorded in the
// docsim_store_* metrics.
func Instrument(b Backend) Backend {
	return &instrumented{next: b}
}

type instrumented struct {
	next Backend
}

func (i *instrumented) observe(op string, start time.Time, err error) {
	name := i.next.Name()
	observability.StoreOperationsTotal.WithLabelValues(name, op, observability.StatusLabel(err)).Inc()
	observability.StoreLatency.WithLabelValues(name, op).Observe(time.Since(start).Seconds())
}

func (i *instrumented) Name() string { return i.next.Name() }

func (i *instrumented) CreateCollection(ctx context.Context, name string, dimensions int) error {
	start := time.Now()
	err := i.next.CreateCollection(ctx, name, dimensions)
	i.observe("create_collection", start, err)
	return err
}

func (i *instrumented) GetCollection(ctx context.Context, name string) (*CollectionInfo, error) {
	start := time.Now()
	info, err := i.next.GetCollection(ctx, name)
	i.observe("get_collection", start, err)
	return info, err
}

func (i *instrumented) DeleteCollection(ctx context.Context, name string) error {
	start := time.Now()
	err := i.next.DeleteCollection(ctx, name)
	i.observe("delete_collection", start, err)
	return err
}

func (i *instrumented) DeleteAll(ctx context.Context, collection string) error {
	start := time.Now()
	err := i.next.DeleteAll(ctx, collection)
	i.observe("delete_all", start, err)
	return err
}

func (i *instrumented) Upsert(ctx context.Context, collection string, points []Point) error {
	start := time.Now()
	err := i.next.Upsert(ctx, collection, points)
	i.observe("upsert", start, err)
	if err == nil {
		observability.DocumentsIndexedTotal.Add(float64(len(points)))
	}
	return err
}

func (i *instrumented) Search(ctx context.Context, collection string, vector []float32, k int) ([]SearchMatch, error) {
	start := time.Now()
	matches, err := i.next.Search(ctx, collection, vector, k)
	i.observe("search", start, err)
	return matches, err
}

func (i *instrumented) Count(ctx context.Context, collection string) (int, error) {
	start := time.Now()
	n, err := i.next.Count(ctx, collection)
	i.observe("count", start, err)
	return n, err
}

func (i *instrumented) HealthCheck(ctx context.Context) error {
	start := time.Now()
	err := i.next.HealthCheck(ctx)
	i.observe("health_check", start, err)
	return err
}

func (i *instrumented) Close() error { return i.next.Close() }
