// Package syncer makes canonical property batches durable in the flat and
// graph stores and reports per-record outcomes. The two stores share no
// transaction boundary: writes are independent and best-effort, tracked
// per record and per store.
package syncer

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"propsync/models"
)

const defaultWorkers = 4

// FlatStore is the record-oriented store keyed by property id. Broker
// resolution doubles as the availability probe: if it fails, the whole
// Sync call fails.
type FlatStore interface {
	UpsertBroker(ctx context.Context, name, website string) (uuid.UUID, error)
	UpsertProperty(ctx context.Context, p *models.Property, brokerID uuid.UUID) error
}

// GraphStore is the node/relationship store. All three merges must be
// idempotent under repeated calls with identical arguments.
type GraphStore interface {
	MergeBrokerNode(ctx context.Context, id uuid.UUID, meta models.BrokerMeta) error
	MergePropertyNode(ctx context.Context, p *models.Property) error
	MergeListedByEdge(ctx context.Context, propertyID string, brokerID uuid.UUID) error
	Ping(ctx context.Context) error
}

// Engine performs the dual-store upsert for deduplicated batches.
type Engine struct {
	flat    FlatStore
	graph   GraphStore
	workers int
}

func NewEngine(flat FlatStore, graph GraphStore, workers int) *Engine {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Engine{flat: flat, graph: graph, workers: workers}
}

// accumulator collects per-record outcomes from concurrent workers.
// Exactly one outcome is recorded per input record regardless of execution
// order.
type accumulator struct {
	mu        sync.Mutex
	succeeded int
	errors    []models.RecordError
}

func (a *accumulator) success() {
	a.mu.Lock()
	a.succeeded++
	a.mu.Unlock()
}

func (a *accumulator) failure(errs ...models.RecordError) {
	a.mu.Lock()
	a.errors = append(a.errors, errs...)
	a.mu.Unlock()
}

// Sync upserts every property into both stores under the given broker.
// A single record's failure never aborts the batch; only total store
// unavailability (no broker row, no graph connection) returns an error.
// The caller's context is checked before each record's writes begin;
// in-flight writes are allowed to complete.
func (e *Engine) Sync(ctx context.Context, properties []models.Property, broker models.BrokerMeta) (*models.SyncReport, error) {
	report := &models.SyncReport{Attempted: len(properties)}
	if len(properties) == 0 {
		return report, nil
	}

	brokerID, err := e.flat.UpsertBroker(ctx, broker.Name, broker.Website)
	if err != nil {
		return nil, fmt.Errorf("resolve broker %q: %w", broker.Name, err)
	}

	if err := e.graph.Ping(ctx); err != nil {
		return nil, fmt.Errorf("graph store unavailable: %w", err)
	}

	acc := &accumulator{}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := range properties {
		p := &properties[i]

		// Honor cancellation between records; records not yet started
		// still get exactly one outcome entry.
		if err := gctx.Err(); err != nil {
			acc.failure(models.RecordError{
				PropertyID: p.ID,
				Store:      models.StoreFlat,
				Message:    fmt.Sprintf("not attempted: %v", err),
			})
			continue
		}

		g.Go(func() error {
			e.syncRecord(gctx, p, brokerID, broker, acc)
			return nil
		})
	}

	// Workers never return errors; Wait only drains them.
	g.Wait()

	report.Succeeded = acc.succeeded
	report.Failed = report.Attempted - report.Succeeded
	report.Errors = acc.errors
	return report, nil
}

// syncRecord writes one property to both stores, recording at most one
// outcome. The flat and graph writes are independent: a flat failure does
// not skip the graph write, matching the no-shared-transaction model.
func (e *Engine) syncRecord(ctx context.Context, p *models.Property, brokerID uuid.UUID, broker models.BrokerMeta, acc *accumulator) {
	var recordErrs []models.RecordError

	if err := e.flat.UpsertProperty(ctx, p, brokerID); err != nil {
		recordErrs = append(recordErrs, models.RecordError{
			PropertyID: p.ID,
			Store:      models.StoreFlat,
			Message:    err.Error(),
		})
	}

	if err := e.mergeGraph(ctx, p, brokerID, broker); err != nil {
		recordErrs = append(recordErrs, models.RecordError{
			PropertyID: p.ID,
			Store:      models.StoreGraph,
			Message:    err.Error(),
		})
	}

	if len(recordErrs) == 0 {
		acc.success()
		return
	}
	acc.failure(recordErrs...)
}

func (e *Engine) mergeGraph(ctx context.Context, p *models.Property, brokerID uuid.UUID, broker models.BrokerMeta) error {
	if err := e.graph.MergeBrokerNode(ctx, brokerID, broker); err != nil {
		return fmt.Errorf("merge broker node: %w", err)
	}
	if err := e.graph.MergePropertyNode(ctx, p); err != nil {
		return fmt.Errorf("merge property node: %w", err)
	}
	if err := e.graph.MergeListedByEdge(ctx, p.ID, brokerID); err != nil {
		return fmt.Errorf("merge listed-by edge: %w", err)
	}
	return nil
}
