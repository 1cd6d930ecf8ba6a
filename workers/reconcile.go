package workers

import (
	"context"
	"log"
	"time"

	"propsync/models"
	"propsync/storage"
)

// ReconcileWorker repairs drift between the flat store and the graph store.
// A record that landed in Postgres but missed the graph (crash between the
// two writes, graph outage) gets its node and edge re-merged here.
type ReconcileWorker struct {
	flat    *storage.PostgresStore
	graph   *storage.SQLiteGraph
	trigger chan struct{}
}

// NewReconcileWorker creates a new reconcile worker
func NewReconcileWorker(flat *storage.PostgresStore, graph *storage.SQLiteGraph) *ReconcileWorker {
	return &ReconcileWorker{
		flat:    flat,
		graph:   graph,
		trigger: make(chan struct{}, 1),
	}
}

// Trigger requests an immediate reconcile pass. Non-blocking; a pass
// already pending absorbs the request.
func (w *ReconcileWorker) Trigger() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Run starts the reconcile worker loop
func (w *ReconcileWorker) Run(ctx context.Context, batchSize int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Reconcile worker stopping")
			return
		case <-ticker.C:
			w.reconcileOnce(ctx, batchSize)
		case <-w.trigger:
			w.reconcileOnce(ctx, batchSize)
		}
	}
}

func (w *ReconcileWorker) reconcileOnce(ctx context.Context, batchSize int) {
	rows, err := w.flat.ListPropertiesForReconcile(ctx, batchSize)
	if err != nil {
		log.Printf("Reconcile: list error: %v", err)
		return
	}

	if len(rows) == 0 {
		return
	}

	var repaired int
	for _, row := range rows {
		if ctx.Err() != nil {
			return
		}

		n, err := w.reconcileRow(ctx, row)
		if err != nil {
			log.Printf("Reconcile: %s: %v", row.Property.ID, err)
			continue
		}
		repaired += n
	}

	if repaired > 0 {
		log.Printf("Reconcile: checked %d properties, repaired %d graph entries", len(rows), repaired)
	}
}

// reconcileRow returns how many graph writes were needed to bring one
// property back in sync.
func (w *ReconcileWorker) reconcileRow(ctx context.Context, row storage.ReconcileRow) (int, error) {
	var repaired int

	hasNode, err := w.graph.HasPropertyNode(ctx, row.Property.ID)
	if err != nil {
		return repaired, err
	}
	if !hasNode {
		if err := w.graph.MergePropertyNode(ctx, &row.Property); err != nil {
			return repaired, err
		}
		repaired++
	}

	hasEdge, err := w.graph.HasListedByEdge(ctx, row.Property.ID, row.BrokerID)
	if err != nil {
		return repaired, err
	}
	if !hasEdge {
		meta := models.BrokerMeta{Name: row.BrokerName, Website: row.BrokerWebsite}
		if err := w.graph.MergeBrokerNode(ctx, row.BrokerID, meta); err != nil {
			return repaired, err
		}
		if err := w.graph.MergeListedByEdge(ctx, row.Property.ID, row.BrokerID); err != nil {
			return repaired, err
		}
		repaired++
	}

	return repaired, nil
}
