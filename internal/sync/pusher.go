package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fekuna/omnipos-edge-agent/internal/expense"
	"github.com/fekuna/omnipos-edge-agent/internal/inventory"
	"github.com/fekuna/omnipos-edge-agent/internal/model"
	"github.com/fekuna/omnipos-edge-agent/internal/outbox"
	"github.com/fekuna/omnipos-edge-agent/internal/product"
	"github.com/fekuna/omnipos-edge-agent/internal/sale"
	"github.com/fekuna/omnipos-edge-agent/internal/supplier"
	"go.uber.org/zap"
)

type PusherConfig struct {
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxAttempts    int
	Retention      time.Duration // How long SYNCED entries stick around
}

// Pusher drains the outbox to the remote service. It works on a snapshot
// taken at invocation and only ever touches the queue and the synced flags,
// so it can run alongside local writes without blocking them.
type Pusher struct {
	cfg       PusherConfig
	outbox    outbox.Repository
	client    Client
	products  product.Repository
	inventory inventory.Repository
	sales     sale.Repository
	suppliers supplier.Repository
	expenses  expense.Repository
	logger    *zap.Logger
}

func NewPusher(cfg PusherConfig, ob outbox.Repository, client Client,
	products product.Repository, inv inventory.Repository, sales sale.Repository,
	suppliers supplier.Repository, expenses expense.Repository, log *zap.Logger) *Pusher {
	return &Pusher{
		cfg:       cfg,
		outbox:    ob,
		client:    client,
		products:  products,
		inventory: inv,
		sales:     sales,
		suppliers: suppliers,
		expenses:  expenses,
		logger:    log,
	}
}

// Drain pushes every due entry once. Failures are recorded per entry and
// never abort the cycle; the next cycle picks up whatever is retry-eligible.
func (p *Pusher) Drain(ctx context.Context) error {
	// Entries stranded SYNCING by an interrupted push go back to PENDING
	// first, or they would never be due again.
	recovered, err := p.outbox.ResetSyncing(ctx)
	if err != nil {
		return fmt.Errorf("failed to recover in-flight entries: %w", err)
	}
	if recovered > 0 {
		p.logger.Warn("recovered entries from interrupted push", zap.Int64("entries", recovered))
	}

	now := time.Now().UTC()
	entries, err := p.outbox.Due(ctx, now, p.cfg.MaxAttempts, 0)
	if err != nil {
		return fmt.Errorf("failed to snapshot outbox: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	p.logger.Debug("draining outbox", zap.Int("entries", len(entries)))

	for _, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.pushEntry(ctx, &entry)
	}

	if _, err := p.outbox.PurgeSynced(ctx, time.Now().UTC().Add(-p.cfg.Retention)); err != nil {
		p.logger.Warn("failed to purge synced entries", zap.Error(err))
	}
	return nil
}

func (p *Pusher) pushEntry(ctx context.Context, entry *model.SyncQueueEntry) {
	if err := p.outbox.MarkSyncing(ctx, entry.ID); err != nil {
		p.logger.Error("failed to mark entry syncing", zap.Int64("entry_id", entry.ID), zap.Error(err))
		return
	}

	req, err := p.buildRequest(entry)
	if err != nil {
		// Undecodable payload: retrying the same bytes cannot help.
		p.fail(ctx, entry, err, false)
		return
	}

	resp, err := p.client.Push(ctx, req)
	if err != nil {
		var verr *ValidationError
		p.fail(ctx, entry, err, !errors.As(err, &verr))
		return
	}

	if err := p.outbox.MarkSynced(ctx, entry.ID, time.Now().UTC()); err != nil {
		p.logger.Error("failed to mark entry synced", zap.Int64("entry_id", entry.ID), zap.Error(err))
		return
	}
	if err := p.markRecordSynced(ctx, entry, resp); err != nil {
		p.logger.Error("failed to mark record synced",
			zap.String("entity_type", entry.EntityType),
			zap.String("entity_id", entry.EntityID),
			zap.Error(err),
		)
	}
}

func (p *Pusher) fail(ctx context.Context, entry *model.SyncQueueEntry, cause error, retryable bool) {
	var nextRetry *time.Time
	if retryable {
		at := time.Now().UTC().Add(p.retryDelay(entry.RetryCount))
		nextRetry = &at
	}

	if err := p.outbox.MarkFailed(ctx, entry.ID, cause.Error(), nextRetry); err != nil {
		p.logger.Error("failed to mark entry failed", zap.Int64("entry_id", entry.ID), zap.Error(err))
		return
	}

	if retryable {
		p.logger.Warn("push failed, will retry",
			zap.Int64("entry_id", entry.ID),
			zap.String("entity_type", entry.EntityType),
			zap.Int("retry_count", entry.RetryCount+1),
			zap.Error(cause),
		)
	} else {
		p.logger.Error("push rejected, needs operator attention",
			zap.Int64("entry_id", entry.ID),
			zap.String("entity_type", entry.EntityType),
			zap.Error(cause),
		)
	}
}

// retryDelay grows exponentially with the retry count, capped at MaxBackoff.
func (p *Pusher) retryDelay(retryCount int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.cfg.InitialBackoff
	b.MaxInterval = p.cfg.MaxBackoff
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0

	d := b.NextBackOff()
	for i := 0; i < retryCount; i++ {
		d = b.NextBackOff()
	}
	return d
}

// buildRequest decodes the stored snake_case payload into its model type and
// translates it to the wire shape. The switch is exhaustive over the entity
// types the queue accepts; anything else is a corrupt entry.
func (p *Pusher) buildRequest(entry *model.SyncQueueEntry) (*PushRequest, error) {
	var payload interface{}

	switch entry.EntityType {
	case model.EntityProduct:
		var m model.Product
		if err := json.Unmarshal(entry.Payload, &m); err != nil {
			return nil, fmt.Errorf("decode product payload: %w", err)
		}
		payload = productToWire(&m)
	case model.EntityProductBatch:
		var m model.ProductBatch
		if err := json.Unmarshal(entry.Payload, &m); err != nil {
			return nil, fmt.Errorf("decode batch payload: %w", err)
		}
		payload = batchToWire(&m)
	case model.EntitySale:
		var m model.Sale
		if err := json.Unmarshal(entry.Payload, &m); err != nil {
			return nil, fmt.Errorf("decode sale payload: %w", err)
		}
		payload = saleToWire(&m)
	case model.EntityStockMovement:
		var m model.StockMovement
		if err := json.Unmarshal(entry.Payload, &m); err != nil {
			return nil, fmt.Errorf("decode movement payload: %w", err)
		}
		payload = movementToWire(&m)
	case model.EntitySupplier:
		var m model.Supplier
		if err := json.Unmarshal(entry.Payload, &m); err != nil {
			return nil, fmt.Errorf("decode supplier payload: %w", err)
		}
		payload = supplierToWire(&m)
	case model.EntitySupplierOrder:
		var m model.SupplierOrder
		if err := json.Unmarshal(entry.Payload, &m); err != nil {
			return nil, fmt.Errorf("decode supplier order payload: %w", err)
		}
		payload = supplierOrderToWire(&m)
	case model.EntityExpense:
		var m model.Expense
		if err := json.Unmarshal(entry.Payload, &m); err != nil {
			return nil, fmt.Errorf("decode expense payload: %w", err)
		}
		payload = expenseToWire(&m)
	case model.EntityCreditPayment:
		var m model.CreditPayment
		if err := json.Unmarshal(entry.Payload, &m); err != nil {
			return nil, fmt.Errorf("decode credit payment payload: %w", err)
		}
		payload = creditPaymentToWire(&m)
	default:
		return nil, fmt.Errorf("unknown entity type %q in sync queue", entry.EntityType)
	}

	return &PushRequest{
		EntityType: entry.EntityType,
		Action:     entry.Action,
		ClientID:   entry.EntityID,
		Payload:    payload,
	}, nil
}

func (p *Pusher) markRecordSynced(ctx context.Context, entry *model.SyncQueueEntry, resp *PushResponse) error {
	switch entry.EntityType {
	case model.EntityProduct:
		return p.products.MarkSynced(ctx, entry.EntityID, resp.RemoteID, resp.ServerStock)
	case model.EntityProductBatch:
		return p.inventory.MarkBatchSynced(ctx, entry.EntityID)
	case model.EntitySale:
		return p.sales.MarkSynced(ctx, entry.EntityID)
	case model.EntityStockMovement:
		return p.inventory.MarkMovementSynced(ctx, entry.EntityID)
	case model.EntitySupplier:
		return p.suppliers.MarkSynced(ctx, entry.EntityID)
	case model.EntitySupplierOrder:
		return p.suppliers.MarkOrderSynced(ctx, entry.EntityID)
	case model.EntityExpense:
		return p.expenses.MarkSynced(ctx, entry.EntityID)
	case model.EntityCreditPayment:
		return p.sales.MarkCreditPaymentSynced(ctx, entry.EntityID)
	default:
		return fmt.Errorf("unknown entity type %q", entry.EntityType)
	}
}
