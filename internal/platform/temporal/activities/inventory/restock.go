package inventory

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/domain"
	salesports "github.com/Apurer/go-gin-sales-server/internal/domains/sales/ports"
)

// RestockActivityName returns units to the inventory authority.
const RestockActivityName = "inventory.activities.Restock"

// RestockInput is the activity payload.
type RestockInput struct {
	OperationKey string
	Reason       string
	Barcode      string
	Quantity     int
}

// Activities groups activities that talk to the inventory authority.
type Activities struct {
	inventory salesports.Inventory
}

// NewActivities wires the inventory port into the Temporal activities bundle.
func NewActivities(inventory salesports.Inventory) *Activities {
	return &Activities{inventory: inventory}
}

// Restock sends one stock adjustment. A heartbeat marks completion so a retried
// attempt after a lost acknowledgement does not adjust twice.
func (a *Activities) Restock(ctx context.Context, input RestockInput) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.inventory == nil {
		logger.Error("restock activity not initialized", "barcode", input.Barcode)
		return errors.New("restock activity not initialized")
	}
	var hb restockHeartbeat
	if activity.HasHeartbeatDetails(ctx) {
		_ = activity.GetHeartbeatDetails(ctx, &hb)
	}
	if hb.Completed {
		logger.Info("Restock already completed in prior attempt; skipping", "operationKey", input.OperationKey)
		return nil
	}

	logger.Info("Restock activity started", "operationKey", input.OperationKey, "reason", input.Reason, "barcode", input.Barcode, "quantity", input.Quantity)
	adjustment := domain.StockAdjustment{Barcode: input.Barcode, Quantity: input.Quantity}
	if err := a.inventory.Adjust(ctx, input.OperationKey, []domain.StockAdjustment{adjustment}); err != nil {
		logger.Error("Restock activity failed", "operationKey", input.OperationKey, "barcode", input.Barcode, "error", err)
		return err
	}
	activity.RecordHeartbeat(ctx, restockHeartbeat{Completed: true})
	logger.Info("Restock activity completed", "operationKey", input.OperationKey)
	return nil
}

type restockHeartbeat struct {
	Completed bool
}
