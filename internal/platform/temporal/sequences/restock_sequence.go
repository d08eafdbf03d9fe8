package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	inventoryactivities "github.com/Apurer/go-gin-sales-server/internal/platform/temporal/activities/inventory"
)

// DefaultRestockAttempts keeps adjustments at-most-once unless the authority deduplicates by key.
const DefaultRestockAttempts = 1

// RestockCommand describes one adjustment and how hard to try.
type RestockCommand struct {
	OperationKey string
	Reason       string
	Barcode      string
	Quantity     int
	MaxAttempts  int32
}

// RunRestockSequence executes the restock activity with a bounded retry policy.
func RunRestockSequence(ctx workflow.Context, cmd RestockCommand) error {
	logger := workflow.GetLogger(ctx)
	attempts := cmd.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultRestockAttempts
	}
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		HeartbeatTimeout:    10 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    attempts,
		},
	}
	input := inventoryactivities.RestockInput{
		OperationKey: cmd.OperationKey,
		Reason:       cmd.Reason,
		Barcode:      cmd.Barcode,
		Quantity:     cmd.Quantity,
	}
	if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, options), inventoryactivities.RestockActivityName, input).Get(ctx, nil); err != nil {
		logger.Error("restock sequence failed", "operationKey", cmd.OperationKey, "attempts", attempts, "error", err)
		return err
	}
	logger.Info("restock sequence completed", "operationKey", cmd.OperationKey)
	return nil
}
