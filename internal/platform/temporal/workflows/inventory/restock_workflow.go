package inventory

import (
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-sales-server/internal/platform/temporal/sequences"
)

const (
	// RestockWorkflowName is the public identifier for registering the workflow.
	RestockWorkflowName = "inventory.workflows.Restock"
	// RestockTaskQueue is the queue consumed by the worker processing restocks.
	RestockTaskQueue = "INVENTORY_RESTOCK"
)

// RestockWorkflowInput carries one compensation or replenish command.
type RestockWorkflowInput struct {
	Command sequences.RestockCommand
	TraceID string
}

// RestockWorkflow returns stock to the inventory authority out of band.
func RestockWorkflow(ctx workflow.Context, input RestockWorkflowInput) error {
	logger := workflow.GetLogger(ctx)
	cmd := input.Command
	logger.Info("RestockWorkflow started", withTraceID(input.TraceID, "operationKey", cmd.OperationKey, "reason", cmd.Reason)...)
	if err := sequences.RunRestockSequence(ctx, cmd); err != nil {
		logger.Error("RestockWorkflow failed; reconciliation required",
			withTraceID(input.TraceID, "operationKey", cmd.OperationKey, "barcode", cmd.Barcode, "quantity", cmd.Quantity, "error", err)...)
		return err
	}
	logger.Info("RestockWorkflow completed", withTraceID(input.TraceID, "operationKey", cmd.OperationKey)...)
	return nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
