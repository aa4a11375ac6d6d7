package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/fleet-alerts/core"
)

// ProcessDeliveryCommand runs the ingestion pipeline for one delivery and
// stores the outcome in the caller's result collector.
type ProcessDeliveryCommand struct {
	processor core.DeliveryProcessor
}

func NewProcessDeliveryCommand(processor core.DeliveryProcessor) *ProcessDeliveryCommand {
	return &ProcessDeliveryCommand{processor: processor}
}

func (c *ProcessDeliveryCommand) Execute(ctx context.Context, msg ProcessDeliveryMessage) error {
	if c == nil || c.processor == nil {
		return commandDependencyError("command: delivery processor is required")
	}
	result, err := c.processor.Process(ctx, msg.Request)
	if err != nil {
		// Rejections still carry a result the transport needs for the
		// response body and status code.
		storeResult(ctx, result)
		return err
	}
	storeResult(ctx, result)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
