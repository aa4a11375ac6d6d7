package command

import (
	"fmt"
	"strings"

	"github.com/goliatone/fleet-alerts/core"
)

const (
	TypeProcessDelivery = "fleet.command.delivery.process"
)

// ProcessDeliveryMessage carries one raw webhook delivery into the ingestion
// pipeline.
type ProcessDeliveryMessage struct {
	Request core.InboundRequest
}

func (ProcessDeliveryMessage) Type() string { return TypeProcessDelivery }

func (m ProcessDeliveryMessage) Validate() error {
	if strings.TrimSpace(m.Request.ProviderID) == "" {
		return fmt.Errorf("command: provider id is required")
	}
	if len(m.Request.Body) == 0 {
		return fmt.Errorf("command: delivery body is required")
	}
	return nil
}
