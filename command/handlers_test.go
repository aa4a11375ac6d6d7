package command

import (
	"context"
	"errors"
	"net/http"
	"testing"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/fleet-alerts/core"
)

type stubProcessor struct {
	result core.InboundResult
	err    error
	seen   []core.InboundRequest
}

func (s *stubProcessor) Process(_ context.Context, req core.InboundRequest) (core.InboundResult, error) {
	s.seen = append(s.seen, req)
	return s.result, s.err
}

func TestProcessDeliveryMessage_Validate(t *testing.T) {
	msg := ProcessDeliveryMessage{}
	if err := msg.Validate(); err == nil {
		t.Fatalf("expected missing provider id to fail validation")
	}
	msg.Request.ProviderID = "motive"
	if err := msg.Validate(); err == nil {
		t.Fatalf("expected empty body to fail validation")
	}
	msg.Request.Body = []byte(`{}`)
	if err := msg.Validate(); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}
}

func TestProcessDeliveryCommand_StoresResult(t *testing.T) {
	processor := &stubProcessor{
		result: core.InboundResult{
			Accepted:      true,
			StatusCode:    http.StatusOK,
			Status:        "accepted",
			AcceptedCount: 2,
		},
	}
	cmd := NewProcessDeliveryCommand(processor)

	collector := gocmd.NewResult[core.InboundResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	msg := ProcessDeliveryMessage{Request: core.InboundRequest{
		ProviderID: "motive",
		Body:       []byte(`{}`),
	}}
	if err := cmd.Execute(ctx, msg); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(processor.seen) != 1 {
		t.Fatalf("expected processor invoked once, got %d", len(processor.seen))
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result stored in collector")
	}
	if result.AcceptedCount != 2 {
		t.Fatalf("unexpected stored result: %+v", result)
	}
}

func TestProcessDeliveryCommand_StoresRejectionResult(t *testing.T) {
	processor := &stubProcessor{
		result: core.InboundResult{
			Accepted:   false,
			StatusCode: http.StatusForbidden,
			Status:     "rejected",
		},
		err: errors.New("signature verification failed"),
	}
	cmd := NewProcessDeliveryCommand(processor)

	collector := gocmd.NewResult[core.InboundResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	msg := ProcessDeliveryMessage{Request: core.InboundRequest{
		ProviderID: "motive",
		Body:       []byte(`{}`),
	}}
	if err := cmd.Execute(ctx, msg); err == nil {
		t.Fatalf("expected processor error to propagate")
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected rejection result stored for the transport")
	}
	if result.StatusCode != http.StatusForbidden {
		t.Fatalf("unexpected stored status: %+v", result)
	}
}

func TestProcessDeliveryCommand_RequiresProcessor(t *testing.T) {
	cmd := NewProcessDeliveryCommand(nil)
	msg := ProcessDeliveryMessage{Request: core.InboundRequest{
		ProviderID: "motive",
		Body:       []byte(`{}`),
	}}
	if err := cmd.Execute(context.Background(), msg); err == nil {
		t.Fatalf("expected dependency error")
	}
}
