package http

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeJoinTrimsBeforeValidating(t *testing.T) {
	d := newPayloadDecoder()

	var p joinGamePayload
	if err := d.decode(json.RawMessage(`{"gameCode":"  abc234 ","username":"  bob "}`), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.GameCode != "ABC234" || p.Username != "bob" {
		t.Fatalf("payload not normalized: %+v", p)
	}

	var blank joinGamePayload
	err := d.decode(json.RawMessage(`{"gameCode":"ABC234","username":"   "}`), &blank)
	if !errors.Is(err, errInvalidPayload) {
		t.Fatalf("expected blank username rejected, got %v", err)
	}
}

func TestDecodeMissingPayload(t *testing.T) {
	d := newPayloadDecoder()

	var p submitAnswerPayload
	if err := d.decode(nil, &p); !errors.Is(err, errInvalidPayload) {
		t.Fatalf("expected missing optionId rejected, got %v", err)
	}
	if err := d.decode(json.RawMessage(`{"optionId":`), &p); !errors.Is(err, errInvalidPayload) {
		t.Fatalf("expected malformed json rejected, got %v", err)
	}
}
