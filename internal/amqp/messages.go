package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"budgetcycle/internal/budget"
)

type MessageType string

const (
	TypeRenameCascade MessageType = "rename_cascade"
	TypeClaim         MessageType = "claim"
)

// ErrMalformedMessage marks a delivery that can never be processed and must
// not be requeued.
var ErrMalformedMessage = errors.New("malformed message")

// Envelope is the wire form of every message on the transactions queue.
// The payload is decoded according to Type.
type Envelope struct {
	ID        string          `json:"id"`
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

func NewEnvelope(t MessageType, payload any) (*Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return &Envelope{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now(),
		Payload:   body,
	}, nil
}

func (e *Envelope) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func EnvelopeFromJSON(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if env.Type != TypeRenameCascade && env.Type != TypeClaim {
		return nil, fmt.Errorf("%w: unknown type %q", ErrMalformedMessage, env.Type)
	}
	return &env, nil
}

func (e *Envelope) RenameRequest() (budget.RenameRequest, error) {
	var req budget.RenameRequest
	if err := e.decode(TypeRenameCascade, &req); err != nil {
		return req, err
	}
	if !req.Section.IsValid() || req.OldName == "" || req.NewName == "" || !req.Scope.IsValid() {
		return req, fmt.Errorf("%w: incomplete rename request %+v", ErrMalformedMessage, req)
	}
	return req, nil
}

func (e *Envelope) ClaimRequest() (budget.ClaimRequest, error) {
	var req budget.ClaimRequest
	if err := e.decode(TypeClaim, &req); err != nil {
		return req, err
	}
	if !req.Section.IsValid() || req.Category == "" || req.Amount.Cents < 0 {
		return req, fmt.Errorf("%w: incomplete claim request %+v", ErrMalformedMessage, req)
	}
	return req, nil
}

func (e *Envelope) decode(want MessageType, v any) error {
	if e.Type != want {
		return fmt.Errorf("%w: expected %s, got %s", ErrMalformedMessage, want, e.Type)
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return nil
}
