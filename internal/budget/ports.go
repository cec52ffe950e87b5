package budget

import (
	"context"

	"budgetcycle/internal/core"
)

const (
	RenameNone   RenameScope = "none"
	RenameAll    RenameScope = "all"
	RenamePeriod RenameScope = "period"
)

type (
	// RenameScope selects which transactions follow a category rename.
	RenameScope string

	// RenameRequest asks the transaction owner to rewrite category text.
	// With RenamePeriod only transactions dated inside StartISO..EndISO
	// are touched.
	RenameRequest struct {
		Section  Section     `json:"section"`
		OldName  string      `json:"old_name"`
		NewName  string      `json:"new_name"`
		Scope    RenameScope `json:"scope"`
		StartISO string      `json:"start"`
		EndISO   string      `json:"end"`
	}

	// ClaimRequest asks the transaction owner to record a budget line's
	// planned amount as a real transaction.
	ClaimRequest struct {
		Section  Section    `json:"section"`
		Index    int        `json:"index"`
		Category string     `json:"category"`
		Amount   core.Money `json:"amount"`
	}
)

// Ports for the collaborators that own transactions. Calls are fire and
// forget: a failure is logged and never undoes the local change.
type (
	RenameCascader interface {
		CascadeRename(ctx context.Context, req RenameRequest) error
	}

	Claimer interface {
		Claim(ctx context.Context, req ClaimRequest) error
	}
)

func (s RenameScope) IsValid() bool {
	switch s {
	case RenameNone, RenameAll, RenamePeriod:
		return true
	default:
		return false
	}
}
