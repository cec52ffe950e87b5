package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"budgetcycle/internal/budget"
	"budgetcycle/internal/core"
)

const (
	OpAdd    = "add"
	OpSave   = "save"
	OpDelete = "delete"
	OpClaim  = "claim"
	OpMove   = "move"
	OpUndo   = "undo"
)

// Command is one scripted editor command. Paths are JSON arrays such as
// [0] or [2,1] and refer to the document as it is when the command runs.
type Command struct {
	Op       string             `json:"op"`
	Section  budget.Section     `json:"section"`
	Path     budget.Path        `json:"path,omitempty"`
	Target   budget.Path        `json:"target,omitempty"`
	Mode     budget.MoveMode    `json:"mode,omitempty"`
	Category string             `json:"category,omitempty"`
	Amount   core.Money         `json:"amount"`
	Scope    budget.RenameScope `json:"scope,omitempty"`
}

type Script struct {
	Commands []Command `json:"commands"`
}

// CommandResult records what happened to one command.
type CommandResult struct {
	Index   int
	Op      string
	Applied bool
	// Skipped is set for structural and not-found rejections.
	Skipped bool
	Err     error
}

func ParseScript(r io.Reader) (Script, error) {
	var sc Script
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sc); err != nil {
		return Script{}, fmt.Errorf("decode script: %w", err)
	}
	for i, c := range sc.Commands {
		if c.Op != OpUndo && !c.Section.IsValid() {
			return Script{}, fmt.Errorf("command %d: invalid section %q", i, c.Section)
		}
	}
	return sc, nil
}

// Apply runs the commands in order. Stale paths and structural rejections
// are skipped; validation errors are recorded and the batch goes on. Only
// storage failures stop it.
func (s *Session) Apply(ctx context.Context, sc Script) ([]CommandResult, error) {
	results := make([]CommandResult, 0, len(sc.Commands))
	for i, c := range sc.Commands {
		res := CommandResult{Index: i, Op: c.Op}
		applied, err := s.run(ctx, c)
		switch {
		case err == nil:
			res.Applied = applied
		case budget.IsNoop(err):
			res.Skipped = true
			res.Err = err
			slog.DebugContext(ctx, "Scripted command skipped", "index", i, "op", c.Op, "reason", err)
		case budget.IsValidation(err):
			res.Err = err
			slog.WarnContext(ctx, "Scripted command rejected", "index", i, "op", c.Op, "error", err)
		default:
			return results, fmt.Errorf("command %d (%s): %w", i, c.Op, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Session) run(ctx context.Context, c Command) (bool, error) {
	in := budget.RowInput{Category: c.Category, Amount: c.Amount}
	switch c.Op {
	case OpAdd:
		_, err := s.AddRow(ctx, c.Section, in)
		return err == nil, err
	case OpSave:
		scope := c.Scope
		if scope == "" {
			scope = budget.RenameNone
		}
		err := s.SaveRow(ctx, c.Section, c.Path, in, scope)
		return err == nil, err
	case OpDelete:
		_, err := s.DeleteRow(ctx, c.Section, c.Path)
		return err == nil, err
	case OpClaim:
		err := s.ClaimRow(ctx, c.Section, c.Path, in)
		return err == nil, err
	case OpMove:
		err := s.Move(ctx, budget.MoveCommand{Section: c.Section, Source: c.Path, Target: c.Target, Mode: c.Mode})
		return err == nil, err
	case OpUndo:
		return s.Undo(ctx)
	default:
		return false, fmt.Errorf("%w: unknown op %q", budget.ErrStructural, c.Op)
	}
}
