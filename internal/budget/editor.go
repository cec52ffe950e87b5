package budget

import (
	"context"
	"log/slog"
	"strings"

	"budgetcycle/internal/core"
)

const (
	InsertAbove MoveMode = "insert-above"
	InsertBelow MoveMode = "insert-below"
	NestUnder   MoveMode = "nest-under"
)

type (
	// RowInput is the form payload of add, save and claim. Category is
	// required; Amount is ignored for subcategories.
	RowInput struct {
		Category string
		Amount   core.Money
	}

	MoveMode string

	// MoveCommand is a resolved drop. For NestUnder, Target is the path of
	// the new parent and must be top level.
	MoveCommand struct {
		Section Section
		Source  Path
		Target  Path
		Mode    MoveMode
	}

	Option func(*Editor)

	// Editor applies structural commands to a budget document. Every
	// applied command pushes a snapshot to the history first; a rejected
	// command leaves both the document and the history untouched.
	Editor struct {
		doc      Document
		history  *History
		cascader RenameCascader
		claimer  Claimer
		startISO string
		endISO   string
	}
)

func WithRenameCascader(c RenameCascader) Option {
	return func(e *Editor) { e.cascader = c }
}

func WithClaimer(c Claimer) Option {
	return func(e *Editor) { e.claimer = c }
}

// WithWindow sets the active period used by period-scoped renames.
func WithWindow(startISO, endISO string) Option {
	return func(e *Editor) { e.startISO, e.endISO = startISO, endISO }
}

// NewEditor takes ownership of a normalized copy of doc. A nil history
// gets an unbounded one.
func NewEditor(doc Document, history *History, opts ...Option) *Editor {
	if history == nil {
		history = NewHistory(0)
	}
	e := &Editor{doc: doc.Normalized(), history: history}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Document returns a copy of the current state.
func (e *Editor) Document() Document {
	return e.doc.Clone()
}

// Replace swaps the document without recording history. Used for
// reloads and automatic merges, which are not user commands.
func (e *Editor) Replace(doc Document) {
	e.doc = doc.Normalized()
}

func (e *Editor) SetWindow(startISO, endISO string) {
	e.startISO, e.endISO = startISO, endISO
}

func (e *Editor) CanUndo() bool {
	return e.history.CanUndo()
}

// Undo restores the most recent snapshot. It reports false when there is
// nothing to undo.
func (e *Editor) Undo() bool {
	doc, ok := e.history.Pop()
	if !ok {
		return false
	}
	e.doc = doc
	return true
}

// NextRowPath is where AddRow will place a new row.
func (e *Editor) NextRowPath(s Section) Path {
	return Path{len(e.doc.Nodes(s))}
}

// AutoPopulate merges auto rows for unbudgeted categories in the active
// window. It is not undoable.
func (e *Editor) AutoPopulate(ctx context.Context, txns []core.Transaction) int {
	doc, added := AutoPopulate(e.doc, txns, e.startISO, e.endISO)
	if added > 0 {
		e.doc = doc
		slog.DebugContext(ctx, "Auto rows added", "count", added, "start", e.startISO, "end", e.endISO)
	}
	return added
}

// AddRow appends a new top-level node.
func (e *Editor) AddRow(ctx context.Context, s Section, in RowInput) (Path, error) {
	nodes := e.doc.Nodes(s)
	name, err := e.validate(s, nodes, nil, in)
	if err != nil {
		return nil, err
	}
	e.history.Push(e.doc)
	e.doc.setNodes(s, append(cloneNodes(nodes), Node{Category: name, Amount: in.Amount, Children: []Node{}}))

	p := Path{len(nodes)}
	slog.InfoContext(ctx, "Budget row added", "section", s, "path", p.String(), "category", name, "amount", in.Amount.String())
	return p, nil
}

// SaveRow updates the category and amount of an existing node. When the
// name changes and scope is not RenameNone the transaction owner is asked
// to follow the rename.
func (e *Editor) SaveRow(ctx context.Context, s Section, p Path, in RowInput, scope RenameScope) error {
	_, err := e.save(ctx, s, p, in, scope)
	return err
}

func (e *Editor) save(ctx context.Context, s Section, p Path, in RowInput, scope RenameScope) (Node, error) {
	nodes := e.doc.Nodes(s)
	cur := nodeAt(nodes, p)
	if cur == nil {
		return Node{}, notFound(s, p)
	}
	name, err := e.validate(s, nodes, p, in)
	if err != nil {
		return Node{}, err
	}
	if !scope.IsValid() {
		scope = RenameNone
	}

	oldName := cur.Category
	e.history.Push(e.doc)
	next := cloneNodes(nodes)
	n := nodeAt(next, p)
	n.Category = name
	if p.Depth() == 0 {
		n.Amount = in.Amount
	} else {
		n.Amount = core.Money{}
	}
	e.doc.setNodes(s, next)
	slog.InfoContext(ctx, "Budget row saved", "section", s, "path", p.String(), "category", name, "amount", n.Amount.String())

	if strings.TrimSpace(oldName) != name && scope != RenameNone {
		e.cascadeRename(ctx, RenameRequest{
			Section:  s,
			OldName:  strings.TrimSpace(oldName),
			NewName:  name,
			Scope:    scope,
			StartISO: e.startISO,
			EndISO:   e.endISO,
		})
	}
	return *n, nil
}

// DeleteRow removes the node at p (with its children when top level) and
// returns it so the caller can offer an undo.
func (e *Editor) DeleteRow(ctx context.Context, s Section, p Path) (Node, error) {
	nodes := e.doc.Nodes(s)
	if nodeAt(nodes, p) == nil {
		return Node{}, notFound(s, p)
	}
	e.history.Push(e.doc)
	removed, next := removeAt(cloneNodes(nodes), p)
	e.doc.setNodes(s, next)
	slog.InfoContext(ctx, "Budget row deleted", "section", s, "path", p.String(), "category", removed.Category)
	return removed, nil
}

// ClaimRow saves the row without renaming transactions and then asks the
// claimer to book the amount. Only top-level rows can be claimed; for a
// subcategory the save stands and ErrStructural is returned.
func (e *Editor) ClaimRow(ctx context.Context, s Section, p Path, in RowInput) error {
	saved, err := e.save(ctx, s, p, in, RenameNone)
	if err != nil {
		return err
	}
	if p.Depth() != 0 {
		return structural("cannot claim subcategory %s", p)
	}
	if e.claimer == nil {
		slog.WarnContext(ctx, "No claimer configured, skipping claim", "section", s, "category", saved.Category)
		return nil
	}
	req := ClaimRequest{Section: s, Index: p[0], Category: saved.Category, Amount: saved.Amount}
	if err := e.claimer.Claim(ctx, req); err != nil {
		slog.ErrorContext(ctx, "Failed to send claim request",
			"section", s, "category", saved.Category, "error", err)
	}
	return nil
}

// Move applies a reorder or nest command.
func (e *Editor) Move(ctx context.Context, cmd MoveCommand) error {
	nodes := e.doc.Nodes(cmd.Section)
	src := nodeAt(nodes, cmd.Source)
	if src == nil {
		return notFound(cmd.Section, cmd.Source)
	}
	if nodeAt(nodes, cmd.Target) == nil {
		return notFound(cmd.Section, cmd.Target)
	}

	var next []Node
	switch cmd.Mode {
	case InsertAbove, InsertBelow:
		if len(cmd.Source) != len(cmd.Target) {
			return structural("cannot move %s next to %s across depths", cmd.Source, cmd.Target)
		}
		if samePath(cmd.Source, cmd.Target) {
			return structural("cannot move %s relative to itself", cmd.Source)
		}
		moved, rest := removeAt(cloneNodes(nodes), cmd.Source)
		at := shiftAfterRemoval(cmd.Target, cmd.Source)
		if cmd.Mode == InsertBelow {
			at[len(at)-1]++
		}
		next = insertAt(rest, at, moved)
	case NestUnder:
		if len(cmd.Target) != 1 {
			return structural("cannot nest under subcategory %s", cmd.Target)
		}
		if len(src.Children) > 0 {
			return structural("cannot nest %s: it has subcategories", cmd.Source)
		}
		if len(cmd.Source) == 1 && cmd.Source[0] == cmd.Target[0] {
			return structural("cannot nest %s under itself", cmd.Source)
		}
		moved, rest := removeAt(cloneNodes(nodes), cmd.Source)
		at := shiftAfterRemoval(cmd.Target, cmd.Source)
		parent := &rest[at[0]]
		parent.Children = append(parent.Children, Node{Category: moved.Category, Auto: moved.Auto, Children: []Node{}})
		next = rest
	default:
		return structural("unknown move mode %q", cmd.Mode)
	}

	e.history.Push(e.doc)
	e.doc.setNodes(cmd.Section, next)
	slog.InfoContext(ctx, "Budget row moved",
		"section", cmd.Section, "source", cmd.Source.String(), "target", cmd.Target.String(), "mode", cmd.Mode)
	return nil
}

// validate checks in against the section and returns the trimmed name.
// skip is the node being edited, which may keep its own name.
func (e *Editor) validate(s Section, nodes []Node, skip Path, in RowInput) (string, error) {
	name := strings.TrimSpace(in.Category)
	if name == "" {
		return "", &ValidationError{Section: s, Category: in.Category, Err: ErrEmptyCategory}
	}
	if in.Amount.Cents < 0 {
		return "", &ValidationError{Section: s, Category: name, Err: ErrNegativeAmount}
	}
	if _, taken := names(nodes, skip)[NormalizeName(name)]; taken {
		return "", &ValidationError{Section: s, Category: name, Err: ErrDuplicateCategory}
	}
	return name, nil
}

func (e *Editor) cascadeRename(ctx context.Context, req RenameRequest) {
	if e.cascader == nil {
		slog.WarnContext(ctx, "No rename cascader configured, transactions keep the old name",
			"old_name", req.OldName, "new_name", req.NewName)
		return
	}
	if err := e.cascader.CascadeRename(ctx, req); err != nil {
		slog.ErrorContext(ctx, "Failed to send rename cascade",
			"old_name", req.OldName, "new_name", req.NewName, "scope", req.Scope, "error", err)
	}
}

// removeAt deletes the node at a valid path from nodes, which the caller
// owns.
func removeAt(nodes []Node, p Path) (Node, []Node) {
	i := p[0]
	if len(p) == 1 {
		removed := nodes[i]
		return removed, append(nodes[:i], nodes[i+1:]...)
	}
	kids := nodes[i].Children
	removed := kids[p[1]]
	nodes[i].Children = append(kids[:p[1]], kids[p[1]+1:]...)
	return removed, nodes
}

// insertAt places n at p. The last index may equal the current length.
func insertAt(nodes []Node, p Path, n Node) []Node {
	if len(p) == 1 {
		return insertNode(nodes, p[0], n)
	}
	n.Amount = core.Money{}
	n.Children = []Node{}
	nodes[p[0]].Children = insertNode(nodes[p[0]].Children, p[1], n)
	return nodes
}

func insertNode(nodes []Node, i int, n Node) []Node {
	if i > len(nodes) {
		i = len(nodes)
	}
	nodes = append(nodes, Node{})
	copy(nodes[i+1:], nodes[i:])
	nodes[i] = n
	return nodes
}

// shiftAfterRemoval rewrites target so it still points at the same node
// once source has been removed.
func shiftAfterRemoval(target, source Path) Path {
	at := append(Path(nil), target...)
	switch {
	case len(source) == 1 && at[0] > source[0]:
		at[0]--
	case len(source) == 2 && len(at) == 2 && at[0] == source[0] && at[1] > source[1]:
		at[1]--
	}
	return at
}

func samePath(a, b Path) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
