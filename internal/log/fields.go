package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldSection   = "section"
	FieldPath      = "path"
	FieldCategory  = "category"
	FieldAmount    = "amount"
	FieldPeriod    = "period"
	FieldWindow    = "window"
	FieldBudgetID  = "budget_id"
	FieldBackend   = "backend"
	FieldCount     = "count"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentCalendar = "calendar"
	ComponentBudget   = "budget"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentSheets   = "sheets"
	ComponentCache    = "cache"
	ComponentBackend  = "backend"
	ComponentCLI      = "cli"
)

// Operations defines standard operation names
const (
	OpAdd      = "add"
	OpSave     = "save"
	OpDelete   = "delete"
	OpClaim    = "claim"
	OpMove     = "move"
	OpUndo     = "undo"
	OpLoad     = "load"
	OpPersist  = "persist"
	OpRename   = "rename"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// Fields is a builder for structured log attributes.
type Fields map[string]any

func NewFields() Fields {
	return make(Fields)
}

func (f Fields) WithComponent(component string) Fields {
	f[FieldComponent] = component
	return f
}

func (f Fields) WithOperation(op string) Fields {
	f[FieldOperation] = op
	return f
}

func (f Fields) WithError(err error) Fields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithRow adds the fields identifying a budget row.
func (f Fields) WithRow(section, path, category string) Fields {
	f[FieldSection] = section
	f[FieldPath] = path
	if category != "" {
		f[FieldCategory] = category
	}
	return f
}

func (f Fields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
