package core

// Totals holds the planned and observed amount of one budget section.
type Totals struct {
	Budgeted Money `json:"budgeted"`
	Actual   Money `json:"actual"`
}

// Summary is the section-level overview for one period window.
type Summary struct {
	Inflows     Totals `json:"inflows"`
	Outflows    Totals `json:"outflows"`
	NetBudgeted Money  `json:"net_budgeted"`
	NetActual   Money  `json:"net_actual"`
}
