package usage

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Record is one booked AI call. Costs are estimates from a static price
// table, kept in decimal to survive aggregation.
type Record struct {
	ID          uuid.UUID       `json:"id"`
	WorkspaceID uuid.UUID       `json:"workspace_id"`
	Task        string          `json:"task"`
	Provider    string          `json:"provider"`
	Model       string          `json:"model"`
	TokensIn    int             `json:"tokens_in"`
	TokensOut   int             `json:"tokens_out"`
	Cost        decimal.Decimal `json:"cost"`
	BYOK        bool            `json:"byok"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Summary aggregates a workspace's spend over a window.
type Summary struct {
	Calls     int             `json:"calls"`
	TokensIn  int64           `json:"tokens_in"`
	TokensOut int64           `json:"tokens_out"`
	Cost      decimal.Decimal `json:"cost"`
}
