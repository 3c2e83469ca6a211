package models

// SignalRequest asks for an on-demand evaluation of one market.
type SignalRequest struct {
	Market string `query:"market" validate:"required"`
	Count  int    `query:"count" default:"200" validate:"min=2,max=1000"`
}

// SnapshotRequest asks for the enriched snapshot only.
type SnapshotRequest struct {
	Market string `query:"market" validate:"required"`
	Count  int    `query:"count" default:"200" validate:"min=2,max=1000"`
}

// CandlesRequest asks for stored candle history.
type CandlesRequest struct {
	Market string `query:"market" validate:"required"`
	From   string `query:"from"`
	To     string `query:"to"`
	Limit  int    `query:"limit" default:"500" validate:"min=1,max=10000"`
}
