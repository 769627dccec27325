package domain

import "context"

// TabStore is a spreadsheet seen as named tabs of rows. Row 1 is the header row.
// Row indexes are 1-based, matching the spreadsheet's own numbering.
type TabStore interface {
	Values(ctx context.Context, tab string) ([][]string, error)
	Append(ctx context.Context, tab string, rows [][]string) error
	UpdateRow(ctx context.Context, tab string, rowIndex int, values []string) error
}

// PaymentProvider is the part of the payment processor the booking wizard talks to.
type PaymentProvider interface {
	// CreateOrder reserves an order for amount (EUR, two decimals) and returns its id.
	CreateOrder(ctx context.Context, amount, description string) (string, error)
	// CaptureOrder captures an approved order and returns the transaction id.
	CaptureOrder(ctx context.Context, orderID string) (string, error)
}

// SessionStore keeps wizard state between requests.
type SessionStore interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// TabMirror is a local copy of spreadsheet tabs (the MySQL backend).
type TabMirror interface {
	ReplaceTab(ctx context.Context, tab string, rows [][]string) error
	LogMirror(ctx context.Context, tab string, rowCount int, mirrorErr error) error
}
