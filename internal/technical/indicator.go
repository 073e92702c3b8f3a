// Package technical implements the technical indicator engine: a pure,
// synchronous computation that turns an ordered daily bar series into an
// indicator report with categorical signals and an overall sentiment.
//
// All rolling-window indicators are incremental accumulators fed one bar at a
// time, keeping a full report O(n) in series length. Indicators that have not
// accumulated their minimum window report unavailable instead of failing the
// whole report.
package technical

import "stocktracker/internal/model"

// Indicator is the interface shared by all incremental accumulators.
type Indicator interface {
	// Name returns the indicator name (e.g., "SMA_20", "RSI_14").
	Name() string

	// Update feeds the next bar and recalculates.
	Update(bar model.Bar)

	// Value returns the current primary value. Meaningless until Ready.
	Value() float64

	// Ready reports whether enough bars have been accumulated.
	Ready() bool
}
