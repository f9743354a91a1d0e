package domain

// Quote is a venue's offered price and fee for a hypothetical swap.
// Valid only for the routing decision it was produced for.
type Quote struct {
	Venue string
	Price float64
	Fee   float64 // fraction in [0,1)
}

// ExecutionResult is the terminal output of a successful pipeline run.
type ExecutionResult struct {
	SettlementID  string
	RealizedPrice float64
}
