package domain

// Order is a single-shot market swap instruction.
// Immutable after submission; never persisted.
type Order struct {
	ID                string
	TokenIn           string
	TokenOut          string
	AmountIn          float64
	SlippageTolerance float64 // optional fraction, 0 means unset
}
