package domain

// Stage is one discrete phase of the order pipeline's state machine.
// Every stage transition emits exactly one StatusEvent.
type Stage int

const (
	StagePending Stage = iota
	StageRouting
	StageBuilding
	StageSubmitted
	StageConfirmed
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StagePending:
		return "pending"
	case StageRouting:
		return "routing"
	case StageBuilding:
		return "building"
	case StageSubmitted:
		return "submitted"
	case StageConfirmed:
		return "confirmed"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StatusEvent is the wire shape pushed to a subscriber on every stage
// transition. Optional fields are stage-specific: venue and price on
// routing, settlement details on confirmed, error text on failed.
type StatusEvent struct {
	Status        string  `json:"status"`
	Venue         string  `json:"venue,omitempty"`
	Price         float64 `json:"price,omitempty"`
	SettlementID  string  `json:"settlementId,omitempty"`
	RealizedPrice float64 `json:"realizedPrice,omitempty"`
	Error         string  `json:"error,omitempty"`
}

// PendingEvent marks the order accepted before any I/O happens.
func PendingEvent() StatusEvent {
	return StatusEvent{Status: StagePending.String()}
}

// RoutingEvent carries the winning venue and its quoted price.
func RoutingEvent(venue string, price float64) StatusEvent {
	return StatusEvent{Status: StageRouting.String(), Venue: venue, Price: price}
}

// BuildingEvent marks completion of the transaction-assembly delay.
func BuildingEvent() StatusEvent {
	return StatusEvent{Status: StageBuilding.String()}
}

// SubmittedEvent is published as soon as the settlement call is
// initiated, before its result is known.
func SubmittedEvent() StatusEvent {
	return StatusEvent{Status: StageSubmitted.String()}
}

// ConfirmedEvent carries the settlement id and realized price.
func ConfirmedEvent(res ExecutionResult) StatusEvent {
	return StatusEvent{
		Status:        StageConfirmed.String(),
		SettlementID:  res.SettlementID,
		RealizedPrice: res.RealizedPrice,
	}
}

// FailedEvent carries a human-readable failure description.
func FailedEvent(reason string) StatusEvent {
	return StatusEvent{Status: StageFailed.String(), Error: reason}
}
