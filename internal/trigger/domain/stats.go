package domain

// Stats summarises authentication activity since startup.
type Stats struct {
	TotalAttempts    uint64
	Accepted         uint64
	Rejected         uint64
	RejectedByReason map[Reason]uint64
	ActionsExecuted  uint64
	ActionsFailed    uint64
	ActiveDevices    int64
	Active24h        int64
}
