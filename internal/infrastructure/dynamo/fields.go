package dynamo

// DynamoDB attribute names used in hand-built update expressions.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldAttempts         = "attempts"
	fieldRemainingMinutes = "remaining_minutes"
)
