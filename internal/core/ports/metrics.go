package ports

// OperationCounter receives counts of business operations. A nil counter is
// valid and records nothing.
type OperationCounter interface {
	AuthAttempt(operation, outcome string)
	TaskOperation(operation string)
}
