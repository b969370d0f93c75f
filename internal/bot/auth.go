package bot

// Gate is the authorization check applied before any handler runs. The
// service is single-operator by configuration: exactly one Telegram user ID
// is allowed through.
type Gate struct {
	operatorID int64
}

// NewGate creates a Gate for the configured operator identity.
func NewGate(operatorID int64) *Gate {
	return &Gate{operatorID: operatorID}
}

// Allow reports whether the sender is the configured operator.
func (g *Gate) Allow(userID int64) bool {
	return userID == g.operatorID
}
