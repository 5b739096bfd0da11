package transfer

type State uint8

const (
	Idle State = iota
	RequestSent
	Transferring
	Complete
	Failed
)

var stateNames = [...]string{
	Idle:         "idle",
	RequestSent:  "request-sent",
	Transferring: "transferring",
	Complete:     "complete",
	Failed:       "failed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}

	return "unknown"
}

// Terminal reports whether no further datagrams belong to the exchange.
func (s State) Terminal() bool {
	return s == Complete || s == Failed
}
