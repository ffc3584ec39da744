package fix

// OrdStatus is the FIX order status (tag 39), extended with the internal
// StatusCreated used before the first request goes out. StatusCreated is not
// a wire value.
type OrdStatus string

const (
	StatusCreated            OrdStatus = "Z"
	StatusNew                OrdStatus = "0"
	StatusPartiallyFilled    OrdStatus = "1"
	StatusFilled             OrdStatus = "2"
	StatusDoneForDay         OrdStatus = "3"
	StatusCanceled           OrdStatus = "4"
	StatusPendingCancel      OrdStatus = "6"
	StatusStopped            OrdStatus = "7"
	StatusRejected           OrdStatus = "8"
	StatusSuspended          OrdStatus = "9"
	StatusPendingNew         OrdStatus = "A"
	StatusCalculated         OrdStatus = "B"
	StatusExpired            OrdStatus = "C"
	StatusAcceptedForBidding OrdStatus = "D"
	StatusPendingReplace     OrdStatus = "E"
)

func (s OrdStatus) String() string { return string(s) }

// ExecType is the execution-report event kind (tag 150).
type ExecType string

const (
	ExecNew           ExecType = "0"
	ExecDoneForDay    ExecType = "3"
	ExecCanceled      ExecType = "4"
	ExecReplaced      ExecType = "5"
	ExecPendingCancel ExecType = "6"
	ExecStopped       ExecType = "7"
	ExecRejected      ExecType = "8"
	ExecSuspended     ExecType = "9"
	ExecPendingNew    ExecType = "A"
	ExecCalculated    ExecType = "B"
	ExecExpired       ExecType = "C"
	ExecRestated      ExecType = "D"
	ExecPendingReplace ExecType = "E"
	ExecTrade         ExecType = "F"
	ExecTradeCorrect  ExecType = "G"
	ExecTradeCancel   ExecType = "H"
	ExecOrderStatus   ExecType = "I"

	// ExecNone marks message kinds that carry no ExecType (cancel
	// rejects and outgoing requests).
	ExecNone ExecType = ""
)

func (e ExecType) String() string { return string(e) }

// Side is the order side (tag 54).
type Side string

const (
	SideBuy  Side = "1"
	SideSell Side = "2"
	SideSellShort Side = "5"
)

func (s Side) String() string { return string(s) }

// OrdType is the order type (tag 40).
type OrdType string

const (
	OrdTypeMarket    OrdType = "1"
	OrdTypeLimit     OrdType = "2"
	OrdTypeStop      OrdType = "3"
	OrdTypeStopLimit OrdType = "4"
)

func (o OrdType) String() string { return string(o) }
