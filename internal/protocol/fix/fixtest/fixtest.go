// Package fixtest provides message builders and a scripted counterparty for
// exercising the engine in tests: canned session-level messages, execution
// reports consistent with an order's book-keeping, and cancel rejects.
package fixtest

import (
	"fmt"
	"math"

	"github.com/marmos91/fixlink/internal/protocol/fix"
	"github.com/marmos91/fixlink/pkg/order"
)

// MsgLogon builds a standard Logon (EncryptMethod=0, HeartBtInt=30).
func MsgLogon() *fix.Message {
	m := fix.NewMessage(fix.MsgTypeLogon)
	_ = m.Set(fix.TagEncryptMethod, 0)
	_ = m.Set(fix.TagHeartBtInt, 30)
	return m
}

// MsgLogout builds a Logout.
func MsgLogout() *fix.Message {
	return fix.NewMessage(fix.MsgTypeLogout)
}

// MsgHeartbeat builds a Heartbeat, echoing testReqID when non-empty.
func MsgHeartbeat(testReqID string) *fix.Message {
	m := fix.NewMessage(fix.MsgTypeHeartbeat)
	if testReqID != "" {
		_ = m.Set(fix.TagTestReqID, testReqID)
	}
	return m
}

// MsgTestRequest builds a TestRequest.
func MsgTestRequest(testReqID string) *fix.Message {
	m := fix.NewMessage(fix.MsgTypeTestRequest)
	_ = m.Set(fix.TagTestReqID, testReqID)
	return m
}

// MsgSequenceReset builds a SequenceReset with explicit MsgSeqNum.
func MsgSequenceReset(msgSeqNum, newSeqNo int, gapFill bool) *fix.Message {
	m := fix.NewMessage(fix.MsgTypeSequenceReset)
	_ = m.Set(fix.TagMsgSeqNum, msgSeqNum)
	flag := "N"
	if gapFill {
		flag = "Y"
	}
	_ = m.Set(fix.TagGapFillFlag, flag)
	_ = m.Set(fix.TagNewSeqNo, newSeqNo)
	return m
}

// MsgResendRequest builds a ResendRequest.
func MsgResendRequest(beginSeqNo, endSeqNo int) *fix.Message {
	m := fix.NewMessage(fix.MsgTypeResendRequest)
	_ = m.Set(fix.TagBeginSeqNo, beginSeqNo)
	_ = m.Set(fix.TagEndSeqNo, endSeqNo)
	return m
}

// Tester plays the counterparty for order-lifecycle tests: it tracks
// registered orders and fabricates execution reports consistent with their
// quantities.
type Tester struct {
	registered map[string]*order.Order
	orderID    int
	execID     int
}

// NewTester returns an empty counterparty.
func NewTester() *Tester {
	return &Tester{registered: make(map[string]*order.Order), execID: 10000}
}

// RegisterOrder records o as known to the counterparty.
func (t *Tester) RegisterOrder(o *order.Order) {
	t.registered[o.ClOrdID] = o
}

// CancelRequest builds o's cancel request and re-registers the rotated id.
func (t *Tester) CancelRequest(o *order.Order) (*fix.Message, error) {
	m, err := o.CancelReq()
	if err != nil {
		return nil, err
	}
	t.registered[o.ClOrdID] = o
	return m, nil
}

// ReplaceRequest builds o's replace request and re-registers the rotated id.
func (t *Tester) ReplaceRequest(o *order.Order, price, qty float64) (*fix.Message, error) {
	m, err := o.ReplaceReq(price, qty)
	if err != nil {
		return nil, err
	}
	t.registered[o.ClOrdID] = o
	return m, nil
}

// CancelReject fabricates the OrderCancelReject answering req, restoring
// ordStatus.
func (t *Tester) CancelReject(req *fix.Message, ordStatus fix.OrdStatus) *fix.Message {
	clOrdID, _ := req.Get(fix.TagClOrdID)
	origClOrdID, _ := req.Get(fix.TagOrigClOrdID)

	m := fix.NewMessage(fix.MsgTypeOrderCancelReject)
	_ = m.Set(fix.TagOrderID, 0)
	_ = m.Set(fix.TagClOrdID, clOrdID)
	_ = m.Set(fix.TagOrigClOrdID, origClOrdID)
	_ = m.Set(fix.TagOrdStatus, ordStatus)

	switch req.Type {
	case fix.MsgTypeOrderCancelRequest:
		_ = m.Set(fix.TagCxlRejResponseTo, "1")
	case fix.MsgTypeOrderCancelReplaceRequest:
		_ = m.Set(fix.TagCxlRejResponseTo, "2")
	default:
		panic(fmt.Sprintf("CancelReject answering unexpected msg type %q", req.Type))
	}
	return m
}

// ExecReportParams are the optional fields of a fabricated report. NaN
// means "derive from the order's current book-keeping".
type ExecReportParams struct {
	CumQty      float64
	LeavesQty   float64
	LastQty     float64
	Price       float64
	OrderQty    float64
	AvgPx       float64
	OrigClOrdID string
}

// DefaultExecReportParams returns params with every quantity unset (NaN)
// except AvgPx, which is 0.
func DefaultExecReportParams() ExecReportParams {
	nan := math.NaN()
	return ExecReportParams{
		CumQty: nan, LeavesQty: nan, LastQty: nan,
		Price: nan, OrderQty: nan, AvgPx: 0,
	}
}

// ExecReport fabricates an ExecutionReport for a registered order, checking
// the same consistency rules a real counterparty would enforce.
func (t *Tester) ExecReport(o *order.Order, clOrdID string, execType fix.ExecType, ordStatus fix.OrdStatus, p ExecReportParams) *fix.Message {
	if _, ok := t.registered[o.ClOrdID]; !ok {
		panic("ExecReport for unregistered order")
	}
	if clOrdID == "" {
		panic("ExecReport without clOrdID")
	}

	m := fix.NewMessage(fix.MsgTypeExecutionReport)
	_ = m.Set(fix.TagClOrdID, clOrdID)

	if o.OrderID == "" {
		t.orderID++
		_ = m.Set(fix.TagOrderID, t.orderID)
	} else {
		_ = m.Set(fix.TagOrderID, o.OrderID)
	}
	t.execID++
	_ = m.Set(fix.TagExecID, t.execID)

	if p.OrigClOrdID != "" {
		_ = m.Set(fix.TagOrigClOrdID, p.OrigClOrdID)
	}
	_ = m.Set(fix.TagExecType, execType)
	_ = m.Set(fix.TagOrdStatus, ordStatus)
	_ = m.Set(fix.TagSide, o.Side)

	orderQty := o.Qty
	if !math.IsNaN(p.OrderQty) {
		if execType != fix.ExecReplaced {
			panic("OrderQty override is only applicable to ExecType=5 (replace)")
		}
		orderQty = p.OrderQty
	}

	cumQty := o.CumQty
	if !math.IsNaN(p.CumQty) {
		cumQty = p.CumQty
	}
	_ = m.Set(fix.TagCumQty, cumQty)

	leavesQty := o.LeavesQty
	if !math.IsNaN(p.LeavesQty) {
		leavesQty = p.LeavesQty
	}
	_ = m.Set(fix.TagLeavesQty, leavesQty)

	if cumQty+leavesQty > orderQty {
		panic(fmt.Sprintf("cum_qty[%v] + leaves_qty[%v] > order_qty[%v]", cumQty, leavesQty, orderQty))
	}

	if !math.IsNaN(p.LastQty) {
		if execType != fix.ExecTrade {
			panic("LastQty is only applicable to ExecType=F (trade)")
		}
		_ = m.Set(fix.TagLastQty, p.LastQty)
	} else if execType == fix.ExecTrade {
		panic("LastQty must be set when ExecType=F (trade)")
	}

	price := o.Price
	if !math.IsNaN(p.Price) {
		if execType != fix.ExecReplaced {
			panic("Price override is only applicable to ExecType=5 (replace)")
		}
		price = p.Price
	}
	_ = m.Set(fix.TagSymbol, o.Ticker)
	_ = m.Set(fix.TagPrice, price)
	_ = m.Set(fix.TagOrderQty, orderQty)
	_ = m.Set(fix.TagAvgPx, p.AvgPx)
	_ = m.Set(fix.TagAccount, o.Account)

	if isTerminal(ordStatus) && leavesQty != 0 {
		panic("report is terminal but LeavesQty != 0")
	}
	return m
}

func isTerminal(s fix.OrdStatus) bool {
	switch s {
	case fix.StatusFilled, fix.StatusCanceled, fix.StatusRejected, fix.StatusExpired:
		return true
	}
	return false
}
