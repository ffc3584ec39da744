// Package order implements the client-side lifecycle of a FIX
// NewOrderSingle: request builders with client order id rotation, and the
// state machine advancing the order on execution reports and cancel rejects.
package order

import (
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/marmos91/fixlink/internal/protocol/fix"
)

var reClOrdRoot = regexp.MustCompile(`^(.+)--(\d+)$`)

// timeNow is stubbed in tests for deterministic TransactTime values.
var timeNow = func() time.Time { return time.Now().UTC() }

// Order tracks one outstanding NewOrderSingle.
//
// The client order id evolves as "<root>--<n>": every request (new, cancel,
// replace) rotates to a fresh id, and while a cancel or replace is pending
// OrigClOrdID names the previous one. At most one amendment can be in flight
// at a time.
type Order struct {
	ClOrdID     string
	OrigClOrdID string
	OrderID     string

	Ticker  string
	Side    fix.Side
	Price   float64
	Qty     float64
	OrdType fix.OrdType
	Account string

	LeavesQty float64
	CumQty    float64
	AvgPx     float64

	Status fix.OrdStatus

	// TargetPrice is informational: the price the strategy is aiming for,
	// defaulting to the limit price.
	TargetPrice float64

	clOrdIDCnt int
}

// New creates an order in the internal Created status. clOrdID is the root
// used to derive wire client order ids.
func New(clOrdID, ticker string, side fix.Side, price, qty float64, ordType fix.OrdType, account string) *Order {
	return &Order{
		ClOrdID:     clOrdID,
		Ticker:      ticker,
		Side:        side,
		Price:       price,
		Qty:         qty,
		OrdType:     ordType,
		Account:     account,
		AvgPx:       math.NaN(),
		Status:      fix.StatusCreated,
		TargetPrice: price,
	}
}

func (o *Order) String() string {
	return fmt.Sprintf("Order(%s, clord=%s, ticker=%s, px=%v, qty=%v, leavesqty=%v, cumqty=%v)",
		o.Status, o.ClOrdID, o.Ticker, o.Price, o.Qty, o.LeavesQty, o.CumQty)
}

// ClOrdRoot strips the "--<n>" suffix from a rotated client order id.
func ClOrdRoot(clOrdID string) string {
	if m := reClOrdRoot.FindStringSubmatch(clOrdID); m != nil {
		return m[1]
	}
	return clOrdID
}

// Root returns the root of the order's current client order id.
func (o *Order) Root() string {
	return ClOrdRoot(o.ClOrdID)
}

// clOrdNext rotates to the next client order id for this order.
func (o *Order) clOrdNext() string {
	o.clOrdIDCnt++
	return fmt.Sprintf("%s--%d", o.Root(), o.clOrdIDCnt)
}

// NewReq builds the NewOrderSingle message for a freshly created order and
// moves it to PendingNew.
func (o *Order) NewReq() (*fix.Message, error) {
	if o.Status != fix.StatusCreated {
		return nil, fmt.Errorf("%w: NewReq is only valid for just-created orders", ErrNotAllowed)
	}

	o.ClOrdID = o.clOrdNext()

	m := fix.NewMessage(fix.MsgTypeNewOrderSingle)
	_ = m.Set(fix.TagClOrdID, o.ClOrdID)
	o.setInstrument(m)
	o.setAccount(m)
	_ = m.Set(fix.TagOrdType, o.OrdType)
	_ = m.Set(fix.TagSide, o.Side)
	_ = m.Set(fix.TagTransactTime, timeNow().Format(fix.SendingTimeFormat))
	o.setPriceQty(m, o.Price, o.Qty)

	o.Status = fix.StatusPendingNew
	return m, nil
}

// CancelReq builds an OrderCancelRequest. Only one amendment may be pending
// at a time; the order moves to PendingCancel.
func (o *Order) CancelReq() (*fix.Message, error) {
	if !o.CanCancel() {
		return nil, fmt.Errorf("%w: %s not cancellable", ErrNotAllowed, o)
	}

	o.OrigClOrdID = o.ClOrdID
	o.ClOrdID = o.clOrdNext()

	m := fix.NewMessage(fix.MsgTypeOrderCancelRequest)
	_ = m.Set(fix.TagClOrdID, o.ClOrdID)
	_ = m.Set(fix.TagOrderQty, o.Qty)
	_ = m.Set(fix.TagOrigClOrdID, o.OrigClOrdID)
	o.setInstrument(m)
	_ = m.Set(fix.TagSide, o.Side)
	_ = m.Set(fix.TagTransactTime, timeNow().Format(fix.SendingTimeFormat))

	o.Status = fix.StatusPendingCancel
	return m, nil
}

// ReplaceReq builds an OrderCancelReplaceRequest changing price and/or
// quantity. Zero (or NaN) leaves a field unchanged; at least one of the two
// must actually change. The order moves to PendingReplace.
func (o *Order) ReplaceReq(price, qty float64) (*fix.Message, error) {
	if !o.CanReplace() {
		return nil, fmt.Errorf("%w: %s not replaceable", ErrNotAllowed, o)
	}

	if price == 0 || math.IsNaN(price) {
		price = o.Price
	}
	if qty == 0 || math.IsNaN(qty) {
		qty = o.Qty
	}
	if price == o.Price && qty == o.Qty {
		return nil, ErrNoChange
	}

	o.OrigClOrdID = o.ClOrdID
	o.ClOrdID = o.clOrdNext()

	m := fix.NewMessage(fix.MsgTypeOrderCancelReplaceRequest)
	_ = m.Set(fix.TagClOrdID, o.ClOrdID)
	_ = m.Set(fix.TagOrigClOrdID, o.OrigClOrdID)
	_ = m.Set(fix.TagOrdType, o.OrdType)
	o.setInstrument(m)
	o.setPriceQty(m, price, qty)
	_ = m.Set(fix.TagSide, o.Side)
	_ = m.Set(fix.TagTransactTime, timeNow().Format(fix.SendingTimeFormat))

	o.Status = fix.StatusPendingReplace
	return m, nil
}

// setInstrument populates instrument identification. Counterparties wanting
// richer identification wrap Order and extend the message afterwards.
func (o *Order) setInstrument(m *fix.Message) {
	_ = m.Set(fix.TagSymbol, o.Ticker)
}

func (o *Order) setAccount(m *fix.Message) {
	_ = m.Set(fix.TagAccount, o.Account)
}

// setPriceQty applies price and quantity. Tick-size rounding or conditional
// presence by order type belongs in a wrapper, not here.
func (o *Order) setPriceQty(m *fix.Message, price, qty float64) {
	_ = m.Set(fix.TagPrice, price)
	_ = m.Set(fix.TagOrderQty, qty)
}

// ProcessExecutionReport advances the order on an inbound ExecutionReport.
// It returns true when the status changed. Reports for unknown client order
// ids fail with ErrClOrdIDMismatch; transitions the table forbids are
// ignored.
func (o *Order) ProcessExecutionReport(m *fix.Message) (bool, error) {
	if m.Type != fix.MsgTypeExecutionReport {
		return false, ErrWrongMsgType
	}

	clOrdID, err := m.Get(fix.TagClOrdID)
	if err != nil {
		return false, err
	}
	if clOrdID != o.ClOrdID && clOrdID != o.OrigClOrdID {
		return false, fmt.Errorf("%w: report clord=%s order clord=%s orig=%s",
			ErrClOrdIDMismatch, clOrdID, o.ClOrdID, o.OrigClOrdID)
	}

	ordStatus, err := m.Get(fix.TagOrdStatus)
	if err != nil {
		return false, err
	}
	execTypeRaw, err := m.Get(fix.TagExecType)
	if err != nil {
		return false, err
	}
	cumQty, err := m.GetFloat(fix.TagCumQty)
	if err != nil {
		return false, err
	}
	leavesQty, err := m.GetFloat(fix.TagLeavesQty)
	if err != nil {
		return false, err
	}

	execType := fix.ExecType(execTypeRaw)

	newStatus, terr := ChangeStatus(o.Status, m.Type, execType, fix.OrdStatus(ordStatus))
	if terr != nil {
		// Illegal transitions leave the status untouched; the report's
		// order id, quantities and average price are still recorded below.
		newStatus = ""
	}

	if orderID, err := m.Get(fix.TagOrderID); err == nil {
		o.OrderID = orderID
	}
	o.LeavesQty = leavesQty
	o.CumQty = cumQty
	if avg, err := m.GetFloat(fix.TagAvgPx); err == nil {
		o.AvgPx = avg
	}

	if execType == fix.ExecReplaced {
		// Replace confirmed. Price and quantity are optional on the
		// report; absence is not an error.
		if price, err := m.GetFloat(fix.TagPrice); err == nil {
			o.Price = price
		}
		if qty, err := m.GetFloat(fix.TagOrderQty); err == nil {
			o.Qty = qty
		}
		o.OrigClOrdID = ""
	}

	if newStatus != "" {
		o.Status = newStatus
		if newStatus != fix.StatusPendingCancel && newStatus != fix.StatusPendingReplace {
			// No amendment outstanding any more.
			o.OrigClOrdID = ""
		}
		return true, nil
	}
	return false, nil
}

// ProcessCancelReject restores the order status carried by an inbound
// OrderCancelReject. Returns true when the status changed.
func (o *Order) ProcessCancelReject(m *fix.Message) (bool, error) {
	if m.Type != fix.MsgTypeOrderCancelReject {
		return false, ErrWrongMsgType
	}

	ordStatus, err := m.Get(fix.TagOrdStatus)
	if err != nil {
		return false, err
	}

	newStatus, terr := ChangeStatus(o.Status, m.Type, fix.ExecNone, fix.OrdStatus(ordStatus))
	if terr != nil {
		newStatus = ""
	}

	if fix.OrdStatus(ordStatus) == fix.StatusRejected {
		// The referenced ClOrdID does not exist at the counterparty;
		// deactivate the order.
		o.LeavesQty = 0
	}

	if newStatus != "" {
		o.Status = newStatus
		o.OrigClOrdID = ""
		return true, nil
	}
	return false, nil
}

// IsFinished reports whether the order reached a terminal status.
func (o *Order) IsFinished() bool {
	switch o.Status {
	case fix.StatusFilled, fix.StatusCanceled, fix.StatusRejected, fix.StatusExpired:
		return true
	}
	return false
}

// CanCancel reports whether a cancel request is legal from the current
// status.
func (o *Order) CanCancel() bool {
	next, err := ChangeStatus(o.Status, fix.MsgTypeOrderCancelRequest, fix.ExecNone, fix.StatusPendingCancel)
	return err == nil && next != ""
}

// CanReplace reports whether a replace request is legal from the current
// status.
func (o *Order) CanReplace() bool {
	next, err := ChangeStatus(o.Status, fix.MsgTypeOrderCancelReplaceRequest, fix.ExecNone, fix.StatusPendingReplace)
	return err == nil && next != ""
}
