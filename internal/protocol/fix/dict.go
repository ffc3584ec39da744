package fix

// BeginString is the protocol version token carried in tag 8. Only FIX 4.4
// is spoken.
const BeginString = "FIX.4.4"

// SOH is the FIX field delimiter.
const SOH = byte(0x01)

// repeatingGroups maps each repeating-group count tag to the ordered list of
// tags forming one group instance. The first child tag delimits group
// instances on decode. Static FIX 4.4 dictionary data; the codec consults it,
// it never parses anything itself.
var repeatingGroups = map[Tag][]Tag{
	TagNoSecurityAltID: {TagSecurityAltID, TagSecurityAltIDSource},
	TagNoMiscFees:      {TagMiscFeeAmt, TagMiscFeeCurr, TagMiscFeeType, TagMiscFeeBasis},
	TagNoClearingInstructions: {TagClearingInstruction},
	TagNoEvents:        {TagEventType, TagEventDate, TagEventPx, TagEventText},
	TagNoInstrAttrib:   {TagInstrAttribType, TagInstrAttribValue},
	TagNoLegSecurityAltID: {TagLegSecurityAltID, TagLegSecurityAltIDSource},
	TagNoLegStipulations:  {TagLegStipulationType, TagLegStipulationValue},
	TagNoNestedPartyIDs: {
		TagNestedPartyID, TagNestedPartyIDSource, TagNestedPartyRole,
		TagNoNestedPartySubIDs,
	},
	TagNoNestedPartySubIDs: {TagNestedPartySubID, TagNestedPartySubIDType},
	TagNoNested2PartyIDs: {
		TagNested2PartyID, TagNested2PartyIDSource, TagNested2PartyRole,
		TagNoNested2PartySubIDs,
	},
	TagNoNested2PartySubIDs: {TagNested2PartySubID, TagNested2PartySubIDType},
	TagNoNested3PartyIDs: {
		TagNested3PartyID, TagNested3PartyIDSource, TagNested3PartyRole,
		TagNoNested3PartySubIDs,
	},
	TagNoNested3PartySubIDs: {TagNested3PartySubID, TagNested3PartySubIDType},
	TagNoPartyIDs: {
		TagPartyID, TagPartyIDSource, TagPartyRole, TagNoPartySubIDs,
	},
	TagNoPartySubIDs: {TagPartySubID, TagPartySubIDType},
	TagNoPosAmt:      {TagPosAmtType, TagPosAmt},
	TagNoPositions:   {TagPosType, TagLongQty, TagShortQty, TagPosQtyStatus},
	TagNoDlvyInst:    {TagSettlInstSource, TagDlvyInstType, TagNoSettlPartyIDs},
	TagNoSettlPartyIDs: {
		TagSettlPartyID, TagSettlPartyIDSource, TagSettlPartyRole,
		TagNoSettlPartySubIDs,
	},
	TagNoSettlPartySubIDs: {TagSettlPartySubID, TagSettlPartySubIDType},
	TagNoStipulations:     {TagStipulationType, TagStipulationValue},
	TagNoTrdRegTimestamps: {
		TagTrdRegTimestamp, TagTrdRegTimestampType, TagTrdRegTimestampOrigin,
	},
	TagNoUnderlyingSecurityAltID: {
		TagUnderlyingSecurityAltID, TagUnderlyingSecurityAltIDSource,
	},
	TagNoUnderlyingStips: {TagUnderlyingStipType, TagUnderlyingStipValue},
	TagNoOrders: {
		TagClOrdID, TagOrderID, TagSecondaryOrderID, TagSecondaryClOrdID,
		TagListID, TagOrderQty, TagOrderAvgPx, TagOrderBookingQty,
	},
	TagNoExecs: {
		TagLastQty, TagExecID, TagSecondaryExecID, TagLastPx, TagLastParPx,
		TagLastCapacity,
	},
	TagNoUnderlyings: {
		TagUnderlyingSymbol, TagUnderlyingSymbolSfx, TagUnderlyingSecurityID,
		TagUnderlyingSecurityIDSource, TagNoUnderlyingSecurityAltID,
		TagUnderlyingProduct, TagUnderlyingCFICode, TagUnderlyingSecurityType,
		TagUnderlyingSecuritySubType, TagUnderlyingMaturityMonthYear,
		TagUnderlyingMaturityDate, TagUnderlyingPutOrCall,
		TagUnderlyingCouponPaymentDate, TagUnderlyingIssueDate,
		TagUnderlyingRepoCollateralSecurityType, TagUnderlyingRepurchaseTerm,
		TagUnderlyingRepurchaseRate, TagUnderlyingFactor,
		TagUnderlyingCreditRating, TagUnderlyingInstrRegistry,
		TagUnderlyingCountryOfIssue, TagUnderlyingStateOrProvinceOfIssue,
		TagUnderlyingLocaleOfIssue, TagUnderlyingRedemptionDate,
		TagUnderlyingStrikePrice, TagUnderlyingStrikeCurrency,
		TagUnderlyingOptAttribute, TagUnderlyingContractMultiplier,
		TagUnderlyingCouponRate, TagUnderlyingSecurityExchange,
		TagUnderlyingIssuer, TagEncodedUnderlyingIssuerLen,
		TagEncodedUnderlyingIssuer, TagUnderlyingSecurityDesc,
		TagEncodedUnderlyingSecurityDescLen, TagEncodedUnderlyingSecurityDesc,
		TagUnderlyingCPProgram, TagUnderlyingCPRegType, TagUnderlyingCurrency,
		TagUnderlyingQty, TagUnderlyingPx, TagUnderlyingDirtyPrice,
		TagUnderlyingEndPrice, TagUnderlyingStartValue,
		TagUnderlyingCurrentValue, TagUnderlyingEndValue, TagNoUnderlyingStips,
	},
	TagNoAllocs: {
		TagAllocAccount, TagAllocAcctIDSource, TagMatchStatus, TagAllocPrice,
		TagAllocQty, TagIndividualAllocID, TagProcessCode, TagNoNestedPartyIDs,
		TagNotifyBrokerOfCredit, TagAllocHandlInst, TagAllocText,
		TagEncodedAllocTextLen, TagEncodedAllocText, TagCommission,
		TagCommType, TagCommCurrency, TagFundRenewWaiv, TagAllocAvgPx,
		TagAllocNetMoney, TagSettlCurrAmt, TagAllocSettlCurrAmt,
		TagSettlCurrency, TagAllocSettlCurrency, TagSettlCurrFxRate,
		TagSettlCurrFxRateCalc, TagAllocAccruedInterestAmt,
		TagAllocInterestAtMaturity, TagNoMiscFees, TagNoClearingInstructions,
		TagAllocSettlInstType, TagSettlDeliveryType, TagStandInstDbType,
		TagStandInstDbName, TagStandInstDbID, TagNoDlvyInst,
	},
	TagNoLegs: {
		TagLegSymbol, TagLegSymbolSfx, TagLegSecurityID,
		TagLegSecurityIDSource, TagNoLegSecurityAltID, TagLegProduct,
		TagLegCFICode, TagLegSecurityType, TagLegSecuritySubType,
		TagLegMaturityMonthYear, TagLegMaturityDate, TagLegCouponPaymentDate,
		TagLegIssueDate, TagLegRepoCollateralSecurityType,
		TagLegRepurchaseTerm, TagLegRepurchaseRate, TagLegFactor,
		TagLegCreditRating, TagLegInstrRegistry, TagLegCountryOfIssue,
		TagLegStateOrProvinceOfIssue, TagLegLocaleOfIssue,
		TagLegRedemptionDate, TagLegStrikePrice, TagLegStrikeCurrency,
		TagLegOptAttribute, TagLegContractMultiplier, TagLegCouponRate,
		TagLegSecurityExchange, TagLegIssuer, TagEncodedIssuerLen,
		TagEncodedLegIssuer, TagLegSecurityDesc, TagEncodedLegSecurityDescLen,
		TagEncodedLegSecurityDesc, TagLegRatioQty, TagLegSide, TagLegCurrency,
		TagLegPool, TagLegDatedDate, TagLegContractSettlMonth,
		TagLegInterestAccrualDate,
	},
}

// GroupChildren returns the ordered member tags of the repeating group
// started by parent, or nil when parent is not a known group tag.
func GroupChildren(parent Tag) []Tag {
	return repeatingGroups[parent]
}

// IsGroupTag reports whether t starts a known repeating group.
func IsGroupTag(t Tag) bool {
	_, ok := repeatingGroups[t]
	return ok
}
