package fix

import "strconv"

// Tag is a FIX field tag number. Tags are keyed as integers; containers keep
// a side list to preserve insertion order on the wire.
type Tag int

// String returns the decimal wire form of the tag.
func (t Tag) String() string {
	return strconv.Itoa(int(t))
}

// Standard FIX 4.4 tags used by the engine. This is dictionary data, not
// logic: only tags the engine and its tests touch are listed, plus every
// member of the repeating-group table in dict.go.
const (
	TagAccount            Tag = 1
	TagAvgPx              Tag = 6
	TagBeginSeqNo         Tag = 7
	TagBeginString        Tag = 8
	TagBodyLength         Tag = 9
	TagCheckSum           Tag = 10
	TagClOrdID            Tag = 11
	TagCommission         Tag = 12
	TagCommType           Tag = 13
	TagCumQty             Tag = 14
	TagCurrency           Tag = 15
	TagEndSeqNo           Tag = 16
	TagExecID             Tag = 17
	TagHandlInst          Tag = 21
	TagSecurityIDSource   Tag = 22
	TagLastCapacity       Tag = 29
	TagLastPx             Tag = 31
	TagLastQty            Tag = 32
	TagMsgSeqNum          Tag = 34
	TagMsgType            Tag = 35
	TagNewSeqNo           Tag = 36
	TagOrderID            Tag = 37
	TagOrderQty           Tag = 38
	TagOrdStatus          Tag = 39
	TagOrdType            Tag = 40
	TagOrigClOrdID        Tag = 41
	TagPossDupFlag        Tag = 43
	TagPrice              Tag = 44
	TagSecurityID         Tag = 48
	TagSenderCompID       Tag = 49
	TagSendingTime        Tag = 52
	TagSide               Tag = 54
	TagSymbol             Tag = 55
	TagTargetCompID       Tag = 56
	TagText               Tag = 58
	TagTransactTime       Tag = 60
	TagListID             Tag = 66
	TagNoOrders           Tag = 73
	TagNoAllocs           Tag = 78
	TagAllocAccount       Tag = 79
	TagAllocQty           Tag = 80
	TagProcessCode        Tag = 81
	TagNoDlvyInst         Tag = 85
	TagEncryptMethod      Tag = 98
	TagExDestination      Tag = 100
	TagHeartBtInt         Tag = 108
	TagTestReqID          Tag = 112
	TagSettlCurrAmt       Tag = 119
	TagSettlCurrency      Tag = 120
	TagGapFillFlag        Tag = 123
	TagNoExecs            Tag = 124
	TagNoMiscFees         Tag = 136
	TagMiscFeeAmt         Tag = 137
	TagMiscFeeCurr        Tag = 138
	TagMiscFeeType        Tag = 139
	TagExecType           Tag = 150
	TagLeavesQty          Tag = 151
	TagAllocAvgPx         Tag = 153
	TagAllocNetMoney      Tag = 154
	TagSettlCurrFxRate    Tag = 155
	TagSettlCurrFxRateCalc Tag = 156
	TagAllocText          Tag = 161
	TagSettlInstSource    Tag = 165
	TagStandInstDbType    Tag = 169
	TagStandInstDbName    Tag = 170
	TagStandInstDbID      Tag = 171
	TagSettlDeliveryType  Tag = 172
	TagSecondaryOrderID   Tag = 198
	TagNotifyBrokerOfCredit Tag = 208
	TagAllocHandlInst     Tag = 209
	TagNoStipulations     Tag = 232
	TagStipulationType    Tag = 233
	TagStipulationValue   Tag = 234
	TagUnderlyingCouponPaymentDate Tag = 241
	TagUnderlyingIssueDate Tag = 242
	TagUnderlyingRepoCollateralSecurityType Tag = 243
	TagUnderlyingRepurchaseTerm Tag = 244
	TagUnderlyingRepurchaseRate Tag = 245
	TagUnderlyingFactor   Tag = 246
	TagUnderlyingRedemptionDate Tag = 247
	TagLegCouponPaymentDate Tag = 248
	TagLegIssueDate       Tag = 249
	TagLegRepoCollateralSecurityType Tag = 250
	TagLegRepurchaseTerm  Tag = 251
	TagLegRepurchaseRate  Tag = 252
	TagLegFactor          Tag = 253
	TagLegRedemptionDate  Tag = 254
	TagUnderlyingCreditRating Tag = 256
	TagLegCreditRating    Tag = 257
	TagUnderlyingSecurityIDSource Tag = 305
	TagUnderlyingIssuer   Tag = 306
	TagUnderlyingSecurityDesc Tag = 307
	TagUnderlyingSecurityExchange Tag = 308
	TagUnderlyingSecurityID Tag = 309
	TagUnderlyingSecurityType Tag = 310
	TagUnderlyingSymbol   Tag = 311
	TagUnderlyingSymbolSfx Tag = 312
	TagUnderlyingMaturityMonthYear Tag = 313
	TagUnderlyingPutOrCall Tag = 315
	TagUnderlyingStrikePrice Tag = 316
	TagUnderlyingOptAttribute Tag = 317
	TagUnderlyingCurrency Tag = 318
	TagEncodedIssuerLen   Tag = 348
	TagEncodedAllocTextLen Tag = 360
	TagEncodedAllocText   Tag = 361
	TagEncodedUnderlyingIssuerLen Tag = 362
	TagEncodedUnderlyingIssuer Tag = 363
	TagEncodedUnderlyingSecurityDescLen Tag = 364
	TagEncodedUnderlyingSecurityDesc Tag = 365
	TagAllocPrice         Tag = 366
	TagCxlRejResponseTo   Tag = 434
	TagUnderlyingCouponRate Tag = 435
	TagUnderlyingContractMultiplier Tag = 436
	TagPartyIDSource      Tag = 447
	TagPartyID            Tag = 448
	TagPartyRole          Tag = 452
	TagNoPartyIDs         Tag = 453
	TagNoSecurityAltID    Tag = 454
	TagSecurityAltID      Tag = 455
	TagSecurityAltIDSource Tag = 456
	TagNoUnderlyingSecurityAltID Tag = 457
	TagUnderlyingSecurityAltID Tag = 458
	TagUnderlyingSecurityAltIDSource Tag = 459
	TagUnderlyingProduct  Tag = 462
	TagUnderlyingCFICode  Tag = 463
	TagIndividualAllocID  Tag = 467
	TagCommCurrency       Tag = 479
	TagFundRenewWaiv      Tag = 497
	TagNestedPartyID      Tag = 524
	TagNestedPartyIDSource Tag = 525
	TagSecondaryClOrdID   Tag = 526
	TagSecondaryExecID    Tag = 527
	TagPartySubID         Tag = 523
	TagNestedPartyRole    Tag = 538
	TagNoNestedPartyIDs   Tag = 539
	TagUnderlyingMaturityDate Tag = 542
	TagNestedPartySubID   Tag = 545
	TagNoLegs             Tag = 555
	TagLegCurrency        Tag = 556
	TagUnderlyingCountryOfIssue Tag = 592
	TagUnderlyingStateOrProvinceOfIssue Tag = 593
	TagUnderlyingLocaleOfIssue Tag = 594
	TagUnderlyingInstrRegistry Tag = 595
	TagLegCountryOfIssue  Tag = 596
	TagLegStateOrProvinceOfIssue Tag = 597
	TagLegLocaleOfIssue   Tag = 598
	TagLegInstrRegistry   Tag = 599
	TagLegSymbol          Tag = 600
	TagLegSymbolSfx       Tag = 601
	TagLegSecurityID      Tag = 602
	TagLegSecurityIDSource Tag = 603
	TagNoLegSecurityAltID Tag = 604
	TagLegSecurityAltID   Tag = 605
	TagLegSecurityAltIDSource Tag = 606
	TagLegProduct         Tag = 607
	TagLegCFICode         Tag = 608
	TagLegSecurityType    Tag = 609
	TagLegMaturityMonthYear Tag = 610
	TagLegMaturityDate    Tag = 611
	TagLegStrikePrice     Tag = 612
	TagLegOptAttribute    Tag = 613
	TagLegContractMultiplier Tag = 614
	TagLegCouponRate      Tag = 615
	TagLegSecurityExchange Tag = 616
	TagLegIssuer          Tag = 617
	TagEncodedLegIssuer   Tag = 619
	TagLegSecurityDesc    Tag = 620
	TagEncodedLegSecurityDescLen Tag = 621
	TagEncodedLegSecurityDesc Tag = 622
	TagLegRatioQty        Tag = 623
	TagLegSide            Tag = 624
	TagClearingInstruction Tag = 577
	TagNoClearingInstructions Tag = 576
	TagMatchStatus        Tag = 573
	TagAllocAcctIDSource  Tag = 661
	TagLastParPx          Tag = 669
	TagNoLegStipulations  Tag = 683
	TagLegStipulationType Tag = 688
	TagLegStipulationValue Tag = 689
	TagNoPositions        Tag = 702
	TagPosType            Tag = 703
	TagLongQty            Tag = 704
	TagShortQty           Tag = 705
	TagPosQtyStatus       Tag = 706
	TagPosAmtType         Tag = 707
	TagPosAmt             Tag = 708
	TagNoUnderlyings      Tag = 711
	TagAllocInterestAtMaturity Tag = 741
	TagAllocAccruedInterestAmt Tag = 742
	TagAllocSettlCurrAmt  Tag = 737
	TagAllocSettlCurrency Tag = 736
	TagLegDatedDate       Tag = 739
	TagLegPool            Tag = 740
	TagNoPosAmt           Tag = 753
	TagNoNested2PartyIDs  Tag = 756
	TagNested2PartyID     Tag = 757
	TagNested2PartyIDSource Tag = 758
	TagNested2PartyRole   Tag = 759
	TagNested2PartySubID  Tag = 760
	TagUnderlyingSecuritySubType Tag = 763
	TagLegSecuritySubType Tag = 764
	TagNoTrdRegTimestamps Tag = 768
	TagTrdRegTimestamp    Tag = 769
	TagTrdRegTimestampType Tag = 770
	TagTrdRegTimestampOrigin Tag = 771
	TagAllocSettlInstType Tag = 780
	TagNoSettlPartyIDs    Tag = 781
	TagSettlPartyID       Tag = 782
	TagSettlPartyIDSource Tag = 783
	TagSettlPartyRole     Tag = 784
	TagSettlPartySubID    Tag = 785
	TagSettlPartySubIDType Tag = 786
	TagDlvyInstType       Tag = 787
	TagOrderAvgPx         Tag = 799
	TagOrderBookingQty    Tag = 800
	TagNoSettlPartySubIDs Tag = 801
	TagNoPartySubIDs      Tag = 802
	TagPartySubIDType     Tag = 803
	TagNoNestedPartySubIDs Tag = 804
	TagNestedPartySubIDType Tag = 805
	TagNoNested2PartySubIDs Tag = 806
	TagNested2PartySubIDType Tag = 807
	TagUnderlyingPx       Tag = 810
	TagNoEvents           Tag = 864
	TagEventType          Tag = 865
	TagEventDate          Tag = 866
	TagEventPx            Tag = 867
	TagEventText          Tag = 868
	TagNoInstrAttrib      Tag = 870
	TagInstrAttribType    Tag = 871
	TagInstrAttribValue   Tag = 872
	TagUnderlyingCPProgram Tag = 877
	TagUnderlyingCPRegType Tag = 878
	TagUnderlyingQty      Tag = 879
	TagUnderlyingDirtyPrice Tag = 882
	TagUnderlyingEndPrice Tag = 883
	TagUnderlyingStartValue Tag = 884
	TagUnderlyingCurrentValue Tag = 885
	TagUnderlyingEndValue Tag = 886
	TagNoUnderlyingStips  Tag = 887
	TagUnderlyingStipType Tag = 888
	TagUnderlyingStipValue Tag = 889
	TagMiscFeeBasis       Tag = 891
	TagUnderlyingStrikeCurrency Tag = 941
	TagLegStrikeCurrency  Tag = 942
	TagNoNested3PartyIDs  Tag = 948
	TagNested3PartyID     Tag = 949
	TagNested3PartyIDSource Tag = 950
	TagNested3PartyRole   Tag = 951
	TagNoNested3PartySubIDs Tag = 952
	TagNested3PartySubID  Tag = 953
	TagNested3PartySubIDType Tag = 954
	TagLegContractSettlMonth Tag = 955
	TagLegInterestAccrualDate Tag = 956
)
