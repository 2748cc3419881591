package chain

import (
	"math/big"
	"time"
)

// Receipt summarizes a mined transaction. Succeeded reflects the receipt
// status, not just inclusion in a block.
type Receipt struct {
	TxHash      string
	BlockNumber int64
	Succeeded   bool
}

// PropertyDetails is the on-chain registration record for a property.
type PropertyDetails struct {
	IsRegistered bool
	Owner        string
}

// MortgageStatus is the on-chain mortgage record for a property. Lender
// and AmountWei are only meaningful when IsMortgaged is true.
type MortgageStatus struct {
	IsMortgaged bool
	Lender      string
	AmountWei   *big.Int
}

// HistoryEntry is one event from a property's on-chain transaction log.
type HistoryEntry struct {
	PropertyID string
	From       string
	To         string
	Type       string
	Timestamp  time.Time
	ValueWei   *big.Int
}
