package model

import (
	"math/big"
	"time"
)

// LovelaceUnit is the amount unit of the native currency.
const LovelaceUnit = "lovelace"

// Transaction is an observed transaction touching the analyzed address.
type Transaction struct {
	Hash        string
	BlockHeight uint64
	Slot        uint64
	BlockTime   time.Time
	Inputs      []Input
	Outputs     []Output
	Redeemers   []Redeemer
}

// Input references an output of an earlier transaction.
type Input struct {
	TxHash string
	Index  uint32
	// Address of the consumed output when the ingestion side knows it.
	Address    string
	Collateral bool
	Reference  bool
}

// Ref returns the reference of the consumed output.
func (i Input) Ref() Ref {
	return Ref{TxHash: i.TxHash, Index: i.Index}
}

// Output is a transaction output with its optional datum.
type Output struct {
	Address string
	Amounts []Amount
	Datum   *DatumRef
}

// Lovelace returns the native currency quantity of the output, zero when absent.
func (o Output) Lovelace() *big.Int {
	total := new(big.Int)
	for _, a := range o.Amounts {
		if a.Unit == LovelaceUnit && a.Quantity != nil {
			total.Add(total, a.Quantity)
		}
	}
	return total
}

// Amount is a quantity of a single asset unit.
type Amount struct {
	Unit     string
	Quantity *big.Int
}

// DatumRef carries the datum payload attached to an output.
// Raw may be empty when only the hash is known and the payload could not be fetched.
type DatumRef struct {
	Hash string
	Raw  []byte
}

type RedeemerTag string

const (
	RedeemerSpend  RedeemerTag = "spend"
	RedeemerMint   RedeemerTag = "mint"
	RedeemerCert   RedeemerTag = "cert"
	RedeemerReward RedeemerTag = "reward"
)

// Redeemer is a script argument supplied by a transaction.
// For spend redeemers Index is the position of the input in the canonical input order.
type Redeemer struct {
	Tag     RedeemerTag
	Index   uint32
	Raw     []byte
	ExUnits ExUnits
}

type ExUnits struct {
	Mem   uint64
	Steps uint64
}
