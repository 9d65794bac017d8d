package model

import "time"

// AnalysisRun is the persisted summary of one analysis pass over an address.
type AnalysisRun struct {
	RunID            string
	Address          string
	Network          Network
	Pattern          string
	NodeCount        uint32
	EdgeCount        uint32
	MaxOutDegree     uint32
	Components       uint32
	BranchingFactor  float64
	MaxDepth         uint32
	CycleMembers     []string
	TransactionCount uint32
	Warnings         []string
	CreatedAt        time.Time
}

// StateNode is a persisted state of a run.
type StateNode struct {
	RunID         string
	Position      uint32
	Ref           string
	TxHash        string
	OutputIndex   uint32
	Address       string
	// Lovelace saturates at the uint64 maximum; Amounts holds exact quantities.
	Lovelace      uint64
	// Amounts maps every asset unit of the output to its decimal quantity.
	Amounts       map[string]string
	DatumHash     string
	DatumCBOR     string
	Class         string
	BlockHeight   uint64
	Slot          uint64
	BlockTime     time.Time
	SpentByTx     string
	SpentRedeemer string
	Warnings      []string
}

// Transition is a persisted edge between two states of a run.
type Transition struct {
	RunID         string
	Position      uint32
	FromRef       string
	ToRef         string
	TxHash        string
	InputIndex    uint32
	Redeemer      string
	RedeemerIndex *uint64
}
