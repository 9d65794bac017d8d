// Package mock serves a fixed vesting contract history for demos and tests.
package mock

import (
	"math/big"
	"time"

	"github.com/blinklabs-io/plutigo/data"
	"github.com/goodnatureofminers/stateinsight7000/internal/cardano/model"
	"github.com/goodnatureofminers/stateinsight7000/internal/datum"
	"github.com/goodnatureofminers/stateinsight7000/internal/source"
)

// ScriptAddress is the address of the mock vesting validator.
const ScriptAddress = "addr_test1wpvesting_contract_mock_address_12345"

const (
	walletAlice   = "addr_test1qzalice_wallet_mock_address_000000000000000000000"
	walletBob     = "addr_test1qzbob_wallet_mock_address_0000000000000000000000"
	walletFunding = "addr_test1qzfunding_wallet_mock_address_00000000000000000"
)

// Redeemer constructor indices of the vesting validator.
const (
	RedeemerUnlock uint = iota
	RedeemerPartialUnlock
	RedeemerCancel
)

var (
	beneficiaryAlice = []byte{0xa1, 0x1c, 0xe0, 0x01, 0xa1, 0x1c, 0xe0, 0x01, 0xa1, 0x1c, 0xe0, 0x01, 0xa1, 0x1c, 0xe0, 0x01, 0xa1, 0x1c, 0xe0, 0x01, 0xa1, 0x1c, 0xe0, 0x01, 0xa1, 0x1c, 0xe0, 0x01}
	beneficiaryBob   = []byte{0xb0, 0xb0, 0xb0, 0x02, 0xb0, 0xb0, 0xb0, 0x02, 0xb0, 0xb0, 0xb0, 0x02, 0xb0, 0xb0, 0xb0, 0x02, 0xb0, 0xb0, 0xb0, 0x02, 0xb0, 0xb0, 0xb0, 0x02, 0xb0, 0xb0, 0xb0, 0x02}

	genesis = time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC)
)

// New returns a source serving the canned vesting history.
func New() *source.Memory {
	return source.NewMemory(History())
}

// TxHash returns the deterministic hash of the n-th mock transaction, starting at 1.
func TxHash(n int) string {
	return datum.Hash([]byte{'m', 'o', 'c', 'k', byte(n)})
}

// History builds the vesting contract lifecycle:
//
//	tx1 locks for Alice, tx2 locks for Bob, tx3 partially unlocks Alice's vest,
//	tx4 unlocks the remainder, tx5 cancels Bob's vest, tx6 locks for Alice until 2099.
func History() []model.Transaction {
	aliceDeadline := genesis.Add(30 * 24 * time.Hour).UnixMilli()
	bobDeadline := genesis.Add(60 * 24 * time.Hour).UnixMilli()
	farDeadline := time.Date(2099, time.January, 1, 0, 0, 0, 0, time.UTC).UnixMilli()

	funding := datum.Hash([]byte("mock funding"))

	tx1 := newTx(1, 0)
	tx1.Inputs = []model.Input{{TxHash: funding, Index: 0, Address: walletFunding}}
	tx1.Outputs = []model.Output{
		scriptOutput(100_000_000, vestingDatum(beneficiaryAlice, aliceDeadline, 100_000_000)),
		walletOutput(walletFunding, 849_825_743),
	}

	tx2 := newTx(2, 1)
	tx2.Inputs = []model.Input{{TxHash: funding, Index: 1, Address: walletFunding}}
	tx2.Outputs = []model.Output{
		scriptOutput(50_000_000, vestingDatum(beneficiaryBob, bobDeadline, 50_000_000)),
		walletOutput(walletFunding, 249_830_121),
	}

	tx3 := newTx(3, 2)
	tx3.Inputs = []model.Input{
		{TxHash: tx1.Hash, Index: 1, Address: walletFunding, Collateral: true},
		{TxHash: tx1.Hash, Index: 0, Address: ScriptAddress},
	}
	tx3.Outputs = []model.Output{
		scriptOutput(60_000_000, vestingDatum(beneficiaryAlice, aliceDeadline, 60_000_000)),
		walletOutput(walletAlice, 39_812_004),
	}
	tx3.Redeemers = []model.Redeemer{spendRedeemer(0, RedeemerPartialUnlock)}

	tx4 := newTx(4, 3)
	tx4.Inputs = []model.Input{
		{TxHash: tx3.Hash, Index: 0, Address: ScriptAddress},
		{TxHash: tx3.Hash, Index: 1, Address: walletAlice, Collateral: true},
	}
	tx4.Outputs = []model.Output{walletOutput(walletAlice, 59_820_311)}
	tx4.Redeemers = []model.Redeemer{spendRedeemer(0, RedeemerUnlock)}

	tx5 := newTx(5, 4)
	tx5.Inputs = []model.Input{
		{TxHash: tx2.Hash, Index: 0, Address: ScriptAddress},
		{TxHash: tx2.Hash, Index: 1, Address: walletFunding, Collateral: true},
	}
	tx5.Outputs = []model.Output{walletOutput(walletBob, 49_822_976)}
	tx5.Redeemers = []model.Redeemer{spendRedeemer(0, RedeemerCancel)}

	tx6 := newTx(6, 5)
	tx6.Inputs = []model.Input{{TxHash: funding, Index: 2, Address: walletFunding}}
	tx6.Outputs = []model.Output{
		scriptOutput(25_000_000, vestingDatum(beneficiaryAlice, farDeadline, 25_000_000)),
		walletOutput(walletFunding, 174_831_683),
	}

	return []model.Transaction{tx1, tx2, tx3, tx4, tx5, tx6}
}

func newTx(n int, seq uint64) model.Transaction {
	return model.Transaction{
		Hash:        TxHash(n),
		BlockHeight: 1_500_000 + seq*420,
		Slot:        48_000_000 + seq*8_640,
		BlockTime:   genesis.Add(time.Duration(seq) * 24 * time.Hour),
	}
}

func scriptOutput(lovelace int64, raw []byte) model.Output {
	return model.Output{
		Address: ScriptAddress,
		Amounts: []model.Amount{{Unit: model.LovelaceUnit, Quantity: big.NewInt(lovelace)}},
		Datum:   &model.DatumRef{Hash: datum.Hash(raw), Raw: raw},
	}
}

func walletOutput(address string, lovelace int64) model.Output {
	return model.Output{
		Address: address,
		Amounts: []model.Amount{{Unit: model.LovelaceUnit, Quantity: big.NewInt(lovelace)}},
	}
}

func vestingDatum(beneficiary []byte, deadline, amount int64) []byte {
	return mustEncode(data.NewConstr(0,
		data.NewByteString(beneficiary),
		data.NewInteger(big.NewInt(deadline)),
		data.NewInteger(big.NewInt(amount)),
	))
}

func spendRedeemer(index uint32, constructor uint) model.Redeemer {
	return model.Redeemer{
		Tag:     model.RedeemerSpend,
		Index:   index,
		Raw:     mustEncode(data.NewConstr(constructor)),
		ExUnits: model.ExUnits{Mem: 1_412_000, Steps: 512_300_000},
	}
}

func mustEncode(pd data.PlutusData) []byte {
	raw, err := data.Encode(pd)
	if err != nil {
		panic(err)
	}
	return raw
}
