package model

import "fmt"

type Network string

var (
	Mainnet Network = "mainnet"
	Preprod Network = "preprod"
	Preview Network = "preview"
	Testnet Network = "testnet"
)

// Networks lists every network accepted by ParseNetwork.
var Networks = []Network{Mainnet, Preprod, Preview, Testnet}

// ParseNetwork validates a network name.
func ParseNetwork(s string) (Network, error) {
	for _, n := range Networks {
		if string(n) == s {
			return n, nil
		}
	}
	return "", fmt.Errorf("invalid network %q: must be one of mainnet, preprod, preview, testnet", s)
}

// AddressPrefix returns the bech32 human-readable part used by payment addresses on the network.
func (n Network) AddressPrefix() string {
	if n == Mainnet {
		return "addr"
	}
	return "addr_test"
}
