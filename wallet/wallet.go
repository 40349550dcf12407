package wallet

import (
	"fmt"
	"sort"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/cordialsys/icetest/errors"
	"github.com/sirupsen/logrus"
	"github.com/vedhavyas/go-subkey/v2"
	"github.com/vedhavyas/go-subkey/v2/sr25519"
)

type Name string

const (
	Alice      Name = "ALICE"
	AliceStash Name = "ALICE_STASH"
	Bob        Name = "BOB"
	BobStash   Name = "BOB_STASH"
	Charlie    Name = "CHARLIE"
	Dave       Name = "DAVE"
	Eve        Name = "EVE"
	Ferdie     Name = "FERDIE"
)

// Well known development accounts, funded in the genesis of a --dev chain.
var DefaultSeeds = map[Name]string{
	Alice:      "//Alice",
	AliceStash: "//Alice//stash",
	Bob:        "//Bob",
	BobStash:   "//Bob//stash",
	Charlie:    "//Charlie",
	Dave:       "//Dave",
	Eve:        "//Eve",
	Ferdie:     "//Ferdie",
}

// Wallet is an sr25519 identity derived from a seed uri.
type Wallet struct {
	Name    Name
	Seed    string
	Address string
	keyPair subkey.KeyPair
}

func Derive(name Name, seed string, prefix uint16) (*Wallet, error) {
	kp, err := subkey.DeriveKeyPair(sr25519.Scheme{}, seed)
	if err != nil {
		return nil, errors.KeyDerivationf("could not derive %s: %w", name, err)
	}
	return &Wallet{
		Name:    name,
		Seed:    seed,
		Address: kp.SS58Address(prefix),
		keyPair: kp,
	}, nil
}

func (w *Wallet) PublicKey() []byte {
	return w.keyPair.Public()
}

func (w *Wallet) AccountID() types.AccountID {
	var id types.AccountID
	copy(id[:], w.keyPair.AccountID())
	return id
}

func (w *Wallet) MultiAddress() types.MultiAddress {
	return types.MultiAddress{IsID: true, AsID: w.AccountID()}
}

// Sign signs msg in the substrate signing context.
func (w *Wallet) Sign(msg []byte) ([]byte, error) {
	return w.keyPair.Sign(msg)
}

func (w *Wallet) Verify(msg []byte, sig []byte) bool {
	return w.keyPair.Verify(msg, sig)
}

func (w *Wallet) String() string {
	return fmt.Sprintf("%s(%s)", w.Name, w.Address)
}

// Registry is the set of named wallets used by scenarios.
type Registry map[Name]*Wallet

// DeriveAll derives every seed for the given network prefix. Any malformed seed fails the whole registry.
func DeriveAll(seeds map[Name]string, prefix uint16) (Registry, error) {
	registry := Registry{}
	for name, seed := range seeds {
		w, err := Derive(name, seed, prefix)
		if err != nil {
			return nil, err
		}
		registry[name] = w
	}
	logrus.WithFields(logrus.Fields{
		"count":  len(registry),
		"prefix": prefix,
	}).Debug("derived wallets")
	return registry, nil
}

// Get returns the wallet or an error naming the missing wallet.
func (r Registry) Get(name Name) (*Wallet, error) {
	w, ok := r[name]
	if !ok {
		return nil, errors.KeyDerivationf("no wallet named %s", name)
	}
	return w, nil
}

// MustGet is Get for scenarios that run against DefaultSeeds.
func (r Registry) MustGet(name Name) *Wallet {
	w, err := r.Get(name)
	if err != nil {
		panic(err)
	}
	return w
}

func (r Registry) Names() []Name {
	names := make([]Name, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
