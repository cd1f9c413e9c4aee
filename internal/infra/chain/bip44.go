package chain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"

	"github.com/Soptq/shapeshift-lib/internal/core/caip"
	"github.com/Soptq/shapeshift-lib/internal/core/errs"
)

// hardened is the BIP32 hardened offset; every component must stay below it.
const hardened = 1 << 31

// BIP44Params are the components of m/purpose'/coinType'/account'/change/index.
type BIP44Params struct {
	Purpose       int  `yaml:"purpose" json:"purpose"`
	CoinType      int  `yaml:"coin_type" json:"coinType"`
	AccountNumber int  `yaml:"account_number" json:"accountNumber"`
	IsChange      bool `yaml:"is_change" json:"isChange"`
	Index         int  `yaml:"index" json:"index"`
}

// DefaultBIP44Params returns m/44'/<coin>'/0'/0/0 for family.
func DefaultBIP44Params(family caip.ChainFamily) BIP44Params {
	return BIP44Params{Purpose: 44, CoinType: int(caip.NativeCoinType[family])}
}

// Validate rejects components outside [0, 2^31).
func (p BIP44Params) Validate() error {
	for _, c := range []struct {
		name  string
		value int
	}{
		{"purpose", p.Purpose},
		{"coinType", p.CoinType},
		{"accountNumber", p.AccountNumber},
		{"index", p.Index},
	} {
		if c.value < 0 || c.value >= hardened {
			return errs.New(errs.KindInvalidDerivationParams, "%s out of range: %d", c.name, c.value)
		}
	}
	return nil
}

// ToPath renders the full path, e.g. m/44'/60'/0'/0/0.
func (p BIP44Params) ToPath() string {
	change := 0
	if p.IsChange {
		change = 1
	}
	return fmt.Sprintf("%s/%d/%d", p.ToRootPath(), change, p.Index)
}

// ToRootPath renders the account level path, e.g. m/44'/60'/0'.
func (p BIP44Params) ToRootPath() string {
	return fmt.Sprintf("m/%d'/%d'/%d'", p.Purpose, p.CoinType, p.AccountNumber)
}

// DerivationPath validates p and converts it to the wallet's path list form.
func (p BIP44Params) DerivationPath() (accounts.DerivationPath, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	path, err := accounts.ParseDerivationPath(p.ToPath())
	if err != nil {
		return nil, errs.New(errs.KindInvalidDerivationParams, "parse %s: %v", p.ToPath(), err)
	}
	return path, nil
}
