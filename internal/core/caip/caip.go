// Package caip encodes and decodes chain (CAIP2) and asset (CAIP19)
// identifiers.
//
//	CAIP2  := <chainFamily>:<network>
//	CAIP19 := <chainFamily>:<network>/<assetNamespace>:<assetReference>
//
// The package owns the grammar. Callers never build identifier strings by
// hand; they go through EncodeChainID and EncodeAssetID, which normalize the
// reference so that two equal assets always produce the same string.
package caip

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Soptq/shapeshift-lib/internal/core/errs"
)

// AssetNamespace distinguishes native coins from token standards.
type AssetNamespace string

const (
	AssetNamespaceSlip44 AssetNamespace = "slip44"
	AssetNamespaceERC20  AssetNamespace = "erc20"
	AssetNamespaceERC721 AssetNamespace = "erc721"
)

var (
	chainIDPattern   = regexp.MustCompile(`^([-a-z0-9]{3,8}):([-a-z0-9]{1,32})$`)
	assetPartPattern = regexp.MustCompile(`^([-a-z0-9]{3,8}):([-a-z0-9]{1,64})$`)
	slip44Pattern    = regexp.MustCompile(`^(0|[1-9][0-9]{0,9})$`)
)

// tokenNamespaces lists the token standards each family accepts.
var tokenNamespaces = map[ChainFamily][]AssetNamespace{
	ChainFamilyEthereum: {AssetNamespaceERC20, AssetNamespaceERC721},
}

// ChainID identifies a network of a chain family.
type ChainID struct {
	Family  ChainFamily
	Network Network
}

// String returns the canonical CAIP2 form, or "" for an unsupported pair.
func (c ChainID) String() string {
	s, err := EncodeChainID(c.Family, c.Network)
	if err != nil {
		return ""
	}
	return s
}

// IsZero reports whether c is the zero value.
func (c ChainID) IsZero() bool {
	return c.Family == "" && c.Network == ""
}

// AssetID identifies an asset on a chain.
type AssetID struct {
	Chain     ChainID
	Namespace AssetNamespace
	Reference string
}

// String returns the canonical CAIP19 form, or "" when a is invalid.
func (a AssetID) String() string {
	s, err := EncodeAssetID(a)
	if err != nil {
		return ""
	}
	return s
}

// EncodeChainID returns the CAIP2 string for a supported (family, network).
func EncodeChainID(family ChainFamily, network Network) (string, error) {
	if !IsSupported(family, network) {
		return "", errs.New(errs.KindUnsupportedNetwork,
			"no canonical mapping for chain family %q network %q", family, network)
	}
	return string(family) + ":" + string(network), nil
}

// DecodeChainID parses a CAIP2 string.
func DecodeChainID(s string) (ChainID, error) {
	m := chainIDPattern.FindStringSubmatch(s)
	if m == nil {
		return ChainID{}, errs.New(errs.KindMalformedIdentifier, "invalid chain id %q", s)
	}

	c := ChainID{Family: ChainFamily(m[1]), Network: Network(m[2])}
	if !IsSupported(c.Family, c.Network) {
		return ChainID{}, errs.New(errs.KindUnsupportedNetwork, "unsupported chain id %q", s)
	}
	return c, nil
}

// MustChainID is DecodeChainID for package level tables; it panics on error.
func MustChainID(s string) ChainID {
	c, err := DecodeChainID(s)
	if err != nil {
		panic(err)
	}
	return c
}

// EncodeAssetID returns the CAIP19 string for a, normalizing its reference.
func EncodeAssetID(a AssetID) (string, error) {
	chain, err := EncodeChainID(a.Chain.Family, a.Chain.Network)
	if err != nil {
		return "", err
	}

	ref, err := normalizeReference(a.Chain.Family, a.Namespace, a.Reference)
	if err != nil {
		return "", err
	}

	return chain + "/" + string(a.Namespace) + ":" + ref, nil
}

// DecodeAssetID parses a canonical CAIP19 string. Upper-case references are
// rejected as malformed; only EncodeAssetID normalizes case.
func DecodeAssetID(s string) (AssetID, error) {
	chainPart, assetPart, ok := strings.Cut(s, "/")
	if !ok {
		return AssetID{}, errs.New(errs.KindMalformedIdentifier, "invalid asset id %q", s)
	}

	chain, err := DecodeChainID(chainPart)
	if err != nil {
		return AssetID{}, err
	}

	m := assetPartPattern.FindStringSubmatch(assetPart)
	if m == nil {
		return AssetID{}, errs.New(errs.KindMalformedIdentifier, "invalid asset id %q", s)
	}

	ns := AssetNamespace(m[1])
	ref, err := normalizeReference(chain.Family, ns, m[2])
	if err != nil {
		return AssetID{}, err
	}

	return AssetID{Chain: chain, Namespace: ns, Reference: ref}, nil
}

// NativeAssetID returns the fee asset of chain.
func NativeAssetID(chain ChainID) AssetID {
	return AssetID{
		Chain:     chain,
		Namespace: AssetNamespaceSlip44,
		Reference: strconv.FormatUint(uint64(NativeCoinType[chain.Family]), 10),
	}
}

// TokenAssetID returns the ERC20 asset for contract on chain, normalized.
func TokenAssetID(chain ChainID, contract string) (AssetID, error) {
	a := AssetID{Chain: chain, Namespace: AssetNamespaceERC20, Reference: contract}
	ref, err := normalizeReference(chain.Family, a.Namespace, contract)
	if err != nil {
		return AssetID{}, err
	}
	a.Reference = ref
	return a, nil
}

func normalizeReference(family ChainFamily, ns AssetNamespace, ref string) (string, error) {
	if ns == AssetNamespaceSlip44 {
		if !slip44Pattern.MatchString(ref) {
			return "", errs.New(errs.KindInvalidReference, "slip44 reference must be a coin type, got %q", ref)
		}
		if _, err := strconv.ParseUint(ref, 10, 32); err != nil {
			return "", errs.New(errs.KindInvalidReference, "slip44 coin type out of range: %q", ref)
		}
		return ref, nil
	}

	if !hasTokenNamespace(family, ns) {
		return "", errs.New(errs.KindInvalidReference,
			"asset namespace %q is not defined for chain family %q", ns, family)
	}

	// All token standards in use are EVM contracts: 0x followed by 20 bytes of hex.
	if !strings.HasPrefix(strings.ToLower(ref), "0x") || !common.IsHexAddress(ref) {
		return "", errs.New(errs.KindInvalidReference, "%s reference must be a contract address, got %q", ns, ref)
	}
	return strings.ToLower(ref), nil
}

func hasTokenNamespace(family ChainFamily, ns AssetNamespace) bool {
	for _, n := range tokenNamespaces[family] {
		if n == ns {
			return true
		}
	}
	return false
}

// MarshalText implements encoding.TextMarshaler.
func (c ChainID) MarshalText() ([]byte, error) {
	s, err := EncodeChainID(c.Family, c.Network)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ChainID) UnmarshalText(b []byte) error {
	decoded, err := DecodeChainID(string(b))
	if err != nil {
		return err
	}
	*c = decoded
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (a AssetID) MarshalText() ([]byte, error) {
	s, err := EncodeAssetID(a)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *AssetID) UnmarshalText(b []byte) error {
	decoded, err := DecodeAssetID(string(b))
	if err != nil {
		return err
	}
	*a = decoded
	return nil
}
