package ethereum

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Soptq/shapeshift-lib/internal/core/errs"
)

var transferSelector = crypto.Keccak256([]byte("transfer(address,uint256)"))[:4]

// TransferData encodes an ERC20 transfer(to, value) call.
func TransferData(to, value string) (string, error) {
	if !common.IsHexAddress(to) {
		return "", errs.New(errs.KindInvalidReference, "recipient is not an address: %q", to)
	}
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok || amount.Sign() < 0 {
		return "", errs.New(errs.KindFeeDataUnavailable, "invalid transfer value %q", value)
	}

	data := make([]byte, 0, 4+32+32)
	data = append(data, transferSelector...)
	data = append(data, common.LeftPadBytes(common.HexToAddress(to).Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(amount.Bytes(), 32)...)
	return hexutil.Encode(data), nil
}
