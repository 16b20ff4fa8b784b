package tokens

import (
	"math"
	"math/big"
)

// FromBits convert from scaled integer units to whole units
func FromBits(value *big.Int, decimals uint8) float64 {
	oneToken := math.Pow(10, float64(decimals))
	fOneToken := new(big.Float).SetFloat64(oneToken)
	fValue := new(big.Float).SetInt(value)
	fTokens := new(big.Float).Quo(fValue, fOneToken)
	result, _ := fTokens.Float64()
	return result
}

// ToBits convert from whole units to scaled integer units
func ToBits(value float64, decimals uint8) *big.Int {
	oneToken := math.Pow(10, float64(decimals))
	fOneToken := new(big.Float).SetFloat64(oneToken)
	fValue := new(big.Float).SetFloat64(value)
	fBits := new(big.Float).Mul(fValue, fOneToken)

	result := big.NewInt(0)
	fBits.Int(result)
	return result
}

// ConvertDecimals rescale a scaled integer amount between token decimals
func ConvertDecimals(value *big.Int, fromDecimals, toDecimals uint8) *big.Int {
	if value == nil {
		return nil
	}
	result := new(big.Int).Set(value)
	switch {
	case fromDecimals < toDecimals:
		exp := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(toDecimals-fromDecimals)), nil)
		result.Mul(result, exp)
	case fromDecimals > toDecimals:
		exp := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(fromDecimals-toDecimals)), nil)
		result.Div(result, exp)
	}
	return result
}

// CheckSwapValue check the declared swap value is inside the token's range
func CheckSwapValue(value *big.Int, token *TokenConfig) error {
	if value == nil || value.Sign() <= 0 {
		return ErrWrongSwapValue
	}
	if value.Cmp(token.minSwap) < 0 || value.Cmp(token.maxSwap) > 0 {
		return ErrWrongSwapValue
	}
	return nil
}

// SplitAmount split a source amount into the destination amount and the fee.
// fee = value * SwapFeeRate clamped to [MinimumSwapFee, MaximumSwapFee].
func SplitAmount(value *big.Int, token *TokenConfig) (swapped, fee *big.Int, err error) {
	if value == nil || value.Sign() <= 0 {
		return nil, nil, ErrWrongSwapValue
	}
	fee = calcSwapFee(value, token)
	if value.Cmp(fee) <= 0 {
		return nil, nil, ErrWrongSwapValue
	}
	swapped = new(big.Int).Sub(value, fee)
	return swapped, fee, nil
}

// RecalcSwapValue re-derive the destination amount and the fee from the
// amount actually observed on chain, which may differ from the declared one.
func RecalcSwapValue(observed *big.Int, token *TokenConfig) (swapped, fee *big.Int, err error) {
	if observed == nil || observed.Sign() <= 0 {
		return nil, nil, ErrSwapNotRecalculated
	}
	fee = calcSwapFee(observed, token)
	if *token.SwapFeeRate > 0 && fee.Sign() <= 0 {
		return nil, nil, ErrSwapNotRecalculated
	}
	if observed.Cmp(fee) <= 0 {
		return nil, nil, ErrSwapNotRecalculated
	}
	swapped = new(big.Int).Sub(observed, fee)
	return swapped, fee, nil
}

func calcSwapFee(value *big.Int, token *TokenConfig) *big.Int {
	if *token.SwapFeeRate == 0 {
		return big.NewInt(0)
	}
	feeRateMul1e18 := new(big.Int).SetUint64(uint64(*token.SwapFeeRate * 1e18))
	fee := new(big.Int).Mul(value, feeRateMul1e18)
	fee.Div(fee, big.NewInt(1e18))

	if token.minSwapFee.Sign() > 0 && fee.Cmp(token.minSwapFee) < 0 {
		fee = new(big.Int).Set(token.minSwapFee)
	} else if token.maxSwapFee.Sign() > 0 && fee.Cmp(token.maxSwapFee) > 0 {
		fee = new(big.Int).Set(token.maxSwapFee)
	}
	return fee
}
