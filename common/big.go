package common

import (
	"errors"
	"math/big"
)

// common big integers often used
var (
	Big0 = big.NewInt(0)
	Big1 = big.NewInt(1)
)

// ErrWrongBigIntString parse big int from string failed
var ErrWrongBigIntString = errors.New("wrong big int string")

// GetBigIntFromStr parse big int from a base-10 decimal string
func GetBigIntFromStr(str string) (*big.Int, error) {
	bi, ok := new(big.Int).SetString(str, 10)
	if !ok {
		return nil, ErrWrongBigIntString
	}
	return bi, nil
}

// GetUint64FromStr parse uint64 from string
func GetUint64FromStr(str string) (uint64, error) {
	bi, err := GetBigIntFromStr(str)
	if err != nil {
		return 0, err
	}
	if !bi.IsUint64() {
		return 0, ErrWrongBigIntString
	}
	return bi.Uint64(), nil
}

// MinUint64 get minimum value of x and y
func MinUint64(x, y uint64) uint64 {
	if x <= y {
		return x
	}
	return y
}
