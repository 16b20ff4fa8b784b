package mongodb

import (
	"errors"
	"math/big"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const balanceUpdateRetries = 5

// AddWallet add a custodial wallet record
func AddWallet(mw *MgoWallet) error {
	_, err := collWallet.InsertOne(clientCtx, mw)
	return mgoError(err)
}

// FindWallet find wallet by id
func FindWallet(walletID string) (*MgoWallet, error) {
	var result MgoWallet
	err := collWallet.FindOne(clientCtx, bson.M{"_id": walletID}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrWalletNotFound
		}
		return nil, mgoError(err)
	}
	return &result, nil
}

func bestMatchFilter(blockchain string, walletType WalletType, minBalance *big.Int, requireUnused, requireConjugated bool) bson.M {
	filter := bson.M{
		"blockchain": blockchain,
		"type":       walletType,
		"disabled":   false,
	}
	if requireUnused {
		filter["inuse"] = false
	}
	if requireConjugated {
		filter["conjaddress"] = bson.M{"$nin": []interface{}{nil, ""}}
	}
	if minBalance != nil {
		d128, err := primitive.ParseDecimal128(minBalance.String())
		if err == nil {
			filter["balance"] = bson.M{"$gte": d128}
		}
	}
	return filter
}

// ascending balance, best-fit selection minimizing capital fragmentation
var bestMatchSort = bson.D{{Key: "balance", Value: 1}}

// FindBestMatchWallet find the matching wallet with the smallest balance
// still satisfying minBalance.
func FindBestMatchWallet(blockchain string, walletType WalletType, minBalance *big.Int, requireUnused, requireConjugated bool) (*MgoWallet, error) {
	filter := bestMatchFilter(blockchain, walletType, minBalance, requireUnused, requireConjugated)
	opts := options.FindOne().SetSort(bestMatchSort)
	var result MgoWallet
	err := collWallet.FindOne(clientCtx, filter, opts).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrWalletNotFound
		}
		return nil, mgoError(err)
	}
	return &result, nil
}

// ReserveBestMatchWallet atomically pick and reserve the best matching
// unused wallet, selection and reservation are one conditional update so
// concurrent allocations can never share a wallet.
func ReserveBestMatchWallet(blockchain string, walletType WalletType, requireConjugated bool) (*MgoWallet, error) {
	filter := bestMatchFilter(blockchain, walletType, nil, true, requireConjugated)
	opts := options.FindOneAndUpdate().
		SetSort(bestMatchSort).
		SetReturnDocument(options.After)
	var result MgoWallet
	err := collWallet.FindOneAndUpdate(clientCtx, filter, bson.M{"$set": bson.M{"inuse": true}}, opts).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrWalletNotFound
		}
		return nil, mgoError(err)
	}
	return &result, nil
}

// ReleaseWallet flip inuse back to false, idempotent
func ReleaseWallet(walletID string) error {
	res, err := collWallet.UpdateOne(clientCtx, bson.M{"_id": walletID}, bson.M{"$set": bson.M{"inuse": false}})
	if err != nil {
		return mgoError(err)
	}
	if res.MatchedCount == 0 {
		return ErrWalletNotFound
	}
	return nil
}

// AddWalletBalance adjust the tracked balance by delta (may be negative),
// compare-and-swap on the old balance value.
func AddWalletBalance(walletID string, delta *big.Int) error {
	for i := 0; i < balanceUpdateRetries; i++ {
		wallet, err := FindWallet(walletID)
		if err != nil {
			return err
		}
		oldBalance, ok := new(big.Int).SetString(wallet.Balance.String(), 10)
		if !ok {
			oldBalance = big.NewInt(0)
		}
		newBalance := new(big.Int).Add(oldBalance, delta)
		if newBalance.Sign() < 0 {
			return ErrNegativeBalance
		}
		d128, err := primitive.ParseDecimal128(newBalance.String())
		if err != nil {
			return mgoError(err)
		}
		filter := bson.M{"_id": walletID, "balance": wallet.Balance}
		res, err := collWallet.UpdateOne(clientCtx, filter, bson.M{"$set": bson.M{"balance": d128}})
		if err != nil {
			return mgoError(err)
		}
		if res.MatchedCount == 1 {
			return nil
		}
	}
	return ErrStaleBalance
}

// SumWalletBalances sum the pool balance of a wallet type on a chain
func SumWalletBalances(blockchain string, walletType WalletType) (*big.Int, error) {
	filter := bson.M{"blockchain": blockchain, "type": walletType, "disabled": false}
	cursor, err := collWallet.Find(clientCtx, filter)
	if err != nil {
		return nil, mgoError(err)
	}
	wallets := make([]*MgoWallet, 0, 8)
	err = cursor.All(clientCtx, &wallets)
	if err != nil {
		return nil, mgoError(err)
	}
	total := big.NewInt(0)
	for _, w := range wallets {
		balance, ok := new(big.Int).SetString(w.Balance.String(), 10)
		if ok {
			total.Add(total, balance)
		}
	}
	return total, nil
}
