package mongodb

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const maxCountOfResults = 100

func now() int64 {
	return time.Now().Unix()
}

// AddSwap add a new swap record
func AddSwap(ms *MgoSwap) error {
	if ms.CreatedAt == 0 {
		ms.CreatedAt = now()
	}
	ms.UpdatedAt = ms.CreatedAt
	_, err := collSwap.InsertOne(clientCtx, ms)
	return mgoError(err)
}

// FindSwap find swap by id
func FindSwap(swapID string) (*MgoSwap, error) {
	var result MgoSwap
	err := collSwap.FindOne(clientCtx, bson.M{"_id": swapID}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSwapNotFound
		}
		return nil, mgoError(err)
	}
	return &result, nil
}

// FindSwapsByShortID find swaps whose short id prefix matches
func FindSwapsByShortID(shortID string) ([]*MgoSwap, error) {
	cursor, err := collSwap.Find(clientCtx, bson.M{"shortid": shortID})
	if err != nil {
		return nil, mgoError(err)
	}
	result := make([]*MgoSwap, 0, 4)
	err = cursor.All(clientCtx, &result)
	if err != nil {
		return nil, mgoError(err)
	}
	return result, nil
}

// FindSwapsWithStatus find swaps with given status updated after septime
func FindSwapsWithStatus(status SwapStatus, septime int64) ([]*MgoSwap, error) {
	query := bson.M{"status": status, "updatedat": bson.M{"$gte": septime}}
	cursor, err := collSwap.Find(clientCtx, query)
	if err != nil {
		return nil, mgoError(err)
	}
	result := make([]*MgoSwap, 0, 16)
	err = cursor.All(clientCtx, &result)
	if err != nil {
		return nil, mgoError(err)
	}
	if len(result) > maxCountOfResults {
		result = result[:maxCountOfResults]
	}
	return result, nil
}

// CountPendingSwapsOfIP count pending swaps created from an ip address
func CountPendingSwapsOfIP(ip string) (int64, error) {
	count, err := collSwap.CountDocuments(clientCtx, bson.M{"ipaddress": ip, "status": SwapPending})
	return count, mgoError(err)
}

// UpdateSwapStatus do a guarded status transition, the update matches only
// when the stored status may transition to the wanted one per the status
// graph, so stale or duplicate jobs never move a swap backwards.
func UpdateSwapStatus(swapID string, status SwapStatus, statusCode int, memo string) error {
	sources := allowedSources(status)
	updates := bson.M{"status": status, "statuscode": statusCode, "updatedat": now()}
	if memo != "" {
		updates["memo"] = memo
	}
	filter := bson.M{"_id": swapID, "status": bson.M{"$in": sources}}
	res, err := collSwap.UpdateOne(clientCtx, filter, bson.M{"$set": updates})
	if err != nil {
		return mgoError(err)
	}
	if res.MatchedCount == 0 {
		if _, errf := FindSwap(swapID); errf != nil {
			return errf
		}
		return ErrForbidStatusChange
	}
	return nil
}

// UpdateSwapConfirm apply the deposit confirmation, Pending -> Confirmed
func UpdateSwapConfirm(swapID string, items *ConfirmUpdateItems) error {
	updates := bson.M{
		"status":        SwapConfirmed,
		"confirmations": uint64(1),
		"srcaddress":    items.SourceAddress,
		"srctxid":       items.SourceTxID,
		"updatedat":     now(),
	}
	if items.SourceAmount != "" {
		updates["srcamount"] = items.SourceAmount
	}
	if items.DestAmount != "" {
		updates["destamount"] = items.DestAmount
	}
	if items.Fee != "" {
		updates["fee"] = items.Fee
	}
	filter := bson.M{"_id": swapID, "status": SwapPending}
	res, err := collSwap.UpdateOne(clientCtx, filter, bson.M{"$set": updates})
	if err != nil {
		return mgoError(err)
	}
	if res.MatchedCount == 0 {
		return ErrForbidStatusChange
	}
	return nil
}

// UpdateSwapConfirmations bump confirmations, monotonic non-decreasing
func UpdateSwapConfirmations(swapID string, confirmations uint64) error {
	filter := bson.M{
		"_id":           swapID,
		"status":        SwapConfirmed,
		"confirmations": bson.M{"$lt": confirmations},
	}
	updates := bson.M{"confirmations": confirmations, "updatedat": now()}
	_, err := collSwap.UpdateOne(clientCtx, filter, bson.M{"$set": updates})
	return mgoError(err)
}

// UpdateSwapComplete apply the destination transfer, Confirmed -> Completed
func UpdateSwapComplete(swapID, destTxID string) error {
	filter := bson.M{"_id": swapID, "status": SwapConfirmed}
	updates := bson.M{
		"status":     SwapCompleted,
		"statuscode": 0,
		"desttxid":   destTxID,
		"updatedat":  now(),
	}
	res, err := collSwap.UpdateOne(clientCtx, filter, bson.M{"$set": updates})
	if err != nil {
		return mgoError(err)
	}
	if res.MatchedCount == 0 {
		return ErrForbidStatusChange
	}
	return nil
}

// UpdateSwapCollect record the fee collection transaction
func UpdateSwapCollect(swapID, collectorTxID string) error {
	filter := bson.M{"_id": swapID, "collectortxid": bson.M{"$in": []interface{}{nil, ""}}}
	updates := bson.M{"collectortxid": collectorTxID, "updatedat": now()}
	_, err := collSwap.UpdateOne(clientCtx, filter, bson.M{"$set": updates})
	return mgoError(err)
}
