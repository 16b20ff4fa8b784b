package mongodb

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// mongodb special errors
var (
	ErrItemNotFound       = errors.New("mgoError: item not found")
	ErrItemIsDup          = errors.New("mgoError: item is duplicate")
	ErrSwapNotFound       = errors.New("mgoError: swap is not found")
	ErrWalletNotFound     = errors.New("mgoError: wallet is not found")
	ErrForbidStatusChange = errors.New("mgoError: forbid swap status change")
	ErrStaleBalance       = errors.New("mgoError: wallet balance changed concurrently")
	ErrNegativeBalance    = errors.New("mgoError: wallet balance would become negative")
)

func mgoError(err error) error {
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrItemNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return ErrItemIsDup
		}
		return errors.New("mgoError: " + err.Error())
	}
	return nil
}
