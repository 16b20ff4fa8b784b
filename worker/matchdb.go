package worker

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/tonswap/TON-EVM-Bridge/log"
)

// matchDB remembers already matched deposit txids so one on-chain
// deposit can never confirm two swaps. Dedup is best effort when the
// database is not opened.
var matchDB *leveldb.DB

// OpenMatchDB open the deposit dedup database
func OpenMatchDB(dir string) error {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return err
	}
	matchDB = db
	log.Info("open match db success", "dir", dir)
	return nil
}

// CloseMatchDB close the deposit dedup database
func CloseMatchDB() {
	if matchDB != nil {
		_ = matchDB.Close()
		matchDB = nil
	}
}

func depositKey(blockchain, txID string) []byte {
	return []byte(fmt.Sprintf("deposit:%s:%s", blockchain, txID))
}

func isDepositUsed(blockchain, txID string) bool {
	if matchDB == nil {
		return false
	}
	has, err := matchDB.Has(depositKey(blockchain, txID), nil)
	if err != nil {
		logWorkerError("matchdb", "query deposit key failed", err, "txID", txID)
		return false
	}
	return has
}

func markDepositUsed(blockchain, txID string) {
	if matchDB == nil {
		return
	}
	err := matchDB.Put(depositKey(blockchain, txID), []byte{1}, nil)
	if err != nil {
		logWorkerError("matchdb", "store deposit key failed", err, "txID", txID)
	}
}
