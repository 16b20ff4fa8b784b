package mongodb

import (
	"github.com/tonswap/TON-EVM-Bridge/log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	tbSwaps   string = "Swaps"
	tbWallets string = "Wallets"
	tbJobs    string = "Jobs"
)

var (
	database *mongo.Database

	collSwap   *mongo.Collection
	collWallet *mongo.Collection
	collJob    *mongo.Collection
)

func initCollections() {
	database = client.Database(databaseName)

	initCollection(tbSwaps, &collSwap, "shortid")
	initCollection(tbSwaps, &collSwap, "status", "updatedat")
	initCollection(tbSwaps, &collSwap, "ipaddress", "status")
	initCollection(tbWallets, &collWallet, "blockchain", "type", "balance")
	initCollection(tbJobs, &collJob, "queue", "status", "runat", "priority")
	initCollection(tbJobs, &collJob, "queue", "status", "leaseuntil")
}

func initCollection(table string, collection **mongo.Collection, indexKey ...string) {
	*collection = database.Collection(table)
	if len(indexKey) != 0 {
		createOneIndex(*collection, indexKey...)
	}
}

func createOneIndex(coll *mongo.Collection, indexes ...string) {
	keys := make(bson.D, len(indexes))
	for i, index := range indexes {
		keys[i] = bson.E{Key: index, Value: 1}
	}
	model := mongo.IndexModel{Keys: keys}
	_, err := coll.Indexes().CreateOne(clientCtx, model)
	if err != nil {
		log.Error("[mongodb] create indexes failed", "collection", coll.Name(), "indexes", indexes, "err", err)
	}
}
