package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/tonswap/TON-EVM-Bridge/log"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	client       *mongo.Client
	clientCtx    = context.Background()
	databaseName string

	appIdentifier string
)

// HasClient has mongodb client connected
func HasClient() bool {
	return client != nil
}

// MongoServerInit connect mongodb server and init collections
func MongoServerInit(appName, url, dbName, user, pass string) {
	appIdentifier = appName
	databaseName = dbName

	clientOpts := options.Client().ApplyURI(fmt.Sprintf("mongodb://%v", url)).SetAppName(appName)
	if user != "" {
		clientOpts = clientOpts.SetAuth(options.Credential{
			AuthSource: dbName,
			Username:   user,
			Password:   pass,
		})
	}

	mongoConnect(clientOpts)
	initCollections()
	go checkMongoSession(clientOpts)
}

func mongoConnect(clientOpts *options.ClientOptions) {
	log.Info("[mongodb] connect database start", "dbName", databaseName)
	for {
		ctx, cancel := context.WithTimeout(clientCtx, 10*time.Second)
		c, err := mongo.Connect(ctx, clientOpts)
		if err == nil {
			err = c.Ping(ctx, readpref.Primary())
		}
		cancel()
		if err == nil {
			client = c
			break
		}
		log.Warn("[mongodb] dial error", "err", err)
		time.Sleep(1 * time.Second)
	}
	log.Info("[mongodb] connect database finished", "dbName", databaseName)
}

func checkMongoSession(clientOpts *options.ClientOptions) {
	for {
		time.Sleep(60 * time.Second)
		if err := sessionPing(); err != nil {
			log.Error("[mongodb] session ping error", "err", err)
			log.Info("[mongodb] reconnect database", "dbName", databaseName)
			mongoConnect(clientOpts)
			initCollections()
		}
	}
}

func sessionPing() (err error) {
	for i := 0; i < 6; i++ {
		ctx, cancel := context.WithTimeout(clientCtx, 10*time.Second)
		err = client.Ping(ctx, readpref.Primary())
		cancel()
		if err == nil {
			break
		}
		time.Sleep(10 * time.Second)
	}
	return err
}
