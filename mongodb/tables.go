package mongodb

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WalletType custodial wallet role
type WalletType string

// wallet types
const (
	WalletTypeTransferer WalletType = "Transferer"
	WalletTypeCollector  WalletType = "Collector"
	WalletTypeMinter     WalletType = "Minter"
	WalletTypeGiver      WalletType = "Giver"
)

// MgoSwap swap record, amounts are decimal strings scaled to token decimals
type MgoSwap struct {
	SwapID          string     `bson:"_id"`
	ShortID         string     `bson:"shortid"`
	PairID          string     `bson:"pairid"`
	SrcChain        string     `bson:"srcchain"`
	DestChain       string     `bson:"destchain"`
	SrcToken        string     `bson:"srctoken"`
	DestToken       string     `bson:"desttoken"`
	SourceWallet    string     `bson:"srcwallet"`
	DestWallet      string     `bson:"destwallet,omitempty"`
	CollectorWallet string     `bson:"collectorwallet"`
	SourceAddress   string     `bson:"srcaddress,omitempty"`
	SourceAmount    string     `bson:"srcamount"`
	SourceTxID      string     `bson:"srctxid,omitempty"`
	DestAddress     string     `bson:"destaddress"`
	DestConjAddress string     `bson:"destconjaddress,omitempty"`
	DestAmount      string     `bson:"destamount"`
	DestTxID        string     `bson:"desttxid,omitempty"`
	Fee             string     `bson:"fee"`
	CollectorTxID   string     `bson:"collectortxid,omitempty"`
	Status          SwapStatus `bson:"status"`
	StatusCode      int        `bson:"statuscode"`
	Confirmations   uint64     `bson:"confirmations"`
	Memo            string     `bson:"memo,omitempty"`
	IPAddress       string     `bson:"ipaddress"`
	OrderedAt       int64      `bson:"orderedat"`
	ExpiresAt       int64      `bson:"expiresat"`
	CreatedAt       int64      `bson:"createdat"`
	UpdatedAt       int64      `bson:"updatedat"`
}

// ConfirmUpdateItems updates applied when the source deposit is confirmed
type ConfirmUpdateItems struct {
	SourceAddress string
	SourceTxID    string
	SourceAmount  string
	DestAmount    string
	Fee           string
}

// MgoWallet custodial hot wallet record.
// balance is Decimal128 so ascending balance sorts are numeric.
type MgoWallet struct {
	WalletID    string               `bson:"_id"`
	Blockchain  string               `bson:"blockchain"`
	Type        WalletType           `bson:"type"`
	Address     string               `bson:"address"`
	ConjAddress string               `bson:"conjaddress,omitempty"`
	SecretKey   []byte               `bson:"secretkey"`
	Balance     primitive.Decimal128 `bson:"balance"`
	Deployed    bool                 `bson:"deployed"`
	InUse       bool                 `bson:"inuse"`
	Disabled    bool                 `bson:"disabled"`
}

// JobStatus durable job status
type JobStatus uint8

// job status values
const (
	JobWaiting JobStatus = iota // 0
	JobActive                   // 1
	JobDone                     // 2
	JobFailed                   // 3
)

// MgoJob durable queue entry
type MgoJob struct {
	JobID        string    `bson:"_id"`
	Queue        string    `bson:"queue"`
	Type         string    `bson:"type"`
	Payload      bson.Raw  `bson:"payload"`
	Status       JobStatus `bson:"status"`
	Priority     int       `bson:"priority"`
	AttemptsLeft int       `bson:"attemptsleft"`
	BackoffMs    int64     `bson:"backoffms"`
	RunAt        int64     `bson:"runat"`
	LeaseUntil   int64     `bson:"leaseuntil,omitempty"`
	LastError    string    `bson:"lasterror,omitempty"`
	CreatedAt    int64     `bson:"createdat"`
	UpdatedAt    int64     `bson:"updatedat"`
}
