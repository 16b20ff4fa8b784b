package eth

import (
	"fmt"
	"math/big"
	"strings"
)

type rpcTransaction struct {
	Hash  string `json:"hash"`
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
}

type rpcBlock struct {
	Number       string            `json:"number"`
	Timestamp    string            `json:"timestamp"`
	Transactions []*rpcTransaction `json:"transactions"`
}

type rpcLog struct {
	Address         string   `json:"address"`
	Topics          []string `json:"topics"`
	Data            string   `json:"data"`
	TransactionHash string   `json:"transactionHash"`
	Removed         bool     `json:"removed"`
}

type rpcReceipt struct {
	TransactionHash string `json:"transactionHash"`
	BlockNumber     string `json:"blockNumber"`
	Status          string `json:"status"`
}

func parseHexUint64(str string) (uint64, error) {
	bi, err := parseHexBig(str)
	if err != nil {
		return 0, err
	}
	if !bi.IsUint64() {
		return 0, fmt.Errorf("hex quantity overflows uint64: %v", str)
	}
	return bi.Uint64(), nil
}

func parseHexBig(str string) (*big.Int, error) {
	cleaned := strings.TrimPrefix(strings.TrimSpace(str), "0x")
	if cleaned == "" {
		return big.NewInt(0), nil
	}
	bi, ok := new(big.Int).SetString(cleaned, 16)
	if !ok {
		return nil, fmt.Errorf("wrong hex quantity: %v", str)
	}
	return bi, nil
}

func toHexUint64(value uint64) string {
	return fmt.Sprintf("0x%x", value)
}

func toHexBig(value *big.Int) string {
	return fmt.Sprintf("0x%x", value)
}

// addressTopic left pad an address to a 32 byte log topic
func addressTopic(address string) string {
	cleaned := strings.ToLower(strings.TrimPrefix(address, "0x"))
	return "0x" + strings.Repeat("0", 64-len(cleaned)) + cleaned
}

// topicToAddress cut the rightmost 20 bytes of a log topic
func topicToAddress(topic string) string {
	cleaned := strings.TrimPrefix(topic, "0x")
	if len(cleaned) < 40 {
		return topic
	}
	return "0x" + cleaned[len(cleaned)-40:]
}
