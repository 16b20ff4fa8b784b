package swapapi

// CreateSwapArgs arguments of a swap order
type CreateSwapArgs struct {
	PairID             string `json:"pairid"`
	SourceChain        string `json:"srcchain"`
	DestinationAddress string `json:"destaddress"`
	Value              string `json:"value"`

	// filled from the request, not by the caller
	Requester string `json:"-"`
}

// SwapView external view of a swap record
type SwapView struct {
	SwapID             string `json:"swapid"`
	ShortID            string `json:"shortid"`
	PairID             string `json:"pairid"`
	SourceChain        string `json:"srcchain"`
	DestinationChain   string `json:"destchain"`
	DepositAddress     string `json:"depositaddress"`
	DepositConjAddress string `json:"depositconjaddress,omitempty"`
	SourceAddress      string `json:"srcaddress,omitempty"`
	SourceAmount       string `json:"srcamount"`
	SourceTxID         string `json:"srctxid,omitempty"`
	DestinationAddress string `json:"destaddress"`
	DestinationAmount  string `json:"destamount"`
	DestinationTxID    string `json:"desttxid,omitempty"`
	Fee                string `json:"fee"`
	Status             uint16 `json:"status"`
	StatusMsg          string `json:"statusmsg"`
	StatusCode         int    `json:"statuscode"`
	Confirmations      uint64 `json:"confirmations"`
	Memo               string `json:"memo,omitempty"`
	OrderedAt          int64  `json:"orderedat"`
	ExpiresAt          int64  `json:"expiresat"`
	UpdatedAt          int64  `json:"updatedat"`
}

// ServerInfo server identity and supported pairs
type ServerInfo struct {
	Identifier string   `json:"identifier"`
	Version    string   `json:"version"`
	PairIDs    []string `json:"pairids"`
}
