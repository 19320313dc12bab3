package model

// TokenMeta describes one of the pool's coin types.
type TokenMeta struct {
	Symbol   string `json:"symbol"`
	CoinType string `json:"coin_type"`
	Decimals uint8  `json:"decimals"`
}
