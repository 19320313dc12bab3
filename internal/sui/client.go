package sui

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/rpc"
)

// Client wraps a JSON-RPC connection to a Sui full node.
type Client struct {
	rpcClient *rpc.Client

	mu          sync.RWMutex
	sharedCache map[Address]uint64
}

// NewClient creates a new client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return newClient(rpcClient), nil
}

func newClient(rpcClient *rpc.Client) *Client {
	return &Client{
		rpcClient:   rpcClient,
		sharedCache: make(map[Address]uint64),
	}
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// GetObject returns an object with its owner and content.
func (c *Client) GetObject(ctx context.Context, id Address) (*ObjectData, error) {
	var resp ObjectResponse
	opts := ObjectDataOptions{ShowType: true, ShowOwner: true, ShowContent: true}
	if err := c.rpcClient.CallContext(ctx, &resp, "sui_getObject", id.String(), opts); err != nil {
		return nil, fmt.Errorf("sui_getObject %s: %w", id, err)
	}
	if resp.Data == nil {
		if len(resp.Error) > 0 {
			return nil, fmt.Errorf("sui_getObject %s: %s", id, string(resp.Error))
		}
		return nil, fmt.Errorf("sui_getObject %s: object not found", id)
	}
	return resp.Data, nil
}

// SharedVersion returns the initial shared version of a shared object, using
// an in-memory cache. The value never changes once an object is shared.
func (c *Client) SharedVersion(ctx context.Context, id Address) (uint64, error) {
	c.mu.RLock()
	version, ok := c.sharedCache[id]
	c.mu.RUnlock()
	if ok {
		return version, nil
	}

	obj, err := c.GetObject(ctx, id)
	if err != nil {
		return 0, err
	}
	if obj.Owner == nil || obj.Owner.Shared == nil {
		return 0, fmt.Errorf("object %s is not shared", id)
	}

	version = uint64(obj.Owner.Shared.InitialSharedVersion)
	c.mu.Lock()
	c.sharedCache[id] = version
	c.mu.Unlock()

	return version, nil
}

// GetCoins returns every coin of coinType owned by owner, following pagination.
func (c *Client) GetCoins(ctx context.Context, owner Address, coinType string) ([]Coin, error) {
	var (
		coins  []Coin
		cursor *string
	)
	for {
		var page CoinPage
		if err := c.rpcClient.CallContext(ctx, &page, "suix_getCoins", owner.String(), coinType, cursor, nil); err != nil {
			return nil, fmt.Errorf("suix_getCoins %s: %w", coinType, err)
		}
		coins = append(coins, page.Data...)
		if !page.HasNextPage || page.NextCursor == nil {
			return coins, nil
		}
		cursor = page.NextCursor
	}
}

// DevInspect runs a transaction kind without committing it.
func (c *Client) DevInspect(ctx context.Context, sender Address, kind []byte) (*DevInspectResults, error) {
	var resp DevInspectResults
	encoded := base64.StdEncoding.EncodeToString(kind)
	if err := c.rpcClient.CallContext(ctx, &resp, "sui_devInspectTransactionBlock", sender.String(), encoded, nil, nil); err != nil {
		return nil, fmt.Errorf("sui_devInspectTransactionBlock: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("dev inspect failed: %s", resp.Error)
	}
	return &resp, nil
}

// ReferenceGasPrice returns the current reference gas price.
func (c *Client) ReferenceGasPrice(ctx context.Context) (uint64, error) {
	var price Uint64
	if err := c.rpcClient.CallContext(ctx, &price, "suix_getReferenceGasPrice"); err != nil {
		return 0, fmt.Errorf("suix_getReferenceGasPrice: %w", err)
	}
	return uint64(price), nil
}

// Execute submits signed transaction bytes and waits for local execution.
func (c *Client) Execute(ctx context.Context, txBytes []byte, signature string) (*TransactionBlockResponse, error) {
	var resp TransactionBlockResponse
	encoded := base64.StdEncoding.EncodeToString(txBytes)
	opts := TransactionBlockResponseOptions{ShowEffects: true}
	if err := c.rpcClient.CallContext(ctx, &resp, "sui_executeTransactionBlock", encoded, []string{signature}, opts, "WaitForLocalExecution"); err != nil {
		return nil, fmt.Errorf("sui_executeTransactionBlock: %w", err)
	}
	return &resp, nil
}
