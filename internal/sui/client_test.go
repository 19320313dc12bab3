package sui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type fakeNode struct {
	mu    sync.Mutex
	calls map[string]int
	reply func(req rpcRequest) (any, error)
}

func (f *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.calls[req.Method]++
	f.mu.Unlock()

	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	result, err := f.reply(req)
	if err != nil {
		resp["error"] = map[string]any{"code": -32000, "message": err.Error()}
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (f *fakeNode) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func newTestClient(t *testing.T, reply func(req rpcRequest) (any, error)) (*Client, *fakeNode) {
	t.Helper()
	node := &fakeNode{calls: make(map[string]int), reply: reply}
	srv := httptest.NewServer(node)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), srv.URL)
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client, node
}

func TestGetCoinsFollowsPagination(t *testing.T) {
	client, node := newTestClient(t, func(req rpcRequest) (any, error) {
		var cursor *string
		assert.NoError(t, json.Unmarshal(req.Params[2], &cursor))
		if cursor == nil {
			return map[string]any{
				"data":        []map[string]any{{"coinObjectId": "0x1", "balance": "5", "version": "1", "digest": "x"}},
				"nextCursor":  "page2",
				"hasNextPage": true,
			}, nil
		}
		assert.Equal(t, "page2", *cursor)
		return map[string]any{
			"data":        []map[string]any{{"coinObjectId": "0x2", "balance": "7", "version": "2", "digest": "y"}},
			"nextCursor":  nil,
			"hasNextPage": false,
		}, nil
	})

	coins, err := client.GetCoins(context.Background(), MustParseAddress("0x5"), "0x2::sui::SUI")
	require.NoError(t, err)
	require.Len(t, coins, 2)
	assert.Equal(t, Uint64(5), coins[0].Balance)
	assert.Equal(t, Uint64(7), coins[1].Balance)
	assert.Equal(t, 2, node.count("suix_getCoins"))
}

func TestSharedVersionIsCached(t *testing.T) {
	client, node := newTestClient(t, func(req rpcRequest) (any, error) {
		return map[string]any{
			"data": map[string]any{
				"objectId": "0x6",
				"version":  "99",
				"owner":    map[string]any{"Shared": map[string]any{"initial_shared_version": 12}},
			},
		}, nil
	})

	for i := 0; i < 3; i++ {
		v, err := client.SharedVersion(context.Background(), MustParseAddress("0x6"))
		require.NoError(t, err)
		assert.Equal(t, uint64(12), v)
	}
	assert.Equal(t, 1, node.count("sui_getObject"))
}

func TestSharedVersionRejectsOwnedObject(t *testing.T) {
	client, _ := newTestClient(t, func(req rpcRequest) (any, error) {
		return map[string]any{
			"data": map[string]any{"objectId": "0x6", "owner": map[string]any{"AddressOwner": "0x1"}},
		}, nil
	})
	_, err := client.SharedVersion(context.Background(), MustParseAddress("0x6"))
	require.Error(t, err)
}

func TestGetObjectMissing(t *testing.T) {
	client, _ := newTestClient(t, func(req rpcRequest) (any, error) {
		return map[string]any{"error": map[string]any{"code": "notExists"}}, nil
	})
	_, err := client.GetObject(context.Background(), MustParseAddress("0x6"))
	require.Error(t, err)
}

func TestDevInspectAndExecute(t *testing.T) {
	client, _ := newTestClient(t, func(req rpcRequest) (any, error) {
		switch req.Method {
		case "sui_devInspectTransactionBlock":
			var kind string
			assert.NoError(t, json.Unmarshal(req.Params[1], &kind))
			assert.Equal(t, "AQI=", kind)
			return map[string]any{"results": []any{map[string]any{"returnValues": []any{[]any{[]int{1, 0, 0, 0, 0, 0, 0, 0}, "u64"}}}}}, nil
		case "sui_executeTransactionBlock":
			var mode string
			assert.NoError(t, json.Unmarshal(req.Params[3], &mode))
			assert.Equal(t, "WaitForLocalExecution", mode)
			return map[string]any{"digest": "D1", "effects": map[string]any{"status": map[string]any{"status": "success"}}}, nil
		case "suix_getReferenceGasPrice":
			return "750", nil
		}
		return nil, nil
	})
	ctx := context.Background()

	res, err := client.DevInspect(ctx, Address{}, []byte{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0}, res.Results[0].ReturnValues[0].Bytes)

	price, err := client.ReferenceGasPrice(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(750), price)

	out, err := client.Execute(ctx, []byte{0}, "sig")
	require.NoError(t, err)
	assert.True(t, out.Succeeded())
	assert.Equal(t, "D1", out.Digest)
}

func TestDevInspectReportsExecutionError(t *testing.T) {
	client, _ := newTestClient(t, func(req rpcRequest) (any, error) {
		return map[string]any{"error": "MoveAbort"}, nil
	})
	_, err := client.DevInspect(context.Background(), Address{}, []byte{1})
	require.Error(t, err)
}
