package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/stretchr/testify/require"
)

// JsonRpcRequest is a request as the mock server received it.
type JsonRpcRequest struct {
	Version string            `json:"jsonrpc"`
	ID      json.RawMessage   `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

type jsonRpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type jsonRpcResponse struct {
	Version string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *jsonRpcError   `json:"error,omitempty"`
}

// MockJSONRPCServer answers every request with the next configured response.
type MockJSONRPCServer struct {
	*httptest.Server
	Requests   []JsonRpcRequest
	Counter    int
	ForceError int

	t         require.TestingT
	responses []interface{}
	lock      sync.Mutex
}

// MockJSONRPC starts a server answering with `response`. A string is a raw JSON
// result, an error becomes a JSON-RPC error object (its text may itself be a
// JSON error object), and a []string is served in order, repeating the last entry.
func MockJSONRPC(t require.TestingT, response interface{}) (*MockJSONRPCServer, func()) {
	mock := &MockJSONRPCServer{t: t}
	switch r := response.(type) {
	case []string:
		for _, item := range r {
			mock.responses = append(mock.responses, item)
		}
	case []interface{}:
		mock.responses = r
	default:
		mock.responses = []interface{}{r}
	}
	mock.Server = httptest.NewServer(http.HandlerFunc(mock.serve))
	return mock, mock.Close
}

// Methods returns the methods called, in order.
func (mock *MockJSONRPCServer) Methods() []string {
	mock.lock.Lock()
	defer mock.lock.Unlock()
	methods := make([]string, len(mock.Requests))
	for i, req := range mock.Requests {
		methods[i] = req.Method
	}
	return methods
}

func (mock *MockJSONRPCServer) serve(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	require.NoError(mock.t, err)
	var req JsonRpcRequest
	require.NoError(mock.t, json.Unmarshal(body, &req))

	mock.lock.Lock()
	mock.Requests = append(mock.Requests, req)
	index := mock.Counter
	mock.Counter++
	mock.lock.Unlock()

	if mock.ForceError > 0 {
		w.WriteHeader(mock.ForceError)
		return
	}
	if index >= len(mock.responses) {
		index = len(mock.responses) - 1
	}

	resp := jsonRpcResponse{Version: "2.0", ID: req.ID}
	switch value := mock.responses[index].(type) {
	case error:
		rpcErr := &jsonRpcError{}
		if json.Unmarshal([]byte(value.Error()), rpcErr) != nil || rpcErr.Message == "" {
			rpcErr = &jsonRpcError{Code: -32000, Message: value.Error()}
		}
		resp.Error = rpcErr
	case string:
		resp.Result = json.RawMessage(value)
	default:
		bz, err := json.Marshal(value)
		require.NoError(mock.t, err)
		resp.Result = bz
	}
	if len(resp.Result) == 0 && resp.Error == nil {
		resp.Result = json.RawMessage("null")
	}
	bz, err := json.Marshal(resp)
	require.NoError(mock.t, err)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(bz)
}
