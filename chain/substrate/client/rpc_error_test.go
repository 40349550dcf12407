package client

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type jsonError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *jsonError) Error() string { return e.Message }

func TestAsRpcErrorMaybe(t *testing.T) {
	require := require.New(t)

	err := AsRpcErrorMaybe(&jsonError{Code: 1010, Message: "Invalid Transaction", Data: "Transaction is outdated"})
	require.EqualError(err, "Invalid Transaction: Transaction is outdated (1010)")

	err = AsRpcErrorMaybe(&jsonError{Code: 1014, Message: "Priority is too low"})
	require.EqualError(err, "Priority is too low (1014)")

	plain := errors.New("connection reset")
	require.Equal(plain, AsRpcErrorMaybe(plain))
}
