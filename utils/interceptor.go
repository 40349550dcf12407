package utils

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
)

// HttpInterceptor wraps a transport, passing response bodies through a hook while enabled.
type HttpInterceptor struct {
	core         http.RoundTripper
	enabled      atomic.Bool
	bodyReplacer Replacer
}

// Replacer receives the request and response body and returns the body the caller should see.
type Replacer func(request []byte, response []byte) []byte

func NewHttpInterceptor(bodyReplacer Replacer) *HttpInterceptor {
	return &HttpInterceptor{
		core:         http.DefaultTransport,
		bodyReplacer: bodyReplacer,
	}
}

func (i *HttpInterceptor) Enable() {
	i.enabled.Store(true)
}

func (i *HttpInterceptor) Disable() {
	i.enabled.Store(false)
}

func (i *HttpInterceptor) Enabled() bool {
	return i.enabled.Load()
}

func (i *HttpInterceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	var reqBody []byte
	if i.Enabled() && req.Body != nil {
		var err error
		reqBody, err = io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, err
		}
		req.Body = io.NopCloser(bytes.NewReader(reqBody))
	}

	res, err := i.core.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if !i.Enabled() {
		return res, nil
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	newBody := i.bodyReplacer(reqBody, body)

	res.Body = io.NopCloser(bytes.NewReader(newBody))
	res.ContentLength = int64(len(newBody))
	res.Header.Set("Content-Length", fmt.Sprintf("%d", res.ContentLength))
	return res, nil
}
