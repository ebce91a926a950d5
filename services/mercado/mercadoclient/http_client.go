package mercadoclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"time"
)

const (
	httpClientTimeout = 30 * time.Second
	debug             = false
)

type httpMercadoClient struct{}

func newHTTPClient() *httpMercadoClient {
	return &httpMercadoClient{}
}

func (c httpMercadoClient) Send(ctx context.Context, method string, url string, body []byte, bearerToken string) (int, []byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return 0, []byte{}, fmt.Errorf("error creating http request for %s %s: %s", method, url, err)
	}

	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")
	if bearerToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+bearerToken)
	}

	if debug {
		reqDump, err := httputil.DumpRequestOut(httpReq, true)
		if err == nil {
			fmt.Printf("HTTP-req:\n%s", string(reqDump))
		}
	}

	httpClient := &http.Client{
		Timeout: httpClientTimeout,
	}
	httpResp, err := httpClient.Do(httpReq)
	if err != nil {
		return 0, []byte{}, fmt.Errorf("error calling %s %s: %s", method, url, err)
	}
	defer httpResp.Body.Close()

	if debug {
		respDump, err := httputil.DumpResponse(httpResp, true)
		if err == nil {
			fmt.Printf("HTTP-resp:\n%s", string(respDump))
		}
	}

	respPayload, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return 0, []byte{}, fmt.Errorf("error reading response %s %s: %s", method, url, err)
	}

	return httpResp.StatusCode, respPayload, nil
}
