package httpx_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"

	"imhungri/pkg/contextx"
	"imhungri/pkg/httpx"
	"imhungri/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

func TestLoggingRoundTripper(t *testing.T) {
	const testResponseBody = `{"key":"value","password":"qwerty"}`

	rq := require.New(t)

	testCases := []struct {
		name           string
		handlerFunc    http.HandlerFunc
		statusCode     int
		masker         logx.SensitiveDataMaskerInterface
		logFieldMaxLen int
		check          func(req, resp string)
	}{
		{
			name: "Status 200",
			handlerFunc: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			statusCode: http.StatusOK,
			masker:     logx.NewNopSensitiveDataMasker(),
			check: func(req, resp string) {
				rq.Contains(req, "GET / HTTP/1.1")
				rq.Contains(resp, "HTTP/1.1 200 OK")
			},
		},
		{
			name: "Status 404 with body",
			handlerFunc: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(testResponseBody))
			},
			statusCode: http.StatusNotFound,
			masker:     logx.NewNopSensitiveDataMasker(),
			check: func(req, resp string) {
				rq.Contains(req, "GET / HTTP/1.1")
				rq.Contains(resp, "HTTP/1.1 404 Not Found")
				rq.Contains(resp, testResponseBody)
			},
		},
		{
			name: "Sensitive fields masked",
			handlerFunc: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(testResponseBody))
			},
			statusCode: http.StatusOK,
			masker:     logx.NewSensitiveDataMasker(),
			check: func(_, resp string) {
				rq.Contains(resp, `"password":"[MASKED]"`)
				rq.NotContains(resp, "qwerty")
			},
		},
		{
			name: "Truncated dump",
			handlerFunc: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			statusCode:     http.StatusOK,
			masker:         logx.NewNopSensitiveDataMasker(),
			logFieldMaxLen: 10,
			check: func(req, _ string) {
				rq.LessOrEqual(len(req), 10)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handlerFunc)
			defer server.Close()

			var logBuf bytes.Buffer

			ctx := contextx.WithLogger(
				context.Background(),
				slog.New(slog.NewJSONHandler(&logBuf, nil)),
			)

			opts := []httpx.Option{httpx.WithSensitiveDataMasker(tc.masker)}
			if tc.logFieldMaxLen != 0 {
				opts = append(opts, httpx.WithLogFieldMaxLen(tc.logFieldMaxLen))
			}

			client := http.Client{
				Transport: httpx.NewLoggingRoundTripper(http.DefaultTransport, opts...),
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, http.NoBody)
			rq.NoError(err)

			resp, err := client.Do(req)
			rq.NoError(err)

			defer resp.Body.Close()

			_, err = io.Copy(io.Discard, resp.Body)
			rq.NoError(err)

			rq.Equal(tc.statusCode, resp.StatusCode)

			var reqDump, respDump string

			decoder := json.NewDecoder(&logBuf)

			for decoder.More() {
				var record map[string]any

				rq.NoError(decoder.Decode(&record))

				switch record["msg"] {
				case logx.FieldHTTPRequest:
					reqDump, _ = record[logx.FieldRequestBody].(string)
				case logx.FieldHTTPResponse:
					respDump, _ = record[logx.FieldResponseBody].(string)
				}
			}

			tc.check(reqDump, respDump)
		})
	}
}
