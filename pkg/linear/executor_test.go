package linear

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goblinsan/mixer/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutorSendsRawAPIKey(t *testing.T) {
	var auth, query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Query string `json:"query"`
		}
		_ = json.Unmarshal(body, &req)
		query = req.Query
		_, _ = io.WriteString(w, `{"data":{"viewer":{"id":"u1","name":"Ada","email":"ada@example.com"}}}`)
	}))
	defer srv.Close()

	exec := NewExecutor("lin_api_secret", nil).WithEndpoint(srv.URL)
	var q viewerQuery
	require.NoError(t, exec.Query(context.Background(), "viewer", &q, nil))

	assert.Equal(t, "lin_api_secret", auth, "the API key is sent without a Bearer prefix")
	assert.Contains(t, query, "viewer{id,name,email}")
	assert.Equal(t, "Ada", q.Viewer.Name)
}

func TestExecutorClassifiesFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "non-2xx is transport",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "bad gateway", http.StatusBadGateway)
			},
			check: func(t *testing.T, err error) {
				var terr *errs.TransportError
				require.ErrorAs(t, err, &terr)
				assert.Equal(t, http.StatusBadGateway, terr.StatusCode)
				assert.Equal(t, "viewer", terr.Op)
			},
		},
		{
			name: "errors array is application",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"data":null,"errors":[{"message":"Argument Validation Error"}]}`)
			},
			check: func(t *testing.T, err error) {
				var aerr *errs.ApplicationError
				require.ErrorAs(t, err, &aerr)
				assert.Equal(t, "Argument Validation Error", aerr.Message)
				assert.False(t, errs.IsTransport(err))
			},
		},
		{
			name: "timeout is transport",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)
			},
			check: func(t *testing.T, err error) {
				assert.True(t, errs.IsTransport(err))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			exec := NewExecutor("k", nil).
				WithEndpoint(srv.URL).
				WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond})
			var q viewerQuery
			err := exec.Query(context.Background(), "viewer", &q, nil)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestExecutorUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	var q viewerQuery
	err := NewExecutor("k", nil).WithEndpoint(url).Query(context.Background(), "viewer", &q, nil)
	assert.True(t, errs.IsTransport(err))
}

func TestWithEndpointCopies(t *testing.T) {
	base := NewExecutor("k", nil)
	other := base.WithEndpoint("http://localhost:1/graphql")

	assert.Equal(t, DefaultEndpoint, base.Endpoint())
	assert.Equal(t, "http://localhost:1/graphql", other.Endpoint())
	assert.Equal(t, DefaultEndpoint, base.WithEndpoint("").Endpoint())
}
