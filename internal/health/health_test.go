package health

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerAnswersEverything(t *testing.T) {
	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/"},
		{http.MethodGet, "/healthz"},
		{http.MethodGet, "/some/deep/path?with=query"},
		{http.MethodPost, "/"},
		{http.MethodHead, "/anything"},
	}

	h := Handler()
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			res := rec.Result()
			assert.Equal(t, http.StatusOK, res.StatusCode)

			if tt.method != http.MethodHead {
				body, err := io.ReadAll(res.Body)
				require.NoError(t, err)
				assert.Equal(t, "Bot is running!", string(body))
			}
		})
	}
}
