package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etnz/tradebook/date"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastClient() *Client {
	c := New(5*time.Second, "", zerolog.Nop())
	c.Retry = Retry{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	return c
}

func TestGetJSON_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"rate": 1.1}`)
	}))
	defer srv.Close()

	var v struct{ Rate float64 }
	require.NoError(t, fastClient().GetJSON(context.Background(), srv.URL, &v))
	assert.Equal(t, 1.1, v.Rate)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetJSON_GivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	var v any
	err := fastClient().GetJSON(context.Background(), srv.URL, &v)
	assert.ErrorContains(t, err, "all 3 attempts failed")
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetJSON_ClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	var v any
	err := fastClient().GetJSON(context.Background(), srv.URL+"/missing", &v)
	var serr *StatusError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, http.StatusNotFound, serr.Status)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDiskCache_Daily(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		fmt.Fprintf(w, `{"n": %d}`, n)
	}))
	defer srv.Close()

	today := date.New(2024, 3, 10)
	c := fastClient()
	c.HTTP.Transport = &DiskCache{Base: http.DefaultTransport, Dir: t.TempDir(), Log: zerolog.Nop(), Today: func() date.Date { return today }}

	var v struct{ N int }
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, &v))
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, &v))
	assert.Equal(t, 1, v.N, "second call is served from disk")

	today = today.Add(1)
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, &v))
	assert.Equal(t, 2, v.N, "the cache expires every day")
}
