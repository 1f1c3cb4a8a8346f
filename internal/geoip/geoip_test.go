package geoip

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/chattools/internal/apiclient"
)

const geoBody = `{"ip":"203.0.113.7","location":{"country":"US","region":"Washington","city":"Bothell","lat":47.76,"lng":-122.2,"postalCode":"98012","timezone":"-07:00"},"isp":"Example ISP"}`

func newServer(t *testing.T, ipStatus, geoStatus int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var geoCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/ip", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(ipStatus)
		fmt.Fprint(w, `{"ip":"203.0.113.7"}`)
	})
	mux.HandleFunc("/geo", func(w http.ResponseWriter, r *http.Request) {
		geoCalls.Add(1)
		assert.Equal(t, "203.0.113.7", r.URL.Query().Get("ipAddress"))
		assert.Equal(t, "geo-key", r.URL.Query().Get("apiKey"))
		w.WriteHeader(geoStatus)
		fmt.Fprint(w, geoBody)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &geoCalls
}

func newClient(srv *httptest.Server) *Client {
	return NewClient(apiclient.New(time.Second),
		WithIPURL(srv.URL+"/ip"),
		WithGeoURL(srv.URL+"/geo"),
		WithGeoAPIKey("geo-key"),
	)
}

func TestLocate(t *testing.T) {
	srv, calls := newServer(t, http.StatusOK, http.StatusOK)

	loc, err := newClient(srv).Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "203.0.113.7", loc.IP)
	assert.Equal(t, "Bothell, Washington, US", loc.Place())
	assert.Equal(t, "98012", loc.PostalCode)
	assert.Equal(t, "Example ISP", loc.ISP)
	assert.Equal(t, "Example ISP", loc.Raw["isp"])
}

func TestLocate_Failures(t *testing.T) {
	tests := []struct {
		name      string
		ipStatus  int
		geoStatus int
		wantGeo   int32
		wantErr   string
	}{
		{name: "public ip fails", ipStatus: http.StatusServiceUnavailable, geoStatus: http.StatusOK, wantGeo: 0, wantErr: "failed to get public IP"},
		{name: "geolocation fails", ipStatus: http.StatusOK, geoStatus: http.StatusForbidden, wantGeo: 1, wantErr: "failed to geolocate 203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := newServer(t, tt.ipStatus, tt.geoStatus)
			_, err := newClient(srv).Locate(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, tt.wantGeo, calls.Load())
			_, ok := apiclient.IsHTTPError(err)
			assert.True(t, ok)
		})
	}
}

func TestLookup_NoAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("apiKey"))
		assert.Equal(t, "1.2.3.4", r.URL.Query().Get("ipAddress"))
		fmt.Fprint(w, `{"location":{"country":"DE"}}`)
	}))
	defer srv.Close()

	loc, err := NewClient(apiclient.New(time.Second), WithGeoURL(srv.URL+"/api/v2/country,city")).Lookup(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3.4", loc.IP)
	assert.Equal(t, "DE", loc.Place())
}

func TestPublicIP_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	_, err := NewClient(apiclient.New(time.Second), WithIPURL(srv.URL)).PublicIP(context.Background())
	require.Error(t, err)
}

func TestLookup_UndecodableResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "array", body: `[{"ip":"1.2.3.4"}]`},
		{name: "string", body: `"1.2.3.4"`},
		{name: "wrong field type", body: `{"ip":"1.2.3.4","location":{"lat":"north"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			loc, err := NewClient(apiclient.New(time.Second), WithGeoURL(srv.URL)).Lookup(context.Background(), "1.2.3.4")
			require.Error(t, err)
			assert.Nil(t, loc)
			assert.Contains(t, err.Error(), "failed to decode geolocation")
		})
	}
}
