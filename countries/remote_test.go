package countries

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/loadkit/loadable"
)

func TestFetchListMapsPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/all" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("fields") == "" {
			t.Error("expected fields filter on list request")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"alpha2Code":"SE","name":"Sweden","region":"Europe","capital":"Stockholm","population":10099265},
			{"alpha2Code":"NO","name":"Norway","region":"Europe","capital":"Oslo","population":5378857}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	list, err := client.FetchList(context.Background())
	if err != nil {
		t.Fatalf("fetch list failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 countries, got %d", len(list))
	}
	want := Country{Code: "SE", Name: "Sweden", Region: "Europe", Capital: "Stockholm", Population: 10099265}
	if list[0] != want {
		t.Fatalf("unexpected mapping: %+v", list[0])
	}
}

func TestFetchDetailsMapsPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/alpha/SE" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"alpha2Code":"SE","name":"Sweden","region":"Europe","capital":"Stockholm",
			"population":10099265,"area":450295.0,"flag":"https://flags.example/se.svg",
			"borders":["FIN","NOR"],
			"currencies":[{"code":"SEK"}],
			"languages":[{"name":"Swedish"}]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	details, err := client.FetchDetails(context.Background(), "SE")
	if err != nil {
		t.Fatalf("fetch details failed: %v", err)
	}
	if details.Code != "SE" || details.Area != 450295.0 {
		t.Fatalf("unexpected mapping: %+v", details)
	}
	if len(details.Currencies) != 1 || details.Currencies[0] != "SEK" {
		t.Fatalf("unexpected currencies: %v", details.Currencies)
	}
	if len(details.Languages) != 1 || details.Languages[0] != "Swedish" {
		t.Fatalf("unexpected languages: %v", details.Languages)
	}
	if len(details.Borders) != 2 {
		t.Fatalf("unexpected borders: %v", details.Borders)
	}
	if details.FlagURL != "https://flags.example/se.svg" {
		t.Fatalf("unexpected flag url: %q", details.FlagURL)
	}
}

func TestFetchReportsNetworkErrorOnBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.FetchList(context.Background())
	var netErr *loadable.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestFetchReportsNetworkErrorOnTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client := NewClient(server.URL)
	_, err := client.FetchDetails(context.Background(), "SE")
	var netErr *loadable.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestFetchReportsDecodingErrorOnMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.FetchList(context.Background())
	var decErr *loadable.DecodingError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected DecodingError, got %v", err)
	}
}

func TestNewClientDefaultsBaseURL(t *testing.T) {
	client := NewClient("")
	if client.baseURL != DefaultBaseURL {
		t.Fatalf("unexpected base url: %q", client.baseURL)
	}
}
