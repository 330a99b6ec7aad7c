package bankfeed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/personal/client-info" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Token"); got != "secret" {
			t.Errorf("X-Token = %q", got)
		}
		w.Write([]byte(`{"name":"Jane","accounts":[{"id":"a1","type":"black","currencyCode":980,"balance":123456}]}`))
	}))
	defer srv.Close()

	info, err := NewClient(srv.URL).ClientInfo(context.Background(), "secret")
	if err != nil {
		t.Fatalf("client info: %v", err)
	}
	if len(info.Accounts) != 1 {
		t.Fatalf("got %d accounts, want 1", len(info.Accounts))
	}
	a := info.Accounts[0]
	if a.ID != "a1" || a.CurrencyCode != 980 || a.Balance != 123456 {
		t.Errorf("account = %+v", a)
	}
}

func TestClientInfoRejectedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).ClientInfo(context.Background(), "bad"); err == nil {
		t.Fatal("expected an error on a rejected token")
	}
}

func TestStatement(t *testing.T) {
	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want := fmt.Sprintf("/personal/statement/a1/%d", from.Unix())
		if r.URL.Path != want {
			t.Errorf("path = %s, want %s", r.URL.Path, want)
		}
		w.Write([]byte(`[{"id":"s1","time":1706800000,"description":"Coffee","mcc":5814,"amount":-4550,"balance":99000}]`))
	}))
	defer srv.Close()

	entries, err := NewClient(srv.URL).Statement(context.Background(), "secret", "a1", from)
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Amount != -4550 || entries[0].MCC != 5814 {
		t.Errorf("entry = %+v", entries[0])
	}
}

func TestFromMinor(t *testing.T) {
	tests := []struct {
		minor int64
		want  string
	}{
		{123456, "1234.56"},
		{-4550, "-45.5"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := FromMinor(tt.minor); got.String() != tt.want {
			t.Errorf("FromMinor(%d) = %s, want %s", tt.minor, got, tt.want)
		}
	}
}
