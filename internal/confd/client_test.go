package confd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Options{
		BaseURL: srv.URL,
		Token:   "test-token",
		Timeout: 2 * time.Second,
		RateRPS: 100,
	})
}

func TestFindParticipantByChannelFound(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/1.1/users/channels/PJSIP/abc-00000001" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("X-Auth-Token") != "test-token" {
			t.Errorf("missing auth token header")
		}
		_ = json.NewEncoder(w).Encode(participantInfoResponse{
			UUID:       "user-1",
			LineID:     42,
			Tags:       []string{"sales"},
			TenantUUID: "tenant-1",
			MainExtension: &struct {
				Exten   string `json:"exten"`
				Context string `json:"context"`
			}{Exten: "1001", Context: "default"},
		})
	})

	info, err := c.FindParticipantByChannel(context.Background(), "PJSIP/abc-00000001")
	if err != nil {
		t.Fatalf("FindParticipantByChannel: %v", err)
	}
	if info == nil {
		t.Fatal("expected non-nil participant info")
	}
	if info.UUID != "user-1" || info.LineID != 42 || info.TenantUUID != "tenant-1" {
		t.Errorf("got %+v", info)
	}
	if info.MainExtension == nil || info.MainExtension.Exten != "1001" {
		t.Errorf("got main extension %+v", info.MainExtension)
	}
}

func TestFindParticipantByChannelNotFound(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	info, err := c.FindParticipantByChannel(context.Background(), "PJSIP/missing")
	if err != nil {
		t.Fatalf("expected no error on 404, got %v", err)
	}
	if info != nil {
		t.Errorf("expected nil info, got %+v", info)
	}
}

func TestFindParticipantByUUID(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/1.1/users/user-2" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(participantInfoResponse{UUID: "user-2"})
	})

	info, err := c.FindParticipantByUUID(context.Background(), "user-2")
	if err != nil {
		t.Fatalf("FindParticipantByUUID: %v", err)
	}
	if info == nil || info.UUID != "user-2" {
		t.Errorf("got %+v", info)
	}
}

func TestListContexts(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") != "default" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode([]contextResponse{
			{TenantUUID: "tenant-a"},
			{TenantUUID: "tenant-b"},
		})
	})

	contexts, err := c.ListContexts(context.Background(), "default")
	if err != nil {
		t.Fatalf("ListContexts: %v", err)
	}
	if len(contexts) != 2 || contexts[0].TenantUUID != "tenant-a" {
		t.Errorf("got %+v", contexts)
	}
}

func TestGetServerError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.FindParticipantByUUID(context.Background(), "user-3")
	if err == nil {
		t.Fatal("expected error on 500 response")
	}
}
