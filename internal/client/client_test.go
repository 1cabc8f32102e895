package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analytics/total_requests/day" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer k" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"labels":["a"],"data":[1]}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "k")
	var got struct {
		Labels []string `json:"labels"`
		Data   []int    `json:"data"`
	}
	if err := c.GetJSON(context.Background(), "/analytics/total_requests/day", &got); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if len(got.Labels) != 1 || got.Data[0] != 1 {
		t.Errorf("got %+v", got)
	}
}

func TestGetJSON_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"unknown time frame"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	err := New(srv.URL, "").GetJSON(context.Background(), "/analytics/total_requests/x", &struct{}{})

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if se.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d", se.StatusCode)
	}
	if se.Method != http.MethodGet {
		t.Errorf("Method = %q", se.Method)
	}
}

func TestGetJSON_Malformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"labels":`))
	}))
	defer srv.Close()

	var v map[string]any
	if err := New(srv.URL, "").GetJSON(context.Background(), "/x", &v); err == nil {
		t.Fatal("GetJSON() error = nil, want decode error")
	}
}

func TestPostText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "text/plain; charset=utf-8" {
			t.Errorf("Content-Type = %q", ct)
		}
		b, _ := io.ReadAll(r.Body)
		w.Write([]byte("<p>" + string(b) + "</p>"))
	}))
	defer srv.Close()

	got, err := New(srv.URL, "").PostText(context.Background(), "/requirements/preview/", "hi")
	if err != nil {
		t.Fatalf("PostText() error = %v", err)
	}
	if got != "<p>hi</p>" {
		t.Errorf("got %q", got)
	}
}

func TestURL(t *testing.T) {
	c := New("http://example.com/", "")
	if got := c.URL("courses/all"); got != "http://example.com/courses/all" {
		t.Errorf("URL() = %q", got)
	}
}
