package raidar

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return &Client{APIURL: srv.URL, Token: "secret", HTTP: srv.Client()}, srv
}

func TestListEncountersFollowsNextPages(t *testing.T) {
	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/encounters", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		page := r.URL.Query().Get("page")
		switch page {
		case "":
			fmt.Fprintf(w, `{"results":[{"area_id":5,"url_id":"aAbB","started_at":2000,"tags":[]}],"next":"http://%s/api/v2/encounters?page=2"}`, r.Host)
		case "2":
			fmt.Fprint(w, `{"results":[{"area_id":9,"url_id":"cCdD","started_at":1000,"tags":[]}],"next":null}`)
		default:
			t.Errorf("unexpected page %q", page)
		}
	})

	c, srv := newTestClient(mux)
	defer srv.Close()

	var seen []string
	err := c.ListEncountersSince(context.Background(), 500, "", func(e Encounter) bool {
		seen = append(seen, e.URLID)
		return true
	})
	if err != nil {
		t.Fatal(err)
	}

	if gotAuth != "Token secret" {
		t.Fatalf("Authorization header = %q", gotAuth)
	}
	if len(seen) != 2 || seen[0] != "aAbB" || seen[1] != "cCdD" {
		t.Fatalf("unexpected records: %v", seen)
	}
}

func TestListEncountersStopsOnEmptyPage(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/encounters", func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprintf(w, `{"results":[],"next":"http://%s/api/v2/encounters?page=2"}`, r.Host)
	})

	c, srv := newTestClient(mux)
	defer srv.Close()

	err := c.ListEncountersSince(context.Background(), 0, "", func(Encounter) bool { return true })
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("expected a single page fetch, got %d", calls)
	}
}

func TestListEncountersEarlyTermination(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/encounters", func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprintf(w, `{"results":[{"area_id":5,"url_id":"x","started_at":1,"tags":[]}],"next":"http://%s/api/v2/encounters?page=2"}`, r.Host)
	})

	c, srv := newTestClient(mux)
	defer srv.Close()

	err := c.ListEncountersSince(context.Background(), 0, "", func(Encounter) bool { return false })
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("callback stop should end pagination, got %d fetches", calls)
	}
}

func TestListEncountersTagGlobFilter(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/encounters", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[
			{"area_id":5,"url_id":"keep","started_at":2,"tags":["guild-raid"]},
			{"area_id":5,"url_id":"drop","started_at":1,"tags":["pug"]}
		],"next":null}`)
	})

	c, srv := newTestClient(mux)
	defer srv.Close()

	var seen []string
	err := c.ListEncountersSince(context.Background(), 0, "guild-*", func(e Encounter) bool {
		seen = append(seen, e.URLID)
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != 1 || seen[0] != "keep" {
		t.Fatalf("tag glob filter failed: %v", seen)
	}
}

func TestListEncountersFailsFastOnHTTPError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/encounters", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	c, srv := newTestClient(mux)
	defer srv.Close()

	err := c.ListEncountersSince(context.Background(), 0, "", func(Encounter) bool { return true })
	if err == nil {
		t.Fatal("expected error on 401 response")
	}
}

func TestFetchAreas(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/areas", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"id":5,"name":"Slothasor"}]}`)
	})

	c, srv := newTestClient(mux)
	defer srv.Close()

	body, err := c.FetchAreas(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if body == "" {
		t.Fatal("expected non-empty areas body")
	}
}

func TestRequestToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Error(err)
		}
		if r.PostForm.Get("username") != "ops" || r.PostForm.Get("password") != "hunter2" {
			t.Errorf("unexpected form: %v", r.PostForm)
		}
		fmt.Fprint(w, `{"token":"tok123"}`)
	})

	c, srv := newTestClient(mux)
	defer srv.Close()

	token, err := c.RequestToken(context.Background(), "ops", "hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if token != "tok123" {
		t.Fatalf("token = %q", token)
	}
}

func TestEncounterURL(t *testing.T) {
	c := &Client{APIURL: "https://www.gw2raidar.com"}
	if got := c.EncounterURL("aAbB"); got != "https://www.gw2raidar.com/encounter/aAbB" {
		t.Fatalf("EncounterURL = %q", got)
	}
}
