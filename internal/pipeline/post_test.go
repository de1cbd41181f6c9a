package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestExtractPostID(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://x.com/nasa/status/1946987654321", "1946987654321", false},
		{"https://twitter.com/some_user/status/42?s=20", "42", false},
		{"https://mobile.twitter.com/a/status/7/photo/1", "7", false},
		{"https://x.com/nasa", "", true},
		{"https://example.com/a/status/1", "", true},
		{"not a url", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := ExtractPostID(tt.url)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPostURL) {
					t.Fatalf("Expected ErrInvalidPostURL, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractPostID() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPostFetcher_FetchPost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tweet.php" || r.URL.Query().Get("id") != "123" {
			t.Errorf("Unexpected request: %s", r.URL)
		}
		if r.Header.Get("x-rapidapi-key") != "key" || r.Header.Get("x-rapidapi-host") != "api.example" {
			t.Errorf("Missing RapidAPI headers: %v", r.Header)
		}
		_, _ = w.Write([]byte(`{
			"id": 123,
			"created_at": "Sun Jul 20 18:05:44 +0000 2025",
			"text": "The Eiffel Tower is 330 metres tall.",
			"lang": "en",
			"likes": 10, "retweets": 2, "bookmarks": 1, "quotes": 0, "replies": 3,
			"author": {"name": "Paris Facts", "screen_name": "parisfacts", "blue_verified": true},
			"media": null
		}`))
	}))
	defer server.Close()

	fetcher, err := NewPostFetcher("key", "api.example", time.Second)
	if err != nil {
		t.Fatalf("NewPostFetcher() error: %v", err)
	}
	fetcher.endpoint = server.URL

	post, err := fetcher.FetchPost(context.Background(), "https://x.com/parisfacts/status/123")
	if err != nil {
		t.Fatalf("FetchPost() error: %v", err)
	}

	if post.ID != "123" || post.Text != "The Eiffel Tower is 330 metres tall." || post.Likes != 10 {
		t.Errorf("Unexpected post: %+v", post)
	}
	if post.Author == nil || post.Author.ScreenName != "parisfacts" || !post.Author.BlueVerified {
		t.Errorf("Unexpected author: %+v", post.Author)
	}
	if post.Media != nil {
		t.Errorf("Expected null media to be dropped, got %s", post.Media)
	}
}

func TestPostFetcher_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message": "You are not subscribed"}`))
	}))
	defer server.Close()

	fetcher, err := NewPostFetcher("key", "api.example", time.Second)
	if err != nil {
		t.Fatalf("NewPostFetcher() error: %v", err)
	}
	fetcher.endpoint = server.URL

	if _, err := fetcher.FetchPost(context.Background(), "https://x.com/a/status/1"); err == nil {
		t.Error("Expected error for 403")
	}
	if _, err := fetcher.FetchPost(context.Background(), "https://x.com/a"); !errors.Is(err, ErrInvalidPostURL) {
		t.Errorf("Expected ErrInvalidPostURL, got %v", err)
	}
	if _, err := NewPostFetcher("", "host", 0); err == nil {
		t.Error("Expected error for missing API key")
	}
}

func TestRawID(t *testing.T) {
	tests := map[string]string{
		`"1946"`: "1946",
		`1946`:   "1946",
		`null`:   "",
		``:       "",
	}
	for in, want := range tests {
		if got := rawID([]byte(in)); got != want {
			t.Errorf("rawID(%s) = %q, want %q", in, got, want)
		}
	}
}
