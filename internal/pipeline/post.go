package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/ppiankov/claimcheck/internal/model"
)

// ErrInvalidPostURL is returned for URLs that do not point at a post
var ErrInvalidPostURL = errors.New("invalid post URL")

var postIDPattern = regexp.MustCompile(`(twitter\.com|x\.com)/\w+/status/(\d+)`)

// ExtractPostID returns the numeric status ID of a twitter.com or x.com post URL
func ExtractPostID(postURL string) (string, error) {
	m := postIDPattern.FindStringSubmatch(postURL)
	if m == nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidPostURL, postURL)
	}
	return m[2], nil
}

// PostFetcher loads posts through the RapidAPI tweet endpoint
type PostFetcher struct {
	apiKey     string
	apiHost    string
	endpoint   string
	httpClient *http.Client
}

// NewPostFetcher creates a post fetcher for the given RapidAPI host
func NewPostFetcher(apiKey, apiHost string, timeout time.Duration) (*PostFetcher, error) {
	if apiKey == "" || apiHost == "" {
		return nil, fmt.Errorf("post API key and host are required (RAPIDAPI_KEY, RAPIDAPI_HOST)")
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &PostFetcher{
		apiKey:     apiKey,
		apiHost:    apiHost,
		endpoint:   "https://" + apiHost,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type rapidAuthor struct {
	Name         string `json:"name"`
	ScreenName   string `json:"screen_name"`
	Image        string `json:"image"`
	BlueVerified bool   `json:"blue_verified"`
}

type rapidPost struct {
	ID        json.RawMessage `json:"id"`
	CreatedAt string          `json:"created_at"`
	Text      string          `json:"text"`
	Lang      string          `json:"lang"`
	Likes     int             `json:"likes"`
	Retweets  int             `json:"retweets"`
	Bookmarks int             `json:"bookmarks"`
	Quotes    int             `json:"quotes"`
	Replies   int             `json:"replies"`
	Author    *rapidAuthor    `json:"author"`
	Media     json.RawMessage `json:"media"`
}

// FetchPost loads the post behind postURL
func (f *PostFetcher) FetchPost(ctx context.Context, postURL string) (*model.Post, error) {
	id, err := ExtractPostID(postURL)
	if err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/tweet.php?id=%s", strings.TrimSuffix(f.endpoint, "/"), url.QueryEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-rapidapi-key", f.apiKey)
	req.Header.Set("x-rapidapi-host", f.apiHost)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch post: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read post: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch post: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var raw rapidPost
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode post: %w", err)
	}

	post := &model.Post{
		ID:        rawID(raw.ID),
		CreatedAt: raw.CreatedAt,
		Text:      raw.Text,
		Lang:      raw.Lang,
		Likes:     raw.Likes,
		Retweets:  raw.Retweets,
		Bookmarks: raw.Bookmarks,
		Quotes:    raw.Quotes,
		Replies:   raw.Replies,
	}
	if raw.Author != nil {
		post.Author = &model.Author{
			Name:         raw.Author.Name,
			ScreenName:   raw.Author.ScreenName,
			Image:        raw.Author.Image,
			BlueVerified: raw.Author.BlueVerified,
		}
	}
	if len(raw.Media) > 0 && string(raw.Media) != "null" {
		post.Media = raw.Media
	}
	if post.ID == "" {
		post.ID = id
	}
	return post, nil
}

// rawID accepts the post ID as either a JSON string or number
func rawID(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	return s
}
