package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/eventbooking/internal/logging"
	"golang.org/x/net/publicsuffix"
)

type storedCookie struct {
	URL      string        `json:"url"`
	Host     string        `json:"host"`
	Name     string        `json:"name"`
	Value    string        `json:"value"`
	Path     string        `json:"path,omitempty"`
	Domain   string        `json:"domain,omitempty"`
	Expires  time.Time     `json:"expires,omitempty"`
	Secure   bool          `json:"secure,omitempty"`
	HttpOnly bool          `json:"httpOnly,omitempty"`
	SameSite http.SameSite `json:"sameSite,omitempty"`
}

func (s storedCookie) key() string {
	return s.Host + "|" + s.Domain + "|" + s.Path + "|" + s.Name
}

func (s storedCookie) cookie() *http.Cookie {
	return &http.Cookie{
		Name:     s.Name,
		Value:    s.Value,
		Path:     s.Path,
		Domain:   s.Domain,
		Expires:  s.Expires,
		Secure:   s.Secure,
		HttpOnly: s.HttpOnly,
		SameSite: s.SameSite,
	}
}

// PersistentJar is an http.CookieJar whose cookies outlive the process.
// Every change is written to a CookieStore; NewPersistentJar replays them.
type PersistentJar struct {
	jar   *cookiejar.Jar
	store CookieStore
	log   logging.Logger
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]storedCookie
}

func NewPersistentJar(ctx context.Context, store CookieStore, log logging.Logger) (*PersistentJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	if log == nil {
		log = logging.Nop()
	}

	j := &PersistentJar{
		jar:     jar,
		store:   store,
		log:     log.With("module", "cookiejar"),
		now:     time.Now,
		entries: make(map[string]storedCookie),
	}

	raw, err := store.LoadCookies(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cookies: %w", err)
	}
	if len(raw) == 0 {
		return j, nil
	}

	var saved []storedCookie
	if err := json.Unmarshal(raw, &saved); err != nil {
		j.log.Warn(ctx, "discarding unreadable cookies", "error", err)
		return j, nil
	}

	now := j.now()
	for _, s := range saved {
		if !s.Expires.IsZero() && !s.Expires.After(now) {
			continue
		}
		u, err := url.Parse(s.URL)
		if err != nil {
			continue
		}
		jar.SetCookies(u, []*http.Cookie{s.cookie()})
		j.entries[s.key()] = s
	}
	return j, nil
}

func (j *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	return j.jar.Cookies(u)
}

func (j *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.jar.SetCookies(u, cookies)

	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	origin := (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: u.Path}).String()
	for _, c := range cookies {
		s := storedCookie{
			URL:      origin,
			Host:     u.Host,
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
			SameSite: c.SameSite,
		}
		if c.MaxAge > 0 {
			s.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}

		expired := c.MaxAge < 0 || (!s.Expires.IsZero() && !s.Expires.After(now))
		if expired {
			delete(j.entries, s.key())
			continue
		}
		j.entries[s.key()] = s
	}

	j.persist()
}

func (j *PersistentJar) persist() {
	list := make([]storedCookie, 0, len(j.entries))
	for _, s := range j.entries {
		list = append(list, s)
	}
	sort.Slice(list, func(a, b int) bool { return list[a].key() < list[b].key() })

	raw, err := json.Marshal(list)
	if err != nil {
		j.log.Warn(context.Background(), "encode cookies", "error", err)
		return
	}
	if err := j.store.SaveCookies(context.Background(), raw); err != nil {
		j.log.Warn(context.Background(), "save cookies", "error", err)
	}
}
