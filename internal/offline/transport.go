package offline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/teamup-app/teamup-backend/internal/logging"
)

// HeaderCache is set on responses served from a cache
const HeaderCache = "X-Offline-Cache"

const (
	// maxBodySize bounds what a single cache entry may hold
	maxBodySize       = 2 << 20
	revalidateTimeout = 30 * time.Second
)

// Transport is an http.RoundTripper applying a Policy to GET requests.
// Other methods pass straight through to Base.
type Transport struct {
	Base   http.RoundTripper
	policy *Policy
	store  Store
	now    func() time.Time

	wg sync.WaitGroup
}

func NewTransport(base http.RoundTripper, policy *Policy, store Store) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{
		Base:   base,
		policy: policy,
		store:  store,
		now:    time.Now,
	}
}

// Wait blocks until every background revalidation has settled
func (t *Transport) Wait() {
	t.wg.Wait()
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.Base.RoundTrip(req)
	}

	route := t.policy.Match(req.URL.String())
	switch route.Strategy {
	case NetworkFirst:
		return t.networkFirst(req, route)
	case StaleWhileRevalidate:
		return t.staleWhileRevalidate(req, route)
	default:
		return t.cacheFirst(req, route)
	}
}

func (t *Transport) cacheFirst(req *http.Request, route Route) (*http.Response, error) {
	if e := t.lookup(req.Context(), route, req.URL.String()); e != nil {
		return e.response(req), nil
	}
	return t.fetch(req, route)
}

func (t *Transport) networkFirst(req *http.Request, route Route) (*http.Response, error) {
	resp, err := t.fetch(req, route)
	if err == nil {
		return resp, nil
	}

	if e := t.lookup(req.Context(), route, req.URL.String()); e != nil {
		logging.FromContext(req.Context()).WithError(err).WithField("cache", route.Name).
			Debug("network failed, serving cached response")
		return e.response(req), nil
	}
	return nil, err
}

func (t *Transport) staleWhileRevalidate(req *http.Request, route Route) (*http.Response, error) {
	e := t.lookup(req.Context(), route, req.URL.String())
	if e == nil {
		return t.fetch(req, route)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(req.Context()), revalidateTimeout)
	bg := req.Clone(ctx)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer cancel()
		resp, err := t.fetch(bg, route)
		if err != nil {
			logging.FromContext(bg.Context()).WithError(err).WithField("cache", route.Name).
				Warn("background revalidation failed")
			return
		}
		resp.Body.Close()
	}()

	return e.response(req), nil
}

// lookup returns a fresh entry or nil. Expired entries are dropped.
func (t *Transport) lookup(ctx context.Context, route Route, key string) *Entry {
	e, err := t.store.Get(ctx, route.Name, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			logging.FromContext(ctx).WithError(err).WithField("cache", route.Name).Warn("cache read failed")
		}
		return nil
	}
	if route.MaxAge > 0 && t.now().Sub(e.StoredAt) > route.MaxAge {
		if err := t.store.Delete(ctx, route.Name, key); err != nil {
			logging.FromContext(ctx).WithError(err).WithField("cache", route.Name).Warn("cache delete failed")
		}
		return nil
	}
	return e
}

// fetch performs the network request and stores successful responses
func (t *Transport) fetch(req *http.Request, route Route) (*http.Response, error) {
	resp, err := t.Base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > maxBodySize {
		// too large to cache: hand back the prefix and the unread rest
		resp.Body = passthroughBody{
			Reader: io.MultiReader(bytes.NewReader(body), resp.Body),
			Closer: resp.Body,
		}
		return resp, nil
	}
	resp.Body.Close()

	e := &Entry{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
		StoredAt:   t.now(),
	}
	t.save(req.Context(), route, req.URL.String(), e)

	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	return resp, nil
}

type passthroughBody struct {
	io.Reader
	io.Closer
}

func (t *Transport) save(ctx context.Context, route Route, key string, e *Entry) {
	log := logging.FromContext(ctx).WithField("cache", route.Name)

	if err := t.store.Put(ctx, route.Name, key, e); err != nil {
		log.WithError(err).Warn("cache write failed")
		return
	}

	var olderThan time.Time
	if route.MaxAge > 0 {
		olderThan = e.StoredAt.Add(-route.MaxAge)
	}
	if err := t.store.Trim(ctx, route.Name, route.MaxEntries, olderThan); err != nil {
		log.WithError(err).Warn("cache trim failed")
	}
}

func (e *Entry) response(req *http.Request) *http.Response {
	header := e.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	header.Set(HeaderCache, "hit")

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode)),
		StatusCode:    e.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}
