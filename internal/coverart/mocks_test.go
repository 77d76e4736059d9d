package coverart

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
)

const fakeImage = "\xff\xd8\xff\xe0fake-jpeg"

// scriptedDoer answers requests with a fixed sequence of status codes; the
// last status repeats once the script runs out.
type scriptedDoer struct {
	mu       sync.Mutex
	statuses []int
	err      error
	requests []*http.Request
}

func newScriptedDoer(statuses ...int) *scriptedDoer {
	return &scriptedDoer{statuses: statuses}
}

func (d *scriptedDoer) Do(req *http.Request) (*http.Response, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = append(d.requests, req)
	if d.err != nil {
		return nil, d.err
	}
	status := d.statuses[min(len(d.requests), len(d.statuses))-1]
	body := ""
	if status == http.StatusOK {
		body = fakeImage
	}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}, nil
}

func (d *scriptedDoer) calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.requests)
}

type fakeLookup struct {
	mu     sync.Mutex
	assets map[string]string
	err    error
	count  int
}

func (l *fakeLookup) LookupAssetID(_ context.Context, identifier string) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.count++
	if l.err != nil {
		return "", false, l.err
	}
	id, ok := l.assets[identifier]
	return id, ok, nil
}

// blockingDoer holds the first request until release is closed, then answers
// 200 unless the request's context was cancelled in the meantime.
type blockingDoer struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
	calls   atomic.Int32
}

func newBlockingDoer() *blockingDoer {
	return &blockingDoer{started: make(chan struct{}), release: make(chan struct{})}
}

func (d *blockingDoer) Do(req *http.Request) (*http.Response, error) {
	d.calls.Add(1)
	d.once.Do(func() { close(d.started) })
	<-d.release
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(fakeImage)),
		Request:    req,
	}, nil
}
