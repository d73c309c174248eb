package photos

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/anoixa/gphotos-grid/cache/gocache"
)

// albumBody 构造与真实相册页面结构相同的内嵌数据
func albumBody(urls ...string) string {
	var sb strings.Builder
	sb.WriteString(`<script>AF_initDataCallback({key: 'ds:0', data:[null,[`)
	for i, u := range urls {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `["AF1QipN%03d",["%s",1024,768,null,null,null,null,null,null,[1]]]`, i, u)
	}
	sb.WriteString(`]]});</script>`)
	return sb.String()
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeFetcher struct {
	mu    sync.Mutex
	body  string
	ok    bool
	calls int
	delay time.Duration
}

func (f *fakeFetcher) set(body string, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.body, f.ok = body, ok
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeFetcher) Fetch(ctx context.Context, albumURL string) (string, bool) {
	f.mu.Lock()
	f.calls++
	body, ok, delay := f.body, f.ok, f.delay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if !ok {
		return "", false
	}
	return body, true
}

// countingStore 统计读写次数并可注入错误
type countingStore struct {
	Store

	mu       sync.Mutex
	gets     int
	puts     int
	getErr   error
	putErr   error
	lastPut  *AlbumRecord
	putCount map[string]int
}

func newCountingStore() *countingStore {
	return &countingStore{
		Store:    NewCacheStore(gocache.NewGoCache(time.Minute)),
		putCount: make(map[string]int),
	}
}

func (s *countingStore) Get(ctx context.Context, key string) (*AlbumRecord, error) {
	s.mu.Lock()
	s.gets++
	err := s.getErr
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.Store.Get(ctx, key)
}

func (s *countingStore) Put(ctx context.Context, key string, record *AlbumRecord) error {
	s.mu.Lock()
	s.puts++
	s.putCount[key]++
	s.lastPut = record
	err := s.putErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.Store.Put(ctx, key, record)
}

func (s *countingStore) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets, s.puts
}
