package tileset

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Sink receives generated content. *tilemap.Manager satisfies it.
type Sink interface {
	SetTile(x, y int, content string)
}

// SourceConfig tunes a Source.
type SourceConfig struct {
	Seed        uint32        `mapstructure:"seed"`
	Latency     time.Duration `mapstructure:"latency"`      // simulated load time per tile
	NumCounters int64         `mapstructure:"num_counters"` // ristretto admission counters
	MaxCost     int64         `mapstructure:"max_cost"`     // cached tiles
}

// DefaultSourceConfig returns the settings used by the demo binary.
func DefaultSourceConfig() SourceConfig {
	return SourceConfig{
		Seed:        1,
		Latency:     150 * time.Millisecond,
		NumCounters: 1 << 18,
		MaxCost:     1 << 16,
	}
}

// Source generates tile content on demand and hands it to a Sink. Request
// has the shape of a missing-tile handler.
type Source struct {
	sink  Sink
	cfg   SourceConfig
	log   logrus.FieldLogger
	cache *ristretto.Cache[uint64, string]
	group singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewSource creates a source delivering into sink.
func NewSource(sink Sink, cfg SourceConfig, log logrus.FieldLogger) (*Source, error) {
	if sink == nil {
		return nil, fmt.Errorf("tileset: sink is required")
	}
	def := DefaultSourceConfig()
	if cfg.NumCounters <= 0 {
		cfg.NumCounters = def.NumCounters
	}
	if cfg.MaxCost <= 0 {
		cfg.MaxCost = def.MaxCost
	}
	if cfg.Latency < 0 {
		cfg.Latency = 0
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	cache, err := ristretto.NewCache(&ristretto.Config[uint64, string]{
		NumCounters:        cfg.NumCounters,
		MaxCost:            cfg.MaxCost,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("tileset: failed to create cache: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Source{
		sink:   sink,
		cfg:    cfg,
		log:    log.WithField("component", "tileset"),
		cache:  cache,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Request asks for the content of (x, y). Out-of-range coordinates and cache
// hits are delivered before Request returns; anything else is loaded in the
// background, once per coordinate no matter how often it is requested.
func (s *Source) Request(x, y int) {
	key, err := Key(x, y)
	if err != nil {
		s.sink.SetTile(x, y, Void)
		return
	}
	if content, ok := s.cache.Get(key); ok {
		s.sink.SetTile(x, y, content)
		return
	}
	if s.ctx.Err() != nil {
		return
	}

	// The result channel is buffered, so callers joining an in-flight load
	// can drop it.
	s.group.DoChan(strconv.FormatUint(key, 10), func() (interface{}, error) {
		return s.load(key, x, y)
	})
}

func (s *Source) load(key uint64, x, y int) (string, error) {
	if !s.begin() {
		return "", context.Canceled
	}
	defer s.wg.Done()

	if s.cfg.Latency > 0 {
		timer := time.NewTimer(s.cfg.Latency)
		defer timer.Stop()
		select {
		case <-s.ctx.Done():
			return "", s.ctx.Err()
		case <-timer.C:
		}
	}

	content := Terrain(s.cfg.Seed, x, y)
	s.cache.Set(key, content, 1)
	s.cache.Wait()

	if s.ctx.Err() != nil {
		return "", s.ctx.Err()
	}
	s.sink.SetTile(x, y, content)
	s.log.WithFields(logrus.Fields{"x": x, "y": y, "content": content}).Trace("tile loaded")
	return content, nil
}

func (s *Source) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.wg.Add(1)
	return true
}

// Close cancels pending loads, waits for running ones and frees the cache.
func (s *Source) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.cache.Close()
}
