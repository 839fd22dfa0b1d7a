package valkey

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/kbsearch/internal/db"
)

var _ db.Store = (*Store)(nil)

// readyPollInterval is the pause between PINGs in WaitForReady.
const readyPollInterval = 100 * time.Millisecond

// Config holds connection parameters.
type Config struct {
	Addrs    []string
	Username string
	Password string
}

func (c Config) clientOption() (rueidis.ClientOption, error) {
	if len(c.Addrs) == 0 {
		return rueidis.ClientOption{}, errors.New("at least one address is required")
	}
	for i, addr := range c.Addrs {
		if strings.TrimSpace(addr) == "" {
			return rueidis.ClientOption{}, fmt.Errorf("address %d is empty", i)
		}
	}
	return rueidis.ClientOption{
		InitAddress:  c.Addrs,
		Username:     c.Username,
		Password:     c.Password,
		DisableCache: true,
		// FT.SEARCH replies are decoded from the RESP2 array layout.
		AlwaysRESP2: true,
	}, nil
}

// Store talks to valkey-search (or Redis 8 with RediSearch) through rueidis.
type Store struct {
	client rueidis.Client
}

// NewStore connects to the configured addresses.
func NewStore(cfg Config) (*Store, error) {
	opt, err := cfg.clientOption()
	if err != nil {
		return nil, fmt.Errorf("valkey config: %w", err)
	}
	client, err := rueidis.NewClient(opt)
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &Store{client: client}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return wrap(db.OpPing, s.client.Do(ctx, s.client.B().Ping().Build()).Error())
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings until the server answers or timeout elapses. The last
// ping error is reported on timeout.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		err := s.Ping(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("database not ready after %s: %w", timeout, err)
		case <-time.After(readyPollInterval):
		}
	}
}

// wrap tags a command failure with its operation; nil stays nil.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &db.Error{Op: op, Err: err}
}

// replyContains reports whether err is a server reply whose text contains substr, ignoring case.
func replyContains(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}
