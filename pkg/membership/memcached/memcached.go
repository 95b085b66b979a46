/* This package implements a membership cache using memcached, so
that several dcod replicas share what they have learnt from GitHub.

memcached may evict entries under memory pressure. We recover from
that with a cache miss and another API call.

*/
package memcached

import (
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"

	"github.com/fluxcd/dco/pkg/membership"
)

const (
	valueMember    = '1'
	valueNotMember = '0'
)

var _ membership.Cache = &MemcacheClient{}

// MemcacheClient is a memcache client that gets its server list from SRV
// records, and periodically updates that ServerList.
type MemcacheClient struct {
	client     *memcache.Client
	serverList *memcache.ServerList
	hostname   string
	service    string
	logger     log.Logger

	quit chan struct{}
	wait sync.WaitGroup
}

// MemcacheConfig defines how a MemcacheClient should be constructed.
type MemcacheConfig struct {
	Host           string
	Service        string
	Timeout        time.Duration
	UpdateInterval time.Duration
	Logger         log.Logger
	MaxIdleConns   int
}

func NewMemcacheClient(config MemcacheConfig) *MemcacheClient {
	var servers memcache.ServerList
	client := memcache.NewFromSelector(&servers)
	client.Timeout = config.Timeout
	client.MaxIdleConns = config.MaxIdleConns

	newClient := &MemcacheClient{
		client:     client,
		serverList: &servers,
		hostname:   config.Host,
		service:    config.Service,
		logger:     config.Logger,
		quit:       make(chan struct{}),
	}

	err := newClient.updateFromSRVRecords()
	if err != nil {
		config.Logger.Log("err", errors.Wrapf(err, "Error setting memcache servers to '%v'", config.Host))
	}

	newClient.wait.Add(1)
	go newClient.updateLoop(config.UpdateInterval, newClient.updateFromSRVRecords)
	return newClient
}

// Does not use DNS, accepts static list of servers.
func NewFixedServerMemcacheClient(config MemcacheConfig, addresses ...string) *MemcacheClient {
	var servers memcache.ServerList
	servers.SetServers(addresses...)
	client := memcache.NewFromSelector(&servers)
	client.Timeout = config.Timeout
	client.MaxIdleConns = config.MaxIdleConns

	newClient := &MemcacheClient{
		client:     client,
		serverList: &servers,
		hostname:   config.Host,
		service:    config.Service,
		logger:     config.Logger,
		quit:       make(chan struct{}),
	}

	newClient.wait.Add(1)
	go newClient.updateLoop(config.UpdateInterval, func() error {
		return servers.SetServers(addresses...)
	})
	return newClient
}

// Get returns the remembered membership for key.
func (c *MemcacheClient) Get(key string) (bool, error) {
	item, err := c.client.Get(key)
	if err != nil {
		if err == memcache.ErrCacheMiss {
			// Don't log on cache miss
			return false, membership.ErrNotCached
		}
		return false, errors.Wrap(err, "fetching membership from memcache")
	}
	return decode(item.Value)
}

// Set remembers membership for key. Memcached expirations are whole
// seconds, so ttl is rounded up to at least one.
func (c *MemcacheClient) Set(key string, member bool, ttl time.Duration) error {
	expiry := int32((ttl + time.Second - 1) / time.Second)
	if expiry < 1 {
		expiry = 1
	}
	if err := c.client.Set(&memcache.Item{
		Key:        key,
		Value:      encode(member),
		Expiration: expiry,
	}); err != nil {
		return errors.Wrap(err, "storing membership in memcache")
	}
	return nil
}

func encode(member bool) []byte {
	if member {
		return []byte{valueMember}
	}
	return []byte{valueNotMember}
}

func decode(value []byte) (bool, error) {
	if len(value) != 1 {
		return false, fmt.Errorf("unexpected cached membership value %q", value)
	}
	switch value[0] {
	case valueMember:
		return true, nil
	case valueNotMember:
		return false, nil
	}
	return false, fmt.Errorf("unexpected cached membership value %q", value)
}

// Stop the memcache client.
func (c *MemcacheClient) Stop() {
	close(c.quit)
	c.wait.Wait()
}

func (c *MemcacheClient) updateLoop(updateInterval time.Duration, update func() error) {
	defer c.wait.Done()
	ticker := time.NewTicker(updateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := update(); err != nil {
				c.logger.Log("err", errors.Wrap(err, "error updating memcache servers"))
			}
		case <-c.quit:
			return
		}
	}
}

// updateFromSRVRecords sets a memcache server list from SRV records. SRV
// priority & weight are ignored.
func (c *MemcacheClient) updateFromSRVRecords() error {
	_, addrs, err := net.LookupSRV(c.service, "tcp", c.hostname)
	if err != nil {
		return err
	}
	var servers []string
	for _, srv := range addrs {
		servers = append(servers, fmt.Sprintf("%s:%d", srv.Target, srv.Port))
	}
	// ServerList deterministically maps keys to _index_ of the server list.
	// Since DNS returns records in different order each time, we sort to
	// guarantee best possible match between nodes.
	sort.Strings(servers)
	return c.serverList.SetServers(servers...)
}
