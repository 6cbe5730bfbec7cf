package database

import (
	"context"
	"fmt"
	"time"

	"fleetwash/config"
	"fleetwash/pkg/logger"

	"github.com/valkey-io/valkey-go"
)

type CacheClient valkey.Client

type Cache struct {
	General CacheClient
	Session CacheClient
	Catalog CacheClient
	Events  CacheClient
}

// Valkey database index organization. Each index separates a cache category.
const (
	// GENERAL_CACHE_INDEX (DB 0) - miscellaneous cache operations
	GENERAL_CACHE_INDEX = iota

	// SESSION_CACHE_INDEX (DB 1) - user sessions and auth-related data
	SESSION_CACHE_INDEX

	// CATALOG_CACHE_INDEX (DB 2) - vehicle catalog and day-scope entry
	// reads, invalidated on every ledger mutation
	CATALOG_CACHE_INDEX

	// EVENTS_CACHE_INDEX (DB 3) - pub/sub for ledger change notifications
	EVENTS_CACHE_INDEX
)

func (s *DB) initializeCacheDB(config config.Config) error {
	log := s.log.Function("initializeCacheDB")
	log.Info("initializing cache database")

	address := config.DatabaseCacheAddress
	port := config.DatabaseCachePort
	if address == "" || port == 0 {
		return log.Error("failed to initialize cache database: address or port is empty")
	}

	newClient := func(index int) (CacheClient, error) {
		return valkey.NewClient(valkey.ClientOption{
			InitAddress: []string{fmt.Sprintf("%s:%d", address, port)},
			SelectDB:    index,
		})
	}

	var cacheDB Cache

	var err error
	cacheDB.General, err = newClient(GENERAL_CACHE_INDEX)
	if err != nil {
		return log.Err("failed to create general valkey client", err)
	}

	cacheDB.Session, err = newClient(SESSION_CACHE_INDEX)
	if err != nil {
		return log.Err("failed to create session valkey client", err)
	}

	cacheDB.Catalog, err = newClient(CATALOG_CACHE_INDEX)
	if err != nil {
		return log.Err("failed to create catalog valkey client", err)
	}

	cacheDB.Events, err = newClient(EVENTS_CACHE_INDEX)
	if err != nil {
		return log.Err("failed to create events valkey client", err)
	}

	s.Cache = cacheDB

	if config.DatabaseCacheReset != -1 {
		go clearCacheDB(config.DatabaseCacheReset, cacheDB)
	}

	return nil
}

func clearCacheDB(index int, cacheDB Cache) {
	log := logger.New("database").File("cache.database").Function("clearCacheDB")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var client CacheClient
	var dbName string

	switch index {
	case GENERAL_CACHE_INDEX:
		client = cacheDB.General
		dbName = "General"
	case SESSION_CACHE_INDEX:
		client = cacheDB.Session
		dbName = "Session"
	case CATALOG_CACHE_INDEX:
		client = cacheDB.Catalog
		dbName = "Catalog"
	case EVENTS_CACHE_INDEX:
		client = cacheDB.Events
		dbName = "Events"
	default:
		log.Warn("Invalid cache database index", "index", index)
		return
	}

	if err := client.Do(ctx, client.B().Flushdb().Build()).Error(); err != nil {
		log.Er("Failed to clear cache database", err, "index", index, "dbName", dbName)
		return
	}

	log.Info("Successfully cleared cache database", "index", index, "dbName", dbName)
}
