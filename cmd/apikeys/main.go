// Command apikeys manages the Redis set that mongoapi merges into its API key
// allow-list at startup. It reads the same environment as the server.
//
//	apikeys list
//	apikeys add KEY...
//	apikeys remove KEY...
//	apikeys generate
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mongoapi/mongoapi/internal/apikey"
	"github.com/mongoapi/mongoapi/internal/config"
	"github.com/mongoapi/mongoapi/pkg/logger"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	setKey := flag.String("set", "", "Redis set holding API keys (defaults to API_KEYS_REDIS_SET)")
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: apikeys [-set NAME] list|add|remove|generate [KEY...]")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if *setKey == "" {
		*setKey = cfg.Auth.RedisSet
	}
	if cfg.Redis.Host == "" || *setKey == "" {
		logger.Fatalf("REDIS_HOST and API_KEYS_REDIS_SET (or -set) are required")
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	args := flag.Args()[1:]
	switch flag.Arg(0) {
	case "list":
		keys, err := apikey.LoadRedisKeys(ctx, client, *setKey)
		if err != nil {
			logger.Fatalf("%v", err)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Println(k)
		}
	case "add":
		n, err := apikey.AddRedisKeys(ctx, client, *setKey, config.SplitList(strings.Join(args, ","))...)
		if err != nil {
			logger.Fatalf("%v", err)
		}
		logger.Infof("added %d key(s) to %s", n, *setKey)
	case "remove":
		n, err := apikey.RemoveRedisKeys(ctx, client, *setKey, config.SplitList(strings.Join(args, ","))...)
		if err != nil {
			logger.Fatalf("%v", err)
		}
		logger.Infof("removed %d key(s) from %s", n, *setKey)
	case "generate":
		key := strings.ReplaceAll(uuid.NewString(), "-", "")
		if _, err := apikey.AddRedisKeys(ctx, client, *setKey, key); err != nil {
			logger.Fatalf("%v", err)
		}
		fmt.Println(key)
	default:
		logger.Fatalf("unknown command %q", flag.Arg(0))
	}
	logger.Debugf("done; restart mongoapi to pick up changes")
}
