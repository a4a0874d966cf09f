// Package config loads and validates engine configuration.
//
// Configuration comes from a config.yml file, an optional .env file and the
// process environment, merged with Viper. Environment variables map onto
// nested keys by underscores, so COMPUTER_WORKERS sets computer.workers and
// MEMORY_REDIS_ADDR sets memory.redis.addr.
//
// # Usage
//
//	cfg, err := config.Load("graphkit")
//	if err != nil {
//	    return err
//	}
//	runner := computer.NewRunner(cfg.Computer)
//
// # Example config.yml
//
//	name: graphkit
//	environment: production
//	logging:
//	  level: info
//	  format: json
//	computer:
//	  workers: 8
//	  reduce_buckets: 4
//	memory:
//	  backend: redis
//	  ttl: 1h
//	  redis:
//	    addr: localhost:6379
package config
