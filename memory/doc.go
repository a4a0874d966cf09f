// Package memory provides result stores for distributed computations.
//
// A map/reduce run stores its final result under the computation's memory
// key. MemoryStore keeps results in process, RedisStore shares them across
// workers through Redis and BoltStore persists them on local disk. Open picks
// one from config.MemoryConfig.
package memory
