package cache

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/workouttracker/internal/workouts"
)

const (
	megabyte = 1024 * 1024
	indexKey = "workouts::index"
)

// WorkoutsCache keeps the last loaded workouts snapshot, so suggestions and
// progress do not hit the db on every keystroke. Every write must Invalidate it.
// freecache refuses entries over 1/1024 of its size, so the snapshot is stored
// as one entry per workout plus an index of their ids.
//
// Readers take Generation before loading from the db and pass it to Set. Any
// Invalidate in between bumps the generation and Set drops the stale snapshot.
type WorkoutsCache struct {
	cache *freecache.Cache
	ttl   time.Duration

	mu         sync.Mutex
	generation uint64
}

func NewWorkoutsCache(sizeMB int, ttl time.Duration) *WorkoutsCache {
	if sizeMB <= 0 {
		sizeMB = 1
	}
	return &WorkoutsCache{
		cache: freecache.NewCache(sizeMB * megabyte),
		ttl:   ttl,
	}
}

func workoutKey(id int) []byte {
	return []byte(fmt.Sprintf("workout::%d", id))
}

func (c *WorkoutsCache) Get() ([]workouts.Workout, bool) {
	indexBytes, err := c.cache.Get([]byte(indexKey))
	if err != nil {
		return nil, false
	}

	var ids []int
	if err := json.Unmarshal(indexBytes, &ids); err != nil {
		log.Errorf("unmarshal cached workouts index: %s", err)
		c.Invalidate()
		return nil, false
	}

	snapshot := make([]workouts.Workout, 0, len(ids))
	for _, id := range ids {
		workoutBytes, err := c.cache.Get(workoutKey(id))
		if err != nil {
			// evicted, the snapshot is not complete anymore
			c.Invalidate()
			return nil, false
		}
		var w workouts.Workout
		if err := json.Unmarshal(workoutBytes, &w); err != nil {
			log.Errorf("unmarshal cached workout %d: %s", id, err)
			c.Invalidate()
			return nil, false
		}
		snapshot = append(snapshot, w)
	}

	return snapshot, true
}

// Generation changes on every Invalidate.
func (c *WorkoutsCache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Set stores the snapshot unless the cache was invalidated since generation
// was taken. A dropped snapshot is not an error.
func (c *WorkoutsCache) Set(generation uint64, snapshot []workouts.Workout) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		log.Debugf("workouts cache: dropping snapshot of generation %d, now at %d", generation, c.generation)
		return nil
	}

	expireSeconds := int(c.ttl.Seconds())
	if expireSeconds < 1 {
		expireSeconds = 1
	}

	ids := make([]int, 0, len(snapshot))
	for _, w := range snapshot {
		workoutBytes, err := json.Marshal(w)
		if err != nil {
			return fmt.Errorf("marshal workout %d: %w", w.ID, err)
		}
		if err := c.cache.Set(workoutKey(w.ID), workoutBytes, expireSeconds); err != nil {
			c.cache.Del([]byte(indexKey))
			return fmt.Errorf("cache workout %d: %w", w.ID, err)
		}
		ids = append(ids, w.ID)
	}

	indexBytes, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return c.cache.Set([]byte(indexKey), indexBytes, expireSeconds)
}

func (c *WorkoutsCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.cache.Del([]byte(indexKey))
}
