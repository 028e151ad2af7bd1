package workout

import (
	"encoding/json"
	"log/slog"

	"github.com/coocood/freecache"
	"github.com/myrjola/coachplan/internal/errors"
	"github.com/myrjola/coachplan/internal/training"
)

const (
	// DefaultPlanCacheBytes lets freecache store entries up to 64 KiB, a quarter of one of its 256 segments. A three
	// day plan serializes to about 10 KiB.
	DefaultPlanCacheBytes = 64 * 1024 * 1024
	planCacheTTLSeconds   = 60 * 60
)

// planCache keeps recently generated or read plans in process memory. Plans are immutable once stored, so entries
// only need invalidating on delete.
type planCache struct {
	cache *freecache.Cache
}

func newPlanCache(sizeBytes int) *planCache {
	return &planCache{cache: freecache.NewCache(sizeBytes)}
}

func planCacheKey(userID, planID string) []byte {
	return []byte(userID + "/" + planID)
}

func (c *planCache) get(userID, planID string) (training.Plan, bool) {
	raw, err := c.cache.Get(planCacheKey(userID, planID))
	if err != nil {
		return training.Plan{}, false
	}
	var plan training.Plan
	if err = json.Unmarshal(raw, &plan); err != nil {
		return training.Plan{}, false
	}
	return plan, true
}

func (c *planCache) set(userID string, plan training.Plan) error {
	raw, err := json.Marshal(plan)
	if err != nil {
		return errors.Wrap(err, "marshal plan", slog.String("plan_id", plan.ID))
	}
	if err = c.cache.Set(planCacheKey(userID, plan.ID), raw, planCacheTTLSeconds); err != nil {
		return errors.Wrap(err, "cache plan", slog.Int("bytes", len(raw)))
	}
	return nil
}

func (c *planCache) del(userID, planID string) {
	c.cache.Del(planCacheKey(userID, planID))
}
