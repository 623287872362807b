package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"

	"formpulse/internal/model"
)

// SummaryKey identifies one memoized analytics summary. Any new submission,
// schema edit or filter change produces a different key.
type SummaryKey struct {
	FormID        string
	SchemaVersion int64
	ResponseCount int
	Filter        map[string]string
}

// AnalyticsCache memoizes analytics summaries in Redis
type AnalyticsCache interface {
	GetSummary(ctx context.Context, key SummaryKey) (*model.AnalyticsSummary, error)
	SetSummary(ctx context.Context, key SummaryKey, summary *model.AnalyticsSummary) error
	InvalidateForm(ctx context.Context, formID string) error
}

type analyticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAnalyticsCache creates a new analytics cache
func NewAnalyticsCache(client *redis.Client, ttl time.Duration) AnalyticsCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &analyticsCache{
		client: client,
		ttl:    ttl,
	}
}

func formPrefix(formID string) string {
	return fmt.Sprintf("form:%s:analytics:", formID)
}

func (k SummaryKey) String() string {
	return fmt.Sprintf("%sv%d:n%d:f%016x", formPrefix(k.FormID), k.SchemaVersion, k.ResponseCount, FilterFingerprint(k.Filter))
}

// FilterFingerprint hashes the active entries of a filter. Entries with an
// empty value are ignored, so an identity filter always hashes to the same value.
func FilterFingerprint(filter map[string]string) uint64 {
	keys := make([]string, 0, len(filter))
	for qid, want := range filter {
		if want != "" {
			keys = append(keys, qid)
		}
	}
	sort.Strings(keys)

	d := xxhash.New()
	for _, qid := range keys {
		_, _ = d.WriteString(strconv.Itoa(len(qid)))
		_, _ = d.WriteString(":")
		_, _ = d.WriteString(qid)
		_, _ = d.WriteString("=")
		_, _ = d.WriteString(filter[qid])
		_, _ = d.WriteString(";")
	}
	return d.Sum64()
}

func (c *analyticsCache) GetSummary(ctx context.Context, key SummaryKey) (*model.AnalyticsSummary, error) {
	data, err := c.client.Get(ctx, key.String()).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var summary model.AnalyticsSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *analyticsCache) SetSummary(ctx context.Context, key SummaryKey, summary *model.AnalyticsSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key.String(), data, c.ttl).Err()
}

// InvalidateForm drops every memoized summary of a form.
func (c *analyticsCache) InvalidateForm(ctx context.Context, formID string) error {
	iter := c.client.Scan(ctx, 0, formPrefix(formID)+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
