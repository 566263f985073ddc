package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/productify/deepwork-backend/internal/classify"
	"github.com/productify/deepwork-backend/internal/platform/envutil"
	"github.com/productify/deepwork-backend/internal/platform/logger"
	"github.com/productify/deepwork-backend/internal/repos"
	"github.com/productify/deepwork-backend/internal/types"
)

const defaultRuleCacheTTL = 5 * time.Minute

// RuleCacheService serves per-user rule sets to the classifier. Entries live
// for a short TTL; writes to the rule tables publish the user id on a redis
// channel so every instance drops its copy immediately. Without redis the
// cache still works, instances just converge on the TTL instead.
type RuleCacheService struct {
	log      *logger.Logger
	ruleRepo repos.RuleRepo
	rdb      *goredis.Client
	channel  string
	ttl      time.Duration

	mu      sync.Mutex
	entries map[uuid.UUID]*ruleCacheEntry

	now func() time.Time
}

type ruleCacheEntry struct {
	rules     *classify.RuleSet
	expiresAt time.Time
}

func NewRuleCacheService(log *logger.Logger, ruleRepo repos.RuleRepo, rdb *goredis.Client) *RuleCacheService {
	channel := envutil.String("RULE_INVALIDATION_CHANNEL", "rule-invalidate")
	ttl := envutil.Duration("RULE_CACHE_TTL", defaultRuleCacheTTL)
	return &RuleCacheService{
		log:      log.With("service", "RuleCacheService"),
		ruleRepo: ruleRepo,
		rdb:      rdb,
		channel:  channel,
		ttl:      ttl,
		entries:  map[uuid.UUID]*ruleCacheEntry{},
		now:      time.Now,
	}
}

// Get returns the user's rule set, loading it from the rule tables on a miss.
func (s *RuleCacheService) Get(ctx context.Context, userID uuid.UUID) (*classify.RuleSet, error) {
	s.mu.Lock()
	if entry, ok := s.entries[userID]; ok && s.now().Before(entry.expiresAt) {
		rules := entry.rules
		s.mu.Unlock()
		return rules, nil
	}
	s.mu.Unlock()

	rules, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.entries[userID] = &ruleCacheEntry{rules: rules, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return rules, nil
}

// Invalidate drops the local entry and broadcasts the user id so other
// instances drop theirs. A failed publish only delays convergence to the TTL.
func (s *RuleCacheService) Invalidate(ctx context.Context, userID uuid.UUID) {
	s.mu.Lock()
	delete(s.entries, userID)
	s.mu.Unlock()

	if s.rdb == nil {
		return
	}
	if err := s.rdb.Publish(ctx, s.channel, userID.String()).Err(); err != nil {
		s.log.Warn("rule invalidation publish failed", "error", err)
	}
}

// StartInvalidationListener subscribes to the invalidation channel and drops
// entries as peer instances announce rule edits. It returns after the
// subscription is confirmed; the drain loop runs until ctx is cancelled.
func (s *RuleCacheService) StartInvalidationListener(ctx context.Context) error {
	if s.rdb == nil {
		s.log.Info("redis not configured, rule cache relies on TTL expiry only")
		return nil
	}

	sub := s.rdb.Subscribe(ctx, s.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				userID, err := uuid.Parse(strings.TrimSpace(m.Payload))
				if err != nil {
					s.log.Warn("bad rule invalidation payload", "payload", m.Payload)
					continue
				}
				s.mu.Lock()
				delete(s.entries, userID)
				s.mu.Unlock()
			}
		}
	}()

	return nil
}

func (s *RuleCacheService) load(ctx context.Context, userID uuid.UUID) (*classify.RuleSet, error) {
	urlRules, err := s.ruleRepo.ListURLRules(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load url rules: %w", err)
	}
	platformRules, err := s.ruleRepo.ListPlatformRules(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load platform rules: %w", err)
	}
	entries, err := s.ruleRepo.ListCustomEntries(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load custom lists: %w", err)
	}
	return buildRuleSet(urlRules, platformRules, entries), nil
}

func buildRuleSet(urlRules []*types.URLRule, platformRules []*types.PlatformRule, entries []*types.CustomListEntry) *classify.RuleSet {
	rs := &classify.RuleSet{
		URLRules:      make([]classify.URLRule, 0, len(urlRules)),
		PlatformRules: make(map[string]classify.PlatformRule, len(platformRules)),
		Lists:         map[string][]string{},
	}
	for _, r := range urlRules {
		rs.URLRules = append(rs.URLRules, classify.URLRule{
			Pattern:      r.URLPattern,
			Productivity: r.Productivity,
			Category:     r.Category,
		})
	}
	for _, r := range platformRules {
		rs.PlatformRules[strings.ToLower(r.Domain)] = classify.PlatformRule{
			Productivity: r.Productivity,
			Category:     r.Category,
		}
	}
	for _, e := range entries {
		rs.Lists[e.ListType] = append(rs.Lists[e.ListType], strings.ToLower(e.Pattern))
	}
	return rs
}
