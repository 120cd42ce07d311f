package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"world-sync/core/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Credential is one login of a market.
type Credential struct {
	Name     string
	Password string
}

// CharacterSummary is a character listed by the login response.
type CharacterSummary struct {
	CharacterID int
	WorldID     string
	WorldName   string
	AllowLogin  bool
	Maintenance bool
}

// WorldSummary is a world listed by the login response.
type WorldSummary struct {
	ID   string
	Name string
	Full bool
}

// Identity is an authenticated account of a market.
type Identity struct {
	Market      string
	AccountName string
	PlayerID    int
	Token       string
	Characters  []CharacterSummary
	Worlds      []WorldSummary
}

// Character returns the character the identity owns on worldID.
func (i *Identity) Character(worldID string) (CharacterSummary, bool) {
	for _, ch := range i.Characters {
		if ch.WorldID == worldID {
			return ch, true
		}
	}
	return CharacterSummary{}, false
}

// Cache holds authenticated identities per market. Concurrent password logins
// for the same market collapse into one.
type Cache struct {
	mu         sync.RWMutex
	identities map[string]*Identity
	group      singleflight.Group
}

// NewCache creates an empty identity cache.
func NewCache() *Cache {
	return &Cache{identities: make(map[string]*Identity)}
}

// Get returns the cached identity of market.
func (c *Cache) Get(market string) (*Identity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.identities[market]
	return id, ok
}

// Put caches id under its market.
func (c *Cache) Put(id *Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identities[id.Market] = id
}

// Invalidate drops the cached identity of market.
func (c *Cache) Invalidate(market string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.identities, market)
}

// Resolve returns the cached identity of market or calls fn once for all
// concurrent callers to produce it. The result of fn is cached on success.
func (c *Cache) Resolve(market string, fn func() (*Identity, error)) (*Identity, error) {
	if id, ok := c.Get(market); ok {
		return id, nil
	}
	v, err, _ := c.group.Do(market, func() (any, error) {
		id, err := fn()
		if err != nil {
			return nil, err
		}
		c.Put(id)
		return id, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Identity), nil
}

// Auth authenticates the session on market. A session already authenticated
// on market returns its identity without a request. A cached identity is
// reused through a token login; otherwise credentials are tried in order and
// ErrAuthenticationFailed is returned once all of them are rejected.
func (c *Client) Auth(ctx context.Context, market string, creds []Credential, cache *Cache) (*Identity, error) {
	if id := c.Identity(); id != nil && id.Market == market {
		return id, nil
	}

	if cached, ok := cache.Get(market); ok {
		id, err := c.tokenLogin(ctx, cached)
		if err == nil {
			c.setIdentity(id)
			return id, nil
		}
		if errors.Is(err, ErrConnectionClosed) {
			return nil, err
		}
		c.logger.Info("Cached identity rejected, falling back to credentials",
			zap.String("market", market), zap.Error(err))
		cache.Invalidate(market)
	}

	ran := false
	id, err := cache.Resolve(market, func() (*Identity, error) {
		ran = true
		return c.passwordLogin(ctx, market, creds)
	})
	if err != nil {
		return nil, err
	}

	// Another session produced the identity; bind this connection to it.
	if !ran {
		if id, err = c.tokenLogin(ctx, id); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
		}
	}

	c.setIdentity(id)
	return id, nil
}

func (c *Client) passwordLogin(ctx context.Context, market string, creds []Credential) (*Identity, error) {
	if len(creds) == 0 {
		return nil, fmt.Errorf("%w: no credentials for %s", ErrAuthenticationFailed, market)
	}

	var lastErr error
	for _, cred := range creds {
		msg, err := c.Emit(ctx, "Authentication/login", map[string]any{
			"name": cred.Name,
			"pass": cred.Password,
		})
		if err != nil {
			if errors.Is(err, ErrConnectionClosed) || ctx.Err() != nil {
				return nil, err
			}
			c.logger.Warn("Credential rejected",
				zap.String("market", market),
				zap.String("account", cred.Name),
				zap.Error(err))
			lastErr = err
			continue
		}

		id := parseIdentity(market, msg)
		if id.AccountName == "" {
			id.AccountName = cred.Name
		}
		return id, nil
	}

	return nil, fmt.Errorf("%w: %s: %w", ErrAuthenticationFailed, market, lastErr)
}

func (c *Client) tokenLogin(ctx context.Context, cached *Identity) (*Identity, error) {
	msg, err := c.Emit(ctx, "Authentication/login", map[string]any{
		"name":  cached.AccountName,
		"token": cached.Token,
	})
	if err != nil {
		return nil, err
	}

	id := parseIdentity(cached.Market, msg)
	if id.AccountName == "" {
		id.AccountName = cached.AccountName
	}
	if id.Token == "" {
		id.Token = cached.Token
	}
	return id, nil
}

func parseIdentity(market string, msg *Message) *Identity {
	data := msg.Data
	id := &Identity{
		Market:      market,
		AccountName: utils.ToString(data["name"]),
		PlayerID:    utils.ToInt(data["player_id"]),
		Token:       utils.ToString(data["token"]),
	}

	for _, raw := range utils.ToSlice(data["characters"]) {
		ch := utils.ToMap(raw)
		id.Characters = append(id.Characters, CharacterSummary{
			CharacterID: utils.ToInt(ch["character_id"]),
			WorldID:     utils.ToString(ch["world_id"]),
			WorldName:   utils.ToString(ch["world_name"]),
			AllowLogin:  utils.ToBool(ch["allow_login"]),
			Maintenance: utils.ToBool(ch["maintenance"]),
		})
	}

	for _, raw := range utils.ToSlice(data["worlds"]) {
		w := utils.ToMap(raw)
		id.Worlds = append(id.Worlds, WorldSummary{
			ID:   utils.ToString(w["id"]),
			Name: utils.ToString(w["name"]),
			Full: utils.ToBool(w["full"]),
		})
	}

	return id
}
