package session

import (
	"context"
	"fmt"

	"world-sync/core/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// VillageRef is a village owned by the selected character.
type VillageRef struct {
	ID   int
	Name string
	X    int
	Y    int
}

// Character is the selected character of a world together with the world
// configuration returned during selection.
type Character struct {
	ID       int
	Name     string
	WorldID  string
	TribeID  *int
	Villages []VillageRef
	GameData map[string]any
}

// bootstrapRequests are replayed after character info, in order of groups.
// Requests of one group do not depend on each other.
var bootstrapRequests = [][]string{
	{
		"Premium/listItems",
		"GlobalInformation/getInfo",
		"Effect/getEffects",
		"TribeInvitation/getOwnInvitations",
	},
	{
		"Character/getColors",
		"Group/getGroups",
		"Icon/getVillages",
	},
}

// optionalRequests are sent last; their failures are ignored.
var optionalRequests = []string{
	"Skill/getInfo",
	"ResourceDeposit/getInfo",
}

// SelectCharacter selects characterID on worldID and performs the login
// bootstrap of a real client. The session must be authenticated.
func (c *Client) SelectCharacter(ctx context.Context, characterID int, worldID string) (*Character, error) {
	fail := func(step string, err error) error {
		return fmt.Errorf("%w: %s on %s: %w", ErrCharacterSelectionFailed, step, worldID, err)
	}

	if _, err := c.Emit(ctx, "Authentication/selectCharacter", map[string]any{
		"id":       characterID,
		"world_id": worldID,
	}); err != nil {
		return nil, fail("select", err)
	}

	gameData, err := c.Emit(ctx, "GameDataBatch/getGameData", map[string]any{})
	if err != nil {
		return nil, fail("game data", err)
	}

	info, err := c.Emit(ctx, "Character/getInfo", map[string]any{})
	if err != nil {
		return nil, fail("character info", err)
	}

	ch := parseCharacter(info)
	ch.WorldID = worldID
	ch.GameData = gameData.Data
	if ch.ID == 0 {
		ch.ID = characterID
	}

	if len(ch.Villages) == 0 {
		c.logger.Info("Character owns no village, creating one", zap.String("world", worldID))
		created, err := c.Emit(ctx, "Character/createVillage", map[string]any{
			"name":      ch.Name,
			"direction": "random",
		})
		if err != nil {
			return nil, fail("create village", err)
		}
		ch.Villages = append(ch.Villages, parseVillageRef(created.Data))
	}

	for _, group := range bootstrapRequests {
		g, gctx := errgroup.WithContext(ctx)
		for _, msgType := range group {
			g.Go(func() error {
				_, err := c.Emit(gctx, msgType, map[string]any{})
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fail("bootstrap", err)
		}
	}

	villageIDs := make([]int, 0, len(ch.Villages))
	for _, v := range ch.Villages {
		villageIDs = append(villageIDs, v.ID)
	}
	if _, err := c.Emit(ctx, "VillageBatch/getVillageData", map[string]any{
		"village_ids": villageIDs,
	}); err != nil {
		return nil, fail("village data", err)
	}

	for _, msgType := range optionalRequests {
		if _, err := c.Emit(ctx, msgType, map[string]any{"village_id": villageIDs[0]}); err != nil {
			c.logger.Debug("Optional bootstrap request failed",
				zap.String("type", msgType), zap.Error(err))
		}
	}

	if _, err := c.Emit(ctx, "Authentication/completeLogin", map[string]any{}); err != nil {
		return nil, fail("complete login", err)
	}

	return ch, nil
}

// CreateCharacter creates a character on worldID for the authenticated
// identity and returns its id.
func (c *Client) CreateCharacter(ctx context.Context, worldID string) (int, error) {
	id := c.Identity()
	if id == nil {
		return 0, fmt.Errorf("%w: not authenticated", ErrCharacterSelectionFailed)
	}

	msg, err := c.Emit(ctx, "Authentication/createCharacter", map[string]any{
		"world": worldID,
		"name":  id.AccountName,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: create on %s: %w", ErrCharacterSelectionFailed, worldID, err)
	}

	characterID := utils.ToInt(msg.Data["id"])
	if characterID == 0 {
		characterID = utils.ToInt(msg.Data["character_id"])
	}
	if characterID == 0 {
		characterID = id.PlayerID
	}
	return characterID, nil
}

func parseCharacter(msg *Message) *Character {
	data := msg.Data
	ch := &Character{
		ID:      utils.ToInt(data["character_id"]),
		Name:    utils.ToString(data["character_name"]),
		TribeID: utils.ToIntPtr(data["tribe_id"]),
	}
	for _, raw := range utils.ToSlice(data["villages"]) {
		ch.Villages = append(ch.Villages, parseVillageRef(utils.ToMap(raw)))
	}
	return ch
}

func parseVillageRef(v map[string]any) VillageRef {
	id := utils.ToInt(v["id"])
	if id == 0 {
		id = utils.ToInt(v["village_id"])
	}
	return VillageRef{
		ID:   id,
		Name: utils.ToString(v["name"]),
		X:    utils.ToInt(v["x"]),
		Y:    utils.ToInt(v["y"]),
	}
}
