package session

import (
	"context"
	"testing"

	"world-sync/core/session/sessiontest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectCharacter(t *testing.T) {
	t.Run("Bootstrap", func(t *testing.T) {
		c, game := connectFake(t)
		game.Handle("GameDataBatch/getGameData", func(req sessiontest.Request) *sessiontest.Reply {
			return &sessiontest.Reply{Type: "GameDataBatch/gameData", Data: map[string]any{"speed": 1}}
		})
		game.Handle("Character/getInfo", func(req sessiontest.Request) *sessiontest.Reply {
			return &sessiontest.Reply{Type: "Character/info", Data: map[string]any{
				"character_id":   77,
				"character_name": "crawler",
				"tribe_id":       nil,
				"villages":       []any{map[string]any{"id": 1001, "name": "Home", "x": 500, "y": 501}},
			}}
		})
		game.Handle("Skill/getInfo", func(sessiontest.Request) *sessiontest.Reply {
			return &sessiontest.Reply{Type: "System/error", Data: map[string]any{"message": "not available"}}
		})

		ch, err := c.SelectCharacter(context.Background(), 77, "br52")
		require.NoError(t, err)
		assert.Equal(t, 77, ch.ID)
		assert.Equal(t, "br52", ch.WorldID)
		assert.Nil(t, ch.TribeID)
		assert.Equal(t, []VillageRef{{ID: 1001, Name: "Home", X: 500, Y: 501}}, ch.Villages)
		assert.Equal(t, float64(1), ch.GameData["speed"])

		types := game.Types()
		assert.Equal(t, []string{"System/identify", "Authentication/selectCharacter", "GameDataBatch/getGameData", "Character/getInfo"}, types[:4])
		for _, group := range bootstrapRequests {
			for _, msgType := range group {
				assert.Contains(t, types, msgType)
			}
		}
		assert.Equal(t, "Authentication/completeLogin", types[len(types)-1])
		assert.Empty(t, game.Requests("Character/createVillage"))

		sel := game.Requests("Authentication/selectCharacter")[0]
		assert.Equal(t, float64(77), sel.Data["id"])
		assert.Equal(t, "br52", sel.Data["world_id"])
	})

	t.Run("CreatesVillage", func(t *testing.T) {
		c, game := connectFake(t)
		game.Handle("Character/createVillage", func(req sessiontest.Request) *sessiontest.Reply {
			return &sessiontest.Reply{Type: "Character/villageCreated", Data: map[string]any{"village_id": 2002, "x": 400, "y": 410}}
		})

		ch, err := c.SelectCharacter(context.Background(), 77, "br52")
		require.NoError(t, err)
		require.Len(t, ch.Villages, 1)
		assert.Equal(t, 2002, ch.Villages[0].ID)
		assert.Len(t, game.Requests("Character/createVillage"), 1)

		data := game.Requests("VillageBatch/getVillageData")[0]
		assert.Equal(t, []any{float64(2002)}, data.Data["village_ids"])
	})

	t.Run("SelectRejected", func(t *testing.T) {
		c, game := connectFake(t)
		game.Handle("Authentication/selectCharacter", func(sessiontest.Request) *sessiontest.Reply {
			return &sessiontest.Reply{Type: "Exception/ErrorException", Data: map[string]any{"message": "world closed"}}
		})

		_, err := c.SelectCharacter(context.Background(), 77, "br52")
		assert.ErrorIs(t, err, ErrCharacterSelectionFailed)
	})

	t.Run("BootstrapFailure", func(t *testing.T) {
		c, game := connectFake(t)
		game.Handle("Character/getInfo", func(req sessiontest.Request) *sessiontest.Reply {
			return &sessiontest.Reply{Type: "Character/info", Data: map[string]any{
				"villages": []any{map[string]any{"id": 1}},
			}}
		})
		game.Handle("Group/getGroups", func(sessiontest.Request) *sessiontest.Reply {
			return &sessiontest.Reply{Type: "System/error"}
		})

		_, err := c.SelectCharacter(context.Background(), 77, "br52")
		assert.ErrorIs(t, err, ErrCharacterSelectionFailed)
		assert.Empty(t, game.Requests("Authentication/completeLogin"))
	})
}

func TestCreateCharacter(t *testing.T) {
	t.Run("RequiresIdentity", func(t *testing.T) {
		c, _ := connectFake(t)
		_, err := c.CreateCharacter(context.Background(), "br52")
		assert.ErrorIs(t, err, ErrCharacterSelectionFailed)
	})

	t.Run("ReturnsID", func(t *testing.T) {
		c, game := connectFake(t)
		game.Handle("Authentication/login", loginHandler("right"))
		game.Handle("Authentication/createCharacter", func(req sessiontest.Request) *sessiontest.Reply {
			return &sessiontest.Reply{Type: "Authentication/characterCreated", Data: map[string]any{"id": 91}}
		})

		_, err := c.Auth(context.Background(), "br", []Credential{{Name: "acc", Password: "right"}}, NewCache())
		require.NoError(t, err)

		id, err := c.CreateCharacter(context.Background(), "br60")
		require.NoError(t, err)
		assert.Equal(t, 91, id)

		req := game.Requests("Authentication/createCharacter")[0]
		assert.Equal(t, "br60", req.Data["world"])
		assert.Equal(t, "acc", req.Data["name"])
	})
}
