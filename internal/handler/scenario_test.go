package handler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yubin-park/quizpin-server/internal/game"
	"github.com/yubin-park/quizpin-server/internal/ws"
)

// Full session walk-through: create, join, reconnect under the same
// name, start, first-score-wins intake, end with persistence.
func TestFullSessionScenario(t *testing.T) {
	router, rm, st := setupRouter(t)

	admin, adminCh := newTestClient("admin1")
	dispatch(t, router, admin, ws.TypeAdminCreateRoom, createRoomRequest{GameURL: "https://game.example/quiz"})

	resp := readResponse(t, adminCh)
	require.Equal(t, ws.TypeRoomCreated, resp.Type)
	var created roomCreatedResponse
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	pin := created.Pin
	r := rm.Get(pin)
	require.NotNil(t, r)

	// Ali joins.
	ali1, ali1Ch := newTestClient("conn1")
	dispatch(t, router, ali1, ws.TypePlayerJoin, joinRequest{Pin: pin, Username: "Ali"})
	require.Equal(t, ws.TypeJoinSuccess, readResponse(t, ali1Ch).Type)
	require.Equal(t, ws.TypeUpdatePlayerList, readResponse(t, adminCh).Type)

	// Ali rejoins from a second connection: reconnect, not duplicate.
	ali2, ali2Ch := newTestClient("conn2")
	dispatch(t, router, ali2, ws.TypePlayerJoin, joinRequest{Pin: pin, Username: "Ali"})
	require.Equal(t, ws.TypeJoinSuccess, readResponse(t, ali2Ch).Type)
	assert.False(t, r.HasConnection("conn1"))
	assert.True(t, r.HasConnection("conn2"))
	assert.Equal(t, 1, r.PlayerCount())
	drainCh(adminCh)

	// Start: every room member receives game_start.
	dispatch(t, router, admin, ws.TypeAdminStartGame, pinRequest{Pin: pin})
	require.Equal(t, ws.TypeGameStart, readResponse(t, ali2Ch).Type)
	require.Equal(t, ws.TypeGameStart, readResponse(t, adminCh).Type)

	// First score wins.
	dispatch(t, router, ali2, ws.TypeSubmitScore, submitScoreRequest{Pin: pin, Score: 42})
	scoreResp := readResponse(t, ali2Ch)
	require.Equal(t, ws.TypeScoreReceived, scoreResp.Type)
	var received scoreReceivedResponse
	require.NoError(t, json.Unmarshal(scoreResp.Data, &received))
	assert.Equal(t, 42, received.Score)

	liveMsg := readResponse(t, adminCh)
	require.Equal(t, ws.TypeLiveLeaderboard, liveMsg.Type)
	var live leaderboardMessage
	require.NoError(t, json.Unmarshal(liveMsg.Data, &live))
	assert.Equal(t, []game.LeaderboardEntry{{Name: "Ali", Score: 42}}, live.Leaderboard)

	// A retry with a different value changes nothing and says nothing.
	dispatch(t, router, ali2, ws.TypeSubmitScore, submitScoreRequest{Pin: pin, Score: 99})
	assertNoMessage(t, ali2Ch)
	assertNoMessage(t, adminCh)

	// End: final leaderboard reaches the whole room and the record.
	dispatch(t, router, admin, ws.TypeAdminEndGame, pinRequest{Pin: pin})

	endedMsg := readResponse(t, ali2Ch)
	require.Equal(t, ws.TypeGameEnded, endedMsg.Type)
	var ended leaderboardMessage
	require.NoError(t, json.Unmarshal(endedMsg.Data, &ended))
	assert.Equal(t, []game.LeaderboardEntry{{Name: "Ali", Score: 42}}, ended.Leaderboard)
	assert.Equal(t, game.StatusEnded, r.Status())

	persisted, err := st.Load(pin)
	require.NoError(t, err)
	assert.Equal(t, []game.LeaderboardEntry{{Name: "Ali", Score: 42}}, persisted)

	// The record keeps answering after the room is evicted.
	rm.RemoveRoom(pin)
	dispatch(t, router, ali2, ws.TypeGetLeaderboard, pinRequest{Pin: pin})
	dataMsg := readResponse(t, ali2Ch)
	require.Equal(t, ws.TypeLeaderboardData, dataMsg.Type)
	var data leaderboardMessage
	require.NoError(t, json.Unmarshal(dataMsg.Data, &data))
	assert.Equal(t, []game.LeaderboardEntry{{Name: "Ali", Score: 42}}, data.Leaderboard)
}
