package handler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yubin-park/quizpin-server/internal/game"
	"github.com/yubin-park/quizpin-server/internal/ws"
)

func TestHandleJoin_InvalidPin(t *testing.T) {
	router, _, _ := setupRouter(t)
	player, ch := newTestClient("conn1")

	dispatch(t, router, player, ws.TypePlayerJoin, joinRequest{Pin: "0000", Username: "Ali"})

	assert.Equal(t, "Invalid PIN", errorText(t, readResponse(t, ch)))
}

func TestHandleJoin_MissingFields(t *testing.T) {
	router, _, _ := setupRouter(t)
	player, ch := newTestClient("conn1")

	dispatch(t, router, player, ws.TypePlayerJoin, joinRequest{Pin: "1234"})

	assert.Equal(t, "pin and username are required", errorText(t, readResponse(t, ch)))
}

func TestHandleJoin_SuccessNotifiesAdmin(t *testing.T) {
	router, rm, _ := setupRouter(t)
	r, err := rm.CreateRoom("https://game.example/quiz")
	require.NoError(t, err)

	admin, adminCh := newTestClient("admin1")
	r.BindAdmin(admin)

	player, playerCh := newTestClient("conn1")
	dispatch(t, router, player, ws.TypePlayerJoin, joinRequest{Pin: r.Pin(), Username: "Ali"})

	resp := readResponse(t, playerCh)
	require.Equal(t, ws.TypeJoinSuccess, resp.Type)

	var joined joinSuccessResponse
	require.NoError(t, json.Unmarshal(resp.Data, &joined))
	assert.Equal(t, r.Pin(), joined.Pin)
	assert.Equal(t, "Ali", joined.Username)

	rosterMsg := readResponse(t, adminCh)
	require.Equal(t, ws.TypeUpdatePlayerList, rosterMsg.Type)

	var roster playerListMessage
	require.NoError(t, json.Unmarshal(rosterMsg.Data, &roster))
	assert.Equal(t, []game.RosterEntry{{Name: "Ali", HasScore: false}}, roster.Players)

	// No game_start while the room is still in the lobby.
	assertNoMessage(t, playerCh)
}

func TestHandleJoin_LockedRoomRejectsNewName(t *testing.T) {
	router, rm, _ := setupRouter(t)
	r, err := rm.CreateRoom("https://game.example/quiz")
	require.NoError(t, err)
	r.Lock()

	player, ch := newTestClient("conn1")
	dispatch(t, router, player, ws.TypePlayerJoin, joinRequest{Pin: r.Pin(), Username: "Stranger"})

	assert.Equal(t, "Room is locked.", errorText(t, readResponse(t, ch)))
}

func TestHandleJoin_ReconnectWhilePlayingGetsGameStart(t *testing.T) {
	router, rm, _ := setupRouter(t)
	r, err := rm.CreateRoom("https://game.example/quiz")
	require.NoError(t, err)

	first, _ := newTestClient("conn1")
	_, err = r.Join(first, "Ali")
	require.NoError(t, err)
	r.Start()

	// Same name from a new connection: reconnect straight into the game.
	second, ch := newTestClient("conn2")
	dispatch(t, router, second, ws.TypePlayerJoin, joinRequest{Pin: r.Pin(), Username: "Ali"})

	assert.Equal(t, ws.TypeJoinSuccess, readResponse(t, ch).Type)

	resp := readResponse(t, ch)
	require.Equal(t, ws.TypeGameStart, resp.Type)
	assert.False(t, r.HasConnection("conn1"), "old connection key should be gone")
	assert.True(t, r.HasConnection("conn2"))
}

func TestHandleSubmitScore_AcceptedAndPersisted(t *testing.T) {
	router, rm, st := setupRouter(t)
	r, err := rm.CreateRoom("https://game.example/quiz")
	require.NoError(t, err)

	admin, adminCh := newTestClient("admin1")
	r.BindAdmin(admin)

	player, playerCh := newTestClient("conn1")
	_, err = r.Join(player, "Ali")
	require.NoError(t, err)

	dispatch(t, router, player, ws.TypeSubmitScore, submitScoreRequest{Pin: r.Pin(), Score: 42})

	resp := readResponse(t, playerCh)
	require.Equal(t, ws.TypeScoreReceived, resp.Type)

	var received scoreReceivedResponse
	require.NoError(t, json.Unmarshal(resp.Data, &received))
	assert.Equal(t, 42, received.Score)

	liveMsg := readResponse(t, adminCh)
	require.Equal(t, ws.TypeLiveLeaderboard, liveMsg.Type)

	var live leaderboardMessage
	require.NoError(t, json.Unmarshal(liveMsg.Data, &live))
	assert.Equal(t, []game.LeaderboardEntry{{Name: "Ali", Score: 42}}, live.Leaderboard)

	persisted, err := st.Load(r.Pin())
	require.NoError(t, err)
	assert.Equal(t, live.Leaderboard, persisted)
}

func TestHandleSubmitScore_DuplicateSilentlyDropped(t *testing.T) {
	router, rm, st := setupRouter(t)
	r, err := rm.CreateRoom("https://game.example/quiz")
	require.NoError(t, err)

	player, playerCh := newTestClient("conn1")
	_, err = r.Join(player, "Ali")
	require.NoError(t, err)

	dispatch(t, router, player, ws.TypeSubmitScore, submitScoreRequest{Pin: r.Pin(), Score: 42})
	require.Equal(t, ws.TypeScoreReceived, readResponse(t, playerCh).Type)

	dispatch(t, router, player, ws.TypeSubmitScore, submitScoreRequest{Pin: r.Pin(), Score: 99})

	assertNoMessage(t, playerCh)
	assert.Equal(t, []game.LeaderboardEntry{{Name: "Ali", Score: 42}}, r.Leaderboard())

	persisted, err := st.Load(r.Pin())
	require.NoError(t, err)
	assert.Equal(t, []game.LeaderboardEntry{{Name: "Ali", Score: 42}}, persisted)
}

func TestHandleSubmitScore_UnknownRoomIsSilent(t *testing.T) {
	router, _, _ := setupRouter(t)
	player, ch := newTestClient("conn1")

	dispatch(t, router, player, ws.TypeSubmitScore, submitScoreRequest{Pin: "0000", Score: 42})

	assertNoMessage(t, ch)
}

func TestHandleGetLeaderboard_ReadsRecordWithoutLiveRoom(t *testing.T) {
	router, _, st := setupRouter(t)
	require.NoError(t, st.Save("4821", []game.LeaderboardEntry{
		{Name: "Ali", Score: 42},
		{Name: "Bo", Score: 10},
	}))

	player, ch := newTestClient("conn1")
	dispatch(t, router, player, ws.TypeGetLeaderboard, pinRequest{Pin: "4821"})

	resp := readResponse(t, ch)
	require.Equal(t, ws.TypeLeaderboardData, resp.Type)

	var data leaderboardMessage
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, []game.LeaderboardEntry{
		{Name: "Ali", Score: 42},
		{Name: "Bo", Score: 10},
	}, data.Leaderboard)
}

func TestHandleGetLeaderboard_EmptyForUnknownPin(t *testing.T) {
	router, _, _ := setupRouter(t)
	player, ch := newTestClient("conn1")

	dispatch(t, router, player, ws.TypeGetLeaderboard, pinRequest{Pin: "9999"})

	resp := readResponse(t, ch)
	require.Equal(t, ws.TypeLeaderboardData, resp.Type)

	var data leaderboardMessage
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Empty(t, data.Leaderboard)
}

func TestHandleDisconnect_DetachesButKeepsIdentity(t *testing.T) {
	router, rm, _ := setupRouter(t)
	r, err := rm.CreateRoom("https://game.example/quiz")
	require.NoError(t, err)

	player, _ := newTestClient("conn1")
	dispatch(t, router, player, ws.TypePlayerJoin, joinRequest{Pin: r.Pin(), Username: "Ali"})
	require.True(t, r.HasConnection("conn1"))

	router.HandleDisconnect(player)

	assert.Equal(t, "", router.RoomPin("conn1"))
	assert.True(t, r.HasConnection("conn1"), "player record must survive for reconnection")
}

func TestHandleMessage_UnknownType(t *testing.T) {
	router, _, _ := setupRouter(t)
	client, ch := newTestClient("conn1")

	raw, _ := json.Marshal(ws.Message{Type: "bogus_event"})
	router.HandleMessage(&ws.ClientMessage{Client: client, Data: raw})

	assert.Equal(t, "unknown message type: bogus_event", errorText(t, readResponse(t, ch)))
}

func TestHandleMessage_MalformedJSON(t *testing.T) {
	router, _, _ := setupRouter(t)
	client, ch := newTestClient("conn1")

	router.HandleMessage(&ws.ClientMessage{Client: client, Data: []byte("{not json")})

	assert.Equal(t, "invalid message format", errorText(t, readResponse(t, ch)))
}
