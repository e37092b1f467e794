/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// amongsus imposter game
//
// Every player receives a word from the round's topic. A few of them, the
// imposters, receive a related but different word, and nobody is told which
// group they are in. Players describe their word, vote on who seems sus, and
// the round's imposters are revealed.
//
// Features:
// - WebSockets per game ID: /path/:gameid and /path/:gameid/ws
// - First connection to a game becomes moderator, and may also play
// - Moderator picks the imposter count and topic pool, locks the lobby, kicks players
// - Players identified by cookie (playerID); names unique ignoring case
// - Each client only ever receives its own word
// - Reveal ends once every player has acknowledged their word
// - One vote per player, no self votes; results reveal imposters and both words
// - Imposter rotation and topics come from games/imposter, so nobody waits forever
// - Rounds are saved per game, so a restarted server resumes the same round
// - Inbound messages are rate limited per connection
// - Games auto-reaped after configurable idle timeout
// - In-browser QR button to share the current session, backed by go-qrcode

package main

import (
	"context"
	"crypto/rand"
	_ "embed"
	"encoding/hex"
	"errors"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Seednode/amongsus/games/imposter"
	"github.com/Seednode/amongsus/storage/sqlite"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"golang.org/x/text/cases"
	"golang.org/x/time/rate"
)

const (
	maxPlayers       = 20
	playerCookieName = "amongsus_id"
	storeTimeout     = 5 * time.Second
)

// Player holds the data we store server-side
type Player struct {
	PlayerID string
	Username string
}

// Messages coming from clients
type ClientMessage struct {
	Type           string   `json:"type"`                      // "join", "configure", "lock_lobby", "kick", "start_round", "ack_reveal", "vote", "show_results", "next_round", "new_game"
	Username       string   `json:"username,omitempty"`        // join
	Lock           *bool    `json:"lock,omitempty"`            // lock_lobby
	TargetUsername string   `json:"target_username,omitempty"` // kick / vote
	NumImposters   int      `json:"num_imposters,omitempty"`   // configure
	Topics         []string `json:"topics,omitempty"`          // configure
}

// PlayerListMessage lists everyone in the lobby, in join order.
type PlayerListMessage struct {
	Type    string   `json:"type"` // "player_list"
	Players []string `json:"players"`
}

// Sent to a single client when its username is already taken
type CollisionMessage struct {
	Type    string `json:"type"`    // "collision"
	Field   string `json:"field"`   // "username"
	Message string `json:"message"` // user-facing text
}

// SimpleMessage is for generic notifications ("kicked", "lobby_locked", "error")
type SimpleMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// LobbyStateMessage informs clients about lock/unlock changes.
type LobbyStateMessage struct {
	Type   string `json:"type"` // "lobby_state"
	Locked bool   `json:"locked"`
}

// SessionInfoMessage is sent immediately on connect so the client knows
// whether the lobby is locked and what role this cookie has.
type SessionInfoMessage struct {
	Type        string         `json:"type"`               // "session_info"
	LobbyLocked bool           `json:"lobby_locked"`       // current lobby lock state
	IsExisting  bool           `json:"is_existing"`        // true if this cookie already has a player
	IsModerator bool           `json:"is_moderator"`       // true if this cookie is the moderator
	Username    string         `json:"username,omitempty"` // known username for this cookie, if any
	Phase       imposter.Phase `json:"phase"`
}

// ModeratorViewMessage is sent only to the moderator.
type ModeratorViewMessage struct {
	Type            string            `json:"type"` // "moderator_view"
	Players         []ModeratorPlayer `json:"players"`
	LobbyLocked     bool              `json:"lobby_locked"`
	NumImposters    int               `json:"num_imposters"`
	Topics          []string          `json:"topics"`
	AvailableTopics []string          `json:"available_topics"`
	Phase           imposter.Phase    `json:"phase"`
	Round           int               `json:"round,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	LastActive      time.Time         `json:"last_active"`
}

type ModeratorPlayer struct {
	Username  string `json:"username"`
	Connected bool   `json:"connected"`
	Acked     bool   `json:"acked"`
	Voted     bool   `json:"voted"`
}

// RoundStateMessage is built per client, so Word is always the receiver's
// own word.
type RoundStateMessage struct {
	Type         string         `json:"type"` // "round_state"
	Phase        imposter.Phase `json:"phase"`
	Round        int            `json:"round,omitempty"`
	NumImposters int            `json:"num_imposters"`
	Topics       []string       `json:"topics"`
	Topic        string         `json:"topic,omitempty"`
	Players      []string       `json:"players,omitempty"` // roster of the round
	InRound      bool           `json:"in_round"`
	Word         string         `json:"word,omitempty"`
	Acked        bool           `json:"acked"`
	Waiting      []string       `json:"waiting,omitempty"` // still to acknowledge their word
	Voted        string         `json:"voted,omitempty"`   // who this player voted for
	VotesCast    int            `json:"votes_cast"`
	Results      *ResultsView   `json:"results,omitempty"`
}

// ResultsView is only ever sent in RESULTS.
type ResultsView struct {
	Imposters []string        `json:"imposters"`
	MainWord  string          `json:"main_word"`
	SusWord   string          `json:"sus_word"`
	Votes     map[string]int  `json:"votes"`
	VotedOut  string          `json:"voted_out,omitempty"`
	Tie       bool            `json:"tie"`
	WasSus    bool            `json:"was_sus"`
	Winner    imposter.Winner `json:"winner"`
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
	limiter  *rate.Limiter
}

type joinRequest struct {
	client *Client
	msg    ClientMessage
}

type modCommand struct {
	client *Client
	msg    ClientMessage
}

type playRequest struct {
	client *Client
	msg    ClientMessage
}

type Hub struct {
	id      string
	clients map[*Client]bool
	players []Player

	register chan *Client
	unreg    chan *Client
	joins    chan joinRequest
	mods     chan modCommand
	plays    chan playRequest
	done     chan struct{}
	stop     sync.Once

	mu sync.RWMutex

	createdAt         time.Time
	lastActive        time.Time
	lobbyLocked       bool
	moderatorPlayerID string // cookie/playerID of moderator

	machine      *imposter.Machine
	fold         cases.Caser
	numImposters int
	topics       []string

	phase   imposter.Phase
	config  imposter.RoundConfig // frozen while a round is played
	round   imposter.RoundState
	seed    imposter.RoundSeed
	acked   map[int]bool
	votes   map[int]int // voter index -> target index
	outcome *imposter.Outcome
}

func newHub(gameID string, machine *imposter.Machine) *Hub {
	now := time.Now()

	h := &Hub{
		id:           gameID,
		clients:      make(map[*Client]bool),
		register:     make(chan *Client),
		unreg:        make(chan *Client),
		joins:        make(chan joinRequest),
		mods:         make(chan modCommand),
		plays:        make(chan playRequest),
		done:         make(chan struct{}),
		createdAt:    now,
		lastActive:   now,
		machine:      machine,
		fold:         cases.Fold(),
		numImposters: 1,
		topics:       machine.WordBank().Topics(),
		phase:        imposter.PhaseSetup,
		acked:        make(map[int]bool),
		votes:        make(map[int]int),
	}

	ctx, cancel := storeContext()
	defer cancel()

	// A saved round means the server restarted mid-game. Players reclaim
	// their seats by joining under the same names.
	if cfg, state, ok := machine.Restore(ctx); ok {
		h.config = cfg
		h.round = state
		h.phase = state.Phase
		h.numImposters = cfg.NumImposters
		h.topics = slices.Clone(cfg.TopicPool)

		if h.phase == imposter.PhaseResults {
			outcome := imposter.TallyVotes(cfg.NumPlayers(), state, nil)
			h.outcome = &outcome
		}
	}

	return h
}

func storeContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}

func (h *Hub) run(cfg *Config) {
	for {
		select {
		case <-h.done:
			return

		case c := <-h.register:
			h.mu.Lock()
			h.lastActive = time.Now()

			// First connection becomes moderator
			if h.moderatorPlayerID == "" {
				h.moderatorPlayerID = c.playerID
			}

			existing := h.playerLocked(c.playerID)
			isModerator := h.moderatorPlayerID == c.playerID

			h.clients[c] = true

			info := SessionInfoMessage{
				Type:        "session_info",
				LobbyLocked: h.lobbyLocked,
				IsExisting:  existing != nil,
				IsModerator: isModerator,
				Phase:       h.phase,
			}
			if existing != nil {
				info.Username = existing.Username
			}

			h.sendLocked(c, info)
			h.sendLocked(c, h.playerListLocked())
			h.sendLocked(c, h.roundStateLocked(c.playerID))
			h.sendModeratorViewLocked()

			h.mu.Unlock()

		case c := <-h.unreg:
			h.mu.Lock()
			h.lastActive = time.Now()

			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			playerID := c.playerID
			h.sendModeratorViewLocked()
			h.mu.Unlock()

			if playerID != "" && cfg.playerTimeout > 0 {
				go h.scheduleRemoval(playerID, cfg.playerTimeout)
			}

		case jr := <-h.joins:
			h.handleJoin(cfg, jr)

		case cmd := <-h.mods:
			h.handleModCommand(cfg, cmd)

		case pr := <-h.plays:
			h.handlePlay(cfg, pr)
		}
	}
}

// sendLocked queues msg for c, dropping the client if it has fallen behind.
func (h *Hub) sendLocked(c *Client, msg any) {
	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) broadcastLocked(msg any) {
	for client := range h.clients {
		h.sendLocked(client, msg)
	}
}

func (h *Hub) notifyLocked(c *Client, kind, text string) {
	h.sendLocked(c, SimpleMessage{
		Type:    kind,
		Message: text,
	})
}

func (h *Hub) sameName(a, b string) bool {
	return h.fold.String(strings.TrimSpace(a)) == h.fold.String(strings.TrimSpace(b))
}

func (h *Hub) playerLocked(playerID string) *Player {
	for i := range h.players {
		if h.players[i].PlayerID == playerID {
			return &h.players[i]
		}
	}
	return nil
}

func (h *Hub) connectedLocked(playerID string) bool {
	for c := range h.clients {
		if c.playerID == playerID {
			return true
		}
	}
	return false
}

// rosterIndexLocked returns the seat of playerID in the current round, or -1.
func (h *Hub) rosterIndexLocked(playerID string) int {
	p := h.playerLocked(playerID)
	if p == nil {
		return -1
	}
	return h.seatLocked(p.Username)
}

func (h *Hub) seatLocked(username string) int {
	return slices.IndexFunc(h.config.PlayerNames, func(name string) bool {
		return h.sameName(name, username)
	})
}

func (h *Hub) playerListLocked() PlayerListMessage {
	names := make([]string, 0, len(h.players))
	for _, p := range h.players {
		names = append(names, p.Username)
	}

	return PlayerListMessage{
		Type:    "player_list",
		Players: names,
	}
}

func (h *Hub) roundStateLocked(playerID string) RoundStateMessage {
	msg := RoundStateMessage{
		Type:         "round_state",
		Phase:        h.phase,
		NumImposters: h.numImposters,
		Topics:       h.topics,
	}

	if h.phase == imposter.PhaseSetup {
		return msg
	}

	msg.Round = h.round.RoundNumber
	msg.Topic = h.round.Topic
	msg.Players = h.config.PlayerNames
	msg.VotesCast = len(h.votes)

	if seat := h.rosterIndexLocked(playerID); seat >= 0 {
		msg.InRound = true
		msg.Word = h.round.WordFor(seat)
		msg.Acked = h.acked[seat]
		if target, ok := h.votes[seat]; ok {
			msg.Voted = h.config.PlayerNames[target]
		}
	}

	if h.phase == imposter.PhaseReveal {
		for i, name := range h.config.PlayerNames {
			if !h.acked[i] {
				msg.Waiting = append(msg.Waiting, name)
			}
		}
	}

	if h.phase == imposter.PhaseResults && h.outcome != nil {
		msg.Results = h.resultsLocked()
	}

	return msg
}

func (h *Hub) resultsLocked() *ResultsView {
	names := h.config.PlayerNames

	view := &ResultsView{
		MainWord: h.round.MainWord,
		SusWord:  h.round.SusWord,
		Votes:    make(map[string]int, len(names)),
		Tie:      h.outcome.Tie,
		WasSus:   h.outcome.WasSus,
		Winner:   h.outcome.Winner,
	}

	for _, i := range h.round.ImposterIndices {
		view.Imposters = append(view.Imposters, names[i])
	}
	for i, count := range h.outcome.Counts {
		if count > 0 && i < len(names) {
			view.Votes[names[i]] = count
		}
	}
	if h.outcome.VotedOut >= 0 && h.outcome.VotedOut < len(names) {
		view.VotedOut = names[h.outcome.VotedOut]
	}

	return view
}

func (h *Hub) broadcastRoundStateLocked() {
	for client := range h.clients {
		h.sendLocked(client, h.roundStateLocked(client.playerID))
	}
}

func (h *Hub) broadcastLobbyLocked() {
	h.broadcastLocked(h.playerListLocked())
	h.broadcastRoundStateLocked()
	h.sendModeratorViewLocked()
}

// scheduleRemoval waits for d, and if no client with this playerID is
// connected and no round is being played, removes that player.
func (h *Hub) scheduleRemoval(playerID string, d time.Duration) {
	select {
	case <-time.After(d):
	case <-h.done:
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.connectedLocked(playerID) || h.phase != imposter.PhaseSetup {
		return
	}

	before := len(h.players)
	h.players = slices.DeleteFunc(h.players, func(p Player) bool {
		return p.PlayerID == playerID
	})
	if len(h.players) == before {
		return
	}

	h.lastActive = time.Now()

	h.broadcastLocked(h.playerListLocked())
	h.sendModeratorViewLocked()
}

// handleJoin processes "join" messages.
func (h *Hub) handleJoin(cfg *Config, jr joinRequest) {
	c := jr.client
	username := strings.TrimSpace(jr.msg.Username)

	if username == "" || c.playerID == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	existing := h.playerLocked(c.playerID)

	for i, p := range h.players {
		if p.PlayerID != c.playerID && h.sameName(p.Username, username) {
			if existing == nil && h.reclaimableLocked(p) {
				h.reclaimSeatLocked(cfg, i, c.playerID)
				return
			}
			h.sendLocked(c, CollisionMessage{
				Type:    "collision",
				Field:   "username",
				Message: "That username is already taken. Please choose a different username.",
			})
			return
		}
	}

	if h.phase != imposter.PhaseSetup {
		// Mid-game, names are fixed by the round roster.
		seat := h.seatLocked(username)
		switch {
		case seat < 0:
			h.notifyLocked(c, "error", "A round is in progress. You can join once the moderator starts a new game.")
			return
		case existing != nil && !h.sameName(existing.Username, username):
			h.notifyLocked(c, "error", "You cannot change your name during a round.")
			return
		}
		username = h.config.PlayerNames[seat]
	} else {
		if h.lobbyLocked && existing == nil {
			h.notifyLocked(c, "lobby_locked", "The lobby is locked; no new players may join.")
			return
		}
		if existing == nil && len(h.players) >= maxPlayers {
			h.notifyLocked(c, "error", "This game is full.")
			return
		}
	}

	if existing != nil {
		existing.Username = username
	} else {
		h.players = append(h.players, Player{
			PlayerID: c.playerID,
			Username: username,
		})
		logf(cfg, "GAMES: Player %q joined %s", username, h.id)
	}

	h.broadcastLobbyLocked()
}

// reclaimableLocked reports whether p holds a seat in the round being played
// but has no connection left to play it from.
func (h *Hub) reclaimableLocked(p Player) bool {
	return h.phase != imposter.PhaseSetup &&
		h.seatLocked(p.Username) >= 0 &&
		!h.connectedLocked(p.PlayerID)
}

// reclaimSeatLocked hands players[i] to playerID, keeping the seat's word,
// ack and vote.
func (h *Hub) reclaimSeatLocked(cfg *Config, i int, playerID string) {
	previous := h.players[i].PlayerID
	h.players[i].PlayerID = playerID
	if h.moderatorPlayerID == previous {
		h.moderatorPlayerID = playerID
	}

	logf(cfg, "GAMES: Player %q reclaimed their seat in %s", h.players[i].Username, h.id)

	h.broadcastLobbyLocked()
}

// handleModCommand processes moderator commands.
func (h *Hub) handleModCommand(cfg *Config, cmd modCommand) {
	c := cmd.client
	msg := cmd.msg

	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	// Only moderator may issue these commands
	if h.moderatorPlayerID == "" || c.playerID != h.moderatorPlayerID {
		return
	}

	switch msg.Type {
	case "lock_lobby":
		h.lobbyLocked = msg.Lock != nil && *msg.Lock

		h.broadcastLocked(LobbyStateMessage{
			Type:   "lobby_state",
			Locked: h.lobbyLocked,
		})
		h.sendModeratorViewLocked()

	case "kick":
		h.kickLocked(cfg, c, msg.TargetUsername)

	case "configure":
		h.configureLocked(c, msg)

	case "start_round":
		h.startRoundLocked(cfg, c)

	case "show_results":
		if h.phase != imposter.PhaseDiscussion {
			h.notifyLocked(c, "error", "Results can only be shown during discussion.")
			return
		}
		h.finishVotingLocked(cfg)

	case "next_round":
		h.nextRoundLocked(cfg, c)

	case "new_game":
		h.newGameLocked(cfg, c)
	}
}

func (h *Hub) kickLocked(cfg *Config, c *Client, target string) {
	if target == "" {
		return
	}
	if h.phase != imposter.PhaseSetup {
		h.notifyLocked(c, "error", "Players can only be removed between games.")
		return
	}

	kickedPlayerID := ""
	h.players = slices.DeleteFunc(h.players, func(p Player) bool {
		if h.sameName(p.Username, target) {
			kickedPlayerID = p.PlayerID
			return true
		}
		return false
	})

	if kickedPlayerID == "" {
		return
	}

	logf(cfg, "GAMES: Player %q kicked from %s", target, h.id)

	for client := range h.clients {
		if client.playerID == kickedPlayerID {
			h.notifyLocked(client, "kicked", "You have been removed by the moderator.")
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		}
	}

	h.broadcastLobbyLocked()
}

func (h *Hub) configureLocked(c *Client, msg ClientMessage) {
	if h.phase != imposter.PhaseSetup {
		h.notifyLocked(c, "error", "The game can only be changed between games.")
		return
	}

	if msg.NumImposters > 0 {
		h.numImposters = msg.NumImposters
	}

	if msg.Topics != nil {
		available := h.machine.WordBank().Topics()

		var topics []string
		for _, t := range msg.Topics {
			i := slices.IndexFunc(available, func(s string) bool { return h.sameName(s, t) })
			if i < 0 || slices.Contains(topics, available[i]) {
				continue
			}
			topics = append(topics, available[i])
		}

		if len(topics) == 0 {
			h.notifyLocked(c, "error", "Choose at least one known topic.")
		} else {
			h.topics = topics
		}
	}

	h.broadcastRoundStateLocked()
	h.sendModeratorViewLocked()
}

func (h *Hub) lobbyConfigLocked() imposter.RoundConfig {
	names := make([]string, 0, len(h.players))
	for _, p := range h.players {
		names = append(names, p.Username)
	}

	return imposter.RoundConfig{
		PlayerNames:  names,
		NumImposters: h.numImposters,
		TopicPool:    slices.Clone(h.topics),
	}
}

func (h *Hub) startRoundLocked(cfg *Config, c *Client) {
	if h.phase != imposter.PhaseSetup {
		h.notifyLocked(c, "error", "A round is already in progress.")
		return
	}

	h.playRoundLocked(cfg, c, h.lobbyConfigLocked(), h.seed)
}

func (h *Hub) nextRoundLocked(cfg *Config, c *Client) {
	if h.phase != imposter.PhaseResults {
		h.notifyLocked(c, "error", "The next round starts after the results.")
		return
	}

	next, seed := h.machine.PrepareNextRound(h.config, h.round)
	h.playRoundLocked(cfg, c, next, seed)
}

// playRoundLocked deals a round and moves everyone to REVEAL.
func (h *Hub) playRoundLocked(cfg *Config, c *Client, rc imposter.RoundConfig, seed imposter.RoundSeed) {
	ctx, cancel := storeContext()
	defer cancel()

	state, err := h.machine.StartRound(ctx, rc, seed)
	if err != nil {
		text := "Unable to start the round."
		if errors.Is(err, imposter.ErrMissingOrInvalidConfig) {
			text = "Need at least 3 players and fewer imposters than players."
		}
		h.notifyLocked(c, "error", text)
		logf(cfg, "GAMES: Unable to start round in %s: %v", h.id, err)
		return
	}

	h.config = rc
	h.round = state
	h.phase = state.Phase
	h.acked = make(map[int]bool)
	h.votes = make(map[int]int)
	h.outcome = nil

	logf(cfg, "GAMES: Round %d started in %s with topic %q", state.RoundNumber, h.id, state.Topic)

	h.broadcastRoundStateLocked()
	h.sendModeratorViewLocked()
}

func (h *Hub) newGameLocked(cfg *Config, c *Client) {
	if h.phase != imposter.PhaseSetup && !h.phase.CanTransitionTo(imposter.PhaseSetup) {
		h.notifyLocked(c, "error", "A new game can be started once the results are shown.")
		return
	}

	ctx, cancel := storeContext()
	defer cancel()

	h.seed = h.machine.NewGame(ctx, len(h.players))
	h.phase = imposter.PhaseSetup
	h.config = imposter.RoundConfig{}
	h.round = imposter.RoundState{}
	h.acked = make(map[int]bool)
	h.votes = make(map[int]int)
	h.outcome = nil

	logf(cfg, "GAMES: New game in %s", h.id)

	h.broadcastLobbyLocked()
}

// handlePlay processes messages any seated player may send.
func (h *Hub) handlePlay(cfg *Config, pr playRequest) {
	c := pr.client
	msg := pr.msg

	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	seat := h.rosterIndexLocked(c.playerID)
	if seat < 0 {
		return
	}

	switch msg.Type {
	case "ack_reveal":
		if h.phase != imposter.PhaseReveal || h.acked[seat] {
			return
		}
		h.acked[seat] = true

		if len(h.acked) == h.config.NumPlayers() {
			h.advanceLocked(cfg)
		}

	case "vote":
		if h.phase != imposter.PhaseDiscussion {
			return
		}

		target := h.seatLocked(msg.TargetUsername)
		switch {
		case target < 0:
			h.notifyLocked(c, "error", "That player is not in this round.")
			return
		case target == seat:
			h.notifyLocked(c, "error", "You cannot vote for yourself.")
			return
		}
		h.votes[seat] = target

		if len(h.votes) == h.config.NumPlayers() {
			h.finishVotingLocked(cfg)
			return
		}

	default:
		return
	}

	h.broadcastRoundStateLocked()
	h.sendModeratorViewLocked()
}

// advanceLocked moves the round to its next phase and saves it.
func (h *Hub) advanceLocked(cfg *Config) {
	next, err := imposter.AdvancePhase(h.phase)
	if err != nil {
		logf(cfg, "GAMES: %v in %s", err, h.id)
		return
	}

	h.phase = next
	h.round.Phase = next

	ctx, cancel := storeContext()
	defer cancel()
	h.machine.Save(ctx, h.config, h.round)
}

func (h *Hub) finishVotingLocked(cfg *Config) {
	outcome := imposter.TallyVotes(h.config.NumPlayers(), h.round, h.votes)
	h.outcome = &outcome
	h.advanceLocked(cfg)

	logf(cfg, "GAMES: Round %d in %s ended, winner %s", h.round.RoundNumber, h.id, outcome.Winner)

	h.broadcastRoundStateLocked()
	h.sendModeratorViewLocked()
}

// sendModeratorViewLocked assumes h.mu is already held.
func (h *Hub) sendModeratorViewLocked() {
	if h.moderatorPlayerID == "" {
		return
	}

	var modClient *Client
	for c := range h.clients {
		if c.playerID == h.moderatorPlayerID {
			modClient = c
			break
		}
	}
	if modClient == nil {
		return
	}

	players := make([]ModeratorPlayer, 0, len(h.players))
	for _, p := range h.players {
		mp := ModeratorPlayer{
			Username:  p.Username,
			Connected: h.connectedLocked(p.PlayerID),
		}
		if seat := h.seatLocked(p.Username); seat >= 0 && h.phase != imposter.PhaseSetup {
			mp.Acked = h.acked[seat]
			_, mp.Voted = h.votes[seat]
		}
		players = append(players, mp)
	}

	h.sendLocked(modClient, ModeratorViewMessage{
		Type:            "moderator_view",
		Players:         players,
		LobbyLocked:     h.lobbyLocked,
		NumImposters:    h.numImposters,
		Topics:          h.topics,
		AvailableTopics: h.machine.WordBank().Topics(),
		Phase:           h.phase,
		Round:           h.round.RoundNumber,
		CreatedAt:       h.createdAt,
		LastActive:      h.lastActive,
	})
}

// closeAll disconnects all clients of this hub and stops it (used by reaper).
func (h *Hub) closeAll() {
	h.stop.Do(func() { close(h.done) })

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(h.clients, c)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func getOrSetPlayerID(cfg *Config, w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		cfg.logger.Error().Err(err).Msg("generate player id")
		return ""
	}
	id := hex.EncodeToString(buf)

	path := cfg.prefix
	if path == "" {
		path = "/"
	}

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     path,
		HttpOnly: true,
		Secure:   cfg.scheme() == "https",
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

// imposterGame is shared by every hub: one word bank, one tuning, and the
// optional database behind each game's state.
type imposterGame struct {
	cfg       *Config
	bank      *imposter.WordBank
	tuning    imposter.Tuning
	store     *sqlite.Store
	filePacks []imposter.Pack
}

func (g *imposterGame) newMachine(gameID string) (*imposter.Machine, error) {
	rng, err := imposter.NewRandomRand()
	if err != nil {
		return nil, err
	}

	var states imposter.GameStateStore
	if g.store != nil {
		states = g.store.Game(gameID)
	}

	return imposter.NewMachine(states, rng,
		imposter.WithWordBank(g.bank),
		imposter.WithTuning(g.tuning),
		imposter.WithLogger(g.cfg.logger.With().Str("game", gameID).Logger()),
	), nil
}

// GameManager holds a set of hubs keyed by game ID, so each $path/$gameid
// is its own isolated session.
type GameManager struct {
	mu          sync.Mutex
	hubs        map[string]*Hub
	idleTimeout time.Duration
	game        *imposterGame
}

func newGameManager(ctx context.Context, game *imposterGame, idleTimeout time.Duration) *GameManager {
	gm := &GameManager{
		hubs:        make(map[string]*Hub),
		idleTimeout: idleTimeout,
		game:        game,
	}
	if idleTimeout > 0 {
		go gm.reaperLoop(ctx)
	}
	return gm
}

func (gm *GameManager) getHub(cfg *Config, gameID string) (*Hub, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if hub, ok := gm.hubs[gameID]; ok {
		return hub, nil
	}

	machine, err := gm.game.newMachine(gameID)
	if err != nil {
		return nil, err
	}

	hub := newHub(gameID, machine)
	gm.hubs[gameID] = hub
	go hub.run(cfg)
	return hub, nil
}

const gameIDLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func validGameID(id string) bool {
	if len(id) == 0 || len(id) > 32 {
		return false
	}
	for _, r := range id {
		if !strings.ContainsRune(gameIDLetters, r) {
			return false
		}
	}
	return true
}

// newGameID generates a crypto-random game ID and ensures it doesn't
// collide with existing games.
func (gm *GameManager) newGameID() string {
	for {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, 8)
		for i := range out {
			out[i] = gameIDLetters[int(buf[i])%len(gameIDLetters)]
		}
		id := string(out)

		gm.mu.Lock()
		_, exists := gm.hubs[id]
		gm.mu.Unlock()

		if !exists {
			return id
		}
	}
}

// reaperLoop periodically removes hubs that have been idle longer than
// idleTimeout, along with saved rounds nobody has touched since.
func (gm *GameManager) reaperLoop(ctx context.Context) {
	ticker := time.NewTicker(gm.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		cutoff := time.Now().Add(-gm.idleTimeout)

		gm.mu.Lock()
		for id, hub := range gm.hubs {
			hub.mu.RLock()
			last := hub.lastActive
			hub.mu.RUnlock()

			if last.Before(cutoff) {
				delete(gm.hubs, id)
				go hub.closeAll()
			}
		}
		active := make([]string, 0, len(gm.hubs))
		for id := range gm.hubs {
			active = append(active, id)
		}
		gm.mu.Unlock()

		if gm.game.store == nil {
			continue
		}

		pruneCtx, cancel := storeContext()
		n, err := gm.game.store.PruneStates(pruneCtx, cutoff, active...)
		cancel()
		if err != nil {
			gm.game.cfg.logger.Warn().Err(err).Msg("prune game states")
			continue
		}
		if n > 0 {
			logf(gm.game.cfg, "GAMES: Pruned %d saved games", n)
		}
	}
}

// WebSocket handler that picks the hub based on :gameid
func serveWSForManager(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID := ps.ByName("gameid")
		if !validGameID(gameID) {
			http.Error(w, "invalid game id", http.StatusBadRequest)
			return
		}

		playerID := getOrSetPlayerID(cfg, w, r)
		if playerID == "" {
			http.Error(w, "unable to assign player id", http.StatusInternalServerError)
			return
		}

		hub, err := gm.getHub(cfg, gameID)
		if err != nil {
			cfg.logger.Error().Err(err).Str("game", gameID).Msg("create game")
			http.Error(w, "unable to create game", http.StatusInternalServerError)
			return
		}

		// Upgrade writes its own response, so a freshly minted cookie has
		// to be passed along explicitly.
		conn, err := upgrader.Upgrade(w, r, http.Header{"Set-Cookie": w.Header().Values("Set-Cookie")})
		if err != nil {
			logf(cfg, "GAMES: Upgrade error for %s: %v", realIP(r), err)
			return
		}

		client := &Client{
			conn:     conn,
			send:     make(chan any, 32),
			playerID: playerID,
			limiter:  rate.NewLimiter(5, 10),
		}

		select {
		case hub.register <- client:
		case <-hub.done:
			_ = conn.Close()
			return
		}

		go client.writePump()
		client.readPump(cfg, hub)
	}
}

func (c *Client) readPump(cfg *Config, h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		if !c.limiter.Allow() {
			logf(cfg, "GAMES: Dropped %q from a flooding client in %s", msg.Type, h.id)
			continue
		}

		switch msg.Type {
		case "join":
			select {
			case h.joins <- joinRequest{client: c, msg: msg}:
			case <-h.done:
				return
			}
		case "lock_lobby", "kick", "configure", "start_round", "show_results", "next_round", "new_game":
			select {
			case h.mods <- modCommand{client: c, msg: msg}:
			case <-h.done:
				return
			}
		case "ack_reveal", "vote":
			select {
			case h.plays <- playRequest{client: c, msg: msg}:
			case <-h.done:
				return
			}
		default:
			// ignore unknown types
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// QR handler: generates a PNG QR code for the current game URL using go-qrcode.
func qrHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !validGameID(ps.ByName("gameid")) {
			http.Error(w, "invalid game id", http.StatusBadRequest)
			return
		}

		// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
		scheme := cfg.scheme()
		if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
			scheme = proto
		}

		// We are at /.../:gameid/qr; strip trailing "/qr" to get the game URL.
		url := scheme + "://" + r.Host + strings.TrimSuffix(r.URL.Path, "/qr")

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)
		_, _ = w.Write(png)
	}
}

//go:embed imposter/index.html
var indexHTML []byte

func getIndexHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !validGameID(ps.ByName("gameid")) {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		securityHeaders(cfg, w)

		_ = getOrSetPlayerID(cfg, w, r)

		_, _ = w.Write(indexHTML)
	}
}

// redirectNewGame handles GET /path by generating a new random game ID
// (with server-side collision detection) and redirecting to /path/:gameid.
func redirectNewGame(cfg *Config, path string, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gameID := gm.newGameID()
		logf(cfg, "GAMES: Created game %s/%s", path, gameID)
		http.Redirect(w, r, cfg.prefix+path+"/"+gameID, http.StatusTemporaryRedirect)
	}
}

// registerImposterGame sets up routes so that:
//   - $path                  → redirects to new random game (8-char ID)
//   - $path/:gameid          → HTML client
//   - $path/:gameid/ws       → WebSocket for that game
//   - $path/:gameid/qr       → PNG QR code for that game URL
func registerImposterGame(ctx context.Context, cfg *Config, game *imposterGame, path string, mux *httprouter.Router) *GameManager {
	gm := newGameManager(ctx, game, cfg.sessionTimeout)

	mux.GET(cfg.prefix+path, redirectNewGame(cfg, path, gm))
	mux.GET(cfg.prefix+path+"/:gameid", getIndexHandler(cfg))
	mux.GET(cfg.prefix+path+"/:gameid/ws", serveWSForManager(cfg, gm))
	mux.GET(cfg.prefix+path+"/:gameid/qr", qrHandler(cfg))

	return gm
}
