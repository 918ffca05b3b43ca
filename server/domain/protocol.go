package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrInvalidEnvelope は {"type","data"} として解釈できないメッセージです。
	ErrInvalidEnvelope = errors.New("invalid message envelope")
	// ErrUnknownMessageType は未知の type を持つメッセージです。
	ErrUnknownMessageType = errors.New("unknown message type")
)

type MessageType string

const (
	TypeJoined        MessageType = "joined"
	TypeRoomUpdate    MessageType = "room_update"
	TypeReady         MessageType = "ready"
	TypeReadyUpdate   MessageType = "ready_update"
	TypeState         MessageType = "state"
	TypeSync          MessageType = "sync"
	TypeChargeStart   MessageType = "charge_start"
	TypeChargeRelease MessageType = "charge_release"
	TypeDamage        MessageType = "damage"
	TypeZoneDamage    MessageType = "zone_damage"
	TypeHPUpdate      MessageType = "hp_update"
	TypeCollision     MessageType = "collision"
	TypeGameStart     MessageType = "game_start"
	TypeEndGame       MessageType = "end_game"
	TypeScoreUpdate   MessageType = "score_update"
	TypeJoinRoom      MessageType = "join_room"
	TypeLeaveRoom     MessageType = "leave_room"
	TypeLobbyInfo     MessageType = "lobby_info"
)

var knownTypes = map[MessageType]struct{}{
	TypeJoined: {}, TypeRoomUpdate: {}, TypeReady: {}, TypeReadyUpdate: {},
	TypeState: {}, TypeSync: {}, TypeChargeStart: {}, TypeChargeRelease: {},
	TypeDamage: {}, TypeZoneDamage: {}, TypeHPUpdate: {}, TypeCollision: {},
	TypeGameStart: {}, TypeEndGame: {}, TypeScoreUpdate: {}, TypeJoinRoom: {},
	TypeLeaveRoom: {}, TypeLobbyInfo: {},
}

func (t MessageType) Known() bool {
	_, ok := knownTypes[t]
	return ok
}

// Envelope は全メッセージ共通の外枠です。
type Envelope struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Encode は payload を data に入れたテキストフレームを返します。payload が nil なら data は {} です。
func Encode(t MessageType, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("%w: empty type", ErrInvalidEnvelope)
	}
	data := json.RawMessage("{}")
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", t, err)
		}
		data = b
	}
	return json.Marshal(Envelope{Type: t, Data: data})
}

// DecodeEnvelope は外枠だけを解釈します。未知の type の場合も Envelope は返します。
func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, fmt.Errorf("%w: empty frame", ErrInvalidEnvelope)
	}
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", ErrInvalidEnvelope)
	}
	if !env.Type.Known() {
		return env, fmt.Errorf("%w: %q", ErrUnknownMessageType, env.Type)
	}
	return env, nil
}

func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.Data) == 0 {
		return out, fmt.Errorf("%w: empty data for %q", ErrInvalidEnvelope, env.Type)
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, fmt.Errorf("%w: %s: %v", ErrInvalidEnvelope, env.Type, err)
	}
	return out, nil
}

// WithPlayerID は data を書き換えずに playerId だけを差し替えたフレームを返します。
func WithPlayerID(env Envelope, playerID int) ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &fields); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidEnvelope, env.Type, err)
		}
	}
	id, err := json.Marshal(playerID)
	if err != nil {
		return nil, err
	}
	fields["playerId"] = id
	return Encode(env.Type, fields)
}

type JoinedPayload struct {
	RoomID   string `json:"roomId"`
	PlayerID int    `json:"playerId"`
}

type RoomInfo struct {
	ID          string          `json:"id"`
	Players     []int           `json:"players"`
	ReadyStatus map[int]bool    `json:"readyStatus"`
	HP          map[int]float64 `json:"hp"`
	Score       map[int]int     `json:"score"`
	IsPlaying   bool            `json:"isPlaying"`
}

type RoomUpdatePayload struct {
	Room RoomInfo `json:"room"`
}

type ReadyPayload struct {
	IsReady bool `json:"isReady"`
}

type ReadyUpdatePayload struct {
	ReadyStatus map[int]bool `json:"readyStatus"`
}

// PlayerState は state と sync で使う位置と向きです。
type PlayerState struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Angle float64 `json:"angle"`
}

// SyncPayload は playerId をキーとした全員の位置です。
type SyncPayload map[int]PlayerState

type ChargeStartPayload struct {
	PlayerID  int     `json:"playerId,omitempty"`
	Timestamp float64 `json:"timestamp"` // マッチ開始からのミリ秒
}

type ChargeReleasePayload struct {
	PlayerID    int     `json:"playerId,omitempty"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Angle       float64 `json:"angle"`
	VX          float64 `json:"vx"`
	VY          float64 `json:"vy"`
	DashDamage  float64 `json:"dashDamage"`
	ChargeRatio float64 `json:"chargeRatio"`
}

type DamagePayload struct {
	TargetID      int     `json:"targetId"`
	Amount        float64 `json:"amount"`
	FromX         float64 `json:"fromX"`
	FromY         float64 `json:"fromY"`
	KnockbackMult float64 `json:"knockbackMult"`
}

type ZoneDamagePayload struct {
	TargetID int     `json:"targetId"`
	Amount   float64 `json:"amount"`
}

type HPUpdatePayload struct {
	TargetID int     `json:"targetId"`
	HP       float64 `json:"hp"`
}

// EndGamePayload の Winner が nil のときは引き分けまたはタイムアウトです。
type EndGamePayload struct {
	Winner *int `json:"winner"`
}

type ScoreUpdatePayload struct {
	Score map[int]int `json:"score"`
}

type LobbyInfoPayload struct {
	LobbyCount int `json:"lobbyCount"`
	RoomCount  int `json:"roomCount"`
}
