package domain

import "context"

//go:generate go tool mockgen -destination=./mocks/application_mock.go -package=mocks . Application

// Application はルームに注入されるゲームロジックです。
// 全てのメソッドはルームのゴルーチンから逐次呼ばれます。
type Application interface {
	OnJoin(ctx context.Context, sessionID SessionID) error
	OnLeave(ctx context.Context, sessionID SessionID)
	HandleMessage(ctx context.Context, sessionID SessionID, data []byte) error
	// Tick の戻り値が nil でなければルーム全体にブロードキャストされます。
	Tick(ctx context.Context) []byte
}

// Sender はアプリケーションからセッションへの送信口です。
type Sender interface {
	Broadcast(ctx context.Context, data []byte)
	SendTo(ctx context.Context, sessionID SessionID, data []byte)
}

// ApplicationFactory はルームごとに新しい Application を作ります。
type ApplicationFactory func(roomID RoomID, out Sender) Application
