package application

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"dasharena/server/domain"
)

const instrumentationName = "dasharena/server/application"

// Meter はグローバルな OTel プロバイダから Meter を返します。未設定なら no-op です。
func Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type MetricsRecorder interface {
	MessageReceived(ctx context.Context, msgType domain.MessageType)
	MessageDropped(ctx context.Context, reason string)
	MatchStarted(ctx context.Context, roomID domain.RoomID)
	MatchEnded(ctx context.Context, roomID domain.RoomID, reason string)
}

type NopMetrics struct{}

func (NopMetrics) MessageReceived(context.Context, domain.MessageType) {}
func (NopMetrics) MessageDropped(context.Context, string)              {}
func (NopMetrics) MatchStarted(context.Context, domain.RoomID)         {}
func (NopMetrics) MatchEnded(context.Context, domain.RoomID, string)   {}

// OtelMetrics は MetricsRecorder の OpenTelemetry 実装です。
type OtelMetrics struct {
	meter    metric.Meter
	received metric.Int64Counter
	dropped  metric.Int64Counter
	started  metric.Int64Counter
	ended    metric.Int64Counter
}

func NewOtelMetrics(m metric.Meter) (*OtelMetrics, error) {
	var (
		om  = OtelMetrics{meter: m}
		err error
	)
	om.received, err = m.Int64Counter(
		"arena.messages.received",
		metric.WithDescription("Client messages accepted by a room"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating received counter: %w", err)
	}
	om.dropped, err = m.Int64Counter(
		"arena.messages.dropped",
		metric.WithDescription("Client messages dropped as malformed, unexpected or stale"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}
	om.started, err = m.Int64Counter(
		"arena.matches.started",
		metric.WithDescription("Matches started"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating started counter: %w", err)
	}
	om.ended, err = m.Int64Counter(
		"arena.matches.ended",
		metric.WithDescription("Matches ended, by reason"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ended counter: %w", err)
	}
	return &om, nil
}

// ObserveActiveRooms は稼働中ルーム数のゲージを登録します。count は収集のたびに呼ばれます。
func (om *OtelMetrics) ObserveActiveRooms(count func() int) error {
	gauge, err := om.meter.Int64ObservableGauge(
		"arena.rooms.active",
		metric.WithDescription("Rooms currently running"),
	)
	if err != nil {
		return fmt.Errorf("creating rooms gauge: %w", err)
	}
	_, err = om.meter.RegisterCallback(
		func(_ context.Context, o metric.Observer) error {
			o.ObserveInt64(gauge, int64(count()))
			return nil
		},
		gauge,
	)
	if err != nil {
		return fmt.Errorf("registering rooms callback: %w", err)
	}
	return nil
}

func (om *OtelMetrics) MessageReceived(ctx context.Context, msgType domain.MessageType) {
	om.received.Add(ctx, 1, metric.WithAttributes(attribute.String("type", string(msgType))))
}

func (om *OtelMetrics) MessageDropped(ctx context.Context, reason string) {
	om.dropped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (om *OtelMetrics) MatchStarted(ctx context.Context, roomID domain.RoomID) {
	om.started.Add(ctx, 1, metric.WithAttributes(attribute.String("room", roomID.String())))
}

func (om *OtelMetrics) MatchEnded(ctx context.Context, roomID domain.RoomID, reason string) {
	om.ended.Add(ctx, 1, metric.WithAttributes(
		attribute.String("room", roomID.String()),
		attribute.String("reason", reason),
	))
}
