package domain_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	domain "dasharena/server/domain"
)

type fakePinger struct {
	calls atomic.Int32
	err   error
}

func (p *fakePinger) Ping(context.Context) error {
	p.calls.Add(1)
	return p.err
}

func TestHeartbeatService_CallsOnPong(t *testing.T) {
	session := domain.NewSession()
	pinger := &fakePinger{}
	hb := domain.NewHeartbeatService(20*time.Millisecond, session, pinger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	pongs := make(chan struct{}, 16)
	go hb.Run(ctx, func() { pongs <- struct{}{} })

	select {
	case <-pongs:
	case <-ctx.Done():
		t.Fatal("timed out waiting for pong")
	}
}

func TestHeartbeatService_FailedPingSkipsOnPong(t *testing.T) {
	session := domain.NewSession()
	pinger := &fakePinger{err: errors.New("no pong")}
	hb := domain.NewHeartbeatService(10*time.Millisecond, session, pinger)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	var pongs atomic.Int32
	hb.Run(ctx, func() { pongs.Add(1) })

	if pinger.calls.Load() == 0 {
		t.Fatal("ping never sent")
	}
	if pongs.Load() != 0 {
		t.Fatalf("onPong called %d times after failed pings", pongs.Load())
	}
}

func TestHeartbeatService_StopsOnContextCancel(t *testing.T) {
	session := domain.NewSession()
	hb := domain.NewHeartbeatService(50*time.Millisecond, session, &fakePinger{})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		hb.Run(ctx, func() {})
		close(done)
	}()

	cancel()

	select {
	case <-done:
		// 正常終了
	case <-time.After(1 * time.Second):
		t.Fatal("HeartbeatService did not stop after context cancel")
	}
}

func TestHeartbeatService_DisabledReturnsImmediately(t *testing.T) {
	pinger := &fakePinger{}
	hb := domain.NewHeartbeatService(0, domain.NewSession(), pinger)

	hb.Run(context.Background(), func() {})

	if pinger.calls.Load() != 0 {
		t.Fatal("disabled heartbeat sent a ping")
	}
}
