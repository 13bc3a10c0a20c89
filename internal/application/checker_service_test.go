package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"whatsapp-checker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNormalizer = domain.PhoneNormalizer{CountryCode: "593", TrunkPrefix: "0", DomainSuffix: "@c.us"}

func newTestChecker(t *testing.T, ready bool) (*WhatsAppCheckerService, *fakeSource, *fakeSession, *QueryQueue) {
	t.Helper()
	session := &fakeSession{}
	source := &fakeSource{session: session}
	source.ready.Store(ready)
	queue := NewQueryQueue()
	t.Cleanup(queue.Close)
	return NewWhatsAppCheckerService(source, queue, testNormalizer, nil), source, session, queue
}

func TestCheckNumberRejectsWhileUnready(t *testing.T) {
	srv, _, session, _ := newTestChecker(t, false)

	result, err := srv.CheckNumber(context.Background(), domain.CheckRequest{PhoneNumber: "0991234567"})
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, domain.ErrSessionNotReady))
	assert.Zero(t, session.queries.Load())
}

func TestCheckNumberNormalizesAndQueries(t *testing.T) {
	srv, _, session, _ := newTestChecker(t, true)
	session.registered.Store(true)

	result, err := srv.CheckNumber(context.Background(), domain.CheckRequest{PhoneNumber: "0991234567"})
	require.NoError(t, err)
	assert.True(t, result.Verification)
	assert.Equal(t, "0991234567", result.PhoneNumber)
	assert.Equal(t, "593991234567@c.us", result.Identifier)
	assert.WithinDuration(t, time.Now(), result.Timestamp, time.Second)
	assert.Equal(t, int32(1), session.queries.Load())
}

func TestCheckNumberNotRegistered(t *testing.T) {
	srv, _, _, _ := newTestChecker(t, true)

	result, err := srv.CheckNumber(context.Background(), domain.CheckRequest{PhoneNumber: "593991234567"})
	require.NoError(t, err)
	assert.False(t, result.Verification)
	assert.Equal(t, "593991234567@c.us", result.Identifier)
}

func TestCheckNumberBackendFailure(t *testing.T) {
	srv, _, session, _ := newTestChecker(t, true)
	session.queryErr = errBackend

	_, err := srv.CheckNumber(context.Background(), domain.CheckRequest{PhoneNumber: "0991234567"})
	assert.True(t, errors.Is(err, errBackend))

	// the next query is unaffected
	session.queryErr = nil
	_, err = srv.CheckNumber(context.Background(), domain.CheckRequest{PhoneNumber: "0991234567"})
	assert.NoError(t, err)
}

func TestCheckNumberSerializesConcurrentQueries(t *testing.T) {
	srv, _, session, _ := newTestChecker(t, true)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := srv.CheckNumber(context.Background(), domain.CheckRequest{PhoneNumber: "0991234567"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(20), session.queries.Load())
	assert.False(t, session.overlapped.Load())
}

func TestCheckNumberSessionLostWhileQueued(t *testing.T) {
	srv, source, session, queue := newTestChecker(t, true)

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_, _ = queue.Enqueue(context.Background(), func(context.Context) (interface{}, error) {
			close(started)
			<-release
			return nil, nil
		})
	}()
	<-started

	done := make(chan error, 1)
	go func() {
		_, err := srv.CheckNumber(context.Background(), domain.CheckRequest{PhoneNumber: "0991234567"})
		done <- err
	}()
	require.Eventually(t, func() bool { return queue.Size() == 1 }, time.Second, time.Millisecond)

	source.ready.Store(false)
	close(release)

	assert.True(t, errors.Is(<-done, domain.ErrSessionNotReady))
	assert.Zero(t, session.queries.Load())
}

func TestCheckerStatusIncludesQueue(t *testing.T) {
	srv, _, _, queue := newTestChecker(t, true)

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_, _ = queue.Enqueue(context.Background(), func(context.Context) (interface{}, error) {
			close(started)
			<-release
			return nil, nil
		})
	}()
	<-started
	defer close(release)

	status := srv.Status()
	assert.True(t, status.Ready)
	assert.True(t, srv.IsReady())
	assert.Equal(t, 1, status.QueueInFlight)
	assert.Equal(t, 0, status.QueueWaiting)
}
