package poller_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/cache"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/params"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/poller"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartRunsTasksImmediately(t *testing.T) {
	var runs atomic.Int32
	p := poller.New([]poller.Task{{
		Name:  "count",
		Every: time.Hour,
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	}})

	require.NoError(t, p.Start(context.Background()))
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 10*time.Millisecond)
	p.Stop()
	p.Stop()
}

func TestGuardSkipsTicks(t *testing.T) {
	var runs atomic.Int32
	p := poller.New([]poller.Task{{
		Name:  "count",
		Every: time.Hour,
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	}}, poller.WithGuard(func() bool { return false }))

	require.NoError(t, p.Start(context.Background()))
	p.Stop()
	assert.Zero(t, runs.Load())
}

func TestDisabledTasksAreDropped(t *testing.T) {
	var runs atomic.Int32
	p := poller.New([]poller.Task{{
		Name:  "off",
		Every: 0,
		Run: func(context.Context) error {
			runs.Add(1)
			return errors.New("should not run")
		},
	}})

	require.NoError(t, p.Start(context.Background()))
	p.Stop()
	assert.Zero(t, runs.Load())
}

func TestRefetchTaskRefreshesEntry(t *testing.T) {
	var fetches atomic.Int32
	c := cache.New()
	c.Register(cache.ChatConversations, func(context.Context, params.Params) (any, error) {
		return int(fetches.Add(1)), nil
	})

	_, err := c.Read(context.Background(), cache.ChatConversations, nil)
	require.NoError(t, err)

	task := poller.Refetch(c, cache.ChatConversations, nil, 3*time.Second)
	assert.Equal(t, "chat:conversations", task.Name)
	require.NoError(t, task.Run(context.Background()))

	r := c.Peek(cache.ChatConversations, nil)
	assert.Equal(t, 2, r.Data)
	assert.Equal(t, int32(2), fetches.Load())
}
