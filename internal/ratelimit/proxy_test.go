package ratelimit_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/golang/mock/gomock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/gamedex/gd-indexer/internal/config"
	"github.com/gamedex/gd-indexer/internal/domain"
	"github.com/gamedex/gd-indexer/internal/logger"
	"github.com/gamedex/gd-indexer/internal/mocks"
	"github.com/gamedex/gd-indexer/internal/ratelimit"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

// testProxyMocks contains all the mocks needed for testing the proxy
type testProxyMocks struct {
	ctrl             *gomock.Controller
	redisClient      *mocks.MockRedisClient
	redisRateLimiter *mocks.MockRedisRateLimiter
	clock            *mocks.MockClock
}

// setupTestProxy creates all the mocks for testing
func setupTestProxy(t *testing.T) *testProxyMocks {
	ctrl := gomock.NewController(t)

	tm := &testProxyMocks{
		ctrl:             ctrl,
		redisClient:      mocks.NewMockRedisClient(ctrl),
		redisRateLimiter: mocks.NewMockRedisRateLimiter(ctrl),
		clock:            mocks.NewMockClock(ctrl),
	}

	return tm
}

// tearDownTestProxy cleans up the test mocks
func tearDownTestProxy(mocks *testProxyMocks) {
	mocks.ctrl.Finish()
}

func testRateLimiterConfig() config.RateLimiterConfig {
	return config.RateLimiterConfig{
		RedisKeyPrefix:          "test:limiter:",
		MaxWorkers:              10,
		MaxQueueSize:            100,
		EnableLocalFallback:     true,
		LocalFallbackMultiplier: 0.5,
		Providers: map[string]config.ProviderRateLimitConfig{
			string(domain.ProviderPlayStation): {
				RequestsPerSecond: 10,
				Burst:             20,
				MaxQueueTime:      5 * time.Minute,
			},
			string(domain.ProviderSteam): {
				RequestsPerSecond: 5,
				Burst:             10,
				MaxQueueTime:      5 * time.Minute,
			},
		},
	}
}

// setupProxyWithMocks creates a proxy with common mock expectations
func setupProxyWithMocks(t *testing.T, mocks *testProxyMocks, cfg config.RateLimiterConfig, redisAvailable bool) (ratelimit.Proxy, *time.Ticker) {
	// Mock Redis ping
	statusCmd := redis.NewStatusCmd(context.Background())
	if redisAvailable {
		statusCmd.SetVal("PONG")
	} else {
		statusCmd.SetErr(errors.New("connection refused"))
	}
	mocks.redisClient.EXPECT().
		Ping(gomock.Any()).
		Return(statusCmd)

	// Mock rate limiter creation
	mocks.redisClient.EXPECT().
		NewRateLimiter().
		Return(mocks.redisRateLimiter)

	// Mock ticker for health monitoring goroutine
	ticker := time.NewTicker(10 * time.Second)
	mocks.clock.EXPECT().
		NewTicker(10 * time.Second).
		Return(ticker)

	proxy, err := ratelimit.NewProxy(cfg, mocks.redisClient, mocks.clock)
	assert.NoError(t, err)

	// Give the monitoring goroutine time to start
	time.Sleep(15 * time.Millisecond)

	return proxy, ticker
}

func TestNewProxy_Success(t *testing.T) {
	mocks := setupTestProxy(t)
	defer tearDownTestProxy(mocks)

	proxy, ticker := setupProxyWithMocks(t, mocks, testRateLimiterConfig(), true)
	assert.NotNil(t, proxy)

	// Clean up
	ticker.Stop()
	mocks.redisClient.EXPECT().Close().Return(nil).AnyTimes()
	_ = proxy.Close()
}

func TestNewProxy_RedisUnavailable_FallbackEnabled(t *testing.T) {
	mocks := setupTestProxy(t)
	defer tearDownTestProxy(mocks)

	proxy, ticker := setupProxyWithMocks(t, mocks, testRateLimiterConfig(), false)

	// Should succeed with fallback enabled
	assert.NotNil(t, proxy)

	// Clean up
	ticker.Stop()
	mocks.redisClient.EXPECT().Close().Return(nil).AnyTimes()
	_ = proxy.Close()
}

func TestNewProxy_RedisUnavailable_FallbackDisabled(t *testing.T) {
	mocks := setupTestProxy(t)
	defer tearDownTestProxy(mocks)

	cfg := testRateLimiterConfig()
	cfg.EnableLocalFallback = false

	// Mock Redis ping failure
	statusCmd := redis.NewStatusCmd(context.Background())
	statusCmd.SetErr(errors.New("connection refused"))
	mocks.redisClient.EXPECT().
		Ping(gomock.Any()).
		Return(statusCmd)

	proxy, err := ratelimit.NewProxy(cfg, mocks.redisClient, mocks.clock)

	// Should fail without fallback
	assert.Error(t, err)
	assert.Nil(t, proxy)
	assert.Contains(t, err.Error(), "redis unavailable and fallback disabled")
}

func TestNewProxy_InvalidConfig_NoProviders(t *testing.T) {
	mocks := setupTestProxy(t)
	defer tearDownTestProxy(mocks)

	cfg := config.RateLimiterConfig{
		Providers: map[string]config.ProviderRateLimitConfig{},
	}

	proxy, err := ratelimit.NewProxy(cfg, mocks.redisClient, mocks.clock)

	assert.Error(t, err)
	assert.Nil(t, proxy)
	assert.Contains(t, err.Error(), "at least one provider must be configured")
}

func TestNewProxy_InvalidConfig_InvalidRPS(t *testing.T) {
	mocks := setupTestProxy(t)
	defer tearDownTestProxy(mocks)

	cfg := config.RateLimiterConfig{
		Providers: map[string]config.ProviderRateLimitConfig{
			string(domain.ProviderSteam): {RequestsPerSecond: 0},
		},
	}

	proxy, err := ratelimit.NewProxy(cfg, mocks.redisClient, mocks.clock)

	assert.Error(t, err)
	assert.Nil(t, proxy)
	assert.Contains(t, err.Error(), "requests_per_second must be positive")
}

func TestNewProxy_InvalidConfig_UnknownProvider(t *testing.T) {
	mocks := setupTestProxy(t)
	defer tearDownTestProxy(mocks)

	cfg := config.RateLimiterConfig{
		Providers: map[string]config.ProviderRateLimitConfig{
			"nintendo-eshop": {RequestsPerSecond: 10},
		},
	}

	proxy, err := ratelimit.NewProxy(cfg, mocks.redisClient, mocks.clock)

	assert.Error(t, err)
	assert.Nil(t, proxy)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestProxy_Request_Success(t *testing.T) {
	mocks := setupTestProxy(t)
	defer tearDownTestProxy(mocks)

	proxy, ticker := setupProxyWithMocks(t, mocks, testRateLimiterConfig(), true)

	// Mock distributed limiter allowing request
	mocks.redisRateLimiter.EXPECT().
		Allow(gomock.Any(), "test:limiter:ps-store", gomock.Any()).
		Return(&redis_rate.Result{
			Allowed:   1,
			Remaining: 9,
		}, nil)

	// Execute request
	ctx := context.Background()
	expectedResult := "success"
	result, err := proxy.Request(ctx, domain.ProviderPlayStation, func(ctx context.Context) (interface{}, error) {
		return expectedResult, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, expectedResult, result)

	// Clean up
	ticker.Stop()
	mocks.redisClient.EXPECT().Close().Return(nil).AnyTimes()
	_ = proxy.Close()
}

func TestProxy_Request_UnconfiguredProvider(t *testing.T) {
	mocks := setupTestProxy(t)
	defer tearDownTestProxy(mocks)

	proxy, ticker := setupProxyWithMocks(t, mocks, testRateLimiterConfig(), true)

	// igdb is a known provider but has no rate limit entry here
	ctx := context.Background()
	result, err := proxy.Request(ctx, domain.ProviderIGDB, func(ctx context.Context) (interface{}, error) {
		return "success", nil
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "provider 'igdb' not configured")

	// Clean up
	ticker.Stop()
	mocks.redisClient.EXPECT().Close().Return(nil).AnyTimes()
	_ = proxy.Close()
}

func TestProxy_Request_ContextCanceled(t *testing.T) {
	mocks := setupTestProxy(t)
	defer tearDownTestProxy(mocks)

	proxy, ticker := setupProxyWithMocks(t, mocks, testRateLimiterConfig(), true)

	// Create a context that's already canceled
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := proxy.Request(ctx, domain.ProviderPlayStation, func(ctx context.Context) (interface{}, error) {
		return "success", nil
	})

	assert.Error(t, err)
	assert.Nil(t, result)

	// Clean up
	ticker.Stop()
	mocks.redisClient.EXPECT().Close().Return(nil).AnyTimes()
	_ = proxy.Close()
}

func TestProxy_Request_RateLimitExceeded_WithRetryAfter(t *testing.T) {
	mocks := setupTestProxy(t)
	defer tearDownTestProxy(mocks)

	proxy, ticker := setupProxyWithMocks(t, mocks, testRateLimiterConfig(), true)

	// First call: rate limit exceeded with retry after
	// Second call: allowed
	gomock.InOrder(
		mocks.redisRateLimiter.EXPECT().
			Allow(gomock.Any(), "test:limiter:ps-store", gomock.Any()).
			Return(&redis_rate.Result{
				Allowed:    0,
				Remaining:  0,
				RetryAfter: 50 * time.Millisecond,
			}, nil),
		mocks.clock.EXPECT().
			After(gomock.Any()). // Accept any duration due to jitter
			DoAndReturn(func(d time.Duration) <-chan time.Time {
				ch := make(chan time.Time, 1)
				ch <- time.Now()
				return ch
			}),
		mocks.redisRateLimiter.EXPECT().
			Allow(gomock.Any(), "test:limiter:ps-store", gomock.Any()).
			Return(&redis_rate.Result{
				Allowed:   1,
				Remaining: 9,
			}, nil),
	)

	ctx := context.Background()
	result, err := proxy.Request(ctx, domain.ProviderPlayStation, func(ctx context.Context) (interface{}, error) {
		return "success", nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "success", result)

	// Clean up
	ticker.Stop()
	mocks.redisClient.EXPECT().Close().Return(nil).AnyTimes()
	_ = proxy.Close()
}

func TestProxy_Request_RedisFailure_FallbackToLocal(t *testing.T) {
	mocks := setupTestProxy(t)
	defer tearDownTestProxy(mocks)

	proxy, ticker := setupProxyWithMocks(t, mocks, testRateLimiterConfig(), true)

	// Mock distributed limiter returning error (Redis failure)
	mocks.redisRateLimiter.EXPECT().
		Allow(gomock.Any(), "test:limiter:ps-store", gomock.Any()).
		Return(nil, errors.New("redis connection error"))

	// Should fallback to local limiter
	ctx := context.Background()
	result, err := proxy.Request(ctx, domain.ProviderPlayStation, func(ctx context.Context) (interface{}, error) {
		return "success with fallback", nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "success with fallback", result)

	// Clean up
	ticker.Stop()
	mocks.redisClient.EXPECT().Close().Return(nil).AnyTimes()
	_ = proxy.Close()
}

func TestProxy_RedisFailure_NoFallback(t *testing.T) {
	mocks := setupTestProxy(t)
	defer tearDownTestProxy(mocks)

	cfg := testRateLimiterConfig()
	cfg.EnableLocalFallback = false

	proxy, ticker := setupProxyWithMocks(t, mocks, cfg, true)

	// Mock distributed limiter returning error (Redis failure)
	mocks.redisRateLimiter.EXPECT().
		Allow(gomock.Any(), "test:limiter:ps-store", gomock.Any()).
		Return(nil, errors.New("redis connection error"))

	ctx := context.Background()
	result, err := proxy.Request(ctx, domain.ProviderPlayStation, func(ctx context.Context) (interface{}, error) {
		return "success", nil
	})

	// Should fail because fallback is disabled
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "redis rate limiter unavailable")

	// Clean up
	ticker.Stop()
	mocks.redisClient.EXPECT().Close().Return(nil).AnyTimes()
	_ = proxy.Close()
}

func TestProxy_Request_RequestFunctionError(t *testing.T) {
	mocks := setupTestProxy(t)
	defer tearDownTestProxy(mocks)

	proxy, ticker := setupProxyWithMocks(t, mocks, testRateLimiterConfig(), true)

	// Mock distributed limiter allowing request
	mocks.redisRateLimiter.EXPECT().
		Allow(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&redis_rate.Result{Allowed: 1}, nil)

	ctx := context.Background()
	expectedError := errors.New("request failed")
	result, err := proxy.Request(ctx, domain.ProviderPlayStation, func(ctx context.Context) (interface{}, error) {
		return nil, expectedError
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, expectedError, err)

	// Clean up
	ticker.Stop()
	mocks.redisClient.EXPECT().Close().Return(nil).AnyTimes()
	_ = proxy.Close()
}

func TestProxy_Request_ProxyClosed(t *testing.T) {
	mocks := setupTestProxy(t)
	defer tearDownTestProxy(mocks)

	proxy, ticker := setupProxyWithMocks(t, mocks, testRateLimiterConfig(), true)

	// Close the proxy
	mocks.redisClient.EXPECT().Close().Return(nil)

	// Stop ticker first
	ticker.Stop()

	_ = proxy.Close()

	// Try to make a request after closing
	ctx := context.Background()
	result, err := proxy.Request(ctx, domain.ProviderPlayStation, func(ctx context.Context) (interface{}, error) {
		return "success", nil
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "proxy is closed")
}

func TestProxy_Close_Multiple(t *testing.T) {
	mocks := setupTestProxy(t)
	defer tearDownTestProxy(mocks)

	proxy, ticker := setupProxyWithMocks(t, mocks, testRateLimiterConfig(), true)

	// Close should be called only once due to sync.Once
	mocks.redisClient.EXPECT().Close().Return(nil).Times(1)

	// Stop ticker first
	ticker.Stop()

	// Call Close multiple times
	err1 := proxy.Close()
	err2 := proxy.Close()
	err3 := proxy.Close()

	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.NoError(t, err3)
}

func TestProxy_Request_Concurrent(t *testing.T) {
	mocks := setupTestProxy(t)
	defer tearDownTestProxy(mocks)

	proxy, ticker := setupProxyWithMocks(t, mocks, testRateLimiterConfig(), true)

	// Mock distributed limiter allowing all requests
	mocks.redisRateLimiter.EXPECT().
		Allow(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&redis_rate.Result{Allowed: 1}, nil).
		MinTimes(3)

	ctx := context.Background()
	done := make(chan bool, 3)

	// Execute concurrent requests
	for i := range 3 {
		go func(id int) {
			result, err := proxy.Request(ctx, domain.ProviderPlayStation, func(ctx context.Context) (interface{}, error) {
				time.Sleep(10 * time.Millisecond)
				return id, nil
			})
			assert.NoError(t, err)
			assert.NotNil(t, result)
			done <- true
		}(i)
	}

	// Wait for all requests to complete
	for range 3 {
		<-done
	}

	// Clean up
	ticker.Stop()
	mocks.redisClient.EXPECT().Close().Return(nil).AnyTimes()
	_ = proxy.Close()
}

func TestProxy_Request_MultipleProviders(t *testing.T) {
	mocks := setupTestProxy(t)
	defer tearDownTestProxy(mocks)

	proxy, ticker := setupProxyWithMocks(t, mocks, testRateLimiterConfig(), true)

	ctx := context.Background()

	mocks.redisRateLimiter.EXPECT().
		Allow(gomock.Any(), "test:limiter:ps-store", gomock.Any()).
		Return(&redis_rate.Result{Allowed: 1}, nil)

	result1, err := proxy.Request(ctx, domain.ProviderPlayStation, func(ctx context.Context) (interface{}, error) {
		return "ps-result", nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "ps-result", result1)

	mocks.redisRateLimiter.EXPECT().
		Allow(gomock.Any(), "test:limiter:steam-store", gomock.Any()).
		Return(&redis_rate.Result{Allowed: 1}, nil)

	result2, err := proxy.Request(ctx, domain.ProviderSteam, func(ctx context.Context) (interface{}, error) {
		return "steam-result", nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "steam-result", result2)

	// Clean up
	ticker.Stop()
	mocks.redisClient.EXPECT().Close().Return(nil).AnyTimes()
	_ = proxy.Close()
}

func TestProxy_Request_QueueTimeout(t *testing.T) {
	mocks := setupTestProxy(t)
	defer tearDownTestProxy(mocks)

	cfg := testRateLimiterConfig()
	cfg.MaxWorkers = 1
	cfg.Providers[string(domain.ProviderPlayStation)] = config.ProviderRateLimitConfig{
		RequestsPerSecond: 1,
		Burst:             1,
		MaxQueueTime:      50 * time.Millisecond,
	}

	proxy, ticker := setupProxyWithMocks(t, mocks, cfg, true)

	// Mock rate limiter to always return "rate limited" to force waiting
	mocks.redisRateLimiter.EXPECT().
		Allow(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&redis_rate.Result{
			Allowed:    0,
			Remaining:  0,
			RetryAfter: 1 * time.Second,
		}, nil).
		AnyTimes()

	mocks.clock.EXPECT().
		After(gomock.Any()).
		DoAndReturn(func(d time.Duration) <-chan time.Time {
			// Never send on the channel to simulate waiting
			return make(chan time.Time)
		}).
		AnyTimes()

	ctx := context.Background()
	result, err := proxy.Request(ctx, domain.ProviderPlayStation, func(ctx context.Context) (interface{}, error) {
		return "success", nil
	})

	// Should timeout due to MaxQueueTime
	assert.Error(t, err)
	assert.Nil(t, result)

	// Clean up
	ticker.Stop()
	mocks.redisClient.EXPECT().Close().Return(nil).AnyTimes()
	_ = proxy.Close()
}

func TestProxy_Close_WithRedisError(t *testing.T) {
	mocks := setupTestProxy(t)
	defer tearDownTestProxy(mocks)

	proxy, ticker := setupProxyWithMocks(t, mocks, testRateLimiterConfig(), true)

	// Mock Redis close returning an error
	mocks.redisClient.EXPECT().Close().Return(errors.New("close error"))

	// Stop ticker first
	ticker.Stop()

	err := proxy.Close()

	// Error should be returned but operation should complete
	assert.Error(t, err)
}

func TestRequest_TypedHelper(t *testing.T) {
	mocks := setupTestProxy(t)
	defer tearDownTestProxy(mocks)

	proxy, ticker := setupProxyWithMocks(t, mocks, testRateLimiterConfig(), true)

	mocks.redisRateLimiter.EXPECT().
		Allow(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&redis_rate.Result{Allowed: 1}, nil)

	ctx := context.Background()
	n, err := ratelimit.Request(ctx, proxy, domain.ProviderPlayStation, func(ctx context.Context) (int, error) {
		return 42, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 42, n)

	// Clean up
	ticker.Stop()
	mocks.redisClient.EXPECT().Close().Return(nil).AnyTimes()
	_ = proxy.Close()
}

func TestRequest_NilProxyPassthrough(t *testing.T) {
	ctx := context.Background()
	s, err := ratelimit.Request(ctx, nil, domain.ProviderIGDB, func(ctx context.Context) (string, error) {
		return "direct", nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "direct", s)
}
