package identity_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang/mock/gomock"
	"github.com/gravepaint/gravepaint"
	"github.com/gravepaint/gravepaint/identity"
	"github.com/gravepaint/gravepaint/identity/mock_identity"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	for _, tc := range []struct {
		name   string
		id     string
		wantOK bool
	}{
		{"Zero-Value", "", false},
		{"Set", "abc123", true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			id, ok := identity.Static(tc.id).UserID(context.Background())

			// Assert
			require.Equal(t, tc.wantOK, ok)
			require.Equal(t, tc.id, id)
		})
	}
}

func TestFromContext(t *testing.T) {
	// Arrange
	src := identity.FromContext()

	// Act + Assert
	_, ok := src.UserID(context.Background())
	require.False(t, ok)

	// Act
	id, ok := src.UserID(gravepaint.NewIdentityContext(context.Background(), "42"))

	// Assert
	require.True(t, ok)
	require.Equal(t, "42", id)
}

func TestFirst(t *testing.T) {
	// Arrange
	ctrl := gomock.NewController(t)
	skipped := mock_identity.NewMockSource(ctrl)
	skipped.EXPECT().UserID(gomock.Any()).Return("", false)
	never := mock_identity.NewMockSource(ctrl)

	src := identity.First(nil, skipped, identity.Static("abc123"), never)

	// Act
	id, ok := src.UserID(context.Background())

	// Assert
	require.True(t, ok)
	require.Equal(t, "abc123", id)

	// Act + Assert
	_, ok = identity.First().UserID(context.Background())
	require.False(t, ok)
}

func TestStore(t *testing.T) {
	// Arrange
	s := new(identity.Store)

	// Act + Assert
	_, ok := s.UserID(context.Background())
	require.False(t, ok)

	// Act
	s.Set("abc123")
	id, ok := s.UserID(context.Background())

	// Assert
	require.True(t, ok)
	require.Equal(t, "abc123", id)

	// Act
	s.Clear()
	_, ok = s.UserID(context.Background())

	// Assert
	require.False(t, ok)
}

func TestStoreConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	s := new(identity.Store)
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Set("abc123")
		}()
		go func() {
			defer wg.Done()
			require.NotPanics(t, func() { s.UserID(context.Background()) })
		}()
	}

	wg.Wait()
}

func TestNewRedisStore(t *testing.T) {
	// Act
	s, err := identity.NewRedisStore(nil, "device")

	// Assert
	require.ErrorIs(t, err, gravepaint.ErrBadConfig)
	require.Nil(t, s)
}

func TestRedisStoreUnreachable(t *testing.T) {
	// Arrange
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })

	s, err := identity.NewRedisStore(client, "device")
	require.Nil(t, err)

	// Act
	id, ok := s.UserID(context.Background())

	// Assert
	require.False(t, ok)
	require.Zero(t, id)
	require.NotNil(t, s.Set(context.Background(), "abc123"))
}
