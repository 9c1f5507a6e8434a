package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	token, err := GenerateJWT(42, "Jane Doe", "Receiver", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "Jane Doe", claims.Name)
	assert.Equal(t, "Receiver", claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestParseJWTRejectsWrongSecretAndExpired(t *testing.T) {
	token, err := GenerateJWT(1, "a b", "Producer", "secret", time.Hour)
	require.NoError(t, err)
	_, err = ParseJWT(token, "other")
	assert.Error(t, err)

	expired, err := GenerateJWT(1, "a b", "Producer", "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, "secret")
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("12345678")
	require.NoError(t, err)
	assert.NotEqual(t, "12345678", hash)
	assert.True(t, VerifyPassword(hash, "12345678"))
	assert.False(t, VerifyPassword(hash, "wrong-password"))
}

func TestBytesToUSD(t *testing.T) {
	assert.Equal(t, 20.0, BytesToUSD(1_000_000_000, 20))
	assert.Equal(t, 0.5, BytesToUSD(25_000_000, 20))
	assert.Equal(t, 0.0, BytesToUSD(0, 20))
}

func TestCache(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	ctx := context.Background()

	var got []string
	found, err := GetCache(ctx, rdb, "countries", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetCache(ctx, rdb, "countries", []string{"DK", "SE"}, time.Minute))
	found, err = GetCache(ctx, rdb, "countries", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"DK", "SE"}, got)

	require.NoError(t, SetCache(ctx, rdb, "cities:DK", []string{"Aarhus"}, time.Minute))
	require.NoError(t, DeleteCachePrefix(ctx, rdb, "cities:"))
	assert.False(t, s.Exists("cities:DK"))

	require.NoError(t, DeleteCache(ctx, rdb, "countries"))
	assert.False(t, s.Exists("countries"))
}

func TestCacheNilClient(t *testing.T) {
	ctx := context.Background()
	var got string
	found, err := GetCache(ctx, nil, "k", &got)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, SetCache(ctx, nil, "k", "v", time.Minute))
	assert.NoError(t, DeleteCache(ctx, nil, "k"))
	assert.NoError(t, DeleteCachePrefix(ctx, nil, "k"))
}
