package service

import (
	"context"
	"testing"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"
	"github.com/CaptainYami1/Flowvahub-Test/internal/repository/memory"

	"github.com/stretchr/testify/assert"
)

func TestRewardConfigProvider_FetchesOnce(t *testing.T) {
	src := &memory.RewardConfigRepository{}
	src.Set(domain.RewardConfig{DailyReward: 9})
	p := NewRewardConfigProvider(src, testRewards)

	assert.Equal(t, int64(9), p.Get(context.Background()).DailyReward)
	src.Set(domain.RewardConfig{DailyReward: 1})
	assert.Equal(t, int64(9), p.Get(context.Background()).DailyReward)
	assert.Equal(t, 1, src.Calls())
}

func TestRewardConfigProvider_FallsBackWhenEmpty(t *testing.T) {
	src := &memory.RewardConfigRepository{}
	p := NewRewardConfigProvider(src, testRewards)

	assert.Equal(t, testRewards, p.Get(context.Background()))
	assert.Equal(t, testRewards, p.Get(context.Background()))
	assert.Equal(t, 1, src.Calls())
}

func TestJWTRoundTrip(t *testing.T) {
	InitJWT("test-secret")

	token, err := GenerateJWT(alice, 0)
	assert.NoError(t, err)

	got, err := ParseJWT(token)
	assert.NoError(t, err)
	assert.Equal(t, alice, got)

	_, err = ParseJWT(token + "x")
	assert.Error(t, err)
}
