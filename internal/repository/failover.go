package repository

import (
	"context"
	"sync/atomic"
	"time"

	"drivedesk/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverKV serves from the primary store and drops to the fallback after a
// primary failure. Recovery is probed at most once a minute.
type FailoverKV struct {
	primary   domain.KV
	fallback  domain.KV
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverKV(primary, fallback domain.KV, logger *zerolog.Logger) *FailoverKV {
	return &FailoverKV{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (f *FailoverKV) Get(ctx context.Context, key string) (string, bool, error) {
	if !f.isDown.Load() {
		val, ok, err := f.primary.Get(ctx, key)
		if err == nil {
			return val, ok, nil
		}
		f.logger.Error().Err(err).Str("key", key).Msg("Primary store failed, falling back to memory")
		f.isDown.Store(true)
		f.lastCheck = time.Now()
	}

	// Try to recover after 1 minute
	if f.isDown.Load() && time.Since(f.lastCheck) > time.Minute {
		val, ok, err := f.primary.Get(ctx, key)
		if err == nil {
			f.isDown.Store(false)
			return val, ok, nil
		}
		f.lastCheck = time.Now()
	}

	return f.fallback.Get(ctx, key)
}

func (f *FailoverKV) Set(ctx context.Context, key, value string) error {
	if !f.isDown.Load() {
		err := f.primary.Set(ctx, key, value)
		if err == nil {
			return nil
		}
		f.logger.Error().Err(err).Str("key", key).Msg("Primary store failed, falling back to memory")
		f.isDown.Store(true)
		f.lastCheck = time.Now()
	}

	return f.fallback.Set(ctx, key, value)
}

func (f *FailoverKV) Delete(ctx context.Context, key string) error {
	if !f.isDown.Load() {
		err := f.primary.Delete(ctx, key)
		if err == nil {
			return nil
		}
		f.logger.Error().Err(err).Str("key", key).Msg("Primary store failed, falling back to memory")
		f.isDown.Store(true)
		f.lastCheck = time.Now()
	}

	return f.fallback.Delete(ctx, key)
}
