package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/astrxnomo/agendaun/pkg/errors"
)

func TestCacheRepositoryWithoutClientIsMiss(t *testing.T) {
	repo := NewCacheRepository(nil, "agendaun")
	ctx := context.Background()

	var dest map[string]string
	err := repo.Get(ctx, "academic:hierarchy", &dest)
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))
	assert.NoError(t, repo.Set(ctx, "academic:hierarchy", map[string]string{"a": "b"}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "academic:*"))
	assert.NoError(t, repo.Close())
}

func TestCacheRepositoryKeyPrefix(t *testing.T) {
	assert.Equal(t, "agendaun:academic:hierarchy", NewCacheRepository(nil, "agendaun").key("academic:hierarchy"))
	assert.Equal(t, "academic:hierarchy", NewCacheRepository(nil, "").key("academic:hierarchy"))
}
