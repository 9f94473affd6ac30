package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonErrors "github.com/johnny-stegall/Digital-Assistant/internal/common/errors"
)

func TestRedisStore_GetFailure(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, time.Hour)

	mock.ExpectGet(redisKeyPrefix + conv).SetErr(errors.New("connection refused"))

	_, err := store.Get(context.Background(), conv)
	require.Error(t, err)
	assert.True(t, commonErrors.IsCode(err, commonErrors.ErrCodeProviderFailure))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_CorruptSession(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, time.Hour)

	mock.ExpectGet(redisKeyPrefix + conv).SetVal("{not json")

	_, err := store.Get(context.Background(), conv)
	require.Error(t, err)
	assert.True(t, commonErrors.IsCode(err, commonErrors.ErrCodeProviderFailure))
}
