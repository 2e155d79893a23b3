package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/carlosascari/opencollective-api/internal/user/domain"
	"github.com/carlosascari/opencollective-api/internal/user/repository"
	"github.com/carlosascari/opencollective-api/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.User{}))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return New(ServiceParam{DB: conn, Log: zap.NewNop(), GenID: node, Repo: repository.Provide()})
}

func TestFindOrCreateByEmail(t *testing.T) {
	svc := newTestService(t)

	user, created, err := svc.FindOrCreateByEmail(context.Background(), "Donor@Example.com", "Dana")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "donor@example.com", user.Email)
	assert.Equal(t, "Dana", user.Name)
	assert.False(t, user.HasFullAccount)

	again, created, err := svc.FindOrCreateByEmail(context.Background(), "donor@example.com", "ignored")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, "Dana", again.Name)
}

func TestFindOrCreateByEmail_Invalid(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.FindOrCreateByEmail(context.Background(), "", "Dana")
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, _, err = svc.FindOrCreateByEmail(context.Background(), "not-an-email", "Dana")
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}
