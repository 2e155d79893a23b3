package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/carlosascari/opencollective-api/internal/member/domain"
	"github.com/carlosascari/opencollective-api/internal/member/repository"
	"github.com/carlosascari/opencollective-api/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Member{}))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	svc := New(ServiceParam{DB: conn, Log: zap.NewNop(), GenID: node, Repo: repository.Provide()})
	return svc, conn, node
}

func TestGrant_Idempotent(t *testing.T) {
	svc, conn, node := newTestService(t)

	userID := node.Generate()
	collectiveID := node.Generate()

	member, err := svc.Grant(context.Background(), userID, collectiveID, domain.RoleBacker)
	require.NoError(t, err)

	again, err := svc.Grant(context.Background(), userID, collectiveID, domain.RoleBacker)
	require.NoError(t, err)
	assert.Equal(t, member.ID, again.ID)

	var count int64
	require.NoError(t, conn.Model(&domain.Member{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGrant_DistinctRoles(t *testing.T) {
	svc, conn, node := newTestService(t)

	userID := node.Generate()
	collectiveID := node.Generate()

	backer, err := svc.Grant(context.Background(), userID, collectiveID, domain.RoleBacker)
	require.NoError(t, err)
	host, err := svc.Grant(context.Background(), userID, collectiveID, domain.RoleHost)
	require.NoError(t, err)
	assert.NotEqual(t, backer.ID, host.ID)

	var count int64
	require.NoError(t, conn.Model(&domain.Member{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}
