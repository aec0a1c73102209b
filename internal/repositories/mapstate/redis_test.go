package mapstate_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/serumrl/map-engine/internal/engine/world"
	"github.com/serumrl/map-engine/internal/entities"
	"github.com/serumrl/map-engine/internal/errors"
	"github.com/serumrl/map-engine/internal/repositories/mapstate"
	"github.com/serumrl/map-engine/internal/testutils"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	repo    mapstate.Repository
	cleanup func()
	ctx     context.Context
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup
	s.ctx = context.Background()

	repo, err := mapstate.NewRedisRepository(&mapstate.RedisConfig{
		Client: client,
		TTL:    time.Hour,
	})
	s.Require().NoError(err)
	s.repo = repo
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

func (s *RedisRepositoryTestSuite) TestSaveAndGet() {
	m := testutils.CreateTestMap(s.T())

	_, err := s.repo.Save(s.ctx, mapstate.SaveInput{State: m})
	s.Require().NoError(err)

	out, err := s.repo.Get(s.ctx, mapstate.GetInput{Name: testutils.TestMapName})
	s.Require().NoError(err)

	s.Equal(testutils.TestMapName, out.State.Metadata.Name)
	s.Equal(1, out.State.FloorCount())

	f, err := out.State.Floor(1)
	s.Require().NoError(err)

	clerk, ok := f.Entity("clerk_1")
	s.Require().True(ok)
	s.Equal("clerk", clerk.Civilian.Role)

	door := f.DoorAt(entities.Position{X: 3, Y: 2, Floor: 1})
	s.Require().NotNil(door)
	s.True(door.Door.Locked)
}

func (s *RedisRepositoryTestSuite) TestSavePreservesLedgerAndAlert() {
	m := testutils.CreateTestMap(s.T())

	f, _ := m.Floor(1)
	camera, _ := f.Object("camera_1")
	camera.Security.Disabled = true
	m.Ledger.MarkDeviceDisabled("camera_1")
	m.SetAlertLevel(2)

	_, err := s.repo.Save(s.ctx, mapstate.SaveInput{State: m})
	s.Require().NoError(err)

	out, err := s.repo.Get(s.ctx, mapstate.GetInput{Name: testutils.TestMapName})
	s.Require().NoError(err)

	s.Equal(2, out.State.AlertLevel)
	s.True(out.State.Ledger.DisabledDevices["camera_1"])
}

func (s *RedisRepositoryTestSuite) TestGetMissing() {
	_, err := s.repo.Get(s.ctx, mapstate.GetInput{Name: "nowhere"})
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestSaveValidation() {
	_, err := s.repo.Save(s.ctx, mapstate.SaveInput{})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.repo.Save(s.ctx, mapstate.SaveInput{
		State: world.NewMapState(entities.Metadata{}),
	})
	s.True(errors.IsInvalidArgument(err), "unnamed maps have no key")
}

func (s *RedisRepositoryTestSuite) TestListAndDelete() {
	m := testutils.CreateTestMap(s.T())
	_, err := s.repo.Save(s.ctx, mapstate.SaveInput{State: m})
	s.Require().NoError(err)

	m.Metadata.Name = "second_site"
	_, err = s.repo.Save(s.ctx, mapstate.SaveInput{State: m})
	s.Require().NoError(err)

	list, err := s.repo.List(s.ctx, mapstate.ListInput{})
	s.Require().NoError(err)
	s.Equal([]string{"second_site", testutils.TestMapName}, list.Names)

	_, err = s.repo.Delete(s.ctx, mapstate.DeleteInput{Name: "second_site"})
	s.Require().NoError(err)

	_, err = s.repo.Delete(s.ctx, mapstate.DeleteInput{Name: "second_site"})
	s.True(errors.IsNotFound(err))

	list, err = s.repo.List(s.ctx, mapstate.ListInput{})
	s.Require().NoError(err)
	s.Equal([]string{testutils.TestMapName}, list.Names)
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}
