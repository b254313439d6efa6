//go:build integration

package repository_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"kuryer-manager/internal/apperr"
	"kuryer-manager/internal/domain"
	"kuryer-manager/internal/repository"
)

type CourierRepositorySuite struct {
	suite.Suite
	pool *pgxpool.Pool
	repo *repository.CourierRepo
}

func TestCourierRepositorySuite(t *testing.T) {
	suite.Run(t, new(CourierRepositorySuite))
}

func (s *CourierRepositorySuite) SetupSuite() {
	s.pool = tcPool
	s.repo = repository.NewCourierRepo(tcPool)
}

func (s *CourierRepositorySuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(), `TRUNCATE couriers RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)
}

func (s *CourierRepositorySuite) insert(telegramID int64, region domain.RegionCode, status domain.CourierStatus) int64 {
	var id int64
	err := s.pool.QueryRow(context.Background(), `
		INSERT INTO couriers (first_name, last_name, phone, telegram_id, telegram_username, region, status)
		VALUES ('Aziz', 'Karimov', '+998901234567', $1, 'aziz', $2, $3)
		RETURNING id
	`, telegramID, region, status).Scan(&id)
	s.Require().NoError(err)
	return id
}

func (s *CourierRepositorySuite) TestGetByTelegramID() {
	ctx := context.Background()
	id := s.insert(42, domain.RegionSamarkand, domain.CourierActive)

	c, err := s.repo.GetByTelegramID(ctx, 42)
	s.Require().NoError(err)
	s.Require().NotNil(c)
	s.Equal(id, c.ID)
	s.Equal("Aziz Karimov", c.FullName())
	s.Equal(domain.RegionSamarkand, c.Region)

	missing, err := s.repo.GetByTelegramID(ctx, 999)
	s.Require().NoError(err)
	s.Nil(missing)
}

func (s *CourierRepositorySuite) TestListActiveByRegion() {
	ctx := context.Background()
	s.insert(1, domain.RegionSamarkand, domain.CourierActive)
	s.insert(2, domain.RegionSamarkand, domain.CourierActive)
	s.insert(3, domain.RegionSamarkand, domain.CourierInactive)
	s.insert(4, domain.RegionBukhara, domain.CourierActive)

	list, err := s.repo.ListActiveByRegion(ctx, domain.RegionSamarkand)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	for _, c := range list {
		s.Equal(domain.CourierActive, c.Status)
		s.Equal(domain.RegionSamarkand, c.Region)
	}
}

func (s *CourierRepositorySuite) TestUpdateStatus() {
	ctx := context.Background()
	id := s.insert(7, domain.RegionFergana, domain.CourierActive)

	s.Require().NoError(s.repo.UpdateStatus(ctx, id, domain.CourierInactive))

	c, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Equal(domain.CourierInactive, c.Status)

	err = s.repo.UpdateStatus(ctx, 9999, domain.CourierActive)
	s.Require().ErrorIs(err, apperr.NotFound)
}

func (s *CourierRepositorySuite) TestIncCounter() {
	ctx := context.Background()
	id := s.insert(8, domain.RegionFergana, domain.CourierActive)

	s.Require().NoError(s.repo.IncCounter(ctx, id, "total_orders"))
	s.Require().NoError(s.repo.IncCounter(ctx, id, "total_orders"))
	s.Require().NoError(s.repo.IncCounter(ctx, id, "completed_orders"))

	c, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Equal(2, c.TotalOrders)
	s.Equal(1, c.CompletedOrders)
	s.Equal(0, c.CancelledOrders)

	s.Require().Error(s.repo.IncCounter(ctx, id, "drop table"))
}
