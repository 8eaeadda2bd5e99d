package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/suite"

	"idcard/internal/citizen/models"
	"idcard/pkg/platform/sentinel"
	txcontext "idcard/pkg/platform/tx"
	"idcard/pkg/testutil"
)

var citizenRowColumns = []string{
	"id", "citizen_id", "business_key",
	"first_name", "middle_name", "last_name", "first_name_am", "middle_name_am", "last_name_am",
	"date_of_birth", "gender", "gender_am", "nationality", "nationality_am", "phone",
	"region", "region_am", "zone", "zone_am", "woreda", "woreda_am", "kebele", "kebele_am",
	"photo_ref", "fingerprint_ref", "signature_ref",
	"status", "print_status", "given_date", "expire_date", "registered_by", "version", "created_at", "updated_at",
}

type PostgresStoreSuite struct {
	suite.Suite
	db    *sql.DB
	mock  sqlmock.Sqlmock
	store *PostgresStore
	ctx   context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupTest() {
	db, mock, err := sqlmock.New()
	s.Require().NoError(err)
	s.db = db
	s.mock = mock
	s.store = NewPostgres(db)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.db.Close()
}

func (s *PostgresStoreSuite) citizenRow(c *models.Citizen) *sqlmock.Rows {
	p := c.Profile
	return sqlmock.NewRows(citizenRowColumns).AddRow(
		c.ID.String(), c.CitizenID, c.BusinessKey,
		p.Name.First, p.Name.Middle, p.Name.Last, p.Name.FirstAm, p.Name.MiddleAm, p.Name.LastAm,
		p.DateOfBirth, p.Gender, p.GenderAm, p.Nationality, p.NationalityAm, p.Phone,
		p.Address.Region, p.Address.RegionAm, p.Address.Zone, p.Address.ZoneAm,
		p.Address.Woreda, p.Address.WoredaAm, p.Address.Kebele, p.Address.KebeleAm,
		c.Biometrics.Photo, c.Biometrics.Fingerprint, c.Biometrics.Signature,
		string(c.Status), string(c.PrintStatus), nil, nil, c.RegisteredBy, c.Version, c.CreatedAt, c.UpdatedAt,
	)
}

func (s *PostgresStoreSuite) TestCreateInsertsRecordAndHistory() {
	c := testutil.NewTestCitizen(models.StatusWaiting)

	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM retired_citizen_ids")).
		WithArgs(c.CitizenID, c.BusinessKey).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	s.mock.ExpectExec("INSERT INTO citizens").
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectExec("INSERT INTO citizen_status_history").
		WithArgs(uuid.UUID(c.ID), 1, "waiting", models.InitialChangedBy, c.StatusHistory[0].Timestamp).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.Require().NoError(s.store.Create(s.ctx, c))
}

func (s *PostgresStoreSuite) TestCreateMapsUniqueViolation() {
	c := testutil.NewTestCitizen(models.StatusWaiting)

	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	s.mock.ExpectExec("INSERT INTO citizens").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "citizens_citizen_id_upper_key"})

	err := s.store.Create(s.ctx, c)
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)
}

func (s *PostgresStoreSuite) TestCreateRejectsRetiredIdentifier() {
	c := testutil.NewTestCitizen(models.StatusWaiting)

	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err := s.store.Create(s.ctx, c)
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)
}

func (s *PostgresStoreSuite) TestFindByIDLoadsHistory() {
	c := testutil.NewTestCitizen(models.StatusPending)

	s.mock.ExpectQuery("SELECT .+ FROM citizens WHERE id = \\$1").
		WithArgs(uuid.UUID(c.ID)).
		WillReturnRows(s.citizenRow(c))
	history := sqlmock.NewRows([]string{"status", "changed_by", "changed_at"})
	for _, h := range c.StatusHistory {
		history.AddRow(string(h.Status), h.ChangedBy, h.Timestamp)
	}
	s.mock.ExpectQuery("FROM citizen_status_history").
		WithArgs(uuid.UUID(c.ID)).
		WillReturnRows(history)

	got, err := s.store.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.ID, got.ID)
	s.Equal(models.StatusPending, got.Status)
	s.Equal(c.StatusHistory, got.StatusHistory)
	s.Nil(got.GivenDate)
}

func (s *PostgresStoreSuite) TestFindByIDNotFound() {
	c := testutil.NewTestCitizen(models.StatusWaiting)

	s.mock.ExpectQuery("FROM citizens WHERE id").
		WillReturnRows(sqlmock.NewRows(citizenRowColumns))

	_, err := s.store.FindByID(s.ctx, c.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpdateAdvancesVersion() {
	c := testutil.NewTestCitizen(models.StatusWaiting)

	s.mock.ExpectQuery(regexp.QuoteMeta("UPDATE citizens SET")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int64(2)))

	s.Require().NoError(s.store.Update(s.ctx, c))
	s.Equal(int64(2), c.Version)
}

func (s *PostgresStoreSuite) TestUpdateClassifiesMisses() {
	probeColumns := []string{"citizen_id", "version"}
	cases := []struct {
		name     string
		probe    func(c *models.Citizen) *sqlmock.Rows
		expected error
	}{
		{"stale version", func(c *models.Citizen) *sqlmock.Rows {
			return sqlmock.NewRows(probeColumns).AddRow(c.CitizenID, int64(7))
		}, sentinel.ErrConflict},
		{"citizen_id changed", func(*models.Citizen) *sqlmock.Rows {
			return sqlmock.NewRows(probeColumns).AddRow("ET-000001", int64(1))
		}, sentinel.ErrInvalidState},
		{"record gone", func(*models.Citizen) *sqlmock.Rows {
			return sqlmock.NewRows(probeColumns)
		}, sentinel.ErrNotFound},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			c := testutil.NewTestCitizen(models.StatusWaiting)
			s.mock.ExpectQuery(regexp.QuoteMeta("UPDATE citizens SET")).
				WillReturnRows(sqlmock.NewRows([]string{"version"}))
			s.mock.ExpectQuery(regexp.QuoteMeta("SELECT citizen_id, version FROM citizens")).
				WithArgs(uuid.UUID(c.ID)).
				WillReturnRows(tc.probe(c))

			err := s.store.Update(s.ctx, c)
			s.ErrorIs(err, tc.expected)
		})
	}
}

func (s *PostgresStoreSuite) TestAppendHistory() {
	c := testutil.NewTestCitizen(models.StatusWaiting)
	entry := models.HistoryEntry{Status: models.StatusPending, ChangedBy: "reg-1", Timestamp: time.Now()}

	s.Run("appends after the last sequence", func() {
		s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO citizen_status_history")).
			WithArgs(uuid.UUID(c.ID), "pending", "reg-1", entry.Timestamp).
			WillReturnResult(sqlmock.NewResult(0, 1))
		s.NoError(s.store.AppendHistory(s.ctx, c.ID, entry))
	})

	s.Run("missing record", func() {
		s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO citizen_status_history")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		s.ErrorIs(s.store.AppendHistory(s.ctx, c.ID, entry), sentinel.ErrNotFound)
	})
}

func (s *PostgresStoreSuite) TestUpdateWithHistoryCommitsTogether() {
	entry := models.HistoryEntry{Status: models.StatusApproved, ChangedBy: "sup-1", Timestamp: time.Now()}

	s.Run("both writes in one transaction", func() {
		c := testutil.NewTestCitizen(models.StatusPending)
		s.mock.ExpectBegin()
		s.mock.ExpectQuery(regexp.QuoteMeta("UPDATE citizens SET")).
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int64(2)))
		s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO citizen_status_history")).
			WithArgs(uuid.UUID(c.ID), "approved", "sup-1", entry.Timestamp).
			WillReturnResult(sqlmock.NewResult(0, 1))
		s.mock.ExpectCommit()

		s.Require().NoError(s.store.UpdateWithHistory(s.ctx, c, entry))
		s.Equal(int64(2), c.Version)
	})

	s.Run("failed history insert rolls the update back", func() {
		c := testutil.NewTestCitizen(models.StatusPending)
		s.mock.ExpectBegin()
		s.mock.ExpectQuery(regexp.QuoteMeta("UPDATE citizens SET")).
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int64(2)))
		s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO citizen_status_history")).
			WillReturnError(errors.New("disk full"))
		s.mock.ExpectRollback()

		s.Error(s.store.UpdateWithHistory(s.ctx, c, entry))
		s.Equal(int64(1), c.Version)
	})

	s.Run("joins the caller's transaction", func() {
		c := testutil.NewTestCitizen(models.StatusPending)
		s.mock.ExpectBegin()
		s.mock.ExpectQuery(regexp.QuoteMeta("UPDATE citizens SET")).
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int64(2)))
		s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO citizen_status_history")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		s.mock.ExpectCommit()

		err := NewPostgresTx(s.db, 0).RunInTx(s.ctx, func(ctx context.Context) error {
			return s.store.UpdateWithHistory(ctx, c, entry)
		})
		s.Require().NoError(err)
	})
}

func (s *PostgresStoreSuite) TestDeleteRetiresIdentifiers() {
	c := testutil.NewCitizenBuilder().WithCitizenID("et-424242").Build()

	s.mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM citizens WHERE id = $1 RETURNING citizen_id, business_key")).
		WithArgs(uuid.UUID(c.ID)).
		WillReturnRows(sqlmock.NewRows([]string{"citizen_id", "business_key"}).AddRow(c.CitizenID, c.BusinessKey))
	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO retired_citizen_ids")).
		WithArgs("ET-424242", "424242").
		WillReturnResult(sqlmock.NewResult(0, 2))

	s.Require().NoError(s.store.Delete(s.ctx, c.ID))
}

func (s *PostgresStoreSuite) TestDeleteMissing() {
	c := testutil.NewTestCitizen(models.StatusWaiting)
	s.mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM citizens")).
		WillReturnRows(sqlmock.NewRows([]string{"citizen_id", "business_key"}))

	s.ErrorIs(s.store.Delete(s.ctx, c.ID), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestCountByStatusZeroDefaults() {
	s.mock.ExpectQuery(regexp.QuoteMeta("GROUP BY status, print_status")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "print_status", "count"}).
			AddRow("approved", "printed", 3).
			AddRow("approved", "unprinted", 2).
			AddRow("waiting", "unprinted", 4))

	counts, err := s.store.CountByStatus(s.ctx)
	s.Require().NoError(err)
	s.Equal(9, counts.Total)
	s.Equal(5, counts.Status[models.StatusApproved])
	s.Equal(0, counts.Status[models.StatusRejected])
	s.Equal(6, counts.PrintStatus[models.PrintStatusUnprinted])
	s.Contains(counts.PrintStatus, models.PrintStatusFailed)
}

func (s *PostgresStoreSuite) TestStatementsJoinContextTransaction() {
	runner := NewPostgresTx(s.db, 0)
	c := testutil.NewTestCitizen(models.StatusWaiting)

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO citizen_status_history")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	err := runner.RunInTx(s.ctx, func(ctx context.Context) error {
		_, ok := txcontext.From(ctx)
		s.True(ok)
		return s.store.AppendHistory(ctx, c.ID, c.StatusHistory[0])
	})
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestTransactionRollsBackOnError() {
	runner := NewPostgresTx(s.db, time.Second)
	boom := errors.New("boom")

	s.mock.ExpectBegin()
	s.mock.ExpectRollback()

	err := runner.RunInTx(s.ctx, func(context.Context) error { return boom })
	s.ErrorIs(err, boom)
}
