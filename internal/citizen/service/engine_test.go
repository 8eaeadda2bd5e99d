package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	citizenmetrics "idcard/internal/citizen/metrics"
	"idcard/internal/citizen/models"
	"idcard/internal/citizen/policy"
	"idcard/internal/citizen/store"
	id "idcard/pkg/domain"
	dErrors "idcard/pkg/domain-errors"
	"idcard/pkg/platform/outbox"
	"idcard/pkg/requestcontext"
	testfixtures "idcard/pkg/testutil"
)

// EngineSuite drives the service against the in-memory store, the sharded
// transaction runner and the real policy table.
type EngineSuite struct {
	suite.Suite
	store   *store.InMemoryStore
	events  *outbox.InMemoryStore
	cache   *store.InMemoryStatsCache
	metrics *citizenmetrics.Metrics
	svc     *Service
	ctx     context.Context
	now     time.Time
	actors  struct{ admin, registrar, supervisor, officer, citizen id.Actor }
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.events = outbox.NewInMemoryStore()
	s.cache = store.NewInMemoryStatsCache(time.Minute)
	s.metrics = citizenmetrics.NewWith(prometheus.NewRegistry())
	s.svc = New(s.store, policy.NewGate(),
		WithTx(store.NewShardedTx(nil)),
		WithEvents(s.events),
		WithStatsCache(s.cache),
		WithMetrics(s.metrics),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.now = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)

	a := testfixtures.TestActors
	s.actors.admin, s.actors.registrar, s.actors.supervisor = a.Admin, a.Registrar, a.Supervisor
	s.actors.officer, s.actors.citizen = a.Officer, a.Citizen
}

func (s *EngineSuite) seed(status models.Status) *models.Citizen {
	c := testfixtures.NewTestCitizen(status)
	s.Require().NoError(s.store.Create(context.Background(), c))
	return c
}

func (s *EngineSuite) seedApproved(p models.PrintStatus) *models.Citizen {
	c := testfixtures.NewCitizenBuilder().WithStatus(models.StatusApproved).WithPrintStatus(p).Build()
	s.Require().NoError(s.store.Create(context.Background(), c))
	return c
}

func (s *EngineSuite) reload(c *models.Citizen) *models.Citizen {
	got, err := s.store.FindByID(context.Background(), c.ID)
	s.Require().NoError(err)
	return got
}

func (s *EngineSuite) createCommand(citizenID string) CreateCommand {
	return CreateCommand{
		CitizenID: citizenID,
		Profile: models.Profile{
			Name:   models.PersonName{First: "Tigist", Last: "Haile"},
			Gender: "female",
		},
		Biometrics: models.Biometrics{Photo: "p.jpg", Fingerprint: "f.wsq", Signature: "s.png"},
	}
}

func (s *EngineSuite) assertHistoryMatchesStatus(c *models.Citizen) {
	s.Require().NotEmpty(c.StatusHistory)
	last, _ := c.LastHistory()
	s.Equal(c.Status, last.Status)
}

func (s *EngineSuite) TestCreateSeedsHistoryAndExpiry() {
	given := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cmd := s.createCommand("ET-300001")
	cmd.GivenDate = &given

	c, err := s.svc.Create(s.ctx, s.actors.registrar, cmd)
	s.Require().NoError(err)

	s.Equal(models.StatusWaiting, c.Status)
	s.Equal(models.PrintStatusUnprinted, c.PrintStatus)
	s.Require().Len(c.StatusHistory, 1)
	s.Equal(models.InitialChangedBy, c.StatusHistory[0].ChangedBy)
	s.Equal(s.actors.registrar.Identity(), c.RegisteredBy)
	s.Require().NotNil(c.ExpireDate)
	s.Equal(time.Date(2029, 1, 1, 0, 0, 0, 0, time.UTC), *c.ExpireDate)

	entries := s.events.Entries()
	s.Require().Len(entries, 1)
	s.Equal(models.EventCitizenRegistered, entries[0].EventType)
}

func (s *EngineSuite) TestCreateRejectsDuplicatesAcrossFormatting() {
	_, err := s.svc.Create(s.ctx, s.actors.registrar, s.createCommand("ET-300002"))
	s.Require().NoError(err)

	_, err = s.svc.Create(s.ctx, s.actors.registrar, s.createCommand("300002"))
	s.True(dErrors.HasCode(err, dErrors.CodeDuplicateKey), "got %v", err)
}

func (s *EngineSuite) TestCreateRequiresBiometricsAndCapability() {
	cmd := s.createCommand("ET-300003")
	cmd.Biometrics.Signature = ""
	_, err := s.svc.Create(s.ctx, s.actors.registrar, cmd)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = s.svc.Create(s.ctx, s.actors.supervisor, s.createCommand("ET-300004"))
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	_, err = s.svc.Create(s.ctx, s.actors.registrar, s.createCommand("ET-"))
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

// waiting -> send -> reject -> edit walks the history to four entries.
func (s *EngineSuite) TestRejectedRecordReturnsToWaitingOnEdit() {
	c, err := s.svc.Create(s.ctx, s.actors.registrar, s.createCommand("ET-300005"))
	s.Require().NoError(err)

	c, err = s.svc.TransitionStatus(s.ctx, s.actors.registrar, c.ID, models.StatusPending)
	s.Require().NoError(err)
	s.Len(s.reload(c).StatusHistory, 2)

	c, err = s.svc.TransitionStatus(s.ctx, s.actors.supervisor, c.ID, models.StatusRejected)
	s.Require().NoError(err)
	s.Len(s.reload(c).StatusHistory, 3)

	phone := "+251922000000"
	c, err = s.svc.Update(s.ctx, s.actors.registrar, c.ID, models.Patch{Profile: models.ProfilePatch{Phone: &phone}})
	s.Require().NoError(err)

	stored := s.reload(c)
	s.Equal(models.StatusWaiting, stored.Status)
	s.Equal(phone, stored.Profile.Phone)
	s.Require().Len(stored.StatusHistory, 4)
	s.assertHistoryMatchesStatus(stored)
	s.Equal(s.actors.registrar.Identity(), stored.StatusHistory[3].ChangedBy)
}

func (s *EngineSuite) TestApproveRequiresPending() {
	for _, status := range []models.Status{models.StatusWaiting, models.StatusApproved, models.StatusRejected} {
		c := s.seed(status)
		_, err := s.svc.TransitionStatus(s.ctx, s.actors.supervisor, c.ID, models.StatusApproved)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition), "from %s: %v", status, err)
		s.Equal(len(c.StatusHistory), len(s.reload(c).StatusHistory))
	}

	c := s.seed(models.StatusPending)
	got, err := s.svc.TransitionStatus(s.ctx, s.actors.supervisor, c.ID, models.StatusApproved)
	s.Require().NoError(err)
	s.assertHistoryMatchesStatus(s.reload(got))
}

func (s *EngineSuite) TestWaitingOnlyReachableFromRejected() {
	for _, status := range []models.Status{models.StatusWaiting, models.StatusPending, models.StatusApproved} {
		c := s.seed(status)
		_, err := s.svc.TransitionStatus(s.ctx, s.actors.registrar, c.ID, models.StatusWaiting)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition), "from %s", status)
	}
	c := s.seed(models.StatusRejected)
	_, err := s.svc.TransitionStatus(s.ctx, s.actors.registrar, c.ID, models.StatusWaiting)
	s.NoError(err)
}

func (s *EngineSuite) TestTransitionErrors() {
	_, err := s.svc.TransitionStatus(s.ctx, s.actors.supervisor, id.NewCitizenID(), models.StatusApproved)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.svc.TransitionStatus(s.ctx, s.actors.supervisor, id.NewCitizenID(), "archived")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	c := s.seed(models.StatusPending)
	_, err = s.svc.TransitionStatus(s.ctx, s.actors.officer, c.ID, models.StatusApproved)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	_, err = s.svc.TransitionStatus(s.ctx, id.Actor{}, c.ID, models.StatusApproved)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *EngineSuite) TestExpectedVersionRejectsStaleWriter() {
	c := s.seed(models.StatusPending)
	_, err := s.svc.TransitionStatus(s.ctx, s.actors.supervisor, c.ID, models.StatusApproved, WithExpectedVersion(c.Version+1))
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	_, err = s.svc.TransitionStatus(s.ctx, s.actors.supervisor, c.ID, models.StatusApproved, WithExpectedVersion(c.Version))
	s.NoError(err)
}

// Concurrent approve/reject on one record: exactly one wins and history grows by one.
func (s *EngineSuite) TestConcurrentDecisionsOnSameRecord() {
	c := s.seed(models.StatusPending)
	before := len(c.StatusHistory)

	result := testfixtures.RunConcurrent(8, func(i int) error {
		target := models.StatusApproved
		if i%2 == 1 {
			target = models.StatusRejected
		}
		_, err := s.svc.TransitionStatus(s.ctx, s.actors.supervisor, c.ID, target)
		return err
	})

	s.Equal(int32(1), result.Successes)
	s.Equal(int32(7), result.Rejected)
	stored := s.reload(c)
	s.Len(stored.StatusHistory, before+1)
	s.assertHistoryMatchesStatus(stored)
}

// Status and its history entry land together on both the decision path and
// the resubmit-on-edit path, so concurrent readers never see one without the other.
func (s *EngineSuite) TestReadersNeverSeeStatusWithoutHistory() {
	const records = 400
	seeded := make([]*models.Citizen, records)
	for i := range seeded {
		if i%2 == 0 {
			seeded[i] = s.seed(models.StatusPending)
		} else {
			seeded[i] = s.seed(models.StatusRejected)
		}
	}

	var (
		done       atomic.Bool
		mismatches atomic.Int32
		readers    sync.WaitGroup
	)
	for r := range 4 {
		readers.Go(func() {
			for i := r; !done.Load(); i = (i + 1) % records {
				got, err := s.store.FindByID(context.Background(), seeded[i].ID)
				if err != nil {
					continue
				}
				if last, ok := got.LastHistory(); !ok || last.Status != got.Status {
					mismatches.Add(1)
				}
			}
		})
	}

	phone := "+251911000000"
	result := testfixtures.RunConcurrent(records, func(i int) error {
		if i%2 == 0 {
			_, err := s.svc.TransitionStatus(s.ctx, s.actors.supervisor, seeded[i].ID, models.StatusApproved)
			return err
		}
		_, err := s.svc.Update(s.ctx, s.actors.registrar, seeded[i].ID, models.Patch{Profile: models.ProfilePatch{Phone: &phone}})
		return err
	})
	done.Store(true)
	readers.Wait()

	s.Equal(int32(records), result.Successes)
	s.Zero(mismatches.Load())
	for _, c := range seeded {
		s.assertHistoryMatchesStatus(s.reload(c))
	}
}

func (s *EngineSuite) TestBulkTransitionKeepsPartialSuccess() {
	pending1 := s.seed(models.StatusPending)
	waiting := s.seed(models.StatusWaiting)
	pending2 := s.seed(models.StatusPending)
	missing := id.NewCitizenID()

	ids := []string{pending1.ID.String(), waiting.ID.String(), "not-a-uuid", missing.String(), pending2.ID.String()}
	result, err := s.svc.BulkTransition(s.ctx, s.actors.supervisor, ids, models.StatusApproved)
	s.Require().NoError(err)

	s.Require().Len(result.Items, len(ids))
	for i, it := range result.Items {
		s.Equal(ids[i], it.ID)
	}
	s.True(result.Items[0].Success)
	s.True(dErrors.HasCode(result.Items[1].Err, dErrors.CodeInvalidTransition))
	s.True(dErrors.HasCode(result.Items[2].Err, dErrors.CodeInvalidInput))
	s.True(dErrors.HasCode(result.Items[3].Err, dErrors.CodeNotFound))
	s.True(result.Items[4].Success)
	s.False(result.AllSucceeded())
	s.Equal(2, result.Succeeded)
	s.Equal(3, result.Failed)

	s.Equal(models.StatusApproved, s.reload(pending1).Status)
	s.Equal(models.StatusApproved, s.reload(pending2).Status)
	s.Equal(models.StatusWaiting, s.reload(waiting).Status)
	s.Contains(result.Summary("approved"), "2 of 5 approved, 3 failed")
}

func (s *EngineSuite) TestBulkTransitionRejectsOversizedBatch() {
	svc := New(s.store, policy.NewGate(), WithMaxBatch(2))
	_, err := svc.BulkTransition(s.ctx, s.actors.supervisor, []string{"a", "b", "c"}, models.StatusApproved)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = svc.BulkTransition(s.ctx, s.actors.supervisor, nil, models.StatusApproved)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *EngineSuite) TestSendForProcessingSkipsNonWaiting() {
	w1 := s.seed(models.StatusWaiting)
	approved := s.seed(models.StatusApproved)
	w2 := s.seed(models.StatusWaiting)
	unknown := id.NewCitizenID()

	result, err := s.svc.SendForProcessing(s.ctx, s.actors.registrar,
		[]string{w1.ID.String(), approved.ID.String(), unknown.String(), w2.ID.String()})
	s.Require().NoError(err)

	s.True(result.AllSucceeded())
	s.Equal(2, result.Succeeded)
	s.Equal(2, result.Skipped)
	s.True(result.Items[1].Skipped)
	s.True(result.Items[2].Skipped)

	s.Equal(models.StatusPending, s.reload(w1).Status)
	s.Equal(models.StatusPending, s.reload(w2).Status)
	untouched := s.reload(approved)
	s.Equal(models.StatusApproved, untouched.Status)
	s.Equal(approved.Version, untouched.Version)
}

func (s *EngineSuite) TestBulkPrintMalformedIDCommitsNothing() {
	a := s.seedApproved(models.PrintStatusUnprinted)
	b := s.seedApproved(models.PrintStatusUnprinted)

	_, err := s.svc.BulkPrintStatusUpdate(s.ctx, s.actors.officer,
		[]string{a.ID.String(), "garbage", b.ID.String()}, models.PrintStatusPrinted)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	s.Equal(models.PrintStatusUnprinted, s.reload(a).PrintStatus)
	s.Equal(models.PrintStatusUnprinted, s.reload(b).PrintStatus)
	s.Empty(s.events.Entries())
}

func (s *EngineSuite) TestBulkPrintReportsPerRecordFailures() {
	a := s.seedApproved(models.PrintStatusUnprinted)
	pending := s.seed(models.StatusPending)
	missing := id.NewCitizenID()

	result, err := s.svc.BulkPrintStatusUpdate(s.ctx, s.actors.officer,
		[]string{a.ID.String(), pending.ID.String(), missing.String()}, models.PrintStatusPrinted)
	s.Require().NoError(err)

	s.True(result.Items[0].Success)
	s.True(dErrors.HasCode(result.Items[1].Err, dErrors.CodeInvalidTransition))
	s.True(dErrors.HasCode(result.Items[2].Err, dErrors.CodeNotFound))
	s.Equal(models.PrintStatusPrinted, s.reload(a).PrintStatus)
	s.Equal(models.PrintStatusUnprinted, s.reload(pending).PrintStatus)
}

func (s *EngineSuite) TestPrintLifecycleLeavesHistoryAlone() {
	c := s.seedApproved(models.PrintStatusUnprinted)
	historyLen := len(c.StatusHistory)

	_, err := s.svc.MarkFailed(s.ctx, s.actors.officer, c.ID)
	s.Require().NoError(err)
	_, err = s.svc.MarkPrinted(s.ctx, s.actors.officer, c.ID)
	s.Require().NoError(err)
	got, err := s.svc.MarkDelivered(s.ctx, s.actors.officer, c.ID)
	s.Require().NoError(err)
	s.Equal(models.PrintStatusDelivered, got.PrintStatus)

	// reprint from delivered
	_, err = s.svc.MarkPrinted(s.ctx, s.actors.officer, c.ID)
	s.Require().NoError(err)

	stored := s.reload(c)
	s.Equal(models.PrintStatusPrinted, stored.PrintStatus)
	s.Len(stored.StatusHistory, historyLen)

	entries := s.events.Entries()
	s.Require().NotEmpty(entries)
	var last models.CitizenPrintStatusChanged
	s.Require().NoError(json.Unmarshal(entries[len(entries)-1].Payload, &last))
	s.True(last.Reprint)
	s.Equal(models.PrintStatusDelivered, last.From)
}

func (s *EngineSuite) TestPrintRequiresApproval() {
	c := s.seed(models.StatusPending)
	_, err := s.svc.MarkPrinted(s.ctx, s.actors.officer, c.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

	delivered := s.seedApproved(models.PrintStatusUnprinted)
	_, err = s.svc.MarkDelivered(s.ctx, s.actors.officer, delivered.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

	_, err = s.svc.MarkPrinted(s.ctx, s.actors.registrar, delivered.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *EngineSuite) TestUpdateRules() {
	approved := s.seed(models.StatusApproved)
	phone := "+251933000000"
	_, err := s.svc.Update(s.ctx, s.actors.registrar, approved.ID, models.Patch{Profile: models.ProfilePatch{Phone: &phone}})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

	waiting := s.seed(models.StatusWaiting)
	_, err = s.svc.Update(s.ctx, s.actors.registrar, waiting.ID, models.Patch{})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	blank := ""
	_, err = s.svc.Update(s.ctx, s.actors.registrar, waiting.ID, models.Patch{Biometrics: models.BiometricsPatch{Photo: &blank}})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	given := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	got, err := s.svc.Update(s.ctx, s.actors.registrar, waiting.ID, models.Patch{GivenDate: &given})
	s.Require().NoError(err)
	s.Equal(time.Date(2029, 2, 28, 0, 0, 0, 0, time.UTC), *got.ExpireDate)
	s.Len(s.reload(waiting).StatusHistory, 1)
}

func (s *EngineSuite) TestDeleteOnlyWhileEditable() {
	pending := s.seed(models.StatusPending)
	err := s.svc.Delete(s.ctx, s.actors.registrar, pending.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

	rejected := s.seed(models.StatusRejected)
	s.Require().NoError(s.svc.Delete(s.ctx, s.actors.registrar, rejected.ID))
	_, err = s.svc.Get(s.ctx, s.actors.registrar, rejected.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	err = s.svc.Delete(s.ctx, s.actors.registrar, rejected.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.svc.Create(s.ctx, s.actors.registrar, s.createCommand(rejected.CitizenID))
	s.True(dErrors.HasCode(err, dErrors.CodeDuplicateKey), "deleted citizen_id must not be reused")
}

func (s *EngineSuite) TestDashboardStatsEmptyStore() {
	stats, err := s.svc.DashboardStats(s.ctx, s.actors.supervisor)
	s.Require().NoError(err)
	s.Zero(stats.TotalPopulation)
	for _, st := range models.AllStatuses {
		v, ok := stats.Status[st]
		s.True(ok)
		s.Zero(v)
	}
	for _, p := range models.AllPrintStatuses {
		v, ok := stats.PrintStatus[p]
		s.True(ok)
		s.Zero(v)
	}
}

func (s *EngineSuite) TestDashboardStatsInvalidatedByMutations() {
	c := s.seed(models.StatusPending)

	stats, err := s.svc.DashboardStats(s.ctx, s.actors.supervisor)
	s.Require().NoError(err)
	s.Equal(1, stats.Status[models.StatusPending])

	_, err = s.svc.DashboardStats(s.ctx, s.actors.supervisor)
	s.Require().NoError(err)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.StatsCacheHits))

	_, err = s.svc.TransitionStatus(s.ctx, s.actors.supervisor, c.ID, models.StatusApproved)
	s.Require().NoError(err)

	stats, err = s.svc.DashboardStats(s.ctx, s.actors.supervisor)
	s.Require().NoError(err)
	s.Equal(0, stats.Status[models.StatusPending])
	s.Equal(1, stats.Status[models.StatusApproved])
	s.Equal(1, stats.PrintStatus[models.PrintStatusUnprinted])
}

func (s *EngineSuite) TestFuzzyLookup() {
	c := testfixtures.NewCitizenBuilder().WithCitizenID("ET-123456").Build()
	s.Require().NoError(s.store.Create(context.Background(), c))

	for _, input := range []string{"123456", "et-123456", " et 123456 ", "ET-123456"} {
		got, err := s.svc.FindByFuzzyBusinessID(s.ctx, input)
		s.Require().NoError(err, input)
		s.Equal(c.ID, got.ID)
	}

	s.Run("prefix letters without a separator belong to the id", func() {
		eta, err := s.svc.Create(s.ctx, s.actors.registrar, s.createCommand("ETA100"))
		s.Require().NoError(err)
		plain, err := s.svc.Create(s.ctx, s.actors.registrar, s.createCommand("A100"))
		s.Require().NoError(err)
		s.NotEqual(eta.BusinessKey, plain.BusinessKey)

		got, err := s.svc.FindByFuzzyBusinessID(s.ctx, "A100")
		s.Require().NoError(err)
		s.Equal(plain.ID, got.ID)
		got, err = s.svc.FindByFuzzyBusinessID(s.ctx, "eta100")
		s.Require().NoError(err)
		s.Equal(eta.ID, got.ID)
	})

	_, err := s.svc.FindByFuzzyBusinessID(s.ctx, "654321")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	_, err = s.svc.FindByFuzzyBusinessID(s.ctx, "  ")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *EngineSuite) TestListBlanksBiometricsByDefault() {
	s.seed(models.StatusWaiting)
	s.seed(models.StatusApproved)

	status := models.StatusApproved
	list, err := s.svc.List(s.ctx, s.actors.officer, models.Filter{Status: &status})
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Empty(list[0].Biometrics.Photo)

	full, err := s.svc.GetBiometrics(s.ctx, s.actors.officer, list[0].ID)
	s.Require().NoError(err)
	s.NotEmpty(full.Photo)

	_, err = s.svc.List(s.ctx, s.actors.citizen, models.Filter{})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *EngineSuite) TestEveryMutationWritesOneEvent() {
	c, err := s.svc.Create(s.ctx, s.actors.registrar, s.createCommand("ET-300010"))
	s.Require().NoError(err)
	_, err = s.svc.TransitionStatus(s.ctx, s.actors.registrar, c.ID, models.StatusPending)
	s.Require().NoError(err)
	_, err = s.svc.TransitionStatus(s.ctx, s.actors.supervisor, c.ID, models.StatusApproved)
	s.Require().NoError(err)

	var types []string
	for _, e := range s.events.Entries() {
		s.Equal(c.ID.String(), e.AggregateID)
		types = append(types, e.EventType)
	}
	s.Equal([]string{
		models.EventCitizenRegistered,
		models.EventCitizenStatusChanged,
		models.EventCitizenStatusChanged,
	}, types)
}
