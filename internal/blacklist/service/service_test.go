package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"flagdesk/internal/auth"
	"flagdesk/internal/blacklist/models"
	"flagdesk/internal/blacklist/store"
	id "flagdesk/pkg/domain"
	dErrors "flagdesk/pkg/domain-errors"
	"flagdesk/pkg/requestcontext"
)

// capturingRecorder collects recorded events for assertions.
type capturingRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	UserID       id.UserID
	Action       string
	ResourceType string
	ResourceID   string
	Details      string
}

func (r *capturingRecorder) Record(_ context.Context, userID id.UserID, action, resourceType, resourceID, details string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{userID, action, resourceType, resourceID, details})
}

func (r *capturingRecorder) Events() []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedEvent(nil), r.events...)
}

func (r *capturingRecorder) Last() recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

// ServiceSuite tests entry lifecycle operations against in-memory stores.
type ServiceSuite struct {
	suite.Suite

	entries  *store.InMemory
	recorder *capturingRecorder
	service  *Service

	now time.Time
	ctx context.Context

	companyA id.CompanyID
	companyB id.CompanyID
	admin    id.UserID
	userA    id.UserID
	userB    id.UserID
	orphan   id.UserID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.entries = store.NewInMemory()
	s.recorder = &capturingRecorder{}

	s.companyA = id.NewCompanyID()
	s.companyB = id.NewCompanyID()
	s.admin = id.NewUserID()
	s.userA = id.NewUserID()
	s.userB = id.NewUserID()
	s.orphan = id.NewUserID()

	users := auth.NewInMemoryUserStore()
	users.Put(auth.Principal{UserID: s.admin, IsAdmin: true})
	users.Put(auth.Principal{UserID: s.userA, CompanyID: &s.companyA})
	users.Put(auth.Principal{UserID: s.userB, CompanyID: &s.companyB})
	users.Put(auth.Principal{UserID: s.orphan})

	resolver, err := auth.NewResolver(users)
	s.Require().NoError(err)

	svc, err := New(s.entries, resolver, s.recorder)
	s.Require().NoError(err)
	s.service = svc

	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceSuite) submission() models.Submission {
	return models.Submission{
		FirstName: "Jane",
		LastName:  "Doe",
		IDNumber:  "AB123456",
		Reason:    "late return of equipment",
	}
}

func (s *ServiceSuite) createFor(userID id.UserID) *models.Entry {
	entry, err := s.service.Create(s.ctx, userID, s.submission())
	s.Require().NoError(err)
	return entry
}

// TestCreate covers entry creation, scoring and ownership.
func (s *ServiceSuite) TestCreate() {
	s.Run("entry is stamped with the creator's company", func() {
		entry := s.createFor(s.userA)

		s.Equal(s.companyA, entry.CompanyID)
		s.Equal(s.userA, entry.CreatorUserID)
		s.Equal(models.StatusActive, entry.Status)
		s.True(entry.IsBlacklisted)
		s.Equal(s.now, entry.CreatedAt)
	})

	s.Run("score is derived from reason and evidence", func() {
		face := "https://cdn.example/face.png"
		sub := s.submission()
		sub.Reason = "confirmed fraud"
		sub.IDDocumentURLs = []string{"https://cdn.example/id.png"}
		sub.FaceImageURL = &face

		entry, err := s.service.Create(s.ctx, s.userA, sub)
		s.Require().NoError(err)
		s.Equal(100, entry.BlacklistScore)
	})

	s.Run("empty face image url does not count as evidence", func() {
		empty := ""
		sub := s.submission()
		sub.FaceImageURL = &empty

		entry, err := s.service.Create(s.ctx, s.userA, sub)
		s.Require().NoError(err)
		s.Equal(50, entry.BlacklistScore)
	})

	s.Run("user without company cannot create", func() {
		_, err := s.service.Create(s.ctx, s.orphan, s.submission())
		s.True(dErrors.HasCode(err, dErrors.CodeNoCompany))
	})

	s.Run("admin without company cannot create either", func() {
		_, err := s.service.Create(s.ctx, s.admin, s.submission())
		s.True(dErrors.HasCode(err, dErrors.CodeNoCompany))
	})

	s.Run("unknown user is unauthorized", func() {
		_, err := s.service.Create(s.ctx, id.NewUserID(), s.submission())
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("creation is recorded", func() {
		entry := s.createFor(s.userA)

		event := s.recorder.Last()
		s.Equal("entry_created", event.Action)
		s.Equal("blacklist_entry", event.ResourceType)
		s.Equal(entry.ID.String(), event.ResourceID)
		s.Equal(s.userA, event.UserID)
	})
}

// TestList covers scope filtering, search and pagination.
func (s *ServiceSuite) TestList() {
	entryA := s.createFor(s.userA)
	entryB := s.createFor(s.userB)

	s.Run("restricted caller sees only its company", func() {
		page, err := s.service.List(s.ctx, s.userA, ListRequest{})
		s.Require().NoError(err)

		s.Equal(1, page.Total)
		s.Require().Len(page.Entries, 1)
		s.Equal(entryA.ID, page.Entries[0].ID)
	})

	s.Run("admin sees every company", func() {
		page, err := s.service.List(s.ctx, s.admin, ListRequest{})
		s.Require().NoError(err)
		s.Equal(2, page.Total)
	})

	s.Run("admin can narrow to one company", func() {
		page, err := s.service.List(s.ctx, s.admin, ListRequest{Company: &s.companyB})
		s.Require().NoError(err)

		s.Require().Len(page.Entries, 1)
		s.Equal(entryB.ID, page.Entries[0].ID)
	})

	s.Run("restricted caller cannot widen with a company filter", func() {
		page, err := s.service.List(s.ctx, s.userA, ListRequest{Company: &s.companyB})
		s.Require().NoError(err)

		s.Require().Len(page.Entries, 1)
		s.Equal(entryA.ID, page.Entries[0].ID)
	})

	s.Run("search matches names case-insensitively", func() {
		sub := s.submission()
		sub.FirstName = "Marcus"
		sub.LastName = "Webb"
		_, err := s.service.Create(s.ctx, s.userA, sub)
		s.Require().NoError(err)

		page, err := s.service.List(s.ctx, s.userA, ListRequest{Search: "webb"})
		s.Require().NoError(err)
		s.Equal(1, page.Total)
	})

	s.Run("score bounds are inclusive", func() {
		minScore, maxScore := 50, 50
		page, err := s.service.List(s.ctx, s.userA, ListRequest{MinScore: &minScore, MaxScore: &maxScore})
		s.Require().NoError(err)
		s.NotZero(page.Total)
		for _, entry := range page.Entries {
			s.Equal(50, entry.BlacklistScore)
		}
	})

	s.Run("total counts beyond the page", func() {
		for range 5 {
			s.createFor(s.userB)
		}

		page, err := s.service.List(s.ctx, s.userB, ListRequest{Limit: 2})
		s.Require().NoError(err)
		s.Len(page.Entries, 2)
		s.Equal(6, page.Total)
		s.Equal(2, page.Limit)
	})

	s.Run("user without company cannot list", func() {
		_, err := s.service.List(s.ctx, s.orphan, ListRequest{})
		s.True(dErrors.HasCode(err, dErrors.CodeNoCompany))
	})
}

// TestGet covers scoped reads.
func (s *ServiceSuite) TestGet() {
	entryA := s.createFor(s.userA)

	s.Run("owner company reads its entry", func() {
		got, err := s.service.Get(s.ctx, s.userA, entryA.ID)
		s.Require().NoError(err)
		s.Equal(entryA.ID, got.ID)
	})

	s.Run("admin reads any entry", func() {
		_, err := s.service.Get(s.ctx, s.admin, entryA.ID)
		s.NoError(err)
	})

	s.Run("foreign entry is indistinguishable from missing", func() {
		_, foreignErr := s.service.Get(s.ctx, s.userB, entryA.ID)
		_, missingErr := s.service.Get(s.ctx, s.userB, id.NewEntryID())

		s.True(dErrors.HasCode(foreignErr, dErrors.CodeNotFound))
		s.True(dErrors.HasCode(missingErr, dErrors.CodeNotFound))
		s.Equal(missingErr.Error(), foreignErr.Error())
	})
}

// TestUpdate covers partial patching and score recomputation.
func (s *ServiceSuite) TestUpdate() {
	s.Run("patched fields change, absent fields survive", func() {
		entry := s.createFor(s.userA)

		updated, err := s.service.Update(s.ctx, s.userA, entry.ID, models.Patch{
			FirstName: models.Some("Janet"),
		})
		s.Require().NoError(err)
		s.Equal("Janet", updated.FirstName)
		s.Equal(entry.LastName, updated.LastName)
		s.Equal(entry.Reason, updated.Reason)
	})

	s.Run("touching the reason recomputes the score", func() {
		entry := s.createFor(s.userA)
		s.Equal(50, entry.BlacklistScore)

		updated, err := s.service.Update(s.ctx, s.userA, entry.ID, models.Patch{
			Reason: models.Some("confirmed fraud"),
		})
		s.Require().NoError(err)
		s.Equal(80, updated.BlacklistScore)
	})

	s.Run("attaching documents recomputes the score", func() {
		entry := s.createFor(s.userA)

		updated, err := s.service.Update(s.ctx, s.userA, entry.ID, models.Patch{
			IDDocumentURLs: models.Some([]string{"https://cdn.example/id.png"}),
		})
		s.Require().NoError(err)
		s.Equal(60, updated.BlacklistScore)
	})

	s.Run("clearing the face image recomputes downward", func() {
		face := "https://cdn.example/face.png"
		sub := s.submission()
		sub.FaceImageURL = &face
		entry, err := s.service.Create(s.ctx, s.userA, sub)
		s.Require().NoError(err)
		s.Equal(60, entry.BlacklistScore)

		updated, err := s.service.Update(s.ctx, s.userA, entry.ID, models.Patch{
			FaceImageURL: models.Null[string](),
		})
		s.Require().NoError(err)
		s.Nil(updated.FaceImageURL)
		s.Equal(50, updated.BlacklistScore)
	})

	s.Run("untouched score inputs keep the stored score", func() {
		sub := s.submission()
		sub.Reason = "confirmed fraud"
		entry, err := s.service.Create(s.ctx, s.userA, sub)
		s.Require().NoError(err)

		updated, err := s.service.Update(s.ctx, s.userA, entry.ID, models.Patch{
			Phone: models.Some("+15550100"),
		})
		s.Require().NoError(err)
		s.Equal(entry.BlacklistScore, updated.BlacklistScore)
	})

	s.Run("empty patch bumps UpdatedAt only", func() {
		entry := s.createFor(s.userA)

		later := s.now.Add(time.Minute)
		updated, err := s.service.Update(requestcontext.WithTime(s.ctx, later), s.userA, entry.ID, models.Patch{})
		s.Require().NoError(err)

		s.Equal(later, updated.UpdatedAt)
		s.Equal(entry.BlacklistScore, updated.BlacklistScore)
		s.Equal(entry.FirstName, updated.FirstName)
	})

	s.Run("invalid patch is rejected before the store", func() {
		entry := s.createFor(s.userA)

		_, err := s.service.Update(s.ctx, s.userA, entry.ID, models.Patch{
			Reason: models.Null[string](),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("foreign entry cannot be updated", func() {
		entry := s.createFor(s.userA)

		_, err := s.service.Update(s.ctx, s.userB, entry.ID, models.Patch{
			FirstName: models.Some("Mallory"),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		kept, err := s.service.Get(s.ctx, s.userA, entry.ID)
		s.Require().NoError(err)
		s.Equal("Jane", kept.FirstName)
	})
}

// TestDelete covers scoped hard deletes.
func (s *ServiceSuite) TestDelete() {
	s.Run("owner company deletes its entry", func() {
		entry := s.createFor(s.userA)

		s.Require().NoError(s.service.Delete(s.ctx, s.userA, entry.ID))

		_, err := s.service.Get(s.ctx, s.userA, entry.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("foreign entry cannot be deleted", func() {
		entry := s.createFor(s.userA)

		err := s.service.Delete(s.ctx, s.userB, entry.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		_, err = s.service.Get(s.ctx, s.userA, entry.ID)
		s.NoError(err)
	})

	s.Run("deletion is recorded", func() {
		entry := s.createFor(s.userA)
		s.Require().NoError(s.service.Delete(s.ctx, s.userA, entry.ID))

		event := s.recorder.Last()
		s.Equal("entry_deleted", event.Action)
		s.Equal(entry.ID.String(), event.ResourceID)
	})
}

// TestToggleStatus covers the blacklisted flag transitions.
func (s *ServiceSuite) TestToggleStatus() {
	s.Run("clearing flips status to inactive", func() {
		entry := s.createFor(s.userA)

		toggled, err := s.service.ToggleStatus(s.ctx, s.userA, entry.ID, false)
		s.Require().NoError(err)
		s.False(toggled.IsBlacklisted)
		s.Equal(models.StatusInactive, toggled.Status)
		s.Equal("entry_unblacklisted", s.recorder.Last().Action)
	})

	s.Run("re-flagging flips status back to active", func() {
		entry := s.createFor(s.userA)

		_, err := s.service.ToggleStatus(s.ctx, s.userA, entry.ID, false)
		s.Require().NoError(err)

		toggled, err := s.service.ToggleStatus(s.ctx, s.userA, entry.ID, true)
		s.Require().NoError(err)
		s.True(toggled.IsBlacklisted)
		s.Equal(models.StatusActive, toggled.Status)
		s.Equal("entry_blacklisted", s.recorder.Last().Action)
	})

	s.Run("toggling to the current state is idempotent", func() {
		entry := s.createFor(s.userA)

		toggled, err := s.service.ToggleStatus(s.ctx, s.userA, entry.ID, true)
		s.Require().NoError(err)
		s.True(toggled.IsBlacklisted)
		s.Equal(models.StatusActive, toggled.Status)
	})

	s.Run("foreign entry cannot be toggled", func() {
		entry := s.createFor(s.userA)

		_, err := s.service.ToggleStatus(s.ctx, s.userB, entry.ID, false)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
