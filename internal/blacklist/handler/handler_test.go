package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"flagdesk/internal/auth"
	"flagdesk/internal/blacklist/models"
	"flagdesk/internal/blacklist/service"
	"flagdesk/internal/blacklist/store"
	id "flagdesk/pkg/domain"
	"flagdesk/pkg/requestcontext"
	"flagdesk/pkg/testutil"
)

type nopRecorder struct{}

func (nopRecorder) Record(_ context.Context, _ id.UserID, _, _, _, _ string) {}

// HandlerSuite exercises the blacklist endpoints end to end against the
// in-memory store.
type HandlerSuite struct {
	suite.Suite

	router chi.Router
	now    time.Time

	companyA id.CompanyID
	companyB id.CompanyID
	userA    id.UserID
	userB    id.UserID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.companyA = id.NewCompanyID()
	s.companyB = id.NewCompanyID()
	s.userA = id.NewUserID()
	s.userB = id.NewUserID()

	users := auth.NewInMemoryUserStore()
	users.Put(auth.Principal{UserID: s.userA, CompanyID: &s.companyA})
	users.Put(auth.Principal{UserID: s.userB, CompanyID: &s.companyB})

	resolver, err := auth.NewResolver(users)
	s.Require().NoError(err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := service.New(store.NewInMemory(), resolver, nopRecorder{}, service.WithLogger(logger))
	s.Require().NoError(err)

	s.router = chi.NewRouter()
	New(svc, logger).Register(s.router)
}

func (s *HandlerSuite) authed(req *http.Request, userID id.UserID) *http.Request {
	req = testutil.WithUser(req, userID)
	return req.WithContext(requestcontext.WithTime(req.Context(), s.now))
}

func (s *HandlerSuite) createEntry(userID id.UserID, body map[string]any) *models.Entry {
	req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/blacklist", body), userID)
	rr := testutil.DoRequest(s.router, req)
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	return testutil.UnmarshalResponse[models.Entry](s.T(), rr)
}

func (s *HandlerSuite) validBody() map[string]any {
	return map[string]any{
		"first_name": "Jane",
		"last_name":  "Doe",
		"id_number":  "AB123456",
		"reason":     "unpaid balance",
	}
}

func (s *HandlerSuite) TestAuthenticationRequired() {
	req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/blacklist", nil)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
}

func (s *HandlerSuite) TestCreate() {
	s.Run("valid submission is created with a derived score", func() {
		entry := s.createEntry(s.userA, s.validBody())
		s.Equal(65, entry.BlacklistScore)
		s.Equal(s.companyA, entry.CompanyID)
		s.True(entry.IsBlacklisted)
	})

	s.Run("ids are canonical UUID strings on the wire", func() {
		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/blacklist", s.validBody()), s.userA)
		rr := testutil.DoRequest(s.router, req)
		s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())

		wire := *testutil.UnmarshalResponse[map[string]any](s.T(), rr)
		rawID, ok := wire["id"].(string)
		s.Require().True(ok, "id should be a JSON string, got %T", wire["id"])
		entryID, err := id.ParseEntryID(rawID)
		s.Require().NoError(err)
		s.Equal(s.companyA.String(), wire["company_id"])
		s.Equal(s.userA.String(), wire["creator_user_id"])

		// The returned id must drive follow-up requests unmodified.
		getReq := s.authed(testutil.NewJSONRequest(s.T(), http.MethodGet, "/blacklist/"+rawID, nil), s.userA)
		getRR := testutil.DoRequest(s.router, getReq)
		s.Equal(http.StatusOK, getRR.Code)
		fetched := testutil.UnmarshalResponse[models.Entry](s.T(), getRR)
		s.Equal(entryID, fetched.ID)
	})

	s.Run("missing required field is rejected", func() {
		body := s.validBody()
		body["reason"] = "  "
		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/blacklist", body), s.userA)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})

	s.Run("malformed JSON is rejected", func() {
		req := s.authed(testutil.NewRequestWithBody(s.T(), http.MethodPost, "/blacklist", "{"), s.userA)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *HandlerSuite) TestGet() {
	entry := s.createEntry(s.userA, s.validBody())

	s.Run("owner reads its entry", func() {
		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodGet, "/blacklist/"+entry.ID.String(), nil), s.userA)
		rr := testutil.DoRequest(s.router, req)
		s.Equal(http.StatusOK, rr.Code)
	})

	s.Run("foreign entry is a 404", func() {
		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodGet, "/blacklist/"+entry.ID.String(), nil), s.userB)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("invalid id is a 400", func() {
		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodGet, "/blacklist/not-a-uuid", nil), s.userA)
		rr := testutil.DoRequest(s.router, req)
		s.Equal(http.StatusBadRequest, rr.Code)
	})
}

func (s *HandlerSuite) TestList() {
	s.createEntry(s.userA, s.validBody())

	body := s.validBody()
	body["first_name"] = "Marcus"
	body["reason"] = "fraud"
	s.createEntry(s.userA, body)

	s.Run("filters pass through", func() {
		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodGet, "/blacklist?search=marcus&min_score=70", nil), s.userA)
		rr := testutil.DoRequest(s.router, req)
		s.Require().Equal(http.StatusOK, rr.Code)

		page := testutil.UnmarshalResponse[service.Page](s.T(), rr)
		s.Equal(1, page.Total)
	})

	s.Run("bad score filter is a 400", func() {
		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodGet, "/blacklist?min_score=high", nil), s.userA)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})
}

func (s *HandlerSuite) TestUpdate() {
	entry := s.createEntry(s.userA, s.validBody())

	s.Run("patch updates fields and recomputes the score", func() {
		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPatch, "/blacklist/"+entry.ID.String(), map[string]any{
			"reason": "confirmed fraud",
		}), s.userA)
		rr := testutil.DoRequest(s.router, req)
		s.Require().Equal(http.StatusOK, rr.Code)

		updated := testutil.UnmarshalResponse[models.Entry](s.T(), rr)
		s.Equal(80, updated.BlacklistScore)
	})

	s.Run("nulling a required field is a 400", func() {
		req := s.authed(testutil.NewRequestWithBody(s.T(), http.MethodPatch, "/blacklist/"+entry.ID.String(), `{"reason":null}`), s.userA)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *HandlerSuite) TestToggleStatus() {
	entry := s.createEntry(s.userA, s.validBody())

	s.Run("flag is required", func() {
		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/blacklist/"+entry.ID.String()+"/status", map[string]any{}), s.userA)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})

	s.Run("clearing the flag deactivates", func() {
		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/blacklist/"+entry.ID.String()+"/status", map[string]any{
			"is_blacklisted": false,
		}), s.userA)
		rr := testutil.DoRequest(s.router, req)
		s.Require().Equal(http.StatusOK, rr.Code)

		toggled := testutil.UnmarshalResponse[models.Entry](s.T(), rr)
		s.False(toggled.IsBlacklisted)
		s.Equal(models.StatusInactive, toggled.Status)
	})
}

func (s *HandlerSuite) TestDelete() {
	entry := s.createEntry(s.userA, s.validBody())

	req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodDelete, "/blacklist/"+entry.ID.String(), nil), s.userA)
	rr := testutil.DoRequest(s.router, req)
	s.Equal(http.StatusNoContent, rr.Code)

	req = s.authed(testutil.NewJSONRequest(s.T(), http.MethodGet, "/blacklist/"+entry.ID.String(), nil), s.userA)
	rr = testutil.DoRequest(s.router, req)
	s.Equal(http.StatusNotFound, rr.Code)
}
