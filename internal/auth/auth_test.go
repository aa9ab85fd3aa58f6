package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	id "flagdesk/pkg/domain"
	dErrors "flagdesk/pkg/domain-errors"
)

// ResolverSuite tests principal resolution against the in-memory directory.
type ResolverSuite struct {
	suite.Suite

	users    *InMemoryUserStore
	resolver *Resolver
	ctx      context.Context
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	s.users = NewInMemoryUserStore()

	resolver, err := NewResolver(s.users)
	s.Require().NoError(err)
	s.resolver = resolver
	s.ctx = context.Background()
}

func (s *ResolverSuite) TestResolve() {
	s.Run("known user resolves", func() {
		companyID := id.NewCompanyID()
		userID := id.NewUserID()
		s.users.Put(Principal{UserID: userID, CompanyID: &companyID})

		principal, err := s.resolver.Resolve(s.ctx, userID)
		s.Require().NoError(err)
		s.Equal(userID, principal.UserID)
		s.Require().NotNil(principal.CompanyID)
		s.Equal(companyID, *principal.CompanyID)
		s.False(principal.IsAdmin)
	})

	s.Run("unknown user is unauthorized, not missing", func() {
		_, err := s.resolver.Resolve(s.ctx, id.NewUserID())
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("resolved principal does not alias store state", func() {
		companyID := id.NewCompanyID()
		userID := id.NewUserID()
		s.users.Put(Principal{UserID: userID, CompanyID: &companyID})

		principal, err := s.resolver.Resolve(s.ctx, userID)
		s.Require().NoError(err)
		*principal.CompanyID = id.NewCompanyID()

		again, err := s.resolver.Resolve(s.ctx, userID)
		s.Require().NoError(err)
		s.Equal(companyID, *again.CompanyID)
	})
}

func (s *ResolverSuite) TestConstruction() {
	_, err := NewResolver(nil)
	s.Error(err)
}
