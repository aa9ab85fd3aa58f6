package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
)

// OptionalSuite tests the three-state patch field marker.
type OptionalSuite struct {
	suite.Suite
}

func TestOptionalSuite(t *testing.T) {
	suite.Run(t, new(OptionalSuite))
}

func (s *OptionalSuite) TestStates() {
	s.Run("zero value is absent", func() {
		var o Optional[string]
		s.False(o.IsSet())
		s.False(o.IsNull())

		_, ok := o.Get()
		s.False(ok)
	})

	s.Run("Some carries a value", func() {
		o := Some("hello")
		s.True(o.IsSet())
		s.False(o.IsNull())

		v, ok := o.Get()
		s.True(ok)
		s.Equal("hello", v)
	})

	s.Run("Null is present but valueless", func() {
		o := Null[string]()
		s.True(o.IsSet())
		s.True(o.IsNull())

		_, ok := o.Get()
		s.False(ok)
	})
}

func (s *OptionalSuite) TestUnmarshal() {
	type doc struct {
		Name Optional[string] `json:"name"`
	}

	s.Run("absent key stays absent", func() {
		var d doc
		s.Require().NoError(json.Unmarshal([]byte(`{}`), &d))
		s.False(d.Name.IsSet())
	})

	s.Run("null key is explicit null", func() {
		var d doc
		s.Require().NoError(json.Unmarshal([]byte(`{"name":null}`), &d))
		s.True(d.Name.IsNull())
	})

	s.Run("value key carries the value", func() {
		var d doc
		s.Require().NoError(json.Unmarshal([]byte(`{"name":"ada"}`), &d))
		v, ok := d.Name.Get()
		s.True(ok)
		s.Equal("ada", v)
	})

	s.Run("wrong type is rejected", func() {
		var d doc
		s.Error(json.Unmarshal([]byte(`{"name":42}`), &d))
	})
}
