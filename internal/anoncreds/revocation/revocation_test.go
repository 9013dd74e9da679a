package revocation

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "indy/pkg/domain-errors"
)

const maxCredNum = 5

type RevocationSuite struct {
	suite.Suite
	pk    *PublicKey
	sk    *PrivateKey
	rpk   *RegistryPublicKey
	rsk   *RegistryPrivateKey
	tails *Tails
}

func TestRevocationSuite(t *testing.T) {
	suite.Run(t, new(RevocationSuite))
}

func (s *RevocationSuite) SetupSuite() {
	s.pk, s.sk = NewKeys()
	var err error
	s.rpk, s.rsk, err = NewRegistryKeys(s.pk, maxCredNum)
	s.Require().NoError(err)

	var buf bytes.Buffer
	s.Require().NoError(WriteTails(&buf, s.pk, s.rsk, maxCredNum))
	s.Require().EqualValues(TailsSize(maxCredNum), buf.Len())
	s.tails = NewTails(bytes.NewReader(buf.Bytes()), maxCredNum)
}

func (s *RevocationSuite) prove(idx uint32, reg *Registry, w *Witness) bool {
	sig := Sign(s.pk, s.sk, s.rsk, idx)
	ok, err := Verify(s.pk, s.rpk, reg, Prove(s.pk, sig, w, reg))
	s.Require().NoError(err)
	return ok
}

func (s *RevocationSuite) TestIssueThenRevokeOnDemand() {
	reg, initial, err := NewRegistry(s.tails, maxCredNum, false)
	s.Require().NoError(err)
	s.True(reg.Accum.IsInfinity())

	issued, err := reg.Apply(s.tails, maxCredNum, []uint32{1}, nil)
	s.Require().NoError(err)
	full, err := Merge(initial, issued)
	s.Require().NoError(err)

	w, err := NewWitness(s.tails, maxCredNum, 1, false, full)
	s.Require().NoError(err)
	snapshot := *reg

	s.Run("issued credential proves membership", func() {
		s.True(s.prove(1, &snapshot, w))
	})

	revoked, err := reg.Apply(s.tails, maxCredNum, nil, []uint32{1})
	s.Require().NoError(err)

	s.Run("stale witness fails against the new accumulator", func() {
		s.False(s.prove(1, reg, w))
	})

	s.Run("witness update refuses a revoked credential", func() {
		err := w.Update(s.tails, maxCredNum, 1, revoked)
		s.True(dErrors.HasCode(err, dErrors.CodeCredentialRevoked))
	})
}

func (s *RevocationSuite) TestWitnessFollowsOtherIssuance() {
	reg, initial, err := NewRegistry(s.tails, maxCredNum, false)
	s.Require().NoError(err)
	first, err := reg.Apply(s.tails, maxCredNum, []uint32{2}, nil)
	s.Require().NoError(err)
	full, err := Merge(initial, first)
	s.Require().NoError(err)
	w, err := NewWitness(s.tails, maxCredNum, 2, false, full)
	s.Require().NoError(err)

	later, err := reg.Apply(s.tails, maxCredNum, []uint32{3, 4}, nil)
	s.Require().NoError(err)
	more, err := reg.Apply(s.tails, maxCredNum, nil, []uint32{3})
	s.Require().NoError(err)

	s.Require().NoError(w.Update(s.tails, maxCredNum, 2, later))
	s.Require().NoError(w.Update(s.tails, maxCredNum, 2, more))
	s.True(s.prove(2, reg, w))
}

func (s *RevocationSuite) TestIssuanceByDefault() {
	reg, initial, err := NewRegistry(s.tails, maxCredNum, true)
	s.Require().NoError(err)
	s.Len(initial.Issued, maxCredNum)

	w, err := NewWitness(s.tails, maxCredNum, 4, true, initial)
	s.Require().NoError(err)
	s.True(s.prove(4, reg, w))

	revoked, err := reg.Apply(s.tails, maxCredNum, nil, []uint32{5})
	s.Require().NoError(err)
	s.Require().NoError(w.Update(s.tails, maxCredNum, 4, revoked))
	s.True(s.prove(4, reg, w))

	_, err = NewWitness(s.tails, maxCredNum, 5, true, &Delta{Revoked: []uint32{5}})
	s.True(dErrors.HasCode(err, dErrors.CodeCredentialRevoked))
}

func (s *RevocationSuite) TestMerge() {
	reg, _, err := NewRegistry(s.tails, maxCredNum, false)
	s.Require().NoError(err)
	a0 := reg.Accum
	d1, err := reg.Apply(s.tails, maxCredNum, []uint32{1}, nil)
	s.Require().NoError(err)
	a1 := reg.Accum
	d2, err := reg.Apply(s.tails, maxCredNum, []uint32{2}, []uint32{1})
	s.Require().NoError(err)
	d3, err := reg.Apply(s.tails, maxCredNum, []uint32{3}, nil)
	s.Require().NoError(err)

	s.Run("composes issued and revoked sets", func() {
		m, err := Merge(d1, d2)
		s.Require().NoError(err)
		s.True(m.PrevAccum.Equal(&a0))
		s.True(m.Accum.Equal(&d2.Accum))
		s.Equal([]uint32{2}, m.Issued)
		s.Equal([]uint32{1}, m.Revoked)
	})

	s.Run("identity leaves the delta unchanged", func() {
		m, err := Merge(d1, &Delta{PrevAccum: &a1, Accum: a1})
		s.Require().NoError(err)
		s.Equal(d1.Issued, m.Issued)
		s.Equal(d1.Revoked, m.Revoked)
		s.True(m.Accum.Equal(&d1.Accum))
	})

	s.Run("is associative", func() {
		left, err := Merge(d1, d2)
		s.Require().NoError(err)
		left, err = Merge(left, d3)
		s.Require().NoError(err)
		right, err := Merge(d2, d3)
		s.Require().NoError(err)
		right, err = Merge(d1, right)
		s.Require().NoError(err)
		s.Equal(left.Issued, right.Issued)
		s.Equal(left.Revoked, right.Revoked)
		s.True(left.Accum.Equal(&right.Accum))
	})

	s.Run("refuses non consecutive deltas", func() {
		_, err := Merge(d1, d3)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
	})

	s.Run("refuses a second delta without a previous accumulator", func() {
		_, err := Merge(d1, &Delta{Accum: d2.Accum, Issued: d2.Issued, Revoked: d2.Revoked})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
	})
}

func (s *RevocationSuite) TestJSON() {
	raw, err := json.Marshal(s.pk)
	s.Require().NoError(err)
	var back PublicKey
	s.Require().NoError(json.Unmarshal(raw, &back))
	s.True(back.PK.Equal(&s.pk.PK))

	raw, err = json.Marshal(s.rpk)
	s.Require().NoError(err)
	var rpk RegistryPublicKey
	s.Require().NoError(json.Unmarshal(raw, &rpk))
	s.True(rpk.Z.Equal(&s.rpk.Z.GT))

	s.Error(json.Unmarshal([]byte(`{"accum":"zz"}`), &Registry{}))
}

func (s *RevocationSuite) TestIndexBounds() {
	reg, _, err := NewRegistry(s.tails, maxCredNum, false)
	s.Require().NoError(err)
	_, err = reg.Apply(s.tails, maxCredNum, []uint32{maxCredNum + 1}, nil)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidUserRevocID))
	_, err = s.tails.Get(2*maxCredNum + 1)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
}
