package exportimport

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/suite"

	"indy/internal/wallet"
	"indy/internal/wallet/encryption"
	dErrors "indy/pkg/domain-errors"
)

type StreamSuite struct {
	suite.Suite
	master  *[encryption.KeySize]byte
	records []wallet.Record
}

func TestStreamSuite(t *testing.T) {
	suite.Run(t, new(StreamSuite))
}

func (s *StreamSuite) SetupTest() {
	s.master = &[encryption.KeySize]byte{7}
	s.records = []wallet.Record{
		{Type: "cred", ID: "1", Value: "v1", Tags: wallet.Tags{"~a": "1"}},
		{Type: "cred", ID: "2", Value: "v2", Tags: wallet.Tags{"b": "2"}},
		{Type: "Indy::Did", ID: "did", Value: "{}"},
	}
}

func (s *StreamSuite) export() []byte {
	h, err := NewHeader(encryption.KDFRaw)
	s.Require().NoError(err)
	var buf bytes.Buffer
	w, err := NewWriter(&buf, h, s.master)
	s.Require().NoError(err)
	for _, r := range s.records {
		s.Require().NoError(w.WriteRecord(r))
	}
	s.Require().NoError(w.Close())
	return buf.Bytes()
}

func (s *StreamSuite) readAll(data []byte, master *[encryption.KeySize]byte) ([]wallet.Record, error) {
	rd, err := NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := rd.Init(master); err != nil {
		return nil, err
	}
	var out []wallet.Record
	for {
		r, err := rd.Next()
		if err != nil {
			return nil, err
		}
		if r == nil {
			return out, nil
		}
		out = append(out, *r)
	}
}

func (s *StreamSuite) TestRoundTrip() {
	data := s.export()
	s.Equal(Magic, string(data[:4]))

	got, err := s.readAll(data, s.master)
	s.Require().NoError(err)
	s.Equal(s.records, got)
}

func (s *StreamSuite) TestHeader() {
	h, err := NewHeader(encryption.KDFArgon2iInt)
	s.Require().NoError(err)
	var buf bytes.Buffer
	_, err = NewWriter(&buf, h, s.master)
	s.Require().NoError(err)

	rd, err := NewReader(bytes.NewReader(buf.Bytes()))
	s.Require().NoError(err)
	s.Equal(h, rd.Header())

	_, err = NewReader(bytes.NewReader([]byte("NOPE0000000000000000000000000000000000")))
	s.True(dErrors.HasCode(err, dErrors.CodeWalletDecodingError))
}

func (s *StreamSuite) TestWrongKey() {
	_, err := s.readAll(s.export(), &[encryption.KeySize]byte{8})
	s.True(dErrors.HasCode(err, dErrors.CodeWalletAccessFailed))
}

func (s *StreamSuite) TestTampering() {
	s.Run("flipped record byte", func() {
		data := s.export()
		data[len(data)-40] ^= 1
		_, err := s.readAll(data, s.master)
		s.True(dErrors.HasCode(err, dErrors.CodeWalletDecodingError))
	})

	s.Run("flipped mac", func() {
		data := s.export()
		data[len(data)-1] ^= 1
		_, err := s.readAll(data, s.master)
		s.True(dErrors.HasCode(err, dErrors.CodeWalletDecodingError))
	})

	s.Run("truncated", func() {
		data := s.export()
		_, err := s.readAll(data[:len(data)-10], s.master)
		s.True(dErrors.HasCode(err, dErrors.CodeWalletDecodingError))
	})
}
