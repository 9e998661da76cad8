package nvs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jcboard/internal/errcode"
	"jcboard/status"
)

type fakeStore struct {
	initErrs []error
	inits    int
	erases   int
	eraseErr error
	kv       map[string][]byte
}

func (s *fakeStore) Init() error {
	s.inits++
	if len(s.initErrs) == 0 {
		return nil
	}
	err := s.initErrs[0]
	s.initErrs = s.initErrs[1:]
	return err
}

func (s *fakeStore) Erase() error {
	s.erases++
	return s.eraseErr
}

func (s *fakeStore) Get(key string) ([]byte, bool) {
	v, ok := s.kv[key]
	return v, ok
}

func (s *fakeStore) Set(key string, v []byte) error {
	if s.kv == nil {
		s.kv = map[string][]byte{}
	}
	s.kv[key] = append([]byte(nil), v...)
	return nil
}

func TestInitClean(t *testing.T) {
	s := &fakeStore{}
	require.NoError(t, Init(s, nil))
	assert.Equal(t, 1, s.inits)
	assert.Equal(t, 0, s.erases)
}

func TestInitErasesOnceAndRetries(t *testing.T) {
	for _, c := range []errcode.Code{errcode.NVSNoFreePages, errcode.NVSNewVersion} {
		s := &fakeStore{initErrs: []error{&errcode.E{C: c, Op: "nvs init"}}}
		rec := &status.Recorder{}
		require.NoError(t, Init(s, rec), c)
		assert.Equal(t, 2, s.inits)
		assert.Equal(t, 1, s.erases)
		assert.Equal(t, 1, rec.Count(status.Success))
	}
}

func TestInitStillFailingIsFatal(t *testing.T) {
	s := &fakeStore{initErrs: []error{errcode.NVSNoFreePages, errcode.NVSNoFreePages}}
	err := Init(s, nil)
	assert.Equal(t, errcode.FatalConfig, errcode.Of(err))
	assert.Equal(t, 2, s.inits, "no retry loop")
	assert.Equal(t, 1, s.erases)
}

func TestInitOtherErrorNotErased(t *testing.T) {
	s := &fakeStore{initErrs: []error{errors.New("flash read fault")}}
	err := Init(s, nil)
	assert.Equal(t, errcode.FatalConfig, errcode.Of(err))
	assert.Equal(t, 0, s.erases)
}

func TestInitEraseFailure(t *testing.T) {
	s := &fakeStore{initErrs: []error{errcode.NVSNewVersion}, eraseErr: errors.New("erase timeout")}
	err := Init(s, nil)
	assert.Equal(t, errcode.FatalConfig, errcode.Of(err))
	assert.ErrorContains(t, err, "erase timeout")
	assert.Equal(t, 1, s.inits)
}

func TestBumpBootCount(t *testing.T) {
	s := &fakeStore{}
	for want := uint32(1); want <= 3; want++ {
		n, err := BumpBootCount(s)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
}
