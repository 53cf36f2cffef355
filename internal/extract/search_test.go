package extract

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Mainframe-Renewal-Project/sear/internal/ebcdic"
	"github.com/Mainframe-Renewal-Project/sear/internal/testutil/testlog"
)

type countedBuffer struct {
	data     []byte
	released int
}

func (b *countedBuffer) Bytes() []byte { return b.data }
func (b *countedBuffer) Release()      { b.released++ }

func nameBuffer(t *testing.T, name string) *countedBuffer {
	t.Helper()
	enc, err := ebcdic.Encode(name)
	require.NoError(t, err)
	// names come back NUL-terminated
	return &countedBuffer{data: append(enc, 0x00, 0xC1)}
}

func TestDecodeSearchReleasesEachBufferOnce(t *testing.T) {
	testlog.Start(t)
	bufs := []*countedBuffer{nameBuffer(t, "IBMUSER"), nameBuffer(t, "SYS1"), nameBuffer(t, "DEV.DATA.**")}
	found := make([]OwnedBuffer, 0, len(bufs))
	for _, b := range bufs {
		found = append(found, b)
	}

	doc := DecodeSearch(found)
	names, ok := doc.Profiles()
	require.True(t, ok)
	require.Equal(t, []string{"IBMUSER", "SYS1", "DEV.DATA.**"}, names)
	for _, b := range bufs {
		require.Equal(t, 1, b.released)
	}
}

func TestDecodeSearchEmpty(t *testing.T) {
	testlog.Start(t)
	out, err := DecodeSearch(nil).MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, `{"profiles":[]}`, string(out))
}
