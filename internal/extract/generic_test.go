package extract

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/Mainframe-Renewal-Project/sear/internal/document"
	"github.com/Mainframe-Renewal-Project/sear/internal/keymap"
	"github.com/Mainframe-Renewal-Project/sear/internal/testutil/rawbuf"
	"github.com/Mainframe-Renewal-Project/sear/internal/testutil/testlog"
)

func userExtract() rawbuf.Generic {
	return rawbuf.Generic{
		ProfileName: "IBMUSER",
		Segments: []rawbuf.Segment{
			{Name: "BASE", Fields: []rawbuf.Field{
				rawbuf.Str("NAME", "JOE SMITH"),
				rawbuf.Flag("SPECIAL", true),
				rawbuf.Str("PASSINT", "  90"),
				rawbuf.Str("PWDENV", "YES"),
				rawbuf.Str("REVOKE", ""),
			}},
			{Name: "OMVS", Fields: []rawbuf.Field{
				rawbuf.Str("UID", "0"),
				rawbuf.Str("HOME", "/u/ibmuser"),
			}},
		},
	}
}

func TestDecodeGenericUser(t *testing.T) {
	testlog.Start(t)
	g := userExtract()

	res, err := DecodeGeneric(keymap.Default(), keymap.AdminUser, g.Bytes())
	require.NoError(t, err)
	require.Equal(t, "IBMUSER", res.ProfileName)
	require.Equal(t, uint32(2), res.Header.SegmentCount)

	want := map[string]any{
		"profile": map[string]any{
			"base": map[string]any{
				"base:name":                     "JOE SMITH",
				"base:special":                  true,
				"base:password_change_interval": int64(90),
				"base:password_enveloped":       true,
				"base:revoke_date":              nil,
			},
			"omvs": map[string]any{
				"omvs:uid":            int64(0),
				"omvs:home_directory": "/u/ibmuser",
			},
		},
	}
	if diff := cmp.Diff(want, res.Document.Plain()); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{"base", "omvs"}, res.Document.Profile().Keys())
	require.Equal(t, Stats{Segments: 2, Fields: 7}, res.Stats)
}

func TestDecodeGenericBooleanFlag(t *testing.T) {
	testlog.Start(t)
	for _, on := range []bool{true, false} {
		g := rawbuf.Generic{
			ProfileName: "U1",
			Segments: []rawbuf.Segment{{Name: "BASE", Fields: []rawbuf.Field{
				rawbuf.Flag("SPECIAL", on),
			}}},
		}
		res, err := DecodeGeneric(keymap.Default(), keymap.AdminUser, g.Bytes())
		require.NoError(t, err)
		v, ok := res.Document.Lookup("base", "base:special")
		require.True(t, ok)
		require.Equal(t, on, v)
	}
}

func TestDecodeGenericRepeatGroup(t *testing.T) {
	testlog.Start(t)
	group := func(name, date string, adsp bool) []rawbuf.Field {
		return []rawbuf.Field{
			rawbuf.Str("CGROUP", name),
			rawbuf.Str("CAUTHDA", date),
			rawbuf.Flag("CADSP", adsp),
		}
	}
	g := rawbuf.Generic{
		ProfileName: "IBMUSER",
		Segments: []rawbuf.Segment{{Name: "BASE", Fields: []rawbuf.Field{
			rawbuf.Repeat("CONNECTS", group("SYS1", "01/02/20", true), group("DEV", "03/04/21", false)),
			rawbuf.Str("NAME", "AFTER"),
		}}},
	}

	res, err := DecodeGeneric(keymap.Default(), keymap.AdminUser, g.Bytes())
	require.NoError(t, err)

	v, ok := res.Document.Lookup("base", "base:group_connections")
	require.True(t, ok)
	groups, ok := v.([]*document.Object)
	require.True(t, ok, "repeat value type %T", v)
	require.Len(t, groups, 2)
	for _, obj := range groups {
		require.Equal(t, 3, obj.Len())
	}
	name, _ := groups[1].Get("base:group_connection_group")
	require.Equal(t, "DEV", name)
	adsp, _ := groups[0].Get("base:group_connection_automatic_data_set_protection")
	require.Equal(t, true, adsp)

	// the field after the group must be read from the right descriptor
	after, ok := res.Document.Lookup("base", "base:name")
	require.True(t, ok)
	require.Equal(t, "AFTER", after)
	require.Equal(t, 1, res.Stats.RepeatGroups)
}

func TestDecodeGenericEmptyRepeatGroup(t *testing.T) {
	testlog.Start(t)
	g := rawbuf.Generic{
		ProfileName: "IBMUSER",
		Segments: []rawbuf.Segment{{Name: "BASE", Fields: []rawbuf.Field{
			rawbuf.Repeat("CONNECTS"),
		}}},
	}
	res, err := DecodeGeneric(keymap.Default(), keymap.AdminUser, g.Bytes())
	require.NoError(t, err)
	out, err := json.Marshal(res.Document)
	require.NoError(t, err)
	require.JSONEq(t, `{"profile":{"base":{"base:group_connections":[]}}}`, string(out))
}

func TestDecodeGenericExperimentalAndWildcard(t *testing.T) {
	testlog.Start(t)
	g := rawbuf.Generic{
		ProfileName: "IBMUSER",
		Segments: []rawbuf.Segment{
			{Name: "BASE", Fields: []rawbuf.Field{rawbuf.Str("NEWFLD", "X")}},
			{Name: "FUTURE", Fields: []rawbuf.Field{rawbuf.Str("ANY", "Y")}},
			{Name: "CSDATA", Fields: []rawbuf.Field{rawbuf.Str("COSTCTR", "1234")}},
		},
	}
	res, err := DecodeGeneric(keymap.Default(), keymap.AdminUser, g.Bytes())
	require.NoError(t, err)

	v, ok := res.Document.Lookup("base", "experimental:newfld")
	require.True(t, ok)
	require.Equal(t, "X", v)
	v, ok = res.Document.Lookup("future", "experimental:any")
	require.True(t, ok)
	require.Equal(t, "Y", v)
	v, ok = res.Document.Lookup("csdata", "csdata:costctr")
	require.True(t, ok)
	require.Equal(t, "1234", v)
	require.Equal(t, 2, res.Stats.Experimental)
}

func TestDecodeGenericSegmentWithoutFields(t *testing.T) {
	testlog.Start(t)
	g := rawbuf.Generic{
		ProfileName: "SYS1",
		Segments:    []rawbuf.Segment{{Name: "BASE"}, {Name: "OMVS"}},
	}
	res, err := DecodeGeneric(keymap.Default(), keymap.AdminGroup, g.Bytes())
	require.NoError(t, err)
	require.Equal(t, []string{"base", "omvs"}, res.Document.Profile().Keys())
	require.Equal(t, 0, res.Document.Segment("omvs").Len())
}

func TestDecodeGenericNonNumericUint(t *testing.T) {
	testlog.Start(t)
	g := rawbuf.Generic{
		ProfileName: "IBMUSER",
		Segments: []rawbuf.Segment{{Name: "OMVS", Fields: []rawbuf.Field{
			rawbuf.Str("UID", "ABC"),
		}}},
	}
	res, err := DecodeGeneric(keymap.Default(), keymap.AdminUser, g.Bytes())
	require.Nil(t, res)
	require.ErrorIs(t, err, ErrMalformedBuffer)
	require.ErrorIs(t, err, ErrNotNumeric)

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	require.Equal(t, "omvs", de.Segment)
	require.Equal(t, "omvs:uid", de.Field)
}

func TestDecodeGenericOutOfBounds(t *testing.T) {
	testlog.Start(t)
	g := userExtract()

	cases := []struct {
		name  string
		patch func(b []byte) []byte
	}{
		{"short header", func(b []byte) []byte { return b[:40] }},
		{"profile name length", func(b []byte) []byte {
			binary.BigEndian.PutUint32(b[20:24], 1<<30)
			return b
		}},
		{"segment count", func(b []byte) []byte {
			binary.BigEndian.PutUint32(b[40:44], 1000)
			return b
		}},
		{"field descriptor offset", func(b []byte) []byte {
			off := g.SegmentDescriptorOffset(0)
			binary.BigEndian.PutUint32(b[off+20:off+24], uint32(len(b)-10))
			return b
		}},
		{"field data offset", func(b []byte) []byte {
			off := g.FieldDescriptorOffset(0)
			binary.BigEndian.PutUint32(b[off+24:off+28], 0xFFFFFFF0)
			return b
		}},
		{"field data length", func(b []byte) []byte {
			off := g.FieldDescriptorOffset(0)
			binary.BigEndian.PutUint32(b[off+16:off+20], uint32(len(b)))
			return b
		}},
		{"truncated data", func(b []byte) []byte { return b[:len(b)-3] }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := DecodeGeneric(keymap.Default(), keymap.AdminUser, tc.patch(g.Bytes()))
			require.Nil(t, res)
			require.ErrorIs(t, err, ErrMalformedBuffer)
		})
	}
}

func TestDecodeGenericRepeatOverflow(t *testing.T) {
	testlog.Start(t)
	g := rawbuf.Generic{
		ProfileName: "IBMUSER",
		Segments: []rawbuf.Segment{{Name: "BASE", Fields: []rawbuf.Field{
			rawbuf.Repeat("CONNECTS", []rawbuf.Field{rawbuf.Str("CGROUP", "SYS1")}),
		}}},
	}
	b := g.Bytes()
	off := g.FieldDescriptorOffset(0)
	binary.BigEndian.PutUint32(b[off+16:off+20], 0xFFFFFFFF)
	binary.BigEndian.PutUint32(b[off+24:off+28], 0xFFFFFFFF)

	_, err := DecodeGeneric(keymap.Default(), keymap.AdminUser, b)
	require.ErrorIs(t, err, ErrMalformedBuffer)
	require.ErrorIs(t, err, ErrOutOfBounds)
}

func TestDecodeGenericRepeatWithoutElementsBoundsGroups(t *testing.T) {
	testlog.Start(t)
	g := rawbuf.Generic{
		ProfileName: "IBMUSER",
		Segments: []rawbuf.Segment{{Name: "BASE", Fields: []rawbuf.Field{
			rawbuf.Repeat("CONNECTS"),
		}}},
	}
	b := g.Bytes()
	off := g.FieldDescriptorOffset(0)
	binary.BigEndian.PutUint32(b[off+16:off+20], 0x7FFFFFFF)
	binary.BigEndian.PutUint32(b[off+24:off+28], 0)

	_, err := DecodeGeneric(keymap.Default(), keymap.AdminUser, b)
	require.ErrorIs(t, err, ErrMalformedBuffer)
	require.ErrorIs(t, err, ErrOutOfBounds)
}

func TestDecodeGenericNestedRepeatRejected(t *testing.T) {
	testlog.Start(t)
	g := rawbuf.Generic{
		ProfileName: "IBMUSER",
		Segments: []rawbuf.Segment{{Name: "BASE", Fields: []rawbuf.Field{
			rawbuf.Repeat("CONNECTS", []rawbuf.Field{rawbuf.Str("CGROUP", "SYS1")}),
		}}},
	}
	b := g.Bytes()
	member := g.FieldDescriptorOffset(0) + FieldDescriptorSize
	binary.BigEndian.PutUint16(b[member+8:member+10], TypeMember|TypeRepeatHeader)

	_, err := DecodeGeneric(keymap.Default(), keymap.AdminUser, b)
	require.ErrorIs(t, err, ErrNestedRepeat)
}

func TestDecodeGenericIsDeterministic(t *testing.T) {
	testlog.Start(t)
	buf := userExtract().Bytes()
	var first []byte
	for i := 0; i < 5; i++ {
		res, err := DecodeGeneric(keymap.Default(), keymap.AdminUser, buf)
		require.NoError(t, err)
		out, err := json.Marshal(res.Document)
		require.NoError(t, err)
		if first == nil {
			first = out
			continue
		}
		require.Equal(t, string(first), string(out))
	}
}

func TestFieldDescriptorAccessors(t *testing.T) {
	testlog.Start(t)
	data := FieldDescriptor{Type: TypeBoolean, Flags: FlagBooleanValue | FlagOutputOnly, word1: 7, word2: 99}
	require.False(t, data.IsRepeatHeader())
	require.True(t, data.IsBoolean())
	require.True(t, data.BooleanValue())
	require.True(t, data.OutputOnly())
	require.Equal(t, uint32(7), data.DataLength())
	require.Equal(t, uint32(99), data.DataOffset())

	hdr := FieldDescriptor{Type: TypeRepeatHeader, word1: 2, word2: 3}
	require.True(t, hdr.IsRepeatHeader())
	require.Equal(t, uint32(2), hdr.RepeatGroupCount())
	require.Equal(t, uint32(3), hdr.ElementsPerGroup())
}
