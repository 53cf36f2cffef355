package rawbuf

import (
	"encoding/binary"

	"github.com/Mainframe-Renewal-Project/sear/internal/ebcdic"
)

const (
	rrsfHeaderLen = 212
	rrsfNodeLen   = 165

	RRSFNotEnoughSpace uint32 = 0x01000000
)

type RRSFNode struct {
	Name     string
	SysName  string
	Protocol uint8
	State    uint8
	RcvDate  string
	RcvTime  string
	SntDate  string
	SntTime  string
}

// RRSF is a racf-rrsf extract result.
type RRSF struct {
	Flags           uint32
	Prefix          string
	LocalNodeIndex  uint32
	SubsystemName   string
	SubsystemUserid string
	Nodes           []RRSFNode
}

func (r RRSF) Bytes() []byte {
	out := make([]byte, rrsfHeaderLen+len(r.Nodes)*rrsfNodeLen)
	copy(out[0:4], mustEncode("RRSF"))
	binary.BigEndian.PutUint32(out[8:12], uint32(len(out)))
	binary.BigEndian.PutUint32(out[12:16], r.Flags)
	copy(out[16:24], ebcdic.MustEncodePadded(r.Prefix, 8))
	binary.BigEndian.PutUint32(out[24:28], r.LocalNodeIndex)
	binary.BigEndian.PutUint32(out[144:148], uint32(len(r.Nodes)))
	copy(out[148:152], ebcdic.MustEncodePadded(r.SubsystemName, 4))
	copy(out[152:160], ebcdic.MustEncodePadded(r.SubsystemUserid, 8))
	for i, n := range r.Nodes {
		rec := out[rrsfHeaderLen+i*rrsfNodeLen:]
		copy(rec[0:8], ebcdic.MustEncodePadded(n.Name, 8))
		copy(rec[8:16], ebcdic.MustEncodePadded(n.SysName, 8))
		rec[16] = n.Protocol
		rec[17] = n.State
		copy(rec[22:30], ebcdic.MustEncodePadded(n.RcvDate, 8))
		copy(rec[30:38], ebcdic.MustEncodePadded(n.RcvTime, 8))
		copy(rec[38:46], ebcdic.MustEncodePadded(n.SntDate, 8))
		copy(rec[46:54], ebcdic.MustEncodePadded(n.SntTime, 8))
	}
	return out
}
