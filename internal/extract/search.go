package extract

import (
	"github.com/Mainframe-Renewal-Project/sear/internal/document"
	"github.com/Mainframe-Renewal-Project/sear/internal/ebcdic"
)

// OwnedBuffer is a profile name buffer handed over by a search. The decoder
// takes ownership and calls Release exactly once.
type OwnedBuffer interface {
	Bytes() []byte
	Release()
}

// DecodeSearch converts found profile names into a profiles document. Each
// buffer is released right after its name is copied out.
func DecodeSearch(found []OwnedBuffer) *document.Document {
	names := make([]string, 0, len(found))
	for _, buf := range found {
		if buf == nil {
			continue
		}
		names = append(names, ebcdic.Decode(buf.Bytes()))
		buf.Release()
	}
	return document.NewProfiles(names)
}
