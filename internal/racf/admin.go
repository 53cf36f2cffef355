package racf

import (
	"fmt"

	"github.com/Mainframe-Renewal-Project/sear/internal/keymap"
)

// FunctionCode is an R_admin (IRRSEQ00) function code.
type FunctionCode uint8

const (
	FuncRACFOptionsExtract FunctionCode = 0x16
	FuncUserExtract        FunctionCode = 0x19
	FuncUserExtractNext    FunctionCode = 0x1A
	FuncGroupExtract       FunctionCode = 0x1B
	FuncGroupExtractNext   FunctionCode = 0x1C
	FuncConnectionExtract  FunctionCode = 0x1D
	FuncResourceExtract    FunctionCode = 0x1F
	FuncResourceExtractNxt FunctionCode = 0x20
	FuncRRSFExtract        FunctionCode = 0x21
	FuncDatasetExtract     FunctionCode = 0x22
	FuncDatasetExtractNext FunctionCode = 0x23
)

func (f FunctionCode) String() string {
	return fmt.Sprintf("0x%02X", uint8(f))
}

type functionPair struct {
	extract FunctionCode
	next    FunctionCode
}

var functions = map[keymap.AdminType]functionPair{
	keymap.AdminUser:            {FuncUserExtract, FuncUserExtractNext},
	keymap.AdminGroup:           {FuncGroupExtract, FuncGroupExtractNext},
	keymap.AdminGroupConnection: {extract: FuncConnectionExtract},
	keymap.AdminResource:        {FuncResourceExtract, FuncResourceExtractNxt},
	keymap.AdminDataset:         {FuncDatasetExtract, FuncDatasetExtractNext},
	keymap.AdminRACFOptions:     {extract: FuncRACFOptionsExtract},
	keymap.AdminRACFRRSF:        {extract: FuncRRSFExtract},
}

// ExtractFunction returns the extract function code for an admin type.
func ExtractFunction(at keymap.AdminType) (FunctionCode, bool) {
	p, ok := functions[at]
	return p.extract, ok
}

// NextFunction returns the extract-next function code used by searches.
// Admin types without one cannot be searched.
func NextFunction(at keymap.AdminType) (FunctionCode, bool) {
	p, ok := functions[at]
	if !ok || p.next == 0 {
		return 0, false
	}
	return p.next, true
}

// profileBased reports whether extracts of at name a single profile.
func profileBased(at keymap.AdminType) bool {
	switch at {
	case keymap.AdminRACFOptions, keymap.AdminRACFRRSF:
		return false
	}
	return true
}

// maxProfileName is the longest profile name each admin type accepts.
var maxProfileName = map[keymap.AdminType]int{
	keymap.AdminUser:            8,
	keymap.AdminGroup:           8,
	keymap.AdminGroupConnection: 8,
	keymap.AdminResource:        246,
	keymap.AdminDataset:         44,
}
