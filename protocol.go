package auction

// Protocol framing and lexical limits
const (
	MessageDelimiter byte = '\n'

	UIDSize      = 6
	PasswordSize = 8
	AIDSize      = 3

	MaxAuctionNameSize = 10
	MaxFileNameSize    = 24
	MaxStartValueSize  = 6
	MaxDurationSize    = 5
	MaxFileSizeSize    = 8
	MaxFileSize        = 10000000

	ErrorIdentifier = "ERR"

	// Date-times travel as local time in this layout
	DateTimeLayout = "2006-01-02 15:04:05"
)

// Reply status vocabulary
const (
	StatusOK  = "OK"
	StatusNOK = "NOK"
	StatusREG = "REG"
	StatusUNR = "UNR"
	StatusNLG = "NLG"
	StatusEAU = "EAU"
	StatusEOW = "EOW"
	StatusEND = "END"
	StatusACC = "ACC"
	StatusILG = "ILG"
	StatusREF = "REF"
)

// Auction state digits used by the listing replies
const (
	StateActive = "1"
	StateEnded  = "0"
)

func isNumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isAlphaNumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

// ValidUID reports whether uid is exactly 6 digits.
func ValidUID(uid string) bool {
	return len(uid) == UIDSize && isNumeric(uid)
}

// ValidPassword reports whether password is exactly 8 alphanumerics.
func ValidPassword(password string) bool {
	return len(password) == PasswordSize && isAlphaNumeric(password)
}

// ValidAID reports whether aid is exactly 3 digits.
func ValidAID(aid string) bool {
	return len(aid) == AIDSize && isNumeric(aid)
}

// ValidAuctionName reports whether name is 1 to 10 alphanumerics.
func ValidAuctionName(name string) bool {
	return len(name) >= 1 && len(name) <= MaxAuctionNameSize && isAlphaNumeric(name)
}

// ValidFileName reports whether name is 1 to 24 chars from the allowed set
// (alphanumerics, '.', '-', '_').
func ValidFileName(name string) bool {
	if len(name) < 1 || len(name) > MaxFileNameSize {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') &&
			c != '.' && c != '-' && c != '_' {
			return false
		}
	}
	return true
}
