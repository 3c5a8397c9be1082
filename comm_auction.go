package auction

// OpenAuction carries an OPA request and its ROA reply. The asset blob
// rides inside the request right after the file-size token; the declared
// length must match the bytes consumed.
type OpenAuction struct {
	// Request
	UID        string
	Password   string
	Name       string
	StartValue int
	Duration   int
	FileName   string
	FileSize   int
	FileData   []byte
	// Response
	Status string
	AID    string
}

func (c *OpenAuction) Opcode() string { return "OPA" }
func (c *OpenAuction) IsTCP() bool    { return true }

func (c *OpenAuction) EncodeRequest() ([]byte, error) {
	w := NewWriter()
	w.WriteString(c.Opcode())
	w.WriteSpace()
	w.WriteUID(c.UID)
	w.WriteSpace()
	w.WritePassword(c.Password)
	w.WriteSpace()
	w.WriteAuctionName(c.Name)
	w.WriteSpace()
	w.WriteNumber(c.StartValue)
	w.WriteSpace()
	w.WriteNumber(c.Duration)
	w.WriteSpace()
	w.WriteFileName(c.FileName)
	w.WriteSpace()
	if c.FileSize > MaxFileSize || c.FileSize != len(c.FileData) {
		return nil, ErrProtocolViolation
	}
	w.WriteNumber(c.FileSize)
	w.WriteSpace()
	w.WriteBlob(c.FileData)
	w.WriteDelimiter()
	return w.Bytes()
}

func (c *OpenAuction) DecodeRequest(src MessageSource) error {
	r := NewReader(src)
	r.ReadSpace()
	c.UID = r.ReadUID()
	r.ReadSpace()
	c.Password = r.ReadPassword()
	r.ReadSpace()
	c.Name = r.ReadAuctionName()
	r.ReadSpace()
	c.StartValue = r.ReadNumber(MaxStartValueSize)
	r.ReadSpace()
	c.Duration = r.ReadNumber(MaxDurationSize)
	r.ReadSpace()
	c.FileName = r.ReadFileName()
	r.ReadSpace()
	c.FileSize = r.ReadNumber(MaxFileSizeSize)
	if r.Err() == nil && c.FileSize > MaxFileSize {
		return ErrProtocolViolation
	}
	r.ReadSpace()
	c.FileData = r.ReadBlob(c.FileSize)
	r.ReadDelimiter()
	return r.Err()
}

func (c *OpenAuction) EncodeResponse() ([]byte, error) {
	w := NewWriter()
	w.WriteString("ROA")
	w.WriteSpace()
	w.WriteString(c.Status)
	if c.Status == StatusOK {
		w.WriteSpace()
		w.WriteAID(c.AID)
	}
	w.WriteDelimiter()
	return w.Bytes()
}

func (c *OpenAuction) DecodeResponse(src MessageSource) error {
	r := NewReader(src)
	r.ReadOpcode("ROA")
	r.ReadSpace()
	c.Status = r.ReadStringOneOf(StatusOK, StatusNOK, StatusNLG)
	if c.Status == StatusOK {
		r.ReadSpace()
		c.AID = r.ReadAID()
	}
	r.ReadDelimiter()
	return r.Err()
}

// CloseAuction carries a CLS request and its RCL reply.
type CloseAuction struct {
	// Request
	UID      string
	Password string
	AID      string
	// Response
	Status string
}

func (c *CloseAuction) Opcode() string { return "CLS" }
func (c *CloseAuction) IsTCP() bool    { return true }

func (c *CloseAuction) EncodeRequest() ([]byte, error) {
	w := NewWriter()
	w.WriteString(c.Opcode())
	w.WriteSpace()
	w.WriteUID(c.UID)
	w.WriteSpace()
	w.WritePassword(c.Password)
	w.WriteSpace()
	w.WriteAID(c.AID)
	w.WriteDelimiter()
	return w.Bytes()
}

func (c *CloseAuction) DecodeRequest(src MessageSource) error {
	r := NewReader(src)
	r.ReadSpace()
	c.UID = r.ReadUID()
	r.ReadSpace()
	c.Password = r.ReadPassword()
	r.ReadSpace()
	c.AID = r.ReadAID()
	r.ReadDelimiter()
	return r.Err()
}

func (c *CloseAuction) EncodeResponse() ([]byte, error) {
	w := NewWriter()
	w.WriteString("RCL")
	w.WriteSpace()
	w.WriteString(c.Status)
	w.WriteDelimiter()
	return w.Bytes()
}

func (c *CloseAuction) DecodeResponse(src MessageSource) error {
	r := NewReader(src)
	r.ReadOpcode("RCL")
	r.ReadSpace()
	c.Status = r.ReadStringOneOf(StatusOK, StatusNLG, StatusEAU, StatusEOW, StatusEND)
	r.ReadDelimiter()
	return r.Err()
}

// ShowAsset carries an SAS request and its RSA reply, which embeds the
// asset blob.
type ShowAsset struct {
	// Request
	AID string
	// Response
	Status   string
	FileName string
	FileSize int
	FileData []byte
}

func (c *ShowAsset) Opcode() string { return "SAS" }
func (c *ShowAsset) IsTCP() bool    { return true }

func (c *ShowAsset) EncodeRequest() ([]byte, error) {
	w := NewWriter()
	w.WriteString(c.Opcode())
	w.WriteSpace()
	w.WriteAID(c.AID)
	w.WriteDelimiter()
	return w.Bytes()
}

func (c *ShowAsset) DecodeRequest(src MessageSource) error {
	r := NewReader(src)
	r.ReadSpace()
	c.AID = r.ReadAID()
	r.ReadDelimiter()
	return r.Err()
}

func (c *ShowAsset) EncodeResponse() ([]byte, error) {
	w := NewWriter()
	w.WriteString("RSA")
	w.WriteSpace()
	w.WriteString(c.Status)
	if c.Status != StatusOK {
		w.WriteDelimiter()
		return w.Bytes()
	}
	w.WriteSpace()
	w.WriteFileName(c.FileName)
	w.WriteSpace()
	if c.FileSize > MaxFileSize || c.FileSize != len(c.FileData) {
		return nil, ErrProtocolViolation
	}
	w.WriteNumber(c.FileSize)
	w.WriteSpace()
	w.WriteBlob(c.FileData)
	w.WriteDelimiter()
	return w.Bytes()
}

func (c *ShowAsset) DecodeResponse(src MessageSource) error {
	r := NewReader(src)
	r.ReadOpcode("RSA")
	r.ReadSpace()
	c.Status = r.ReadStringOneOf(StatusOK, StatusNOK)
	if c.Status != StatusOK {
		r.ReadDelimiter()
		return r.Err()
	}
	r.ReadSpace()
	c.FileName = r.ReadFileName()
	r.ReadSpace()
	c.FileSize = r.ReadNumber(MaxFileSizeSize)
	if r.Err() == nil && c.FileSize > MaxFileSize {
		return ErrProtocolViolation
	}
	r.ReadSpace()
	c.FileData = r.ReadBlob(c.FileSize)
	r.ReadDelimiter()
	return r.Err()
}

// Bid carries a BID request and its RBD reply.
type Bid struct {
	// Request
	UID      string
	Password string
	AID      string
	Value    int
	// Response
	Status string
}

func (c *Bid) Opcode() string { return "BID" }
func (c *Bid) IsTCP() bool    { return true }

func (c *Bid) EncodeRequest() ([]byte, error) {
	w := NewWriter()
	w.WriteString(c.Opcode())
	w.WriteSpace()
	w.WriteUID(c.UID)
	w.WriteSpace()
	w.WritePassword(c.Password)
	w.WriteSpace()
	w.WriteAID(c.AID)
	w.WriteSpace()
	w.WriteNumber(c.Value)
	w.WriteDelimiter()
	return w.Bytes()
}

func (c *Bid) DecodeRequest(src MessageSource) error {
	r := NewReader(src)
	r.ReadSpace()
	c.UID = r.ReadUID()
	r.ReadSpace()
	c.Password = r.ReadPassword()
	r.ReadSpace()
	c.AID = r.ReadAID()
	r.ReadSpace()
	c.Value = r.ReadNumber(MaxStartValueSize)
	r.ReadDelimiter()
	return r.Err()
}

func (c *Bid) EncodeResponse() ([]byte, error) {
	w := NewWriter()
	w.WriteString("RBD")
	w.WriteSpace()
	w.WriteString(c.Status)
	w.WriteDelimiter()
	return w.Bytes()
}

func (c *Bid) DecodeResponse(src MessageSource) error {
	r := NewReader(src)
	r.ReadOpcode("RBD")
	r.ReadSpace()
	c.Status = r.ReadStringOneOf(StatusNLG, StatusNOK, StatusACC, StatusILG, StatusREF)
	r.ReadDelimiter()
	return r.Err()
}
