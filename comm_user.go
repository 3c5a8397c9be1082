package auction

// Login carries a LIN request and its RLI reply. An unknown or
// unregistered UID is auto-registered by the server, answered with REG.
type Login struct {
	// Request
	UID      string
	Password string
	// Response
	Status string
}

func (c *Login) Opcode() string { return "LIN" }
func (c *Login) IsTCP() bool    { return false }

func (c *Login) EncodeRequest() ([]byte, error) {
	w := NewWriter()
	w.WriteString(c.Opcode())
	w.WriteSpace()
	w.WriteUID(c.UID)
	w.WriteSpace()
	w.WritePassword(c.Password)
	w.WriteDelimiter()
	return w.Bytes()
}

func (c *Login) DecodeRequest(src MessageSource) error {
	r := NewReader(src)
	r.ReadSpace()
	c.UID = r.ReadUID()
	r.ReadSpace()
	c.Password = r.ReadPassword()
	r.ReadDelimiter()
	return r.Err()
}

func (c *Login) EncodeResponse() ([]byte, error) {
	w := NewWriter()
	w.WriteString("RLI")
	w.WriteSpace()
	w.WriteString(c.Status)
	w.WriteDelimiter()
	return w.Bytes()
}

func (c *Login) DecodeResponse(src MessageSource) error {
	r := NewReader(src)
	r.ReadOpcode("RLI")
	r.ReadSpace()
	c.Status = r.ReadStringOneOf(StatusOK, StatusNOK, StatusREG)
	r.ReadDelimiter()
	return r.Err()
}

// Logout carries a LOU request and its RLO reply.
type Logout struct {
	// Request
	UID      string
	Password string
	// Response
	Status string
}

func (c *Logout) Opcode() string { return "LOU" }
func (c *Logout) IsTCP() bool    { return false }

func (c *Logout) EncodeRequest() ([]byte, error) {
	w := NewWriter()
	w.WriteString(c.Opcode())
	w.WriteSpace()
	w.WriteUID(c.UID)
	w.WriteSpace()
	w.WritePassword(c.Password)
	w.WriteDelimiter()
	return w.Bytes()
}

func (c *Logout) DecodeRequest(src MessageSource) error {
	r := NewReader(src)
	r.ReadSpace()
	c.UID = r.ReadUID()
	r.ReadSpace()
	c.Password = r.ReadPassword()
	r.ReadDelimiter()
	return r.Err()
}

func (c *Logout) EncodeResponse() ([]byte, error) {
	w := NewWriter()
	w.WriteString("RLO")
	w.WriteSpace()
	w.WriteString(c.Status)
	w.WriteDelimiter()
	return w.Bytes()
}

func (c *Logout) DecodeResponse(src MessageSource) error {
	r := NewReader(src)
	r.ReadOpcode("RLO")
	r.ReadSpace()
	c.Status = r.ReadStringOneOf(StatusOK, StatusNOK, StatusUNR)
	r.ReadDelimiter()
	return r.Err()
}

// Unregister carries a UNR request and its RUR reply. Unregistering keeps
// the user directory and participation links so history stays attributable.
type Unregister struct {
	// Request
	UID      string
	Password string
	// Response
	Status string
}

func (c *Unregister) Opcode() string { return "UNR" }
func (c *Unregister) IsTCP() bool    { return false }

func (c *Unregister) EncodeRequest() ([]byte, error) {
	w := NewWriter()
	w.WriteString(c.Opcode())
	w.WriteSpace()
	w.WriteUID(c.UID)
	w.WriteSpace()
	w.WritePassword(c.Password)
	w.WriteDelimiter()
	return w.Bytes()
}

func (c *Unregister) DecodeRequest(src MessageSource) error {
	r := NewReader(src)
	r.ReadSpace()
	c.UID = r.ReadUID()
	r.ReadSpace()
	c.Password = r.ReadPassword()
	r.ReadDelimiter()
	return r.Err()
}

func (c *Unregister) EncodeResponse() ([]byte, error) {
	w := NewWriter()
	w.WriteString("RUR")
	w.WriteSpace()
	w.WriteString(c.Status)
	w.WriteDelimiter()
	return w.Bytes()
}

func (c *Unregister) DecodeResponse(src MessageSource) error {
	r := NewReader(src)
	r.ReadOpcode("RUR")
	r.ReadSpace()
	c.Status = r.ReadStringOneOf(StatusOK, StatusNOK, StatusUNR)
	r.ReadDelimiter()
	return r.Err()
}
