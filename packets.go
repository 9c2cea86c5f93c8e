package sftp

// This file defines the wire packets the client sends and the ones it
// receives back, using the hand-rolled MarshalBinary/UnmarshalBinary
// idiom (allocPkt + appendXxx/takeXxx) shared across the package.

// ---- outbound request packets -------------------------------------------

type initPkt struct{ Version uint32 }

func (p *initPkt) id() uint32 { return 0 }

func (p *initPkt) MarshalBinary() ([]byte, error) {
	b := allocPkt(fxpInit, 4)
	return appendU32(b, p.Version), nil
}

func (p *initPkt) UnmarshalBinary(b []byte) error {
	v, _, err := takeU32(b)
	p.Version = v
	return err
}

type openPkt struct {
	ID     uint32
	Path   string
	Pflags uint32
	Attrs  *FileAttributes
}

func (p *openPkt) id() uint32 { return p.ID }

func (p *openPkt) MarshalBinary() ([]byte, error) {
	attrBytes := p.Attrs.Encode()
	b := allocPkt(fxpOpen, 4+4+len(p.Path)+4+len(attrBytes))
	b = appendU32(b, p.ID)
	b = appendStr(b, p.Path)
	b = appendU32(b, p.Pflags)
	return append(b, attrBytes...), nil
}

func (p *openPkt) UnmarshalBinary(b []byte) (err error) {
	if p.ID, b, err = takeU32(b); err != nil {
		return err
	}
	if p.Path, b, err = takeStr(b); err != nil {
		return err
	}
	if p.Pflags, b, err = takeU32(b); err != nil {
		return err
	}
	p.Attrs, _, err = decodeFileAttributes(b)
	return err
}

type closePkt struct {
	ID     uint32
	Handle string
}

func (p *closePkt) id() uint32                   { return p.ID }
func (p *closePkt) MarshalBinary() ([]byte, error) {
	return marshalIDString(fxpClose, p.ID, p.Handle), nil
}
func (p *closePkt) UnmarshalBinary(b []byte) (err error) {
	p.ID, p.Handle, err = unmarshalIDString(b)
	return err
}

type readPkt struct {
	ID     uint32
	Handle string
	Offset uint64
	Len    uint32
}

func (p *readPkt) id() uint32 { return p.ID }

func (p *readPkt) MarshalBinary() ([]byte, error) {
	b := allocPkt(fxpRead, 4+4+len(p.Handle)+8+4)
	b = appendU32(b, p.ID)
	b = appendStr(b, p.Handle)
	b = appendU64(b, p.Offset)
	return appendU32(b, p.Len), nil
}

func (p *readPkt) UnmarshalBinary(b []byte) (err error) {
	if p.ID, b, err = takeU32(b); err != nil {
		return err
	}
	if p.Handle, b, err = takeStr(b); err != nil {
		return err
	}
	if p.Offset, b, err = takeU64(b); err != nil {
		return err
	}
	p.Len, _, err = takeU32(b)
	return err
}

type writePkt struct {
	ID     uint32
	Handle string
	Offset uint64
	Data   []byte
}

func (p *writePkt) id() uint32 { return p.ID }

func (p *writePkt) MarshalBinary() ([]byte, error) {
	b := allocPkt(fxpWrite, 4+4+len(p.Handle)+8+4+len(p.Data))
	b = appendU32(b, p.ID)
	b = appendStr(b, p.Handle)
	b = appendU64(b, p.Offset)
	b = appendU32(b, uint32(len(p.Data)))
	return append(b, p.Data...), nil
}

func (p *writePkt) UnmarshalBinary(b []byte) (err error) {
	if p.ID, b, err = takeU32(b); err != nil {
		return err
	}
	if p.Handle, b, err = takeStr(b); err != nil {
		return err
	}
	if p.Offset, b, err = takeU64(b); err != nil {
		return err
	}
	var n uint32
	if n, b, err = takeU32(b); err != nil {
		return err
	}
	if uint64(n) > uint64(len(b)) {
		return errShortPacket
	}
	p.Data = append([]byte(nil), b[:n]...)
	return nil
}

// pathPkt covers LSTAT, STAT, OPENDIR, REMOVE, RMDIR, REALPATH, READLINK —
// every path request shaped as (id, single-string).
type pathPkt struct {
	msgType byte
	ID      uint32
	Path    string
}

func (p *pathPkt) id() uint32 { return p.ID }
func (p *pathPkt) MarshalBinary() ([]byte, error) {
	return marshalIDString(p.msgType, p.ID, p.Path), nil
}
func (p *pathPkt) UnmarshalBinary(b []byte) (err error) {
	p.ID, p.Path, err = unmarshalIDString(b)
	return err
}

func newLstatPkt(id uint32, path string) *pathPkt    { return &pathPkt{fxpLstat, id, path} }
func newStatPkt(id uint32, path string) *pathPkt     { return &pathPkt{fxpStat, id, path} }
func newOpendirPkt(id uint32, path string) *pathPkt  { return &pathPkt{fxpOpendir, id, path} }
func newRemovePkt(id uint32, path string) *pathPkt   { return &pathPkt{fxpRemove, id, path} }
func newRmdirPkt(id uint32, path string) *pathPkt    { return &pathPkt{fxpRmdir, id, path} }
func newRealpathPkt(id uint32, path string) *pathPkt { return &pathPkt{fxpRealpath, id, path} }
func newReadlinkPkt(id uint32, path string) *pathPkt { return &pathPkt{fxpReadlink, id, path} }

// handleOnlyPkt covers FSTAT(on a handle)/READDIR — every request shaped
// as (id, single-handle).
type handleOnlyPkt struct {
	msgType byte
	ID      uint32
	Handle  string
}

func (p *handleOnlyPkt) id() uint32 { return p.ID }
func (p *handleOnlyPkt) MarshalBinary() ([]byte, error) {
	return marshalIDString(p.msgType, p.ID, p.Handle), nil
}
func (p *handleOnlyPkt) UnmarshalBinary(b []byte) (err error) {
	p.ID, p.Handle, err = unmarshalIDString(b)
	return err
}

func newFstatPkt(id uint32, handle string) *handleOnlyPkt {
	return &handleOnlyPkt{fxpFstat, id, handle}
}
func newReaddirPkt(id uint32, handle string) *handleOnlyPkt {
	return &handleOnlyPkt{fxpReaddir, id, handle}
}

// attrPathPkt covers SETSTAT and MKDIR, which carry (id, path, attrs).
type attrPathPkt struct {
	msgType byte
	ID      uint32
	Path    string
	Attrs   *FileAttributes
}

func (p *attrPathPkt) id() uint32 { return p.ID }
func (p *attrPathPkt) MarshalBinary() ([]byte, error) {
	attrBytes := p.Attrs.Encode()
	b := allocPkt(p.msgType, 4+4+len(p.Path)+len(attrBytes))
	b = appendU32(b, p.ID)
	b = appendStr(b, p.Path)
	return append(b, attrBytes...), nil
}
func (p *attrPathPkt) UnmarshalBinary(b []byte) (err error) {
	if p.ID, b, err = takeU32(b); err != nil {
		return err
	}
	if p.Path, b, err = takeStr(b); err != nil {
		return err
	}
	p.Attrs, _, err = decodeFileAttributes(b)
	return err
}

func newSetstatPkt(id uint32, path string, a *FileAttributes) *attrPathPkt {
	return &attrPathPkt{fxpSetstat, id, path, a}
}
func newMkdirPkt(id uint32, path string, a *FileAttributes) *attrPathPkt {
	return &attrPathPkt{fxpMkdir, id, path, a}
}

type fsetstatPkt struct {
	ID     uint32
	Handle string
	Attrs  *FileAttributes
}

func (p *fsetstatPkt) id() uint32 { return p.ID }
func (p *fsetstatPkt) MarshalBinary() ([]byte, error) {
	attrBytes := p.Attrs.Encode()
	b := allocPkt(fxpFsetstat, 4+4+len(p.Handle)+len(attrBytes))
	b = appendU32(b, p.ID)
	b = appendStr(b, p.Handle)
	return append(b, attrBytes...), nil
}
func (p *fsetstatPkt) UnmarshalBinary(b []byte) (err error) {
	if p.ID, b, err = takeU32(b); err != nil {
		return err
	}
	if p.Handle, b, err = takeStr(b); err != nil {
		return err
	}
	p.Attrs, _, err = decodeFileAttributes(b)
	return err
}

type renamePkt struct {
	ID              uint32
	OldPath, NewPath string
}

func (p *renamePkt) id() uint32 { return p.ID }
func (p *renamePkt) MarshalBinary() ([]byte, error) {
	b := allocPkt(fxpRename, 4+4+len(p.OldPath)+4+len(p.NewPath))
	b = appendU32(b, p.ID)
	b = appendStr(b, p.OldPath)
	return appendStr(b, p.NewPath), nil
}
func (p *renamePkt) UnmarshalBinary(b []byte) (err error) {
	if p.ID, b, err = takeU32(b); err != nil {
		return err
	}
	if p.OldPath, b, err = takeStr(b); err != nil {
		return err
	}
	p.NewPath, _, err = takeStr(b)
	return err
}

// symlinkPkt wire-encodes in OpenSSH's actual argument order (the
// existing path the link points at, then the new link's path) rather
// than the order named in the draft this protocol version is based on;
// see DESIGN.md for the note on why.
type symlinkPkt struct {
	ID           uint32
	ExistingPath string
	LinkPath     string
}

func (p *symlinkPkt) id() uint32 { return p.ID }
func (p *symlinkPkt) MarshalBinary() ([]byte, error) {
	b := allocPkt(fxpSymlink, 4+4+len(p.ExistingPath)+4+len(p.LinkPath))
	b = appendU32(b, p.ID)
	b = appendStr(b, p.ExistingPath)
	return appendStr(b, p.LinkPath), nil
}
func (p *symlinkPkt) UnmarshalBinary(b []byte) (err error) {
	if p.ID, b, err = takeU32(b); err != nil {
		return err
	}
	if p.ExistingPath, b, err = takeStr(b); err != nil {
		return err
	}
	p.LinkPath, _, err = takeStr(b)
	return err
}

// extendedPkt wraps any SSH_FXP_EXTENDED request: an extension name plus
// extension-specific payload bytes already encoded by the caller
// (statvfs.go builds the payloads for posix-rename@openssh.com,
// statvfs@openssh.com, fstatvfs@openssh.com, hardlink@openssh.com).
type extendedPkt struct {
	ID              uint32
	ExtendedRequest string
	Payload         []byte
}

func (p *extendedPkt) id() uint32 { return p.ID }
func (p *extendedPkt) MarshalBinary() ([]byte, error) {
	b := allocPkt(fxpExtended, 4+4+len(p.ExtendedRequest)+len(p.Payload))
	b = appendU32(b, p.ID)
	b = appendStr(b, p.ExtendedRequest)
	return append(b, p.Payload...), nil
}
func (p *extendedPkt) UnmarshalBinary(b []byte) (err error) {
	if p.ID, b, err = takeU32(b); err != nil {
		return err
	}
	p.ExtendedRequest, b, err = takeStr(b)
	p.Payload = append([]byte(nil), b...)
	return err
}

// ---- inbound response packets --------------------------------------------

type versionPkt struct {
	Version    uint32
	Extensions map[string]string
}

func (p *versionPkt) id() uint32 { return 0 }
func (p *versionPkt) MarshalBinary() ([]byte, error) {
	n := 4
	for name, data := range p.Extensions {
		n += 4 + len(name) + 4 + len(data)
	}
	b := allocPkt(fxpVersion, n)
	b = appendU32(b, p.Version)
	for name, data := range p.Extensions {
		b = appendStr(b, name)
		b = appendStr(b, data)
	}
	return b, nil
}
func (p *versionPkt) UnmarshalBinary(b []byte) (err error) {
	if p.Version, b, err = takeU32(b); err != nil {
		return err
	}
	p.Extensions = map[string]string{}
	for len(b) > 0 {
		var name, data string
		if name, b, err = takeStr(b); err != nil {
			return err
		}
		if data, b, err = takeStr(b); err != nil {
			return err
		}
		p.Extensions[name] = data
	}
	return nil
}

type statusPkt struct {
	ID      uint32
	Code    uint32
	Msg     string
	LangTag string
}

func (p *statusPkt) id() uint32 { return p.ID }
func (p *statusPkt) MarshalBinary() ([]byte, error) {
	b := allocPkt(fxpStatus, 4+4+4+len(p.Msg)+4+len(p.LangTag))
	b = appendU32(b, p.ID)
	b = appendU32(b, p.Code)
	b = appendStr(b, p.Msg)
	return appendStr(b, p.LangTag), nil
}
func (p *statusPkt) UnmarshalBinary(b []byte) (err error) {
	if p.ID, b, err = takeU32(b); err != nil {
		return err
	}
	if p.Code, b, err = takeU32(b); err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	if p.Msg, b, err = takeStr(b); err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	p.LangTag, _, err = takeStr(b)
	return err
}

type handlePkt struct {
	ID     uint32
	Handle string
}

func (p *handlePkt) id() uint32 { return p.ID }
func (p *handlePkt) MarshalBinary() ([]byte, error) {
	return marshalIDString(fxpHandle, p.ID, p.Handle), nil
}
func (p *handlePkt) UnmarshalBinary(b []byte) (err error) {
	p.ID, p.Handle, err = unmarshalIDString(b)
	return err
}

type dataPkt struct {
	ID   uint32
	Data []byte
}

func (p *dataPkt) id() uint32 { return p.ID }
func (p *dataPkt) MarshalBinary() ([]byte, error) {
	b := allocPkt(fxpData, 4+4+len(p.Data))
	b = appendU32(b, p.ID)
	b = appendU32(b, uint32(len(p.Data)))
	return append(b, p.Data...), nil
}
func (p *dataPkt) UnmarshalBinary(b []byte) (err error) {
	if p.ID, b, err = takeU32(b); err != nil {
		return err
	}
	var n uint32
	if n, b, err = takeU32(b); err != nil {
		return err
	}
	if uint64(n) > uint64(len(b)) {
		return errShortPacket
	}
	p.Data = append([]byte(nil), b[:n]...)
	return nil
}

// NameEntry is one (filename, longname, attrs) triple from an
// SSH_FXP_NAME response (REALPATH, READDIR).
type NameEntry struct {
	Filename string
	Longname string
	Attrs    *FileAttributes
}

type namePkt struct {
	ID      uint32
	Entries []NameEntry
}

func (p *namePkt) id() uint32 { return p.ID }
func (p *namePkt) MarshalBinary() ([]byte, error) {
	n := 4 + 4
	for _, e := range p.Entries {
		n += 4 + len(e.Filename) + 4 + len(e.Longname) + e.Attrs.encodedSize()
	}
	b := allocPkt(fxpName, n)
	b = appendU32(b, p.ID)
	b = appendU32(b, uint32(len(p.Entries)))
	for _, e := range p.Entries {
		b = appendStr(b, e.Filename)
		b = appendStr(b, e.Longname)
		b = append(b, e.Attrs.Encode()...)
	}
	return b, nil
}
func (p *namePkt) UnmarshalBinary(b []byte) (err error) {
	if p.ID, b, err = takeU32(b); err != nil {
		return err
	}
	var count uint32
	if count, b, err = takeU32(b); err != nil {
		return err
	}
	p.Entries = make([]NameEntry, count)
	for i := range p.Entries {
		if p.Entries[i].Filename, b, err = takeStr(b); err != nil {
			return err
		}
		if p.Entries[i].Longname, b, err = takeStr(b); err != nil {
			return err
		}
		if p.Entries[i].Attrs, b, err = decodeFileAttributes(b); err != nil {
			return err
		}
	}
	return nil
}

type attrsPkt struct {
	ID    uint32
	Attrs *FileAttributes
}

func (p *attrsPkt) id() uint32 { return p.ID }
func (p *attrsPkt) MarshalBinary() ([]byte, error) {
	attrBytes := p.Attrs.Encode()
	b := allocPkt(fxpAttrs, 4+len(attrBytes))
	b = appendU32(b, p.ID)
	return append(b, attrBytes...), nil
}
func (p *attrsPkt) UnmarshalBinary(b []byte) (err error) {
	if p.ID, b, err = takeU32(b); err != nil {
		return err
	}
	p.Attrs, _, err = decodeFileAttributes(b)
	return err
}

type extendedReplyPkt struct {
	ID      uint32
	Payload []byte
}

func (p *extendedReplyPkt) id() uint32 { return p.ID }
func (p *extendedReplyPkt) MarshalBinary() ([]byte, error) {
	b := allocPkt(fxpExtendedReply, 4+len(p.Payload))
	b = appendU32(b, p.ID)
	return append(b, p.Payload...), nil
}
func (p *extendedReplyPkt) UnmarshalBinary(b []byte) (err error) {
	if p.ID, b, err = takeU32(b); err != nil {
		return err
	}
	p.Payload = append([]byte(nil), b...)
	return nil
}

// decodeResponse dispatches a single complete packet payload (type byte
// onward, no length prefix) to the matching response struct, for the
// session's framer to call after reassembling one frame.
func decodeResponse(msgType byte, body []byte) (wirePacket, error) {
	var pkt wirePacket
	switch msgType {
	case fxpVersion:
		pkt = &versionPkt{}
	case fxpStatus:
		pkt = &statusPkt{}
	case fxpHandle:
		pkt = &handlePkt{}
	case fxpData:
		pkt = &dataPkt{}
	case fxpName:
		pkt = &namePkt{}
	case fxpAttrs:
		pkt = &attrsPkt{}
	case fxpExtendedReply:
		pkt = &extendedReplyPkt{}
	default:
		return nil, &ProtocolError{Msg: "unknown response type " + fxp(msgType).String()}
	}
	if err := pkt.UnmarshalBinary(body); err != nil {
		return nil, err
	}
	return pkt, nil
}
