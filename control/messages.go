package control

import (
	"fmt"
	"strings"
)

// Message is a structured control message.
type Message interface {
	// Type returns the frame kind the message travels in.
	Type() Type
	// Marshal returns the protobuf wire encoding.
	Marshal() []byte
	// Unmarshal replaces the message with the decoded payload.
	Unmarshal(payload []byte) error
	String() string
}

// EncodeVersion packs a release number into the legacy 32-bit version field.
func EncodeVersion(major, minor, patch uint8) uint32 {
	return uint32(major)<<16 | uint32(minor)<<8 | uint32(patch)
}

// EncodeVersionV2 packs a release number into the 64-bit version field newer
// servers prefer.
func EncodeVersionV2(major, minor, patch uint16) uint64 {
	return uint64(major)<<48 | uint64(minor)<<32 | uint64(patch)<<16
}

// FormatVersion renders a legacy version number as major.minor.patch.
func FormatVersion(v uint32) string {
	return fmt.Sprintf("%d.%d.%d", v>>16, (v>>8)&0xff, v&0xff)
}

// Version is exchanged by both sides at the start of a session.
type Version struct {
	Version   uint32
	Release   string
	OS        string
	OSVersion string
	VersionV2 uint64
}

func (*Version) Type() Type { return TypeVersion }

func (m *Version) Marshal() []byte {
	var w builder
	w.uint(1, uint64(m.Version))
	w.str(2, m.Release)
	w.str(3, m.OS)
	w.str(4, m.OSVersion)
	w.uint(5, m.VersionV2)
	return w.b
}

func (m *Version) Unmarshal(b []byte) error {
	*m = Version{}
	return walkFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Version, err = f.asUint32()
		case 2:
			m.Release, err = f.asString()
		case 3:
			m.OS, err = f.asString()
		case 4:
			m.OSVersion, err = f.asString()
		case 5:
			m.VersionV2, err = f.asUint64()
		}
		return err
	})
}

func (m *Version) String() string {
	return fmt.Sprintf("Version{version=%s release=%q os=%q os_version=%q}",
		FormatVersion(m.Version), m.Release, m.OS, m.OSVersion)
}

// Authenticate carries the client's credentials.
type Authenticate struct {
	Username     string
	Password     string
	Tokens       []string
	CELTVersions []int32
	Opus         bool
	ClientType   int32
}

func (*Authenticate) Type() Type { return TypeAuthenticate }

func (m *Authenticate) Marshal() []byte {
	var w builder
	w.str(1, m.Username)
	w.str(2, m.Password)
	w.strs(3, m.Tokens)
	w.int32s(4, m.CELTVersions)
	w.boolean(5, m.Opus)
	w.int32(6, m.ClientType)
	return w.b
}

func (m *Authenticate) Unmarshal(b []byte) error {
	*m = Authenticate{}
	return walkFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Username, err = f.asString()
		case 2:
			m.Password, err = f.asString()
		case 3:
			var token string
			if token, err = f.asString(); err == nil {
				m.Tokens = append(m.Tokens, token)
			}
		case 4:
			m.CELTVersions, err = f.appendInt32s(m.CELTVersions)
		case 5:
			m.Opus, err = f.asBool()
		case 6:
			m.ClientType, err = f.asInt32()
		}
		return err
	})
}

// String never includes the password or tokens.
func (m *Authenticate) String() string {
	return fmt.Sprintf("Authenticate{username=%q password=%s tokens=%d opus=%t}",
		m.Username, redacted(m.Password), len(m.Tokens), m.Opus)
}

func redacted(s string) string {
	if s == "" {
		return `""`
	}
	return "<redacted>"
}

// Ping keeps the session alive and carries link statistics.
type Ping struct {
	Timestamp  uint64
	Good       uint32
	Late       uint32
	Lost       uint32
	Resync     uint32
	UDPPackets uint32
	TCPPackets uint32
	UDPPingAvg float32
	UDPPingVar float32
	TCPPingAvg float32
	TCPPingVar float32
}

func (*Ping) Type() Type { return TypePing }

func (m *Ping) Marshal() []byte {
	var w builder
	w.varint(1, m.Timestamp)
	w.uint(2, uint64(m.Good))
	w.uint(3, uint64(m.Late))
	w.uint(4, uint64(m.Lost))
	w.uint(5, uint64(m.Resync))
	w.uint(6, uint64(m.UDPPackets))
	w.uint(7, uint64(m.TCPPackets))
	w.float(8, m.UDPPingAvg)
	w.float(9, m.UDPPingVar)
	w.float(10, m.TCPPingAvg)
	w.float(11, m.TCPPingVar)
	return w.b
}

func (m *Ping) Unmarshal(b []byte) error {
	*m = Ping{}
	return walkFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Timestamp, err = f.asUint64()
		case 2:
			m.Good, err = f.asUint32()
		case 3:
			m.Late, err = f.asUint32()
		case 4:
			m.Lost, err = f.asUint32()
		case 5:
			m.Resync, err = f.asUint32()
		case 6:
			m.UDPPackets, err = f.asUint32()
		case 7:
			m.TCPPackets, err = f.asUint32()
		case 8:
			m.UDPPingAvg, err = f.asFloat32()
		case 9:
			m.UDPPingVar, err = f.asFloat32()
		case 10:
			m.TCPPingAvg, err = f.asFloat32()
		case 11:
			m.TCPPingVar, err = f.asFloat32()
		}
		return err
	})
}

func (m *Ping) String() string {
	return fmt.Sprintf("Ping{timestamp=%d good=%d late=%d lost=%d tcp_packets=%d}",
		m.Timestamp, m.Good, m.Late, m.Lost, m.TCPPackets)
}

// RejectType is the reason code of a Reject message.
type RejectType int32

const (
	RejectNone RejectType = iota
	RejectWrongVersion
	RejectInvalidUsername
	RejectWrongUserPassword
	RejectWrongServerPassword
	RejectUsernameInUse
	RejectServerFull
	RejectNoCertificate
	RejectAuthenticatorFail
)

var rejectNames = []string{
	"None", "WrongVersion", "InvalidUsername", "WrongUserPW", "WrongServerPW",
	"UsernameInUse", "ServerFull", "NoCertificate", "AuthenticatorFail",
}

func (r RejectType) String() string {
	if r >= 0 && int(r) < len(rejectNames) {
		return rejectNames[r]
	}
	return fmt.Sprintf("RejectType(%d)", int32(r))
}

// Reject is sent by the server when it refuses the session.
type Reject struct {
	Kind   RejectType
	Reason string
}

func (*Reject) Type() Type { return TypeReject }

func (m *Reject) Marshal() []byte {
	var w builder
	w.int32(1, int32(m.Kind))
	w.str(2, m.Reason)
	return w.b
}

func (m *Reject) Unmarshal(b []byte) error {
	*m = Reject{}
	return walkFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			var v int32
			v, err = f.asInt32()
			m.Kind = RejectType(v)
		case 2:
			m.Reason, err = f.asString()
		}
		return err
	})
}

func (m *Reject) String() string {
	return fmt.Sprintf("Reject{type=%s reason=%q}", m.Kind, m.Reason)
}

// ServerSync completes the handshake and assigns the session id.
type ServerSync struct {
	Session      uint32
	MaxBandwidth uint32
	WelcomeText  string
	Permissions  uint64
}

func (*ServerSync) Type() Type { return TypeServerSync }

func (m *ServerSync) Marshal() []byte {
	var w builder
	w.uint(1, uint64(m.Session))
	w.uint(2, uint64(m.MaxBandwidth))
	w.str(3, m.WelcomeText)
	w.uint(4, m.Permissions)
	return w.b
}

func (m *ServerSync) Unmarshal(b []byte) error {
	*m = ServerSync{}
	return walkFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Session, err = f.asUint32()
		case 2:
			m.MaxBandwidth, err = f.asUint32()
		case 3:
			m.WelcomeText, err = f.asString()
		case 4:
			m.Permissions, err = f.asUint64()
		}
		return err
	})
}

func (m *ServerSync) String() string {
	return fmt.Sprintf("ServerSync{session=%d max_bandwidth=%d welcome_text=%q}",
		m.Session, m.MaxBandwidth, m.WelcomeText)
}

// CryptSetup carries the key material for the UDP voice channel.
type CryptSetup struct {
	Key         []byte
	ClientNonce []byte
	ServerNonce []byte
}

func (*CryptSetup) Type() Type { return TypeCryptSetup }

func (m *CryptSetup) Marshal() []byte {
	var w builder
	w.bytes(1, m.Key)
	w.bytes(2, m.ClientNonce)
	w.bytes(3, m.ServerNonce)
	return w.b
}

func (m *CryptSetup) Unmarshal(b []byte) error {
	*m = CryptSetup{}
	return walkFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Key, err = f.asBytes()
		case 2:
			m.ClientNonce, err = f.asBytes()
		case 3:
			m.ServerNonce, err = f.asBytes()
		}
		return err
	})
}

func (m *CryptSetup) String() string {
	return fmt.Sprintf("CryptSetup{key[%d] client_nonce[%d] server_nonce[%d]}",
		len(m.Key), len(m.ClientNonce), len(m.ServerNonce))
}

// CodecVersion tells the client which codecs the server wants used.
type CodecVersion struct {
	Alpha       int32
	Beta        int32
	PreferAlpha bool
	Opus        bool
}

func (*CodecVersion) Type() Type { return TypeCodecVersion }

func (m *CodecVersion) Marshal() []byte {
	var w builder
	w.varint(1, uint64(int64(m.Alpha)))
	w.varint(2, uint64(int64(m.Beta)))
	w.varint(3, boolVarint(m.PreferAlpha))
	w.boolean(4, m.Opus)
	return w.b
}

func boolVarint(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

func (m *CodecVersion) Unmarshal(b []byte) error {
	*m = CodecVersion{}
	return walkFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Alpha, err = f.asInt32()
		case 2:
			m.Beta, err = f.asInt32()
		case 3:
			m.PreferAlpha, err = f.asBool()
		case 4:
			m.Opus, err = f.asBool()
		}
		return err
	})
}

func (m *CodecVersion) String() string {
	return fmt.Sprintf("CodecVersion{alpha=%d beta=%d prefer_alpha=%t opus=%t}",
		m.Alpha, m.Beta, m.PreferAlpha, m.Opus)
}

// TextMessage is a chat message.
type TextMessage struct {
	Actor      uint32
	Sessions   []uint32
	ChannelIDs []uint32
	TreeIDs    []uint32
	Message    string
}

func (*TextMessage) Type() Type { return TypeTextMessage }

func (m *TextMessage) Marshal() []byte {
	var w builder
	w.uint(1, uint64(m.Actor))
	w.uint32s(2, m.Sessions)
	w.uint32s(3, m.ChannelIDs)
	w.uint32s(4, m.TreeIDs)
	w.str(5, m.Message)
	return w.b
}

func (m *TextMessage) Unmarshal(b []byte) error {
	*m = TextMessage{}
	return walkFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Actor, err = f.asUint32()
		case 2:
			m.Sessions, err = f.appendUint32s(m.Sessions)
		case 3:
			m.ChannelIDs, err = f.appendUint32s(m.ChannelIDs)
		case 4:
			m.TreeIDs, err = f.appendUint32s(m.TreeIDs)
		case 5:
			m.Message, err = f.asString()
		}
		return err
	})
}

func (m *TextMessage) String() string {
	return fmt.Sprintf("TextMessage{actor=%d sessions=%v channels=%v message=%q}",
		m.Actor, m.Sessions, m.ChannelIDs, m.Message)
}

// PermissionDenied reports a refused operation.
type PermissionDenied struct {
	Permission uint32
	ChannelID  uint32
	Session    uint32
	Reason     string
	DenyType   int32
	Name       string
}

func (*PermissionDenied) Type() Type { return TypePermissionDenied }

func (m *PermissionDenied) Marshal() []byte {
	var w builder
	w.uint(1, uint64(m.Permission))
	w.uint(2, uint64(m.ChannelID))
	w.uint(3, uint64(m.Session))
	w.str(4, m.Reason)
	w.int32(5, m.DenyType)
	w.str(6, m.Name)
	return w.b
}

func (m *PermissionDenied) Unmarshal(b []byte) error {
	*m = PermissionDenied{}
	return walkFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Permission, err = f.asUint32()
		case 2:
			m.ChannelID, err = f.asUint32()
		case 3:
			m.Session, err = f.asUint32()
		case 4:
			m.Reason, err = f.asString()
		case 5:
			m.DenyType, err = f.asInt32()
		case 6:
			m.Name, err = f.asString()
		}
		return err
	})
}

func (m *PermissionDenied) String() string {
	return fmt.Sprintf("PermissionDenied{type=%d permission=%d channel=%d reason=%q}",
		m.DenyType, m.Permission, m.ChannelID, m.Reason)
}

// ServerConfig carries server-wide limits.
type ServerConfig struct {
	MaxBandwidth       uint32
	WelcomeText        string
	AllowHTML          bool
	MessageLength      uint32
	ImageMessageLength uint32
	MaxUsers           uint32
}

func (*ServerConfig) Type() Type { return TypeServerConfig }

func (m *ServerConfig) Marshal() []byte {
	var w builder
	w.uint(1, uint64(m.MaxBandwidth))
	w.str(2, m.WelcomeText)
	w.boolean(3, m.AllowHTML)
	w.uint(4, uint64(m.MessageLength))
	w.uint(5, uint64(m.ImageMessageLength))
	w.uint(6, uint64(m.MaxUsers))
	return w.b
}

func (m *ServerConfig) Unmarshal(b []byte) error {
	*m = ServerConfig{}
	return walkFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.MaxBandwidth, err = f.asUint32()
		case 2:
			m.WelcomeText, err = f.asString()
		case 3:
			m.AllowHTML, err = f.asBool()
		case 4:
			m.MessageLength, err = f.asUint32()
		case 5:
			m.ImageMessageLength, err = f.asUint32()
		case 6:
			m.MaxUsers, err = f.asUint32()
		}
		return err
	})
}

func (m *ServerConfig) String() string {
	return fmt.Sprintf("ServerConfig{max_bandwidth=%d allow_html=%t message_length=%d max_users=%d}",
		m.MaxBandwidth, m.AllowHTML, m.MessageLength, m.MaxUsers)
}

func joinFields(parts []string) string {
	return strings.Join(parts, " ")
}
