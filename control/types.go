package control

import "fmt"

// Type identifies the kind of a control frame.
type Type uint16

const (
	TypeVersion Type = iota
	TypeUDPTunnel
	TypeAuthenticate
	TypePing
	TypeReject
	TypeServerSync
	TypeChannelRemove
	TypeChannelState
	TypeUserRemove
	TypeUserState
	TypeBanList
	TypeTextMessage
	TypePermissionDenied
	TypeACL
	TypeQueryUsers
	TypeCryptSetup
	TypeContextActionModify
	TypeContextAction
	TypeUserList
	TypeVoiceTarget
	TypePermissionQuery
	TypeCodecVersion
	TypeUserStats
	TypeRequestBlob
	TypeServerConfig
	TypeSuggestConfig
	TypePluginDataTransmission

	typeCount
)

var typeNames = [typeCount]string{
	"Version",
	"UDPTunnel",
	"Authenticate",
	"Ping",
	"Reject",
	"ServerSync",
	"ChannelRemove",
	"ChannelState",
	"UserRemove",
	"UserState",
	"BanList",
	"TextMessage",
	"PermissionDenied",
	"ACL",
	"QueryUsers",
	"CryptSetup",
	"ContextActionModify",
	"ContextAction",
	"UserList",
	"VoiceTarget",
	"PermissionQuery",
	"CodecVersion",
	"UserStats",
	"RequestBlob",
	"ServerConfig",
	"SuggestConfig",
	"PluginDataTransmission",
}

// String returns the protocol name of t.
func (t Type) String() string {
	if t.Valid() {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", uint16(t))
}

// Valid reports whether t is a known frame kind.
func (t Type) Valid() bool {
	return t < typeCount
}

// TypeOf maps a wire type number to a Type.
func TypeOf(number uint16) (Type, error) {
	t := Type(number)
	if !t.Valid() {
		return 0, fmt.Errorf("%w: unknown control packet type %d", ErrParse, number)
	}
	return t, nil
}

// Types returns every known Type in wire order.
func Types() []Type {
	out := make([]Type, typeCount)
	for i := range out {
		out[i] = Type(i)
	}
	return out
}
