package message

import "strings"

// Protocol is the wire-level protocol label the transport negotiated.
type Protocol int

const (
	ProtocolUnknown Protocol = iota
	HTTP10
	HTTP11
	H2
	H2PriorKnowledge
	QUIC
	H3
)

func (p Protocol) String() string {
	switch p {
	case HTTP10:
		return "http/1.0"
	case HTTP11:
		return "http/1.1"
	case H2:
		return "h2"
	case H2PriorKnowledge:
		return "h2_prior_knowledge"
	case QUIC:
		return "quic"
	case H3:
		return "h3"
	default:
		return "unknown"
	}
}

// ParseProtocol looks up a wire label, treating any "h3-<n>" draft variant
// as H3.
func ParseProtocol(label string) (Protocol, bool) {
	switch strings.ToLower(label) {
	case "http/1.0":
		return HTTP10, true
	case "http/1.1":
		return HTTP11, true
	case "h2":
		return H2, true
	case "h2_prior_knowledge":
		return H2PriorKnowledge, true
	case "quic":
		return QUIC, true
	case "h3":
		return H3, true
	}
	if strings.HasPrefix(strings.ToLower(label), "h3-") {
		return H3, true
	}
	return ProtocolUnknown, false
}
