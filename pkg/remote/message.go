package remote

import (
	"errors"
	"fmt"

	"github.com/chadmed/macsmc-go/pkg/smc"
)

// ProtocolVersion is the wire protocol version spoken by this package.
// Client and server must agree on it during the hello exchange.
const ProtocolVersion uint32 = 1

// ErrVersionMismatch indicates the peer speaks a different protocol
// version.
var ErrVersionMismatch = errors.New("protocol version mismatch")

// Op identifies the requested operation.
type Op uint8

const (
	// OpHello negotiates the protocol version. It must be the first
	// request on a connection.
	OpHello Op = 1

	// OpKeyInfo looks up the declared wire type and size of a key.
	OpKeyInfo Op = 2

	// OpReadKey reads the current raw value of a key.
	OpReadKey Op = 3
)

// IsValid returns true for a known operation.
func (o Op) IsValid() bool {
	return o >= OpHello && o <= OpReadKey
}

// String returns the operation name.
func (o Op) String() string {
	switch o {
	case OpHello:
		return "HELLO"
	case OpKeyInfo:
		return "KEY_INFO"
	case OpReadKey:
		return "READ_KEY"
	default:
		return "UNKNOWN"
	}
}

// Status is a response status code.
type Status uint8

const (
	// StatusOK indicates the operation completed successfully.
	StatusOK Status = 0

	// StatusKeyNotFound indicates the served controller has no key with
	// the requested identifier.
	StatusKeyNotFound Status = 1

	// StatusVersionMismatch indicates the server speaks a different
	// protocol version. The response's Version field carries the
	// server's version.
	StatusVersionMismatch Status = 2

	// StatusInvalidRequest indicates a malformed or out-of-order
	// request.
	StatusInvalidRequest Status = 3

	// StatusTransportError indicates the served controller failed the
	// operation. The response's Message field carries the error text.
	StatusTransportError Status = 4
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusKeyNotFound:
		return "KEY_NOT_FOUND"
	case StatusVersionMismatch:
		return "VERSION_MISMATCH"
	case StatusInvalidRequest:
		return "INVALID_REQUEST"
	case StatusTransportError:
		return "TRANSPORT_ERROR"
	default:
		return "UNKNOWN"
	}
}

// IsSuccess returns true if the status indicates success.
func (s Status) IsSuccess() bool {
	return s == StatusOK
}

// Request is a client-to-server message.
//
// CBOR encoding:
//
//	{
//	  1: messageId,  // uint32, non-zero
//	  2: op,         // uint8: 1=Hello, 2=KeyInfo, 3=ReadKey
//	  3: version,    // uint32, Hello only
//	  4: key         // uint32 FourCC, KeyInfo and ReadKey only
//	}
type Request struct {
	MessageID uint32  `cbor:"1,keyasint"`
	Op        Op      `cbor:"2,keyasint"`
	Version   uint32  `cbor:"3,keyasint,omitempty"`
	Key       smc.Key `cbor:"4,keyasint,omitempty"`
}

// Validate checks if the request is structurally valid.
func (r *Request) Validate() error {
	if r.MessageID == 0 {
		return fmt.Errorf("message id 0 is reserved")
	}
	if !r.Op.IsValid() {
		return fmt.Errorf("invalid operation: %d", r.Op)
	}
	switch r.Op {
	case OpHello:
		if r.Version == 0 {
			return fmt.Errorf("hello without version")
		}
	case OpKeyInfo, OpReadKey:
		if r.Key == 0 {
			return fmt.Errorf("%s without key", r.Op)
		}
	}
	return nil
}

// Response is a server-to-client message.
//
// CBOR encoding:
//
//	{
//	  1: messageId,  // uint32: matches the request
//	  2: status,     // uint8: 0=OK, or error code
//	  3: version,    // uint32, Hello responses
//	  4: type,       // uint32 FourCC, KeyInfo responses
//	  5: size,       // uint8, KeyInfo responses
//	  6: data,       // bytes, ReadKey responses
//	  7: message     // string, error detail
//	}
type Response struct {
	MessageID uint32       `cbor:"1,keyasint"`
	Status    Status       `cbor:"2,keyasint"`
	Version   uint32       `cbor:"3,keyasint,omitempty"`
	Type      smc.TypeCode `cbor:"4,keyasint,omitempty"`
	Size      uint8        `cbor:"5,keyasint,omitempty"`
	Data      []byte       `cbor:"6,keyasint,omitempty"`
	Message   string       `cbor:"7,keyasint,omitempty"`
}

// IsSuccess returns true if the response indicates success.
func (r *Response) IsSuccess() bool {
	return r.Status.IsSuccess()
}
