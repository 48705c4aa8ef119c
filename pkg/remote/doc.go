// Package remote serves a local SMC transport over TCP and connects to
// one served elsewhere.
//
// The server wraps any smc.Transport and answers metadata and read
// requests from clients on other machines. The client side implements
// smc.Transport itself, so a sensor registry can be built against a
// controller that lives on the far end of a socket.
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│      CBOR Messages             │
//	├────────────────────────────────┤
//	│   Length-Prefix Framing (4B)   │
//	├────────────────────────────────┤
//	│           TCP                  │
//	└────────────────────────────────┘
//
// Every connection opens with a hello exchange that checks the protocol
// version. Requests carry a message ID that the matching response
// echoes. The proxy is a development tool for trusted networks and
// carries no transport security.
package remote
