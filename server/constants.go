package server

import "github.com/nedpals/mfulc/buildinfo"

// mDNS service discovery constants
var (
	MDNSServiceType = "_mfulc._tcp"
	MDNSServiceName = buildinfo.DisplayName
	MDNSDomain      = "local."
)

// WebSocket message types sent to clients
const (
	WSMessageTypeHello   = "hello"
	WSMessageTypeSession = "session"
)

// CORS configuration
const (
	CORSAllowOrigin  = "*"
	CORSAllowMethods = "GET, OPTIONS"
	CORSAllowHeaders = "Content-Type"
)

// eventBuffer bounds the queue between the session loop and the broadcaster.
const eventBuffer = 32
