// Package server provides the HTTP surface of the relay: the WebSocket
// upgrade endpoint and a health endpoint.
package server
