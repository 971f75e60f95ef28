// Package websocket streams plan progress over WebSocket.
//
// A client connects to /api/v1/plans/ws and sends one plan request as a JSON
// text message. The server answers with "event" messages as sections finish,
// then a final "result" or "error" message, and closes the connection.
package websocket
