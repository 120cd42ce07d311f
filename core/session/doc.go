// Package session impersonates a game client over one persistent duplex
// connection per world.
//
// A Client owns the connection. Requests are framed as socket.io events over
// engine.io text frames and tagged with a monotonically increasing
// correlation id; the read loop resolves the matching pending request when a
// response carrying that id arrives. Requests that receive no response within
// the loading timeout fail with ErrProtocolTimeout and their correlation
// entry is discarded, so a late response is dropped.
//
// # Lifecycle
//
//  1. Connect waits for the engine.io open frame, starts the keep-alive
//     pinger at the advertised interval and sends System/identify. Domain
//     requests block until identification completes.
//  2. Auth logs in with the market credentials in order, caching the
//     resulting Identity in a Cache owned by the caller.
//  3. SelectCharacter selects the world character and replays the login
//     bootstrap a real client performs.
//  4. Kill severs the connection, rejects every pending request and notifies
//     the OnKill handlers.
//
// The wire mechanism is hidden behind Transport; WebsocketDialer is the
// production implementation.
package session
