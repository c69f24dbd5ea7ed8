// Package websocket pushes rule changes to browser clients.
//
// A central Hub keeps the connections of each workbench session. Every
// connection has a read goroutine, which only handles keep-alive, and a
// write goroutine fed by the hub.
//
// Message Protocol:
//
// Messages are JSON objects. After each edit or reset the server sends
//
//	{"session_id": "ab12", "event": "rules_update",
//	 "snapshot": {...}, "added": ["BABA IS WIN"], "removed": ["BABA IS YOU"]}
//
// where snapshot is the engine.Snapshot of the board. Deleting a session
// sends a "session_deleted" event.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
