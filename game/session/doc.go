// Package session keeps the workbench sessions of the rule server.
//
// A session owns one engine.GameEngine opened on a level. Clients edit the
// board through the session and every edit re-derives the rules.
//
// Core Types:
//
// Manager stores sessions in memory, keyed by a case-insensitive ID, and
// optionally writes them through a SessionPersistence. FilePersistence keeps
// one JSON file per session and PostgresPersistence one row per session.
// Both store the level as loaded and the edited board as level text, so a
// restored session can still be reset.
//
// Session Identifiers:
//
// Generated IDs are 4 hex characters. Caller-chosen IDs may use letters,
// digits, '-' and '_', up to 64 characters.
//
// Usage:
//
//	store, err := session.NewFilePersistence("sessions", level.DefaultLimits())
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(store)
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Printf("Warning: %v", err)
//	}
//
//	sess, err := manager.Create("", lvl)
//	if err != nil {
//		log.Fatal(err)
//	}
//	sess.Engine.SetCell(0, 2, '*')
//	manager.Save(sess.ID)
package session
