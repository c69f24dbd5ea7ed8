// Package config manages the level library of the rule server.
//
// Levels are text files named NAME.txt in one directory, in the format
// read by the level package. The Manager parses them on first use and
// caches the result.
//
// The default level is baba.txt when present, otherwise the first level
// in the directory that parses, otherwise a built-in BABA IS YOU board.
//
// Usage:
//
//	manager, err := config.NewManager("levels", level.DefaultLimits())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	lvl, err := manager.LoadLevel("flag")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	levels, err := manager.ListLevels()
//
// Saved levels are parsed before they are written, so the directory only
// gains files the server can load.
package config
