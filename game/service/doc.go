// Package service provides the business logic layer of the rule workbench.
//
// The service package implements:
//   - Multi-session board editing
//   - Level listing, loading and saving
//   - Rule diffs after every edit
//   - One-shot evaluation of level text
//
// Core Interfaces:
//
// RuleService is the main service interface used by the transports.
// SessionManager stores sessions and LevelManager stores level files.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the engine. Each session owns a GameEngine holding its own copy of the
// board, so edits in one session never affect another.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	levelMgr, _ := config.NewManager("levels", level.DefaultLimits())
//	svc := service.NewRuleService(sessionMgr, levelMgr, level.DefaultLimits())
//
//	info, err := svc.CreateSession(ctx, "baba")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := svc.SetCell(ctx, info.ID, 0, 2, "@")
//	fmt.Println(result.Added)
package service
