// Package engine provides the turn resolution core of the One Stroke game.
//
// The engine package implements the game mechanics including:
//   - The 5x5 board of tiles and the roster of enemies placed on it
//   - Path validation and side-effect free path previews
//   - Stroke execution with combos, the one-stroke bonus and combat
//   - Enemy action patterns that fire on a turn countdown
//   - Weighted rewards that reshape future tile generation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState is the serializable state of a run,
// while GameConfig holds the stage, spawn and reward tables loaded from JSON
// or YAML files.
//
// Usage:
//
//	config, err := engine.LoadGameConfig("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config, engine.WithSeed(42))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameEngine.SubmitPath([]engine.Position{{X: 0, Y: 0}, {X: 1, Y: 0}})
//	state := gameEngine.GetState()
//
// Game Rules:
//
// Each turn the player draws one stroke starting on their own cell, moving
// orthogonally without revisiting a cell or crossing a wall, and ending on an
// enemy. Every step adds one attack; pickups cost one gold unless a combo of
// three or more identical pickups is running, and a stroke covering all 25
// cells adds the one-stroke bonus. Enemies that survive strike back, then
// every enemy advances its action pattern. Clearing all enemies offers a
// reward and advances the stage; the run ends when the player's HP reaches
// zero.
package engine
