// Package bot plays One Stroke without a human.
//
// Planner walks every stroke from the player's cell depth-first, pruning
// branches from which no enemy can be reached, and scores each stroke that
// ends on an enemy with engine.CalculatePathPreview. The node budget keeps a
// turn bounded on crowded boards. RewardPriority picks rewards from a fixed
// ranking, healing first when HP runs low.
//
//	summary, err := engine.Run(ctx, eng, bot.NewPlanner(), bot.DefaultRewardPriority(), 200)
package bot
