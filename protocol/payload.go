package protocol

import (
	"yatzy-lite/dice"
	"yatzy-lite/yatzy"
)

// SnapshotPayload converts a game snapshot into a snapshot message body.
func SnapshotPayload(snap yatzy.Snapshot) map[string]any {
	dice := make([]any, 0, len(snap.Dice))
	held := make([]any, 0, len(snap.Dice))
	for _, d := range snap.Dice {
		dice = append(dice, d.Face.Pips())
		held = append(held, d.Held)
	}

	categories := make([]any, 0, len(snap.Categories))
	for _, c := range snap.Categories {
		entry := map[string]any{
			"category": c.Category.String(),
			"filled":   c.Filled,
		}
		if c.Filled {
			entry["score"] = c.Score
		}
		if c.HasPreview {
			entry["preview"] = c.Preview
		}
		categories = append(categories, entry)
	}

	return map[string]any{
		"round":      snap.Round,
		"phase":      snap.Phase.String(),
		"rolls_used": snap.RollsUsed,
		"rolls_left": snap.RollsLeft,
		"game_over":  snap.GameOver,
		"dice":       dice,
		"held":       held,
		"categories": categories,
		"totals":     TotalsPayload(snap.Totals),
	}
}

func TotalsPayload(t yatzy.Totals) map[string]any {
	return map[string]any{
		"upper_sum":   t.UpperSum,
		"bonus":       t.Bonus,
		"lower_sum":   t.LowerSum,
		"grand_total": t.GrandTotal,
	}
}

// RollPayload reports the dice after a roll.
func RollPayload(rollsUsed int, faces [yatzy.DiceCount]dice.Face, held [yatzy.DiceCount]bool) map[string]any {
	return map[string]any{
		"rolls_used": rollsUsed,
		"rolls_left": yatzy.MaxRolls - rollsUsed,
		"dice":       Ints(dice.FaceList(faces[:]).Ints()),
		"held":       Bools(held[:]),
	}
}

func HoldPayload(die int, held bool) map[string]any {
	return map[string]any{"die": die, "held": held}
}

func PreviewPayload(c yatzy.Category, points int) map[string]any {
	return map[string]any{"category": c.String(), "points": points}
}

func ScorePayload(res yatzy.CommitResult) map[string]any {
	return map[string]any{
		"round":    res.Round,
		"category": res.Category.String(),
		"points":   res.Points,
		"phase":    res.Phase.String(),
		"totals":   TotalsPayload(res.Totals),
	}
}

func GameOverPayload(t yatzy.Totals) map[string]any {
	return map[string]any{"totals": TotalsPayload(t)}
}

// ErrorPayload carries a machine-readable code next to the message.
func ErrorPayload(code, message string) map[string]any {
	return map[string]any{"code": code, "message": message}
}
