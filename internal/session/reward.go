package session

// CoinRewardSeconds is the focused-time unit that earns one coin: every
// full 5 minutes of a completed session is worth one coin.
const CoinRewardSeconds = 300

// CoinsFor converts elapsed focused seconds into whole coins.
//
// Floor semantics: 299 seconds earn nothing, 300 earn one coin, 899 earn
// two. Zero or negative input yields 0 — an unrun or aborted session never
// grants a reward.
func CoinsFor(elapsedSeconds int) int {
	if elapsedSeconds <= 0 {
		return 0
	}
	return elapsedSeconds / CoinRewardSeconds
}
