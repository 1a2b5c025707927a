package a3c

import "fmt"

// Discount computes the reverse-time discounted cumulative sum
// y[i] = x[i] + gamma*y[i+1], with y beyond the end treated as zero.
func Discount(xs []float64, gamma float64) []float64 {
	out := make([]float64, len(xs))
	acc := 0.0
	for i := len(xs) - 1; i >= 0; i-- {
		acc = xs[i] + gamma*acc
		out[i] = acc
	}
	return out
}

// ComputeAdvantages builds the discounted-return targets and generalized
// advantage estimates for one rollout. bootstrap stands in for the unknown
// return beyond the rollout's end (zero at a terminal state).
//
// The advantage is the discounted sum of the one-step TD residuals, with the
// smoothing parameter folded into the same gamma. No normalization is applied
// here; callers that want normalized advantages do it themselves.
func ComputeAdvantages(rewards, values []float64, bootstrap, gamma float64) (returns, advantages []float64, err error) {
	if len(rewards) != len(values) {
		return nil, nil, fmt.Errorf("rewards length %d does not match values length %d", len(rewards), len(values))
	}
	n := len(rewards)

	rewardsPlus := make([]float64, n+1)
	copy(rewardsPlus, rewards)
	rewardsPlus[n] = bootstrap
	returns = Discount(rewardsPlus, gamma)[:n]

	valuesPlus := make([]float64, n+1)
	copy(valuesPlus, values)
	valuesPlus[n] = bootstrap

	residuals := make([]float64, n)
	for i := 0; i < n; i++ {
		residuals[i] = rewards[i] + gamma*valuesPlus[i+1] - valuesPlus[i]
	}
	advantages = Discount(residuals, gamma)
	return returns, advantages, nil
}
