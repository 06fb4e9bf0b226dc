package prompt

// ApplyVote performs the optimistic in-memory update for a vote.
// A first vote increments its counter; switching moves one vote across,
// never letting a counter drop below zero; repeating a vote changes nothing.
func ApplyVote(p Prompt, positive bool) Prompt {
	out := p
	switch {
	case p.UserRating == nil:
		if positive {
			out.PositiveRatings++
		} else {
			out.NegativeRatings++
		}
	case *p.UserRating && !positive:
		out.PositiveRatings = max(0, p.PositiveRatings-1)
		out.NegativeRatings++
	case !*p.UserRating && positive:
		out.PositiveRatings++
		out.NegativeRatings = max(0, p.NegativeRatings-1)
	}
	out.UserRating = &positive
	return out
}

// WithCounts overwrites the cached counters with an authoritative recount.
func (p Prompt) WithCounts(c Counts) Prompt {
	p.PositiveRatings = c.Positive
	p.NegativeRatings = c.Negative
	return p
}
