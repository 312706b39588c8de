package resolve

// Decide selects the winning candidate.
//
// The nearest chain position wins: an inherent method on a wrapper type
// shadows a same-named method on the wrapped type, matching ordinary
// reference and smart-pointer behavior. When several candidates tie at the
// minimal chain index, a single inherent declaration beats methods declared
// elsewhere that reach the same entry; any remaining tie is ambiguous and
// every tied candidate is listed so the host can format a qualified-call
// suggestion. Ties are broken by chain position and inherent-ness only,
// never by discovery order.
func Decide(candidates []Candidate) Outcome {
	if len(candidates) == 0 {
		return Outcome{Kind: OutcomeNoMatch}
	}
	minIndex := candidates[0].ChainIndex
	for _, c := range candidates[1:] {
		if c.ChainIndex < minIndex {
			minIndex = c.ChainIndex
		}
	}
	var nearest []Candidate
	for _, c := range candidates {
		if c.ChainIndex == minIndex {
			nearest = append(nearest, c)
		}
	}
	if len(nearest) == 1 {
		return Outcome{Kind: OutcomeResolved, Selected: nearest[0]}
	}
	var inherent []Candidate
	for _, c := range nearest {
		if c.Inherent {
			inherent = append(inherent, c)
		}
	}
	if len(inherent) == 1 {
		return Outcome{Kind: OutcomeResolved, Selected: inherent[0]}
	}
	return Outcome{Kind: OutcomeAmbiguous, Tied: nearest}
}
