package di

import "strconv"

// candidateFunc lists the names of the components a lookup would find for a
// contract.
type candidateFunc func(Contract) []string

// selectConstructor picks the constructor to use for a component.
//
// A constructor qualifies when all its parameters are supported and every
// single-valued parameter has exactly one candidate. The qualifying
// constructor with the most parameters wins; a tie is an error.
func selectConstructor(component string, sigs [][]Dependency, candidates candidateFunc) (int, error) {
	if len(sigs) == 0 {
		return -1, NoSuitableConstructorError{Component: component, Reason: "no constructor declared"}
	}

	best, bestLen, tied := -1, -1, 0
	var causes []error
	for i, params := range sigs {
		if err := satisfiable(params, candidates); err != nil {
			causes = append(causes, err)
			continue
		}
		switch {
		case len(params) > bestLen:
			best, bestLen, tied = i, len(params), 1
		case len(params) == bestLen:
			tied++
		}
	}

	switch {
	case best < 0:
		return -1, NoSuitableConstructorError{Component: component, Causes: causes}
	case tied > 1:
		return -1, NoSuitableConstructorError{
			Component: component,
			Reason:    strconv.Itoa(tied) + " constructors with " + strconv.Itoa(bestLen) + " parameters qualify",
		}
	}
	return best, nil
}

func satisfiable(params []Dependency, candidates candidateFunc) error {
	for i, p := range params {
		if err := p.check(i); err != nil {
			return err
		}
		if !p.Mode.single() {
			continue
		}
		switch names := candidates(p.Contract); len(names) {
		case 0:
			return ComponentNotFoundError{Contract: p.Contract.id}
		case 1:
		default:
			return AmbiguousComponentError{Contract: p.Contract.id, Candidates: names}
		}
	}
	return nil
}
